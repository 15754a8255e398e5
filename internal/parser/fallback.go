package parser

import (
	"regexp"

	"github.com/dvloznov/finance-parser/internal/domain"
)

var (
	fallbackNumericDateDescAmount = regexp.MustCompile(`^` + numericDateExpr + `\s+(.+?)\s+` + plainAmount + `$`)
	fallbackISODateDescAmount     = regexp.MustCompile(`^` + isoDateGroup + `\s+(.+?)\s+(-?\$?\s?-?\d[\d,]*\.\d{2})(?:\s|$)`)
	fallbackNumericDateAmountDesc = regexp.MustCompile(`^` + numericDateExpr + `\s+(-?\$?-?\d[\d,]*\.\d{2})\s+(.+)$`)
	fallbackNumericDateDescDollar = regexp.MustCompile(`^` + numericDateExpr + `\s+(.+?)\s+` + dollarAmount + `(?:\s|$)`)
)

// RegexFallbackParser is the looser second pass for statements the
// structured layouts miss: US numeric dates, amounts followed by a running
// balance, and amount-before-description rows.
func RegexFallbackParser() *LineParser {
	return &LineParser{
		name: "regex_fallback",
		strategies: []LineStrategy{
			linePattern{re: fallbackNumericDateDescAmount, dateIdx: 1, descIdx: 2, amountIdx: 3, date: normalizeNumericDate}.
				strategy("numeric_date_description_amount", domain.SourceRegexFallback),
			linePattern{re: fallbackISODateDescAmount, dateIdx: 1, descIdx: 2, amountIdx: 3, date: normalizeISODate}.
				strategy("iso_date_description_amount", domain.SourceRegexFallback),
			linePattern{re: fallbackNumericDateAmountDesc, dateIdx: 1, descIdx: 3, amountIdx: 2, date: normalizeNumericDate}.
				strategy("numeric_date_amount_description", domain.SourceRegexFallback),
			linePattern{re: fallbackNumericDateDescDollar, dateIdx: 1, descIdx: 2, amountIdx: 3, date: normalizeNumericDate}.
				strategy("numeric_date_description_dollar_amount", domain.SourceRegexFallback),
		},
	}
}
