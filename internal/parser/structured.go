package parser

import (
	"regexp"

	"github.com/dvloznov/finance-parser/internal/domain"
)

const (
	isoDateGroup    = `(\d{4}-\d{2}-\d{2})`
	plainAmount     = `(-?\d[\d,]*\.\d{2})`
	dollarAmount    = `(-?\$\s?-?\d[\d,]*\.\d{2})`
	numericDateExpr = `(\d{1,2}[/-]\d{1,2}[/-](?:\d{4}|\d{2}))`
)

var (
	structuredDateDescAmount = regexp.MustCompile(`^` + isoDateGroup + `\s+(.+?)\s+` + plainAmount + `$`)
	structuredDateAmountDesc = regexp.MustCompile(`^` + isoDateGroup + `\s+` + plainAmount + `\s+(.+)$`)
	structuredDateDescDollar = regexp.MustCompile(`^` + isoDateGroup + `\s+(.+?)\s+` + dollarAmount + `$`)
	structuredDateDescParen  = regexp.MustCompile(`^` + isoDateGroup + `\s+(.+?)\s+\((\$?\d[\d,]*\.\d{2})\)$`)
)

// StructuredLineParser recognises the tidy ISO-dated layouts most statement
// exports use. Order matters: the first matching layout claims the line.
func StructuredLineParser() *LineParser {
	return &LineParser{
		name: "structured",
		strategies: []LineStrategy{
			linePattern{re: structuredDateDescAmount, dateIdx: 1, descIdx: 2, amountIdx: 3, date: normalizeISODate}.
				strategy("date_description_amount", domain.SourceStructured),
			linePattern{re: structuredDateAmountDesc, dateIdx: 1, descIdx: 3, amountIdx: 2, date: normalizeISODate}.
				strategy("date_amount_description", domain.SourceStructured),
			linePattern{re: structuredDateDescDollar, dateIdx: 1, descIdx: 2, amountIdx: 3, date: normalizeISODate}.
				strategy("date_description_dollar_amount", domain.SourceStructured),
			// parenthesised amounts are credits
			linePattern{re: structuredDateDescParen, dateIdx: 1, descIdx: 2, amountIdx: 3, date: normalizeISODate}.
				strategy("date_description_parenthesized_amount", domain.SourceStructured),
		},
	}
}
