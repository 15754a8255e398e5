package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-parser/internal/amounts"
	"github.com/dvloznov/finance-parser/internal/domain"
)

const UnknownMerchant = "Unknown Merchant"

// receiptTotalPattern matches the first number following a total keyword on a line.
var receiptTotalPattern = regexp.MustCompile(`(?i)(?:total|amount|sum)[^\d\n]*?(\d[\d,]*(?:\.\d{1,2})?)`)

// ReceiptResult carries the single receipt transaction, if any, and the
// confidence built from which fields were found.
type ReceiptResult struct {
	Transactions []domain.Transaction
	Confidence   float64
	AmountFound  bool
	DateFound    bool
}

// ParseReceipt pulls a total, a date and a merchant guess out of receipt text
// and emits one debit when both total and date are present.
func ParseReceipt(text string) ReceiptResult {
	lines := Lines(text)

	var (
		res       ReceiptResult
		total     decimal.Decimal
		totalLine string
	)
	for _, line := range lines {
		m := receiptTotalPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amt, err := amounts.ParseAmount(m[1])
		if err != nil || !amt.IsPositive() {
			continue
		}
		total, totalLine, res.AmountFound = amt, line, true
		break
	}

	date, dateOK := FindDate(text)
	res.DateFound = dateOK

	if res.AmountFound && res.DateFound {
		merchant := receiptMerchant(lines)
		res.Transactions = []domain.Transaction{{
			Date:        date,
			Merchant:    merchant,
			Description: merchant,
			Amount:      total,
			Direction:   domain.DirectionDebit,
			Source:      domain.SourceStructured,
			RawLine:     totalLine,
		}}
	}

	if res.AmountFound {
		res.Confidence += 0.4
	}
	if res.DateFound {
		res.Confidence += 0.3
	}
	if len(res.Transactions) > 0 {
		res.Confidence += 0.3
	}
	return res
}

// receiptMerchant picks the first line that reads like a shop name: 5 to 49
// characters and no digits.
func receiptMerchant(lines []string) string {
	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if n < 5 || n >= 50 {
			continue
		}
		if strings.IndexFunc(line, unicode.IsDigit) >= 0 {
			continue
		}
		return line
	}
	return UnknownMerchant
}
