package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/parser"
)

// IsValidationReliable reports whether the unflagged subset may stand in for
// the full result when computing metadata.
func IsValidationReliable(allowedCount, flagged, total int) bool {
	return allowedCount >= MinAllowedAmountsForReliability && flagged > 0 && flagged < total
}

// BuildMetadata aggregates txs into result metadata.
func BuildMetadata(txs []domain.Transaction, currency string) domain.Metadata {
	md := domain.Metadata{
		TotalAmount:      decimal.Zero,
		TransactionCount: len(txs),
		Currency:         currency,
	}
	for _, tx := range txs {
		md.TotalAmount = md.TotalAmount.Add(tx.Amount)
		if !parser.IsValidDate(tx.Date) {
			continue
		}
		if md.DateRange.Start == "" || tx.Date < md.DateRange.Start {
			md.DateRange.Start = tx.Date
		}
		if md.DateRange.End == "" || tx.Date > md.DateRange.End {
			md.DateRange.End = tx.Date
		}
	}
	return md
}

var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"£", "GBP"},
	{"€", "EUR"},
	{"$", "USD"},
}

// DetectCurrency returns the code of the first currency symbol appearing in
// text, or fallback when there is none.
func DetectCurrency(text, fallback string) string {
	code, best := fallback, -1
	for _, cs := range currencySymbols {
		idx := strings.Index(text, cs.symbol)
		if idx >= 0 && (best == -1 || idx < best) {
			code, best = cs.code, idx
		}
	}
	return code
}
