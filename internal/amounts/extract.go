// Package amounts finds the monetary tokens printed in a document and checks
// extracted transactions against them.
package amounts

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches a two-decimal money token with optional currency
// markers, sign, parentheses and comma thousands separators.
var amountPattern = regexp.MustCompile(
	`(?:(?:USD|CAD|EUR|GBP|AUD)\s?)?[$£€]?\s?[-(]?[$£€]?\b(\d{1,3}(?:,\d{3})+|\d+)\.(\d{2})\b\)?(?:\s?(?:USD|CAD|EUR|GBP|AUD))?`,
)

// ExtractAmountsFromText returns every monetary amount printed in text, in
// order of appearance and with duplicates kept. Each entry is the canonical
// two-decimal magnitude: "-$1,234.56" becomes "1234.56".
func ExtractAmountsFromText(text string) []string {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		whole := strings.ReplaceAll(m[1], ",", "")
		d, err := decimal.NewFromString(whole + "." + m[2])
		if err != nil {
			continue
		}
		out = append(out, Canonical(d))
	}
	return out
}

// Canonical renders an amount the way ExtractAmountsFromText does, so that
// transaction amounts can be looked up in a whitelist.
func Canonical(d decimal.Decimal) string {
	return d.Abs().StringFixed(2)
}

// ParseAmount parses a printed amount, tolerating currency symbols, spaces,
// comma separators and accounting parentheses (which mean negative).
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", " ", "").Replace(s)
	// "$-12.00" and "-$12.00" both reach here as "-12.00"
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
