package parser

import (
	"regexp"
	"strings"
)

// MaxMerchantLength caps merchant names, counted in runes.
const MaxMerchantLength = 50

var (
	companySuffix = regexp.MustCompile(`(?i)[\s,]+(inc|llc|corp|ltd|co)\.?$`)
	trailingCode  = regexp.MustCompile(`\s+#?\d+$`)
	regionCode    = regexp.MustCompile(`\s+[A-Z]{2}$`)
)

// ExtractMerchant derives a merchant name from a statement description by
// peeling trailing company suffixes, store numbers and two-letter region
// codes until none remain, e.g. "WALMART STORE 1234 TX" -> "WALMART STORE".
func ExtractMerchant(description string) string {
	desc := strings.TrimSpace(description)
	m := desc
	for {
		next := companySuffix.ReplaceAllString(m, "")
		next = trailingCode.ReplaceAllString(next, "")
		next = regionCode.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == m || next == "" {
			break
		}
		m = next
	}
	if m == "" {
		m = desc
	}
	return truncateRunes(m, MaxMerchantLength)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
