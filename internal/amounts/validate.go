package amounts

import (
	"regexp"

	"github.com/dvloznov/finance-parser/internal/domain"
)

// summaryLinePattern catches statement rows that restate totals rather than
// record a movement of money.
var summaryLinePattern = regexp.MustCompile(
	`(?i)\b(sub\s?total|total|balance|minimum payment|min\.? payment|payment due|credit limit|available credit|statement closing|closing date|interest charged|fees charged)\b`,
)

// ValidateTransactions checks each transaction's amount against the whitelist
// of amounts printed in the source text. Rows whose amount is absent from the
// whitelist, or which look like summary lines, come back with
// NeedsAmountReview set. The input slice is not modified.
func ValidateTransactions(txs []domain.Transaction, allowed []string) []domain.Transaction {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}

	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		_, ok := set[Canonical(tx.Amount)]
		tx.NeedsAmountReview = !ok || looksLikeSummary(tx)
		out[i] = tx
	}
	return out
}

func looksLikeSummary(tx domain.Transaction) bool {
	return summaryLinePattern.MatchString(tx.Description) || summaryLinePattern.MatchString(tx.Merchant)
}
