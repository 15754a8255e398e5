package pipeline

import (
	"context"

	"github.com/dvloznov/finance-parser/internal/amounts"
	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/llm"
)

// ModelExtractor provides the model-backed tier.
// This interface enables swapping the model path out in tests.
type ModelExtractor interface {
	Extract(ctx context.Context, text string, docType domain.DocType, allowed []string) llm.Extraction
}

// AmountValidator builds the amount whitelist for a document and checks
// transactions against it.
type AmountValidator interface {
	ExtractAmounts(text string) []string
	Validate(txs []domain.Transaction, allowed []string) []domain.Transaction
}

// WhitelistValidator is the AmountValidator backed by the amounts package.
type WhitelistValidator struct{}

func (WhitelistValidator) ExtractAmounts(text string) []string {
	return amounts.ExtractAmountsFromText(text)
}

func (WhitelistValidator) Validate(txs []domain.Transaction, allowed []string) []domain.Transaction {
	return amounts.ValidateTransactions(txs, allowed)
}
