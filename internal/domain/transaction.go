package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DocType identifies which extraction path a document takes.
type DocType string

const (
	DocTypeBankStatement DocType = "bank_statement"
	DocTypeReceipt       DocType = "receipt"
)

// ParseDocType converts user input into a DocType.
func ParseDocType(s string) (DocType, error) {
	switch DocType(s) {
	case DocTypeBankStatement, DocTypeReceipt:
		return DocType(s), nil
	default:
		return "", fmt.Errorf("ParseDocType: unsupported document type %q", s)
	}
}

// Direction is the money flow of a transaction relative to the account holder.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Source records which extraction tier produced a transaction.
type Source string

const (
	SourceStructured            Source = "structured"
	SourceRegexFallback         Source = "regex_fallback"
	SourceAIInferred            Source = "ai_inferred"
	SourceInvoiceSingleFallback Source = "invoice_single_fallback"
)

// Transaction is one extracted money movement.
// Amount is always a positive magnitude; the sign lives in Direction.
type Transaction struct {
	Date        string          `json:"date"` // YYYY-MM-DD, not guaranteed to be a valid calendar date
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
	Type        string          `json:"type,omitempty"`
	Source      Source          `json:"source"`
	RawLine     string          `json:"raw_line,omitempty"`

	// NeedsAmountReview is set by whitelist validation on model-inferred rows.
	NeedsAmountReview bool `json:"needs_amount_review,omitempty"`
}

// DateRange spans the earliest and latest transaction dates. Empty strings when unknown.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Metadata summarises the transactions a result's aggregates were computed over.
type Metadata struct {
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
	DateRange        DateRange       `json:"dateRange"`
	Currency         string          `json:"currency,omitempty"`
}

// ParsingResult is the output of one document parse.
type ParsingResult struct {
	Transactions []Transaction `json:"transactions"`
	Confidence   float64       `json:"confidence"`
	Metadata     Metadata      `json:"metadata"`
}

// EmptyResult returns the canonical "nothing found" result.
func EmptyResult() *ParsingResult {
	return &ParsingResult{
		Transactions: []Transaction{},
		Confidence:   0,
		Metadata: Metadata{
			TotalAmount: decimal.Zero,
		},
	}
}
