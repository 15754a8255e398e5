package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
)

// ParsingRunRow is one row of the parse-run audit table.
type ParsingRunRow struct {
	ParsingRunID string    `bigquery:"parsing_run_id"` // REQUIRED
	StartedTS    time.Time `bigquery:"started_ts"`     // REQUIRED
	DurationMS   int64     `bigquery:"duration_ms"`

	DocType string              `bigquery:"doc_type"` // REQUIRED
	Stage   string              `bigquery:"stage"`    // REQUIRED, tier that produced the result
	Mode    bigquery.NullString `bigquery:"mode"`     // NULLABLE, set when the model tier ran

	TransactionCount int64 `bigquery:"transaction_count"`
	FlaggedCount     int64 `bigquery:"flagged_count"`
	DroppedRecords   int64 `bigquery:"dropped_records"`
	Reliable         bool  `bigquery:"reliable"`

	Confidence  float64  `bigquery:"confidence"`
	TotalAmount *big.Rat `bigquery:"total_amount"` // NUMERIC
	Currency    string   `bigquery:"currency"`

	PeriodStart bigquery.NullDate `bigquery:"period_start"` // NULLABLE
	PeriodEnd   bigquery.NullDate `bigquery:"period_end"`   // NULLABLE
}
