package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/llm"
)

// RunSummary describes one ParseDocument call for observers.
type RunSummary struct {
	RunID            string
	DocType          domain.DocType
	Stage            Stage
	Mode             llm.Mode
	TransactionCount int
	FlaggedCount     int
	DroppedRecords   int
	Reliable         bool
	Confidence       float64
	TotalAmount      decimal.Decimal
	Currency         string
	DateRange        domain.DateRange
	StartedAt        time.Time
	Duration         time.Duration
}

// ResultObserver receives a summary of every parse. Observers are write-only
// sinks: they cannot fail a parse.
type ResultObserver interface {
	ObserveResult(ctx context.Context, s RunSummary)
}

// LogObserver writes summaries to a zerolog logger.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) ObserveResult(ctx context.Context, s RunSummary) {
	o.log.Info().
		Str("run_id", s.RunID).
		Str("doc_type", string(s.DocType)).
		Str("stage", string(s.Stage)).
		Str("mode", string(s.Mode)).
		Int("transaction_count", s.TransactionCount).
		Int("flagged", s.FlaggedCount).
		Bool("reliable", s.Reliable).
		Float64("confidence", s.Confidence).
		Str("total_amount", s.TotalAmount.StringFixed(2)).
		Dur("duration", s.Duration).
		Msg("document parsed")
}

// MultiObserver fans a summary out to several observers in order.
type MultiObserver []ResultObserver

func (m MultiObserver) ObserveResult(ctx context.Context, s RunSummary) {
	for _, o := range m {
		if o != nil {
			o.ObserveResult(ctx, s)
		}
	}
}
