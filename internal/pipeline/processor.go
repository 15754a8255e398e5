package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/parser"
)

// Options configures a Processor. Every field is optional.
type Options struct {
	// Extractor enables the model tier. Nil disables it.
	Extractor ModelExtractor
	// Amounts defaults to WhitelistValidator.
	Amounts AmountValidator
	// Observer defaults to a LogObserver on Logger.
	Observer ResultObserver
	// Invoice defaults to an InvoiceFallback on the wall clock.
	Invoice *parser.InvoiceFallback
	Logger  zerolog.Logger
	// DefaultCurrency is reported when the text shows no currency symbol.
	DefaultCurrency string
}

// Processor turns document text into a ParsingResult by running the
// extraction tiers in order until one produces transactions.
// It holds no per-call state and is safe for concurrent use.
type Processor struct {
	pipeline        *Pipeline
	observer        ResultObserver
	log             zerolog.Logger
	defaultCurrency string
}

// NewProcessor wires the standard tier order:
// structured or receipt, regex fallback, model, validation, invoice fallback.
func NewProcessor(opts Options) *Processor {
	if opts.Amounts == nil {
		opts.Amounts = WhitelistValidator{}
	}
	if opts.Invoice == nil {
		opts.Invoice = parser.NewInvoiceFallback()
	}
	if opts.Observer == nil {
		opts.Observer = NewLogObserver(opts.Logger)
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = DefaultCurrency
	}

	pl := NewPipeline(
		&StructuredStep{Parser: parser.StructuredLineParser()},
		&ReceiptStep{},
		&RegexFallbackStep{Parser: parser.RegexFallbackParser()},
		&AIExtractStep{Extractor: opts.Extractor, Amounts: opts.Amounts},
		&ValidateReconcileStep{Amounts: opts.Amounts},
		&InvoiceFallbackStep{Fallback: opts.Invoice},
	)

	return &Processor{
		pipeline:        pl,
		observer:        opts.Observer,
		log:             opts.Logger,
		defaultCurrency: opts.DefaultCurrency,
	}
}

// ParseDocument extracts transactions from text. An empty result is not an
// error; the only error is an unsupported document type, returned as a
// *StageError.
func (p *Processor) ParseDocument(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error) {
	if docType != domain.DocTypeBankStatement && docType != domain.DocTypeReceipt {
		return nil, &StageError{Stage: StageDispatch, Err: fmt.Errorf("%w %q", ErrUnsupportedDocType, docType)}
	}

	start := time.Now()
	runID := uuid.New().String()
	log := p.log.With().Str("run_id", runID).Str("doc_type", string(docType)).Logger()

	state := &PipelineState{Text: text, DocType: docType, Stage: StageStart}
	if err := p.pipeline.Execute(ctx, state); err != nil {
		return nil, &StageError{Stage: state.Stage, Err: err}
	}

	result := p.buildResult(state)
	log.Debug().
		Str("stage", string(state.Stage)).
		Int("transaction_count", len(result.Transactions)).
		Float64("confidence", result.Confidence).
		Msg("extraction finished")

	p.observer.ObserveResult(ctx, RunSummary{
		RunID:            runID,
		DocType:          docType,
		Stage:            state.Stage,
		Mode:             state.Mode,
		TransactionCount: len(result.Transactions),
		FlaggedCount:     state.FlaggedCount,
		DroppedRecords:   state.Dropped,
		Reliable:         state.Reliable,
		Confidence:       result.Confidence,
		TotalAmount:      result.Metadata.TotalAmount,
		Currency:         result.Metadata.Currency,
		DateRange:        result.Metadata.DateRange,
		StartedAt:        start,
		Duration:         time.Since(start),
	})

	return result, nil
}

func (p *Processor) buildResult(state *PipelineState) *domain.ParsingResult {
	if len(state.Transactions) == 0 {
		return domain.EmptyResult()
	}

	subset := state.MetadataSubset
	if subset == nil {
		subset = state.Transactions
	}

	return &domain.ParsingResult{
		Transactions: state.Transactions,
		Confidence:   clamp01(state.Confidence),
		Metadata:     BuildMetadata(subset, DetectCurrency(state.Text, p.defaultCurrency)),
	}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
