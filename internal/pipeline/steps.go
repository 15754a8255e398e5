package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/llm"
	"github.com/dvloznov/finance-parser/internal/parser"
)

// Stage names a point in the extraction state machine.
type Stage string

const (
	StageStart             Stage = "start"
	StageDispatch          Stage = "dispatch"
	StageStructured        Stage = "structured"
	StageReceipt           Stage = "receipt"
	StageRegexFallback     Stage = "regex_fallback"
	StageAIExtract         Stage = "ai_extract"
	StageValidateReconcile Stage = "validate_reconcile"
	StageInvoiceFallback   Stage = "invoice_fallback"
	StageDone              Stage = "done"
)

// PipelineStep represents a single tier of the extraction pipeline.
// A step that finds transactions already present leaves the state alone.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state of one ParseDocument call.
type PipelineState struct {
	Text    string
	DocType domain.DocType

	// Stage is the tier that produced Transactions, or StageStart if none did.
	Stage Stage
	Mode  llm.Mode

	Allowed      []string
	Transactions []domain.Transaction
	Confidence   float64

	// MetadataSubset is what aggregates are computed over. Nil means all
	// Transactions.
	MetadataSubset []domain.Transaction
	FlaggedCount   int
	Reliable       bool
	Dropped        int
}

func (s *PipelineState) found() bool { return len(s.Transactions) > 0 }

// StructuredStep runs the structured line parser over bank statements.
type StructuredStep struct {
	Parser *parser.LineParser
}

func (s *StructuredStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.DocType != domain.DocTypeBankStatement || state.found() {
		return nil
	}
	res := s.Parser.Parse(state.Text)
	if len(res.Transactions) == 0 {
		return nil
	}
	state.Transactions = res.Transactions
	state.Confidence = parser.ScoreConfidence(res.Transactions, res.Lines)
	state.Stage = StageStructured
	return nil
}

// ReceiptStep runs the receipt parser over receipts.
type ReceiptStep struct{}

func (s *ReceiptStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.DocType != domain.DocTypeReceipt || state.found() {
		return nil
	}
	res := parser.ParseReceipt(state.Text)
	if len(res.Transactions) == 0 {
		return nil
	}
	state.Transactions = res.Transactions
	state.Confidence = res.Confidence
	state.Stage = StageReceipt
	return nil
}

// RegexFallbackStep runs the looser line parser when the structured pass
// found nothing. Bank statements only.
type RegexFallbackStep struct {
	Parser *parser.LineParser
}

func (s *RegexFallbackStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.DocType != domain.DocTypeBankStatement || state.found() {
		return nil
	}
	res := s.Parser.Parse(state.Text)
	if len(res.Transactions) == 0 {
		return nil
	}
	state.Transactions = res.Transactions
	state.Confidence = parser.ScoreConfidence(res.Transactions, res.Lines)
	state.Stage = StageRegexFallback
	return nil
}

// AIExtractStep asks the model when every deterministic tier came back
// empty. A nil Extractor means no model is configured and the step is skipped.
type AIExtractStep struct {
	Extractor ModelExtractor
	Amounts   AmountValidator
}

func (s *AIExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Extractor == nil || state.found() || strings.TrimSpace(state.Text) == "" {
		return nil
	}
	if state.DocType == domain.DocTypeBankStatement {
		state.Allowed = s.Amounts.ExtractAmounts(state.Text)
	}

	out := s.Extractor.Extract(ctx, state.Text, state.DocType, state.Allowed)
	state.Mode = out.Mode
	state.Dropped = out.Dropped
	if len(out.Transactions) == 0 {
		return nil
	}
	state.Transactions = out.Transactions
	state.Confidence = AIConfidence
	state.Stage = StageAIExtract
	return nil
}

// ValidateReconcileStep flags model transactions whose amounts are not
// printed in the statement and decides which subset metadata is built from.
type ValidateReconcileStep struct {
	Amounts AmountValidator
}

func (s *ValidateReconcileStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Stage != StageAIExtract || state.DocType != domain.DocTypeBankStatement || len(state.Allowed) == 0 {
		return nil
	}

	annotated := s.Amounts.Validate(state.Transactions, state.Allowed)
	valid := make([]domain.Transaction, 0, len(annotated))
	for _, tx := range annotated {
		if !tx.NeedsAmountReview {
			valid = append(valid, tx)
		}
	}

	state.Transactions = annotated
	state.FlaggedCount = len(annotated) - len(valid)
	state.Reliable = IsValidationReliable(len(state.Allowed), state.FlaggedCount, len(annotated))
	if state.Reliable {
		state.MetadataSubset = valid
	}
	return nil
}

// InvoiceFallbackStep synthesises one transaction for invoice-shaped text
// when nothing else worked.
type InvoiceFallbackStep struct {
	Fallback *parser.InvoiceFallback
}

func (s *InvoiceFallbackStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.found() {
		return nil
	}
	tx, ok := s.Fallback.Parse(state.Text)
	if !ok {
		return nil
	}
	state.Transactions = []domain.Transaction{tx}
	state.Confidence = InvoiceFallbackConfidence
	state.Stage = StageInvoiceFallback
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
