package pipeline_test

import (
	"context"
	"sync"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/llm"
	"github.com/dvloznov/finance-parser/internal/pipeline"
)

// MockModelExtractor is a mock implementation of ModelExtractor for testing.
type MockModelExtractor struct {
	ExtractFunc func(ctx context.Context, text string, docType domain.DocType, allowed []string) llm.Extraction

	mu    sync.Mutex
	calls int
}

func (m *MockModelExtractor) Extract(ctx context.Context, text string, docType domain.DocType, allowed []string) llm.Extraction {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, text, docType, allowed)
	}
	return llm.Extraction{Mode: llm.SelectMode(docType, len(allowed))}
}

func (m *MockModelExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// recordingObserver keeps every summary it is given.
type recordingObserver struct {
	mu        sync.Mutex
	summaries []pipeline.RunSummary
}

func (o *recordingObserver) ObserveResult(ctx context.Context, s pipeline.RunSummary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.summaries = append(o.summaries, s)
}

func (o *recordingObserver) last() pipeline.RunSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summaries[len(o.summaries)-1]
}

var (
	_ pipeline.ModelExtractor = (*MockModelExtractor)(nil)
	_ pipeline.ResultObserver = (*recordingObserver)(nil)
)
