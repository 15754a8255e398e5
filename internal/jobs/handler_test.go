package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/source"
)

type MockDocumentParser struct {
	ParseDocumentFunc func(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error)
}

func (m *MockDocumentParser) ParseDocument(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error) {
	return m.ParseDocumentFunc(ctx, text, docType)
}

type MockDocumentLoader struct {
	LoadFunc func(ctx context.Context, ref string) (*source.Document, error)
}

func (m *MockDocumentLoader) Load(ctx context.Context, ref string) (*source.Document, error) {
	return m.LoadFunc(ctx, ref)
}

func TestParseDocumentJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     ParseDocumentJob
		wantErr bool
	}{
		{name: "inline text", job: ParseDocumentJob{Text: "x", DocType: domain.DocTypeReceipt}},
		{name: "source uri", job: ParseDocumentJob{SourceURI: "gs://b/o", DocType: domain.DocTypeBankStatement}},
		{name: "neither", job: ParseDocumentJob{DocType: domain.DocTypeReceipt}, wantErr: true},
		{name: "both", job: ParseDocumentJob{Text: "x", SourceURI: "gs://b/o", DocType: domain.DocTypeReceipt}, wantErr: true},
		{name: "bad doc type", job: ParseDocumentJob{Text: "x", DocType: "invoice"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHandlerInlineText(t *testing.T) {
	want := domain.EmptyResult()
	parser := &MockDocumentParser{
		ParseDocumentFunc: func(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error) {
			assert.Equal(t, "TOTAL 5.00", text)
			assert.Equal(t, domain.DocTypeReceipt, docType)
			return want, nil
		},
	}

	job := &ParseDocumentJob{JobID: "j1", Text: "TOTAL 5.00", DocType: domain.DocTypeReceipt}
	require.NoError(t, NewParseHandler(parser, nil)(context.Background(), job))
	assert.Same(t, want, job.Result)
}

func TestParseHandlerLoadsSource(t *testing.T) {
	loader := &MockDocumentLoader{
		LoadFunc: func(ctx context.Context, ref string) (*source.Document, error) {
			assert.Equal(t, "gs://b/statement.txt", ref)
			return &source.Document{Name: "statement.txt", Text: "loaded"}, nil
		},
	}
	parser := &MockDocumentParser{
		ParseDocumentFunc: func(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error) {
			assert.Equal(t, "loaded", text)
			return domain.EmptyResult(), nil
		},
	}

	job := &ParseDocumentJob{JobID: "j2", SourceURI: "gs://b/statement.txt", DocType: domain.DocTypeBankStatement}
	require.NoError(t, NewParseHandler(parser, loader)(context.Background(), job))
	assert.NotNil(t, job.Result)
}

func TestParseHandlerErrors(t *testing.T) {
	parser := &MockDocumentParser{
		ParseDocumentFunc: func(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error) {
			return nil, errors.New("unsupported")
		},
	}

	t.Run("no loader", func(t *testing.T) {
		job := &ParseDocumentJob{JobID: "j3", SourceURI: "gs://b/o"}
		assert.ErrorContains(t, NewParseHandler(parser, nil)(context.Background(), job), "no loader")
	})

	t.Run("load failure", func(t *testing.T) {
		boom := errors.New("denied")
		loader := &MockDocumentLoader{
			LoadFunc: func(ctx context.Context, ref string) (*source.Document, error) { return nil, boom },
		}
		job := &ParseDocumentJob{JobID: "j4", SourceURI: "gs://b/o"}
		assert.ErrorIs(t, NewParseHandler(parser, loader)(context.Background(), job), boom)
	})

	t.Run("parse failure", func(t *testing.T) {
		job := &ParseDocumentJob{JobID: "j5", Text: "x"}
		err := NewParseHandler(parser, nil)(context.Background(), job)
		assert.ErrorContains(t, err, "parse job j5")
		assert.Nil(t, job.Result)
	})
}
