package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/source"
)

// DocumentParser runs the tiered extraction over document text.
type DocumentParser interface {
	ParseDocument(ctx context.Context, text string, docType domain.DocType) (*domain.ParsingResult, error)
}

// DocumentLoader resolves a source reference to text.
type DocumentLoader interface {
	Load(ctx context.Context, ref string) (*source.Document, error)
}

// NewParseHandler returns a JobHandler that loads the job's document when it
// carries a SourceURI and parses it. loader may be nil if only inline text is accepted.
func NewParseHandler(parser DocumentParser, loader DocumentLoader) JobHandler {
	return func(ctx context.Context, job *ParseDocumentJob) error {
		text := job.Text
		if job.SourceURI != "" {
			if loader == nil {
				return fmt.Errorf("parse job %s: source_uri given but no loader configured", job.JobID)
			}
			doc, err := loader.Load(ctx, job.SourceURI)
			if err != nil {
				return fmt.Errorf("parse job %s: %w", job.JobID, err)
			}
			text = doc.Text
		}

		result, err := parser.ParseDocument(ctx, text, job.DocType)
		if err != nil {
			return fmt.Errorf("parse job %s: %w", job.JobID, err)
		}
		job.Result = result
		return nil
	}
}
