package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-parser/internal/pipeline"
)

const (
	DefaultDataset = "finance"
	DefaultTable   = "parse_runs"

	insertTimeout = 30 * time.Second
)

// rowInserter is the subset of *bigquery.Inserter the recorder uses.
type rowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// RunRecorder appends a row per parse to a BigQuery table. It implements
// pipeline.ResultObserver; insert failures are logged and never reach the caller.
type RunRecorder struct {
	client   *bigquery.Client
	table    *bigquery.Table
	inserter rowInserter
	log      zerolog.Logger
}

// NewRunRecorder creates a BigQuery client for projectID. Call Close when done.
func NewRunRecorder(ctx context.Context, projectID, dataset, table string, log zerolog.Logger) (*RunRecorder, error) {
	if dataset == "" {
		dataset = DefaultDataset
	}
	if table == "" {
		table = DefaultTable
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRunRecorder: creating client: %w", err)
	}

	t := client.Dataset(dataset).Table(table)
	return &RunRecorder{
		client:   client,
		table:    t,
		inserter: t.Inserter(),
		log:      log,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *RunRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// EnsureTable creates the audit table from ParsingRunRow's schema if it does not exist.
func (r *RunRecorder) EnsureTable(ctx context.Context) error {
	_, err := r.table.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("EnsureTable: reading metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(ParsingRunRow{})
	if err != nil {
		return fmt.Errorf("EnsureTable: inferring schema: %w", err)
	}
	md := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "started_ts",
		},
	}
	if err := r.table.Create(ctx, md); err != nil {
		return fmt.Errorf("EnsureTable: creating table: %w", err)
	}
	r.log.Info().Str("table", r.table.FullyQualifiedName()).Msg("Created parse-run audit table")
	return nil
}

// ObserveResult implements pipeline.ResultObserver.
func (r *RunRecorder) ObserveResult(ctx context.Context, s pipeline.RunSummary) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	if err := r.inserter.Put(ctx, toParsingRunRow(s)); err != nil {
		r.log.Error().
			Err(err).
			Str("parsing_run_id", s.RunID).
			Msg("ObserveResult: inserting parse run")
	}
}

// ListRecentRuns returns the latest parse runs, newest first.
func (r *RunRecorder) ListRecentRuns(ctx context.Context, limit int) ([]*ParsingRunRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT *
		FROM `+"`%s.%s.%s`"+`
		ORDER BY started_ts DESC
		LIMIT @limit
	`, r.table.ProjectID, r.table.DatasetID, r.table.TableID))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentRuns: reading query: %w", err)
	}

	var runs []*ParsingRunRow
	for {
		var row ParsingRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentRuns: iterating: %w", err)
		}
		runs = append(runs, &row)
	}
	return runs, nil
}

func toParsingRunRow(s pipeline.RunSummary) *ParsingRunRow {
	row := &ParsingRunRow{
		ParsingRunID:     s.RunID,
		StartedTS:        s.StartedAt,
		DurationMS:       s.Duration.Milliseconds(),
		DocType:          string(s.DocType),
		Stage:            string(s.Stage),
		TransactionCount: int64(s.TransactionCount),
		FlaggedCount:     int64(s.FlaggedCount),
		DroppedRecords:   int64(s.DroppedRecords),
		Reliable:         s.Reliable,
		Confidence:       s.Confidence,
		TotalAmount:      s.TotalAmount.Rat(),
		Currency:         s.Currency,
		PeriodStart:      nullDate(s.DateRange.Start),
		PeriodEnd:        nullDate(s.DateRange.End),
	}
	if s.Mode != "" {
		row.Mode = bigquery.NullString{StringVal: string(s.Mode), Valid: true}
	}
	return row
}

// nullDate is NULL for empty or impossible dates such as 2024-02-31.
func nullDate(s string) bigquery.NullDate {
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: d, Valid: true}
}

var _ pipeline.ResultObserver = (*RunRecorder)(nil)
