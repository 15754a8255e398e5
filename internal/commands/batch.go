package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/export"
	"github.com/dvloznov/finance-parser/internal/jobs"
	"github.com/dvloznov/finance-parser/internal/jobs/inmemory"
)

type batchOutcome struct {
	ref    string
	output string
	count  int
	err    error
}

func newBatchCommand(root *rootOptions) *cobra.Command {
	var docType string
	var format string
	var outDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <ref>...",
		Short: "Parse many documents concurrently, writing one output file per document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := domain.ParseDocType(docType)
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			a, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if workers <= 0 {
				workers = a.Config.Server.Workers
			}

			// Jobs are tracked by argument position so a ref given twice gets
			// its own output file and outcome.
			outputs := outputNames(args, string(f))
			outcomes := make([]*batchOutcome, len(args))
			position := make(map[string]int, len(args))
			for i := range args {
				position[batchJobID(i)] = i
			}
			var wg sync.WaitGroup

			parse := jobs.NewParseHandler(a.Processor, a.Loader)
			handler := func(ctx context.Context, job *jobs.ParseDocumentJob) error {
				defer wg.Done()

				i := position[job.JobID]
				outcome := &batchOutcome{ref: job.SourceURI, output: filepath.Join(outDir, outputs[i])}
				err := parse(ctx, job)
				if err == nil {
					outcome.count = len(job.Result.Transactions)
					err = writeOutput(nil, outcome.output, func(w io.Writer) error {
						return export.Write(w, f, job.Result)
					})
				}
				outcome.err = err
				outcomes[i] = outcome
				return err
			}

			queue := inmemory.NewQueue(len(args), workers, inmemory.NewStore(), a.Log)
			ctx := cmd.Context()
			if err := queue.Start(ctx, handler); err != nil {
				return err
			}

			for i, ref := range args {
				wg.Add(1)
				job := &jobs.ParseDocumentJob{JobID: batchJobID(i), SourceURI: ref, DocType: dt}
				if err := queue.Publish(ctx, job); err != nil {
					wg.Done()
					outcomes[i] = &batchOutcome{ref: ref, err: err}
				}
			}
			wg.Wait()
			if err := queue.Stop(ctx); err != nil {
				return err
			}

			return reportBatch(cmd, args, outcomes)
		},
	}

	cmd.Flags().StringVarP(&docType, "type", "t", string(domain.DocTypeBankStatement), "document type: bank_statement or receipt")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "output format: json, csv or xlsx")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for output files")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent documents (default server.workers)")

	return cmd
}

func batchJobID(i int) string {
	return "batch-" + strconv.Itoa(i)
}

// outputNames returns a unique file name per ref, in argument order, derived
// from each ref's base name.
func outputNames(refs []string, ext string) []string {
	names := make([]string, len(refs))
	seen := make(map[string]int)
	for i, ref := range refs {
		base := filepath.Base(ref)
		if ref == "-" {
			base = "stdin"
		}
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		seen[stem]++
		if n := seen[stem]; n > 1 {
			stem = fmt.Sprintf("%s-%d", stem, n)
		}
		names[i] = stem + "." + ext
	}
	return names
}

func reportBatch(cmd *cobra.Command, refs []string, outcomes []*batchOutcome) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tSTATUS\tTXNS\tOUTPUT")

	failed := 0
	for i, ref := range refs {
		o := outcomes[i]
		if o == nil || o.err != nil {
			failed++
			msg := "not run"
			if o != nil {
				msg = o.err.Error()
			}
			fmt.Fprintf(tw, "%s\tfailed\t-\t%s\n", ref, msg)
			continue
		}
		fmt.Fprintf(tw, "%s\tok\t%d\t%s\n", ref, o.count, o.output)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(refs))
	}
	return nil
}
