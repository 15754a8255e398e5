package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/export"
)

func newParseCommand(root *rootOptions) *cobra.Command {
	var docType string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "parse <file|gs://bucket/object|->",
		Short: "Extract transactions from a document's text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := domain.ParseDocType(docType)
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.Loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result, err := a.Processor.ParseDocument(cmd.Context(), doc.Text, dt)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return export.Write(w, f, result)
			})
		},
	}

	cmd.Flags().StringVarP(&docType, "type", "t", string(domain.DocTypeBankStatement), "document type: bank_statement or receipt")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "output format: json, csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// writeOutput sends write's output to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output %q: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output %q: %w", path, err)
	}
	return nil
}
