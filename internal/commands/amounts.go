package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-parser/internal/amounts"
)

func newAmountsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "amounts <file|gs://bucket/object|->",
		Short: "Print the two-decimal amounts found in a document, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.Loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, amt := range amounts.ExtractAmountsFromText(doc.Text) {
				if _, err := fmt.Fprintln(out, amt); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
