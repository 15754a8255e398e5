package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRunsCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent parse runs from the BigQuery audit table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Recorder == nil {
				return errors.New("audit is disabled; set audit.enabled or AUDIT_ENABLED=true")
			}

			runs, err := a.Recorder.ListRecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tDOC TYPE\tSTAGE\tTXNS\tFLAGGED\tCONFIDENCE\tTOTAL")
			for _, r := range runs {
				total := ""
				if r.TotalAmount != nil {
					total = r.TotalAmount.FloatString(2) + " " + r.Currency
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\t%s\n",
					r.StartedTS.Format("2006-01-02 15:04:05"), r.DocType, r.Stage,
					r.TransactionCount, r.FlaggedCount, r.Confidence, total)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")

	return cmd
}
