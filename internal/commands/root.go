// Package commands implements the finance-parser command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-parser/internal/app"
	"github.com/dvloznov/finance-parser/internal/buildinfo"
	"github.com/dvloznov/finance-parser/internal/config"
	"github.com/dvloznov/finance-parser/internal/logger"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "finance-parser",
		Short:   "Extract transactions from bank statements and receipts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to finance-parser.yaml (env vars override it)")

	rootCmd.AddCommand(
		newParseCommand(opts),
		newBatchCommand(opts),
		newAmountsCommand(opts),
		newRunsCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// setup loads configuration and wires the application for one command run.
// Logs go to the command's stderr so stdout stays machine readable.
func (o *rootOptions) setup(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewFromConfig(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	return app.New(cmd.Context(), cfg, log, cmd.InOrStdin())
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "finance-parser %s (commit: %s, built: %s)\n",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date)
			return err
		},
	}
}
