package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it runs one batch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isolatedaudit",
		Short: "Measure the performance cost of third-party URL patterns",
		Long: `isolatedaudit launches a fresh browser for every run, blocks a single URL
pattern and records the page's performance metrics. The unblocked baseline is
always measured first, so each pattern's rows can be compared against it.

Examples:
  # Five runs per pattern against the default page
  isolatedaudit

  # Three runs, abort on the first failed run
  isolatedaudit --url https://example.com --numberOfRuns 3 --failure-policy abort

  # Use a configuration file
  isolatedaudit -c config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBatchCmd,
	}

	cmd.PersistentFlags().StringP(flagConfig, "c", "",
		"Configuration file path (default: config.yaml in the current or XDG config directory)")
	cmd.PersistentFlags().String(flagLogLevel, "",
		"Log level: debug, info, warn, error")

	cmd.Flags().Int(flagNumberOfRuns, config.DefaultRunNumberOfRuns,
		"Number of audits per pattern")
	cmd.Flags().String(flagURL, config.DefaultRunURL,
		"Page to audit")
	cmd.Flags().String(flagFilename, "",
		"CSV output path (default: results/isolated_n{runs}_{url}-{unix millis}.csv)")
	cmd.Flags().String(flagFailurePolicy, config.DefaultRunFailurePolicy,
		"What a failed run does to the batch: skip or abort")
	cmd.Flags().String(flagBackend, config.DefaultAuditBackend,
		"Audit backend: cdp or lighthouse")
	cmd.Flags().Bool(flagHeadless, config.DefaultBrowserHeadless,
		"Run the browser without a window")

	cmd.AddCommand(NewHistoryCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, errInterrupted) {
			fmt.Fprintln(os.Stderr, "interrupted; partial results were saved")
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
