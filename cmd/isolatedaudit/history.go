package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aleister1102/isolatedaudit/internal/datastore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batches, newest first",
		Long: `History lists the batches stored in the run history database
(storage.history_db_path or ISOLATEDAUDIT_HISTORY_DB).`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of batches to list")
	cmd.Flags().String("db", "", "History database path (overrides the configuration)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := cfg.StorageConfig.HistoryDBPath
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		path = db
	}
	if path == "" {
		return fmt.Errorf("no history database configured; set storage.history_db_path or --db")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	store, err := datastore.NewHistoryStore(path, zerolog.Nop())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	batches, err := store.ListBatches(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printBatches(cmd.OutOrStdout(), batches)
}

func printBatches(out io.Writer, batches []datastore.BatchEntry) error {
	if len(batches) == 0 {
		_, err := fmt.Fprintln(out, "No batches recorded.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tURL\tRUNS\tPATTERNS\tROWS\tFAILED\tCSV")
	for _, b := range batches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			b.ID,
			b.StartedAt.Local().Format("2006-01-02 15:04:05"),
			b.Status,
			b.URL,
			b.NumberOfRuns,
			len(b.Patterns),
			b.Rows,
			b.Failures,
			b.CSVPath,
		)
	}
	return tw.Flush()
}
