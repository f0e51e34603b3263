// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/flashcard-engine/internal/history"
	"github.com/pdiddy/flashcard-engine/pkg/types"
)

var errHistoryDisabled = errors.New("run history is disabled: set history_db in the config file or pass --history-db")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded flashcard runs",
	Long: `History lists the runs recorded in the SQLite ledger, newest first.
Recording is enabled by setting history_db (or --history-db); every run that
located a document is recorded with its final state and output file.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	if cfg.HistoryDB == "" {
		return errHistoryDisabled
	}

	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		return store.ExportYAML(cmd.Context(), os.Stdout, limit)
	}

	records, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	formatHistory(os.Stdout, records)
	return nil
}

func formatHistory(w io.Writer, records []types.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-8s  %-6s  %-30s  %s\n", "Started", "State", "Chunks", "Document", "Output / Reason")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range records {
		doc := r.Document.Name
		if len(doc) > 30 {
			doc = doc[:27] + "..."
		}
		detail := r.OutputPath
		if r.State == types.StateFailed {
			detail = fmt.Sprintf("%s: %s", r.FailedStage, r.Reason)
		}
		fmt.Fprintf(w, "%-20s  %-8s  %-6d  %-30s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.State, r.Chunks, doc, detail)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(records))
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().Bool("yaml", false, "print runs as YAML")

	rootCmd.AddCommand(historyCmd)
}
