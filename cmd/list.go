package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/gdl-match-report/internal/report"
	"github.com/pable/gdl-match-report/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored build runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'matchreport build --store ...' to add one.")
		return nil
	}
	report.PrintRunTable(os.Stdout, runs, time.Now())
	return nil
}
