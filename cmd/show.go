package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/gdl-match-report/internal/report"
	"github.com/pable/gdl-match-report/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the matches recorded for a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run id %q is not an integer", args[0])
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	run, err := db.GetRun(runID)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run with id %d\n", runID)
		return nil
	}

	recs, err := db.GetRunMatches(runID)
	if err != nil {
		return fmt.Errorf("get matches: %w", err)
	}

	report.PrintRunSummary(os.Stdout, *run)
	report.PrintRecordTable(os.Stdout, recs)
	return nil
}
