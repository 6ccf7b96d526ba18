package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/gdl-match-report/internal/report"
	"github.com/pable/gdl-match-report/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the match store",
	Long: `Run an arbitrary SQL query against the match store and print results as a table.

Schema overview:
  runs(id, csv_path, created_at, game_name, gdl_version, playclock,
    start_index, end_index, row_count)
  matches(fingerprint, run_id, match_index, source_path, match_id, game_name,
    gdl_version, timestamp, startclock, playclock, sight_of, num_steps,
    role_1, player_1, player_1_score, role_2, player_2, player_2_score)

Scores are stored as TEXT. Cast to compare: WHERE CAST(player_1_score AS REAL) > 50`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "(no rows)")
		return nil
	}

	report.PrintRawTable(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
