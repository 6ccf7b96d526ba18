package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/gdl-match-report/internal/report"
	"github.com/pable/gdl-match-report/internal/storage"
)

var (
	summaryGame   string
	summaryPlayer string
)

// summaryCmd is the cobra command for per-player standings across stored matches.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-player standings across stored matches",
	Long: `Aggregate every stored match by player name: matches played, wins,
draws, losses (by comparing the two reward values) and average reward.
Matches missing either reward count as played but not toward W/D/L.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryGame, "game", "", "only matches of this game name")
	summaryCmd.Flags().StringVar(&summaryPlayer, "player", "", "highlight player name")
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	standings, err := db.PlayerStandings(summaryGame)
	if err != nil {
		return fmt.Errorf("player standings: %w", err)
	}
	if len(standings) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'matchreport build --store ...' to add some.")
		return nil
	}

	title := "all games"
	if summaryGame != "" {
		title = summaryGame
	}
	fmt.Fprintf(os.Stdout, "\n=== Standings (%s) ===\n\n", title)
	report.PrintStandingsTable(os.Stdout, standings, summaryPlayer)
	return nil
}
