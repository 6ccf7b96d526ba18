package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/gdl-match-report/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// dash renders empty values as "—".
func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// PrintRunSummary prints a one-line header for a build run.
func PrintRunSummary(w io.Writer, r model.Run) {
	fmt.Fprintf(w, "\nGame: %s  |  GDL: %s  |  Playclock: %s  |  Range: [%d, %d)  |  Rows: %d  |  %s\n\n",
		r.GameName, r.GDLVersion, r.PlayClock, r.StartIndex, r.EndIndex, r.Rows, r.CSVPath)
}

// PrintRecordTable prints one line per match record.
func PrintRecordTable(w io.Writer, recs []model.MatchRecord) {
	table := newTable(w)
	table.Header("#", "MATCH", "SIGHT_OF", "STEPS", "ROLE_1", "PLAYER_1", "SCORE_1", "ROLE_2", "PLAYER_2", "SCORE_2")
	for _, r := range recs {
		table.Append(
			strconv.Itoa(r.Index),
			dash(r.MatchID),
			dash(r.SightOf),
			dash(r.NumStepsField()),
			dash(r.Role1),
			dash(r.Player1),
			dash(r.Player1Score),
			dash(r.Role2),
			dash(r.Player2),
			dash(r.Player2Score),
		)
	}
	table.Render()
}

// PrintRunTable prints stored runs, newest first as given. now anchors the
// relative AGE column.
func PrintRunTable(w io.Writer, runs []model.Run, now time.Time) {
	table := newTable(w)
	table.Header("ID", "AGE", "GAME", "GDL", "PLAYCLOCK", "RANGE", "ROWS", "CSV")
	for _, r := range runs {
		age := r.CreatedAt
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			age = humanize.RelTime(t, now, "ago", "from now")
		}
		table.Append(
			strconv.FormatInt(r.ID, 10),
			age,
			r.GameName,
			r.GDLVersion,
			r.PlayClock,
			fmt.Sprintf("[%d, %d)", r.StartIndex, r.EndIndex),
			humanize.Comma(int64(r.Rows)),
			r.CSVPath,
		)
	}
	table.Render()
}

// PrintStandingsTable prints per-player results. If focus is non-empty, that
// player's row is marked with ">".
func PrintStandingsTable(w io.Writer, standings []model.PlayerStanding, focus string) {
	table := newTable(w)
	table.Header(" ", "PLAYER", "MATCHES", "W", "D", "L", "WIN%", "AVG SCORE")
	for _, s := range standings {
		marker := " "
		if focus != "" && s.Player == focus {
			marker = ">"
		}
		table.Append(
			marker,
			s.Player,
			strconv.Itoa(s.Matches),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Draws),
			strconv.Itoa(s.Losses),
			fmt.Sprintf("%.0f%%", s.WinPct()),
			fmt.Sprintf("%.1f", s.AvgScore),
		)
	}
	table.Render()
}

// PrintRunDirTable prints directories found by a scan.
func PrintRunDirTable(w io.Writer, dirs []model.RunDir) {
	table := newTable(w)
	table.Header("DIR", "INDEX", "PERSPECTIVE", "FINALSTATE")
	for _, d := range dirs {
		has := "missing"
		if d.HasFinalState {
			has = "yes"
		}
		table.Append(d.Name, strconv.Itoa(d.Index), dash(d.Perspective), has)
	}
	table.Render()
}

// PrintRawTable prints arbitrary query results.
func PrintRawTable(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
}
