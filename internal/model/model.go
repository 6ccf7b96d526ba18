package model

import "strconv"

// Columns is the CSV header, in output order.
var Columns = []string{
	"match_id",
	"game_name",
	"gdl_version",
	"timestamp",
	"startclock",
	"playclock",
	"sight_of",
	"num_steps",
	"role_1",
	"player_1",
	"player_1_score",
	"role_2",
	"player_2",
	"player_2_score",
}

// ---- Per-file record extracted by the parser ----

// MatchRecord is one row of the report. GameName, GDLVersion and PlayClock
// are run constants stamped on by the builder; the rest comes from the file.
type MatchRecord struct {
	MatchID    string
	GameName   string
	GDLVersion string
	Timestamp  string
	StartClock string
	PlayClock  string
	SightOf    string
	NumSteps   int
	HasHistory bool // false renders num_steps as ""

	Role1        string
	Player1      string
	Player1Score string
	Role2        string
	Player2      string
	Player2Score string

	// Provenance, not part of the CSV.
	Index       int
	SourcePath  string
	Fingerprint string
}

// NumStepsField returns num_steps as it appears in the CSV.
func (r MatchRecord) NumStepsField() string {
	if !r.HasHistory {
		return ""
	}
	return strconv.Itoa(r.NumSteps)
}

// Row returns the record's CSV fields in Columns order.
func (r MatchRecord) Row() []string {
	return []string{
		r.MatchID,
		r.GameName,
		r.GDLVersion,
		r.Timestamp,
		r.StartClock,
		r.PlayClock,
		r.SightOf,
		r.NumStepsField(),
		r.Role1,
		r.Player1,
		r.Player1Score,
		r.Role2,
		r.Player2,
		r.Player2Score,
	}
}

// ---- Stored aggregates ----

// Run describes one build invocation recorded in the match store.
type Run struct {
	ID         int64
	CSVPath    string
	CreatedAt  string // RFC3339, UTC
	GameName   string
	GDLVersion string
	PlayClock  string
	StartIndex int
	EndIndex   int
	Rows       int
}

// PlayerStanding is a per-player aggregate over stored matches.
type PlayerStanding struct {
	Player   string
	Matches  int
	Wins     int
	Draws    int
	Losses   int
	AvgScore float64
}

// WinPct returns wins as a percentage of matches, counting draws as half.
func (p PlayerStanding) WinPct() float64 {
	if p.Matches == 0 {
		return 0
	}
	return 100.0 * (float64(p.Wins) + 0.5*float64(p.Draws)) / float64(p.Matches)
}

// RunDir is a directory discovered under an output dir that looks like a
// harness run: {prefix}{Index} or {prefix}{Index}-{Perspective}.
type RunDir struct {
	Name          string
	Index         int
	Perspective   string
	HasFinalState bool
}
