package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pable/gdl-match-report/internal/model"
)

// InsertRun records a build run and returns its id.
func (db *DB) InsertRun(run model.Run) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO runs(csv_path, created_at, game_name, gdl_version, playclock, start_index, end_index, row_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CSVPath, run.CreatedAt, run.GameName, run.GDLVersion, run.PlayClock,
		run.StartIndex, run.EndIndex, run.Rows,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertMatches bulk-inserts the records of a run in a transaction. Uses
// INSERT OR REPLACE keyed by fingerprint for idempotency.
func (db *DB) InsertMatches(runID int64, recs []model.MatchRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO matches(
			fingerprint, run_id, match_index, source_path,
			match_id, game_name, gdl_version, timestamp, startclock, playclock, sight_of,
			num_steps, role_1, player_1, player_1_score, role_2, player_2, player_2_score
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if r.Fingerprint == "" {
			return fmt.Errorf("insert match %d: missing fingerprint", r.Index)
		}
		var steps sql.NullInt64
		if r.HasHistory {
			steps = sql.NullInt64{Int64: int64(r.NumSteps), Valid: true}
		}
		_, err = stmt.Exec(
			r.Fingerprint, runID, r.Index, r.SourcePath,
			r.MatchID, r.GameName, r.GDLVersion, r.Timestamp, r.StartClock, r.PlayClock, r.SightOf,
			steps, r.Role1, r.Player1, r.Player1Score, r.Role2, r.Player2, r.Player2Score,
		)
		if err != nil {
			return fmt.Errorf("insert match %d: %w", r.Index, err)
		}
	}
	return tx.Commit()
}

// MatchExists returns true if a match file with the given fingerprint is already stored.
func (db *DB) MatchExists(fingerprint string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE fingerprint = ?", fingerprint).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const runColumns = `id, csv_path, created_at, game_name, gdl_version, playclock, start_index, end_index, row_count`

func scanRun(s interface{ Scan(...any) error }) (model.Run, error) {
	var r model.Run
	err := s.Scan(&r.ID, &r.CSVPath, &r.CreatedAt, &r.GameName, &r.GDLVersion, &r.PlayClock,
		&r.StartIndex, &r.EndIndex, &r.Rows)
	return r, err
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns() ([]model.Run, error) {
	rows, err := db.conn.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns the run with the given id, or nil if none exists.
func (db *DB) GetRun(id int64) (*model.Run, error) {
	r, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRunMatches returns a run's records in index order.
func (db *DB) GetRunMatches(runID int64) ([]model.MatchRecord, error) {
	rows, err := db.conn.Query(`
		SELECT fingerprint, match_index, source_path,
			match_id, game_name, gdl_version, timestamp, startclock, playclock, sight_of,
			num_steps, role_1, player_1, player_1_score, role_2, player_2, player_2_score
		FROM matches WHERE run_id = ? ORDER BY match_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		var r model.MatchRecord
		var steps sql.NullInt64
		if err := rows.Scan(&r.Fingerprint, &r.Index, &r.SourcePath,
			&r.MatchID, &r.GameName, &r.GDLVersion, &r.Timestamp, &r.StartClock, &r.PlayClock, &r.SightOf,
			&steps, &r.Role1, &r.Player1, &r.Player1Score, &r.Role2, &r.Player2, &r.Player2Score); err != nil {
			return nil, err
		}
		r.HasHistory = steps.Valid
		r.NumSteps = int(steps.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlayerStandings aggregates results per player name across stored matches,
// optionally restricted to one game. A match counts toward W/D/L only when
// both scores are present.
func (db *DB) PlayerStandings(game string) ([]model.PlayerStanding, error) {
	rows, err := db.conn.Query(`
		WITH sides AS (
			SELECT game_name, player_1 AS player, player_1_score AS own, player_2_score AS opp
			FROM matches WHERE player_1 <> ''
			UNION ALL
			SELECT game_name, player_2, player_2_score, player_1_score
			FROM matches WHERE player_2 <> ''
		)
		SELECT player,
			COUNT(*),
			SUM(CASE WHEN own <> '' AND opp <> '' AND CAST(own AS REAL) > CAST(opp AS REAL) THEN 1 ELSE 0 END),
			SUM(CASE WHEN own <> '' AND opp <> '' AND CAST(own AS REAL) = CAST(opp AS REAL) THEN 1 ELSE 0 END),
			SUM(CASE WHEN own <> '' AND opp <> '' AND CAST(own AS REAL) < CAST(opp AS REAL) THEN 1 ELSE 0 END),
			COALESCE(AVG(CASE WHEN own <> '' THEN CAST(own AS REAL) END), 0)
		FROM sides
		WHERE ? = '' OR game_name = ?
		GROUP BY player
		ORDER BY 3 DESC, 2 DESC, player`, game, game)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerStanding
	for rows.Next() {
		var s model.PlayerStanding
		if err := rows.Scan(&s.Player, &s.Matches, &s.Wins, &s.Draws, &s.Losses, &s.AvgScore); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and rows
// rendered as strings. NULL renders as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch v := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(v)
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
