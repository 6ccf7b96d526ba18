package storage

import (
	"testing"

	"github.com/pable/gdl-match-report/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertRun(t *testing.T, db *DB, game string, recs []model.MatchRecord) int64 {
	t.Helper()
	id, err := db.InsertRun(model.Run{
		CSVPath: "/tmp/out/testOutput_1.csv", CreatedAt: "2025-01-01T00:00:00Z",
		GameName: game, GDLVersion: "2", PlayClock: "15", StartIndex: 0, EndIndex: 10, Rows: len(recs),
	})
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if err := db.InsertMatches(id, recs); err != nil {
		t.Fatalf("InsertMatches: %v", err)
	}
	return id
}

func match(fp, game, p1, s1, p2, s2 string, idx int) model.MatchRecord {
	return model.MatchRecord{
		Fingerprint: fp, Index: idx, SourcePath: "/tmp/out/g/finalstate.xml",
		GameName: game, MatchID: fp, Role1: "white", Player1: p1, Player1Score: s1,
		Role2: "black", Player2: p2, Player2Score: s2,
	}
}

func TestRunInsertAndList(t *testing.T) {
	db := openMemDB(t)

	id1 := insertRun(t, db, "ttt", nil)
	id2 := insertRun(t, db, "chess", nil)

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].ID != id2 || runs[1].ID != id1 {
		t.Errorf("unexpected order: %d, %d", runs[0].ID, runs[1].ID)
	}

	r, err := db.GetRun(id1)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r == nil || r.GameName != "ttt" || r.EndIndex != 10 {
		t.Errorf("GetRun mismatch: %+v", r)
	}

	missing, err := db.GetRun(999)
	if err != nil {
		t.Fatalf("GetRun missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown run id")
	}
}

func TestMatchesRoundTrip(t *testing.T) {
	db := openMemDB(t)

	withSteps := match("fp2", "ttt", "Hyper", "100", "Random", "0", 2)
	withSteps.HasHistory = true
	withSteps.NumSteps = 9
	withSteps.SightOf = "white"
	noHistory := match("fp1", "ttt", "Hyper", "50", "Random", "50", 1)

	id := insertRun(t, db, "ttt", []model.MatchRecord{withSteps, noHistory})

	got, err := db.GetRunMatches(id)
	if err != nil {
		t.Fatalf("GetRunMatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	// Ordered by match_index.
	if got[0].Index != 1 || got[1].Index != 2 {
		t.Errorf("unexpected order: %d, %d", got[0].Index, got[1].Index)
	}
	if got[0].HasHistory {
		t.Error("fp1 should have no history")
	}
	if !got[1].HasHistory || got[1].NumSteps != 9 {
		t.Errorf("fp2 steps: has=%v n=%d", got[1].HasHistory, got[1].NumSteps)
	}
	if got[1].SightOf != "white" || got[1].Player1Score != "100" {
		t.Errorf("fp2 fields mismatch: %+v", got[1])
	}

	exists, err := db.MatchExists("fp1")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected fp1 to exist")
	}
	exists, _ = db.MatchExists("nope")
	if exists {
		t.Error("expected unknown fingerprint to not exist")
	}
}

func TestInsertMatchesIdempotent(t *testing.T) {
	db := openMemDB(t)

	m := match("same", "ttt", "A", "1", "B", "0", 1)
	first := insertRun(t, db, "ttt", []model.MatchRecord{m})
	second := insertRun(t, db, "ttt", []model.MatchRecord{m})

	a, _ := db.GetRunMatches(first)
	b, _ := db.GetRunMatches(second)
	if len(a) != 0 || len(b) != 1 {
		t.Errorf("re-import should move the match to the newer run: first=%d second=%d", len(a), len(b))
	}
}

func TestInsertMatchesRequiresFingerprint(t *testing.T) {
	db := openMemDB(t)
	id := insertRun(t, db, "ttt", nil)
	if err := db.InsertMatches(id, []model.MatchRecord{{Index: 3}}); err == nil {
		t.Error("expected error for record without fingerprint")
	}
}

func TestPlayerStandings(t *testing.T) {
	db := openMemDB(t)
	insertRun(t, db, "ttt", []model.MatchRecord{
		match("m1", "ttt", "Hyper", "100", "Random", "0", 1),
		match("m2", "ttt", "Random", "50", "Hyper", "50", 2),
		match("m3", "ttt", "Hyper", "100", "Random", "", 3),
	})
	insertRun(t, db, "chess", []model.MatchRecord{
		match("m4", "chess", "Random", "100", "Hyper", "0", 1),
	})

	all, err := db.PlayerStandings("")
	if err != nil {
		t.Fatalf("PlayerStandings: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 players, got %d", len(all))
	}

	ttt, err := db.PlayerStandings("ttt")
	if err != nil {
		t.Fatalf("PlayerStandings(ttt): %v", err)
	}
	if len(ttt) != 2 {
		t.Fatalf("expected 2 players, got %d", len(ttt))
	}
	hyper := ttt[0]
	if hyper.Player != "Hyper" {
		t.Fatalf("expected Hyper first, got %s", hyper.Player)
	}
	if hyper.Matches != 3 || hyper.Wins != 1 || hyper.Draws != 1 || hyper.Losses != 0 {
		t.Errorf("Hyper standing mismatch: %+v", hyper)
	}
	if hyper.AvgScore < 83.3 || hyper.AvgScore > 83.4 {
		t.Errorf("Hyper avg score: want ~83.33, got %f", hyper.AvgScore)
	}
	random := ttt[1]
	if random.Losses != 1 || random.Draws != 1 || random.AvgScore != 25 {
		t.Errorf("Random standing mismatch: %+v", random)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	id := insertRun(t, db, "ttt", []model.MatchRecord{match("m1", "ttt", "A", "1", "B", "0", 1)})

	cols, rows, err := db.QueryRaw("SELECT match_id, num_steps, run_id FROM matches")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[0] != "match_id" {
		t.Errorf("unexpected cols: %v", cols)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][0] != "m1" || rows[0][1] != "NULL" {
		t.Errorf("unexpected row: %v", rows[0])
	}
	if rows[0][2] != "1" || id != 1 {
		t.Errorf("unexpected run id: %v (inserted %d)", rows[0][2], id)
	}

	if _, _, err := db.QueryRaw("SELECT * FROM nope"); err == nil {
		t.Error("expected error for unknown table")
	}
}
