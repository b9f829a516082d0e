//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"kiltergen/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kiltergen.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	record := model.BoardRecord{
		Name:  "kilter",
		Holds: []model.Hold{{ID: 0, X: 0.1, Y: 0.1, Size: 1.0}},
	}
	if err := s.SaveBoard(ctx, record); err != nil {
		t.Fatalf("save board: %v", err)
	}
	board, ok, err := s.GetBoard(ctx, "kilter")
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	if !ok || len(board.Holds) != 1 {
		t.Fatalf("board round trip mismatch: %+v", board)
	}
	if board.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("board missing version stamp: %+v", board.VersionedRecord)
	}

	if err := s.SaveSession(ctx, testSession("s-1")); err != nil {
		t.Fatalf("save session: %v", err)
	}
	session, ok, err := s.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !ok || session.BoardName != "kilter" {
		t.Fatalf("session round trip mismatch: %+v", session)
	}

	snapshot := model.PopulationSnapshot{
		SessionID:  "s-1",
		Generation: 1,
		Routes:     []model.Route{{HoldIDs: []int{0, 1, 2}}},
	}
	if err := s.SavePopulation(ctx, snapshot); err != nil {
		t.Fatalf("save population: %v", err)
	}
	pop, ok, err := s.GetPopulation(ctx, "s-1")
	if err != nil {
		t.Fatalf("get population: %v", err)
	}
	if !ok || len(pop.Routes) != 1 || pop.Routes[0].Len() != 3 {
		t.Fatalf("population round trip mismatch: %+v", pop)
	}
}

func TestSQLiteStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.SaveFitnessHistory(ctx, "s-1", []float64{0.1}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	if err := s.SaveFitnessHistory(ctx, "s-1", []float64{0.1, 0.2}); err != nil {
		t.Fatalf("resave history: %v", err)
	}
	history, ok, err := s.GetFitnessHistory(ctx, "s-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok || len(history) != 2 {
		t.Fatalf("upsert did not overwrite: %v", history)
	}
}

func TestSQLiteStoreReset(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.SaveSession(ctx, testSession("s-1")); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := s.GetSession(ctx, "s-1"); ok {
		t.Fatal("session survived reset")
	}
}
