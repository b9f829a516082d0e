package stats

import (
	"os"
	"path/filepath"
	"testing"

	"kiltergen/internal/model"
)

func sampleArtifacts(id string) SessionArtifacts {
	return SessionArtifacts{
		Config: SessionArtifactConfig{
			SessionID:       id,
			BoardName:       "kilter",
			DifficultyLabel: "V5",
			Difficulty:      0.5,
			Styles:          []string{"Crimpy/Technical"},
			PopulationSize:  24,
			Generations:     3,
			Seed:            7,
		},
		BestByRound: []float64{0.41, 0.52, 0.6},
		Diagnostics: []model.GenerationDiagnostics{
			{Generation: 1, BestScore: 0.41, MeanScore: 0.3, MinScore: 0.1, MeanLength: 9},
		},
		Routes: []RouteCoordinates{
			{Rank: 1, Score: 0.6, Holds: []int{0, 12, 24}, X: []float64{0.1, 0.2, 0.3}, Y: []float64{0.0, 0.1, 0.2}},
		},
	}
}

func TestWriteSessionArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	sessionDir, err := WriteSessionArtifacts(baseDir, sampleArtifacts("s-1"))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if sessionDir != filepath.Join(baseDir, "s-1") {
		t.Fatalf("session dir = %s", sessionDir)
	}

	for _, file := range []string{"config.json", "routes.json", "diagnostics.json", "fitness_history.csv"} {
		if _, err := os.Stat(filepath.Join(sessionDir, file)); err != nil {
			t.Errorf("missing artifact %s: %v", file, err)
		}
	}

	cfg, ok, err := ReadSessionConfig(baseDir, "s-1")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !ok || cfg.BoardName != "kilter" || cfg.DifficultyLabel != "V5" {
		t.Fatalf("config round trip mismatch: %+v", cfg)
	}

	routes, ok, err := ReadRouteCoordinates(baseDir, "s-1")
	if err != nil {
		t.Fatalf("read routes: %v", err)
	}
	if !ok || len(routes) != 1 || len(routes[0].X) != 3 {
		t.Fatalf("routes round trip mismatch: %+v", routes)
	}

	series, ok, err := ReadFitnessSeries(baseDir, "s-1")
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	if !ok || len(series) != 3 || series[2] != 0.6 {
		t.Fatalf("series round trip mismatch: %v", series)
	}
}

func TestWriteSessionArtifactsRequiresID(t *testing.T) {
	if _, err := WriteSessionArtifacts(t.TempDir(), SessionArtifacts{}); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestSessionIndexAppendAndList(t *testing.T) {
	baseDir := t.TempDir()

	entries := []SessionIndexEntry{
		{SessionID: "s-1", BoardName: "kilter", BestScore: 0.5, CreatedAtUTC: "2026-08-01T10:00:00Z"},
		{SessionID: "s-2", BoardName: "kilter", BestScore: 0.6, CreatedAtUTC: "2026-08-02T10:00:00Z"},
	}
	for _, entry := range entries {
		if err := AppendSessionIndex(baseDir, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	index, err := ListSessionIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("index size = %d, want 2", len(index))
	}
	// Newest first.
	if index[0].SessionID != "s-2" {
		t.Fatalf("index order wrong: %+v", index)
	}

	// Re-appending the same session updates in place.
	updated := entries[0]
	updated.BestScore = 0.9
	if err := AppendSessionIndex(baseDir, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	index, err = ListSessionIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("update duplicated the entry: %d", len(index))
	}
	for _, item := range index {
		if item.SessionID == "s-1" && item.BestScore != 0.9 {
			t.Fatalf("update not applied: %+v", item)
		}
	}
}

func TestListSessionIndexEmpty(t *testing.T) {
	index, err := ListSessionIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected empty index, got %d entries", len(index))
	}
}

func TestExportSessionArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteSessionArtifacts(baseDir, sampleArtifacts("s-1")); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	outDir := t.TempDir()
	dst, err := ExportSessionArtifacts(baseDir, "s-1", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, file := range []string{"config.json", "routes.json", "diagnostics.json", "fitness_history.csv"} {
		if _, err := os.Stat(filepath.Join(dst, file)); err != nil {
			t.Errorf("missing exported %s: %v", file, err)
		}
	}

	if _, err := ExportSessionArtifacts(baseDir, "missing", outDir); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
