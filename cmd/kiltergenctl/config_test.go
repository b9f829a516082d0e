package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSessionRequestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	payload := `{
		"board": "kilter",
		"grade": "SOFT V6",
		"styles": ["Dynamic", "Traverse/Endurance"],
		"population": 30,
		"elite_count": 5,
		"pool_size": 14,
		"mutation_rate": 0.3,
		"seed": 42
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	req, err := loadSessionRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Board != "kilter" || req.Grade != "SOFT V6" {
		t.Fatalf("board/grade mismatch: %+v", req)
	}
	if len(req.Styles) != 2 || req.Styles[0] != "Dynamic" {
		t.Fatalf("styles mismatch: %v", req.Styles)
	}
	if req.Population != 30 || req.EliteCount != 5 || req.PoolSize != 14 {
		t.Fatalf("evolver sizes mismatch: %+v", req)
	}
	if req.MutationRate != 0.3 || req.Seed != 42 {
		t.Fatalf("rate/seed mismatch: %+v", req)
	}
}

func TestLoadOrDefaultSessionRequestEmptyPath(t *testing.T) {
	req, err := loadOrDefaultSessionRequest("")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if req.Board != "" || req.Population != 0 {
		t.Fatalf("expected zero request, got %+v", req)
	}
}

func TestParseFavorites(t *testing.T) {
	picks, err := parseFavorites("0, 3 7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(picks) != 3 || picks[0] != 0 || picks[1] != 3 || picks[2] != 7 {
		t.Fatalf("picks mismatch: %v", picks)
	}

	picks, err = parseFavorites("")
	if err != nil || picks != nil {
		t.Fatalf("empty input should parse to nil, got %v %v", picks, err)
	}

	if _, err := parseFavorites("0,x"); err == nil {
		t.Fatal("expected error for non-numeric index")
	}
}

func TestSplitCSV(t *testing.T) {
	out := splitCSV(" Dynamic , Crimpy/Technical ,")
	if len(out) != 2 || out[0] != "Dynamic" || out[1] != "Crimpy/Technical" {
		t.Fatalf("split mismatch: %v", out)
	}
	if splitCSV("") != nil {
		t.Fatal("empty input should split to nil")
	}
}
