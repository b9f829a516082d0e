package evo

import (
	"testing"

	"kiltergen/internal/board"
	"kiltergen/internal/model"
)

func defaultStyle() model.StyleParams {
	return model.StyleParams{
		ReachMin:        0.05,
		ReachMax:        0.35,
		AvgMoveDist:     0.18,
		VariancePenalty: 5.0,
	}
}

func kilterBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := board.NewKilterBoard()
	if err != nil {
		t.Fatalf("kilter board: %v", err)
	}
	return b
}

// ladderBoard builds a single vertical column of holds spaced evenly, handy
// for deterministic reachability in tests.
func ladderBoard(t *testing.T, count int, spacing float64) *board.Board {
	t.Helper()
	holds := make([]model.Hold, 0, count)
	for i := 0; i < count; i++ {
		holds = append(holds, model.Hold{ID: i, X: 0.5, Y: float64(i) * spacing, Size: 0.5})
	}
	b, err := board.New("ladder", holds)
	if err != nil {
		t.Fatalf("ladder board: %v", err)
	}
	return b
}
