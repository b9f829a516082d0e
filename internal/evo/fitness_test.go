package evo

import (
	"testing"

	"kiltergen/internal/board"
	"kiltergen/internal/model"
)

func TestScoreShortRoutesScoreZero(t *testing.T) {
	b := kilterBoard(t)
	for _, ids := range [][]int{nil, {0}, {0, 1}} {
		if got := Score(b, model.Route{HoldIDs: ids}, defaultStyle(), 0.5); got != 0.0 {
			t.Errorf("Score(len=%d) = %f, want 0", len(ids), got)
		}
	}
}

func TestScoreUnknownHoldScoresZero(t *testing.T) {
	b := kilterBoard(t)
	if got := Score(b, model.Route{HoldIDs: []int{0, 1, 9999}}, defaultStyle(), 0.5); got != 0.0 {
		t.Fatalf("Score with unknown hold = %f, want 0", got)
	}
}

func TestScoreStaysInUnitRange(t *testing.T) {
	// A long route of huge repeating jumps stacks enough penalties to push
	// the raw score far below zero.
	holds := []model.Hold{
		{ID: 0, X: 0.0, Y: 0.0},
		{ID: 1, X: 1.0, Y: 0.9},
		{ID: 2, X: 0.0, Y: 0.95},
		{ID: 3, X: 1.0, Y: 1.0},
	}
	b, err := board.New("wild", holds)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}

	routes := [][]int{
		{0, 1, 2, 3},
		{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
		{3, 2, 1, 0},
	}
	for _, ids := range routes {
		got := Score(b, model.Route{HoldIDs: ids}, defaultStyle(), 1.0)
		if got < 0 || got > 1 {
			t.Errorf("Score(%v) = %f outside [0,1]", ids, got)
		}
	}
}

func TestScorePenalizesDownwardMove(t *testing.T) {
	style := defaultStyle()
	up := []model.Hold{
		{ID: 0, X: 0.5, Y: 0.10},
		{ID: 1, X: 0.5, Y: 0.15},
		{ID: 2, X: 0.58, Y: 0.30},
	}
	// Identical except the final move drops well below the -0.05 tolerance.
	down := []model.Hold{
		{ID: 0, X: 0.5, Y: 0.10},
		{ID: 1, X: 0.5, Y: 0.15},
		{ID: 2, X: 0.58, Y: 0.05},
	}

	upBoard, err := board.New("up", up)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	downBoard, err := board.New("down", down)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}

	route := model.Route{HoldIDs: []int{0, 1, 2}}
	upScore := Score(upBoard, route, style, 0.0)
	downScore := Score(downBoard, route, style, 0.0)
	if upScore <= downScore {
		t.Fatalf("upward route %f should outscore downward route %f", upScore, downScore)
	}
}

func TestScoreIsPure(t *testing.T) {
	b := kilterBoard(t)
	route := model.Route{HoldIDs: []int{0, 12, 24, 36}}
	before := append([]int(nil), route.HoldIDs...)

	first := Score(b, route, defaultStyle(), 0.4)
	second := Score(b, route, defaultStyle(), 0.4)
	if first != second {
		t.Fatalf("score not deterministic: %f vs %f", first, second)
	}
	for i, id := range route.HoldIDs {
		if id != before[i] {
			t.Fatal("score mutated the route")
		}
	}
}

func TestTargetLengthEndpoints(t *testing.T) {
	if got := TargetLength(0.0); got != 5 {
		t.Errorf("TargetLength(0) = %d, want 5", got)
	}
	if got := TargetLength(1.0); got != 15 {
		t.Errorf("TargetLength(1) = %d, want 15", got)
	}
	// Out-of-range difficulty clamps.
	if got := TargetLength(-3); got != 5 {
		t.Errorf("TargetLength(-3) = %d, want 5", got)
	}
	if got := TargetLength(7); got != 15 {
		t.Errorf("TargetLength(7) = %d, want 15", got)
	}
}

func TestTargetLengthMonotone(t *testing.T) {
	prev := TargetLength(0)
	for d := 0.0; d <= 1.0; d += 0.01 {
		cur := TargetLength(d)
		if cur < prev {
			t.Fatalf("TargetLength not monotone at %f: %d < %d", d, cur, prev)
		}
		prev = cur
	}
}
