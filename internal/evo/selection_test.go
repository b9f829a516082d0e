package evo

import (
	"math/rand"
	"testing"

	"kiltergen/internal/model"
)

func scoredPool() []ScoredRoute {
	return []ScoredRoute{
		{Index: 0, Route: model.Route{HoldIDs: []int{0, 1, 2}}, Score: 0.9},
		{Index: 1, Route: model.Route{HoldIDs: []int{3, 4, 5}}, Score: 0.5},
		{Index: 2, Route: model.Route{HoldIDs: []int{6, 7, 8}}, Score: 0.1},
	}
}

func TestUniformPoolSelectorErrors(t *testing.T) {
	s := UniformPoolSelector{}
	if _, err := s.PickParent(nil, scoredPool()); err == nil {
		t.Fatal("expected error for nil rng")
	}
	if _, err := s.PickParent(rand.New(rand.NewSource(1)), nil); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestUniformPoolSelectorCoversPool(t *testing.T) {
	s := UniformPoolSelector{}
	rng := rand.New(rand.NewSource(2))
	pool := scoredPool()

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		parent, err := s.PickParent(rng, pool)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		seen[parent.HoldIDs[0]] = true
	}
	if len(seen) != 3 {
		t.Fatalf("uniform selection should reach the whole pool, saw %v", seen)
	}
}

func TestTournamentSelectorPrefersStrongRoutes(t *testing.T) {
	s := TournamentSelector{TournamentSize: 3}
	rng := rand.New(rand.NewSource(5))
	pool := scoredPool()

	wins := 0
	const trials = 300
	for i := 0; i < trials; i++ {
		parent, err := s.PickParent(rng, pool)
		if err != nil {
			t.Fatalf("pick parent: %v", err)
		}
		if parent.HoldIDs[0] == 0 {
			wins++
		}
	}
	// With tournament size 3 over a pool of 3 the best route wins most draws.
	if wins < trials/2 {
		t.Fatalf("tournament pressure too weak: best won %d/%d", wins, trials)
	}
}
