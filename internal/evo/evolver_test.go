package evo

import (
	"sort"
	"testing"

	"kiltergen/internal/model"
)

func TestNewEvolverDefaults(t *testing.T) {
	b := kilterBoard(t)
	e, err := NewEvolver(Config{Board: b})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}
	if e.cfg.PopulationSize != 24 || e.cfg.EliteCount != 4 || e.cfg.PoolSize != 12 {
		t.Fatalf("defaults mismatch: %+v", e.cfg)
	}
	if e.cfg.MutationRate != 0.2 {
		t.Fatalf("default mutation rate = %f", e.cfg.MutationRate)
	}
	if e.cfg.Selector == nil || len(e.cfg.MutationPolicy) == 0 {
		t.Fatal("defaults must install selector and mutation policy")
	}
}

func TestNewEvolverValidation(t *testing.T) {
	b := kilterBoard(t)
	if _, err := NewEvolver(Config{}); err == nil {
		t.Fatal("expected error for missing board")
	}
	if _, err := NewEvolver(Config{Board: b, PopulationSize: 4, EliteCount: 8}); err == nil {
		t.Fatal("expected error for elite count above population size")
	}
	if _, err := NewEvolver(Config{Board: b, PopulationSize: 8, PoolSize: 10}); err == nil {
		t.Fatal("expected error for pool size above population size")
	}
	if _, err := NewEvolver(Config{Board: b, MutationRate: 1.5}); err == nil {
		t.Fatal("expected error for mutation rate above 1")
	}
	if _, err := NewEvolver(Config{Board: b, MutationPolicy: []WeightedMutation{{Operator: RemoveHold{}, Weight: 0}}}); err == nil {
		t.Fatal("expected error for all-zero mutation weights")
	}
}

func TestInitPopulationSizeAndLengths(t *testing.T) {
	b := kilterBoard(t)
	style := defaultStyle()

	for seed := int64(0); seed < 100; seed++ {
		e, err := NewEvolver(Config{Board: b, Seed: seed})
		if err != nil {
			t.Fatalf("new evolver: %v", err)
		}
		pop, err := e.InitPopulation(0.45, style)
		if err != nil {
			t.Fatalf("init population: %v", err)
		}
		if len(pop) != 24 {
			t.Fatalf("population size = %d, want 24", len(pop))
		}
		for _, route := range pop {
			if route.Len() == 0 {
				t.Fatal("kilter board must never yield an empty route")
			}
			if route.Len() < 4 || route.Len() > 15 {
				t.Fatalf("route length %d outside [4, 15]", route.Len())
			}
		}
	}
}

func TestEvolveMaintainsPopulationSize(t *testing.T) {
	b := kilterBoard(t)
	style := defaultStyle()
	e, err := NewEvolver(Config{Board: b, Seed: 42})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}

	pop, err := e.InitPopulation(0.5, style)
	if err != nil {
		t.Fatalf("init population: %v", err)
	}
	for gen := 0; gen < 5; gen++ {
		next, _ := e.Evolve(pop, []int{0, 3}, 0.5, style)
		if len(next) != 24 {
			t.Fatalf("generation %d size = %d, want 24", gen, len(next))
		}
		pop = next
	}
}

func TestEvolveElitismCarriesTopRoutesUnchanged(t *testing.T) {
	b := kilterBoard(t)
	style := defaultStyle()
	e, err := NewEvolver(Config{Board: b, Seed: 7})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}

	pop, err := e.InitPopulation(0.5, style)
	if err != nil {
		t.Fatalf("init population: %v", err)
	}

	scored := e.ScorePopulation(pop, nil, 0.5, style)
	ranked := append([]ScoredRoute(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	next, _ := e.Evolve(pop, nil, 0.5, style)
	for i := 0; i < 4; i++ {
		if !sameHoldSequence(next[i], ranked[i].Route) {
			t.Fatalf("elite %d not carried unchanged: %v vs %v", i, next[i].HoldIDs, ranked[i].Route.HoldIDs)
		}
	}
}

func TestEvolveElitesAreIndependentCopies(t *testing.T) {
	b := kilterBoard(t)
	style := defaultStyle()
	e, err := NewEvolver(Config{Board: b, Seed: 31})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}

	pop, err := e.InitPopulation(0.5, style)
	if err != nil {
		t.Fatalf("init population: %v", err)
	}
	next, _ := e.Evolve(pop, nil, 0.5, style)

	// Scribbling over the offspring generation must not reach back into the
	// parent population.
	snapshot := make([][]int, len(pop))
	for i, r := range pop {
		snapshot[i] = append([]int(nil), r.HoldIDs...)
	}
	for _, r := range next {
		for i := range r.HoldIDs {
			r.HoldIDs[i] = -1
		}
	}
	for i, r := range pop {
		for j, id := range r.HoldIDs {
			if id != snapshot[i][j] {
				t.Fatal("offspring aliased a parent's hold sequence")
			}
		}
	}
}

func TestEvolveFavoriteDominatesWhenMachineScoresTie(t *testing.T) {
	// All routes identical: machine scores tie exactly, so the single
	// favorite must rank first purely on the human boost.
	b := ladderBoard(t, 12, 0.1)
	style := defaultStyle()
	e, err := NewEvolver(Config{Board: b, PopulationSize: 6, EliteCount: 2, PoolSize: 4, Seed: 3})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}

	route := model.Route{HoldIDs: []int{0, 1, 2, 3, 4}}
	pop := make([]model.Route, 6)
	for i := range pop {
		pop[i] = route.Clone()
	}

	scored := e.ScorePopulation(pop, []int{2}, 0.3, style)
	best := scored[0]
	for _, item := range scored {
		if item.Score > best.Score {
			best = item
		}
	}
	if best.Index != 2 {
		t.Fatalf("favorite should hold the top score, best index = %d", best.Index)
	}
	if !best.Favorite {
		t.Fatal("top scored route should carry the favorite flag")
	}

	next, diag := e.Evolve(pop, []int{2}, 0.3, style)
	if diag.FavoriteCount != 1 {
		t.Fatalf("diagnostics favorite count = %d, want 1", diag.FavoriteCount)
	}
	if !sameHoldSequence(next[0], route) {
		t.Fatal("favorite route must survive as the first elite")
	}
}

func TestEvolveIgnoresOutOfRangeFavorites(t *testing.T) {
	b := kilterBoard(t)
	style := defaultStyle()
	e, err := NewEvolver(Config{Board: b, Seed: 23})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}

	pop, err := e.InitPopulation(0.4, style)
	if err != nil {
		t.Fatalf("init population: %v", err)
	}
	next, diag := e.Evolve(pop, []int{-1, 99, 500}, 0.4, style)
	if len(next) != 24 {
		t.Fatalf("population size = %d, want 24", len(next))
	}
	if diag.FavoriteCount != 0 {
		t.Fatalf("out-of-range favorites should be ignored, count = %d", diag.FavoriteCount)
	}
}

func TestEvolveEmptyPopulation(t *testing.T) {
	b := kilterBoard(t)
	e, err := NewEvolver(Config{Board: b, Seed: 2})
	if err != nil {
		t.Fatalf("new evolver: %v", err)
	}

	next, diag := e.Evolve(nil, nil, 0.5, defaultStyle())
	if len(next) != 0 {
		t.Fatalf("degenerate population should stay empty, got %d routes", len(next))
	}
	if diag.BestScore != 0 {
		t.Fatalf("empty diagnostics expected, got %+v", diag)
	}
}

func TestEvolveDeterministicForSeed(t *testing.T) {
	b := kilterBoard(t)
	style := defaultStyle()

	run := func() []model.Route {
		e, err := NewEvolver(Config{Board: b, Seed: 99})
		if err != nil {
			t.Fatalf("new evolver: %v", err)
		}
		pop, err := e.InitPopulation(0.6, style)
		if err != nil {
			t.Fatalf("init population: %v", err)
		}
		next, _ := e.Evolve(pop, []int{1}, 0.6, style)
		return next
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("replay length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !sameHoldSequence(first[i], second[i]) {
			t.Fatalf("replay diverged at route %d", i)
		}
	}
}

func sameHoldSequence(a, b model.Route) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.HoldIDs {
		if a.HoldIDs[i] != b.HoldIDs[i] {
			return false
		}
	}
	return true
}
