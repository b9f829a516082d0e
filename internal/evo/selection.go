package evo

import (
	"errors"
	"math/rand"

	"kiltergen/internal/model"
)

// Selector chooses parents from the breeding pool. The pool is already
// ranked descending by hybrid score.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, pool []ScoredRoute) (model.Route, error)
}

// UniformPoolSelector picks uniformly at random from the pool. A route may
// mate with itself.
type UniformPoolSelector struct{}

func (UniformPoolSelector) Name() string {
	return "uniform_pool"
}

func (UniformPoolSelector) PickParent(rng *rand.Rand, pool []ScoredRoute) (model.Route, error) {
	if rng == nil {
		return model.Route{}, errors.New("random source is required")
	}
	if len(pool) == 0 {
		return model.Route{}, errors.New("breeding pool is empty")
	}
	return pool[rng.Intn(len(pool))].Route, nil
}

// TournamentSelector samples candidates from the pool and keeps the best
// hybrid score among them. Not used by the default interactive flow but
// available as a stronger selection pressure.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, pool []ScoredRoute) (model.Route, error) {
	if rng == nil {
		return model.Route{}, errors.New("random source is required")
	}
	if len(pool) == 0 {
		return model.Route{}, errors.New("breeding pool is empty")
	}

	size := s.TournamentSize
	if size <= 0 {
		size = 3
	}
	if size > len(pool) {
		size = len(pool)
	}

	best := pool[rng.Intn(len(pool))]
	for i := 1; i < size; i++ {
		candidate := pool[rng.Intn(len(pool))]
		if candidate.Score > best.Score {
			best = candidate
		}
	}
	return best.Route, nil
}
