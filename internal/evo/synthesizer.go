package evo

import (
	"errors"
	"math/rand"

	"kiltergen/internal/board"
	"kiltergen/internal/model"
)

const (
	// Shortest route length ever requested by population seeding.
	minSeedLength = 4

	baseLength  = 5
	maxIncrease = 10
)

// TargetLength maps normalized difficulty to a target route length: 5 moves
// at difficulty 0 up to 15 at difficulty 1.
func TargetLength(difficulty float64) int {
	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty > 1 {
		difficulty = 1
	}
	return baseLength + int(difficulty*maxIncrease)
}

// Synthesizer builds routes from scratch by biased random walk over a board.
type Synthesizer struct {
	Board *board.Board
}

// Synthesize walks up to lengthTarget holds starting from a uniformly random
// start-zone hold. Upward candidates are weighted up to 2x over flat ones but
// every reachable hold keeps a 0.5 weight floor. Dead ends truncate the walk;
// a board with no start-zone holds yields an empty route (a configuration
// problem, not an error).
func (s Synthesizer) Synthesize(rng *rand.Rand, lengthTarget int, style model.StyleParams) (model.Route, error) {
	if s.Board == nil {
		return model.Route{}, errors.New("board is required")
	}
	if rng == nil {
		return model.Route{}, errors.New("random source is required")
	}

	starts := s.Board.StartCandidates()
	if len(starts) == 0 {
		return model.Route{}, nil
	}

	current := starts[rng.Intn(len(starts))]
	holdIDs := []int{current}

	for step := 1; step < lengthTarget; step++ {
		candidates := s.Board.Reachable(current, style)
		if len(candidates) == 0 {
			break
		}
		next := s.pickWeighted(rng, current, candidates)
		holdIDs = append(holdIDs, next)
		current = next
	}

	return model.Route{HoldIDs: holdIDs}, nil
}

// pickWeighted draws one candidate with weight 0.5 + max(0, 2*dy). The floor
// keeps flat and slightly downward moves in play for route diversity.
func (s Synthesizer) pickWeighted(rng *rand.Rand, currentID int, candidates []int) int {
	current, _ := s.Board.HoldByID(currentID)

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, id := range candidates {
		h, _ := s.Board.HoldByID(id)
		progress := h.Y - current.Y
		w := 0.5
		if progress > 0 {
			w += progress * 2.0
		}
		weights[i] = w
		total += w
	}

	pick := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if pick <= acc {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
