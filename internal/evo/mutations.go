package evo

import (
	"errors"
	"math/rand"

	"kiltergen/internal/board"
	"kiltergen/internal/model"
)

const (
	// Routes at or above this length refuse hold insertion.
	maxMutableLength = 16
	// Routes at or below this length refuse hold removal.
	minRemovableLength = 4
	// Routes shorter than this are never mutated at all.
	minMutableLength = 3
)

// Operator applies one mutation to a hold sequence. Implementations return a
// new slice and leave the input untouched; an operator whose precondition
// cannot be satisfied (dead end, length limit) returns an unchanged copy
// rather than an error.
type Operator interface {
	Name() string
	Apply(rng *rand.Rand, holdIDs []int, style model.StyleParams) ([]int, error)
}

// WeightedMutation pairs an operator with its selection weight.
type WeightedMutation struct {
	Operator Operator
	Weight   float64
}

// DefaultMutationPolicy is the nudge:2 add:1 remove:1 weighting.
func DefaultMutationPolicy(b *board.Board) []WeightedMutation {
	return []WeightedMutation{
		{Operator: NudgeHold{Board: b}, Weight: 2},
		{Operator: AddHold{Board: b}, Weight: 1},
		{Operator: RemoveHold{}, Weight: 1},
	}
}

// NudgeHold replaces one interior hold with a hold reachable from its
// predecessor.
type NudgeHold struct {
	Board *board.Board
}

func (NudgeHold) Name() string {
	return "nudge"
}

func (o NudgeHold) Apply(rng *rand.Rand, holdIDs []int, style model.StyleParams) ([]int, error) {
	if o.Board == nil {
		return nil, errors.New("board is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	out := append([]int(nil), holdIDs...)
	if len(out) < minMutableLength {
		return out, nil
	}

	idx := 1 + rng.Intn(len(out)-2)
	neighbors := o.Board.Reachable(out[idx-1], style)
	if len(neighbors) == 0 {
		return out, nil
	}
	out[idx] = neighbors[rng.Intn(len(neighbors))]
	return out, nil
}

// AddHold inserts a hold reachable from the insertion point's predecessor.
// Routes at maxMutableLength or longer are left unchanged.
type AddHold struct {
	Board *board.Board
}

func (AddHold) Name() string {
	return "add"
}

func (o AddHold) Apply(rng *rand.Rand, holdIDs []int, style model.StyleParams) ([]int, error) {
	if o.Board == nil {
		return nil, errors.New("board is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	out := append([]int(nil), holdIDs...)
	if len(out) < minMutableLength || len(out) >= maxMutableLength {
		return out, nil
	}

	idx := 1 + rng.Intn(len(out)-1)
	inserts := o.Board.Reachable(out[idx-1], style)
	if len(inserts) == 0 {
		return out, nil
	}
	hold := inserts[rng.Intn(len(inserts))]

	out = append(out, 0)
	copy(out[idx+1:], out[idx:])
	out[idx] = hold
	return out, nil
}

// RemoveHold deletes one interior hold. Routes at minRemovableLength or
// shorter are left unchanged so a single mutation can never make a route
// unscorable.
type RemoveHold struct{}

func (RemoveHold) Name() string {
	return "remove"
}

func (RemoveHold) Apply(rng *rand.Rand, holdIDs []int, _ model.StyleParams) ([]int, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	out := append([]int(nil), holdIDs...)
	if len(out) < minMutableLength || len(out) <= minRemovableLength {
		return out, nil
	}

	idx := 1 + rng.Intn(len(out)-2)
	return append(out[:idx], out[idx+1:]...), nil
}
