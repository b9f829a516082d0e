package evo

import (
	"math"

	"kiltergen/internal/board"
	"kiltergen/internal/model"
)

const minScorableLength = 3

// Score rates a route's mechanical plausibility and style/difficulty fit in
// [0,1]. Routes shorter than three holds score exactly 0. The function is
// pure: it never mutates the route and has no side effects.
func Score(b *board.Board, route model.Route, style model.StyleParams, difficulty float64) float64 {
	if b == nil || route.Len() < minScorableLength {
		return 0.0
	}

	holds := make([]model.Hold, route.Len())
	for i, id := range route.HoldIDs {
		h, ok := b.HoldByID(id)
		if !ok {
			// A route is only meaningful against the board that produced it.
			return 0.0
		}
		holds[i] = h
	}

	score := 0.5
	dists := make([]float64, 0, route.Len()-1)
	for i := 0; i < len(holds)-1; i++ {
		h1 := holds[i]
		h2 := holds[i+1]
		dx := h1.X - h2.X
		dy := h1.Y - h2.Y
		d := math.Sqrt(dx*dx + dy*dy)
		dists = append(dists, d)

		if h2.Y < h1.Y-0.05 {
			score -= 0.1
		}
		if d < style.ReachMin || d > style.ReachMax {
			score -= 0.05
		}
	}

	// Style consistency: deviation of the mean move from the target.
	if len(dists) > 0 {
		total := 0.0
		for _, d := range dists {
			total += d
		}
		mean := total / float64(len(dists))
		score -= math.Abs(mean-style.AvgMoveDist) * style.VariancePenalty * 0.1
	}

	// Net vertical gain; negative for routes that finish below their start.
	verticalGain := holds[len(holds)-1].Y - holds[0].Y
	score += verticalGain * 0.1

	// Length match against the difficulty target.
	deviation := math.Abs(float64(route.Len() - TargetLength(difficulty)))
	score -= deviation * 0.05

	return clampUnit(score)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
