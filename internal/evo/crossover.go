package evo

import "math/rand"

// Crossover combines two parent hold sequences at a single cut point:
// p1[:cut] + p2[cut:]. Parents shorter than two holds make crossover a
// degenerate no-op returning a copy of p1. The child is never validated for
// walkability; mutation and scoring are responsible for repairing or
// penalizing broken joins. The result always has independent backing storage.
func Crossover(rng *rand.Rand, p1, p2 []int) []int {
	if len(p1) < 2 || len(p2) < 2 {
		return append([]int(nil), p1...)
	}

	minLen := len(p1)
	if len(p2) < minLen {
		minLen = len(p2)
	}
	cut := 1 + rng.Intn(minLen-1)

	child := make([]int, 0, cut+len(p2)-cut)
	child = append(child, p1[:cut]...)
	child = append(child, p2[cut:]...)
	return child
}
