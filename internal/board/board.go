package board

import (
	"fmt"
	"math"
	"sort"

	"kiltergen/internal/model"
)

// Holds below this height qualify as route starts (bottom quartile).
const startZoneMaxY = 0.25

// Small downward moves are still reachable; anything lower is forbidden.
const maxDownwardDelta = -0.05

// Board is the static hold graph. It owns the hold records for the lifetime
// of a session; routes reference holds by id and never copy hold data.
type Board struct {
	name  string
	holds map[int]model.Hold
	ids   []int
}

// New builds a board from a hold set. Hold ids must be unique.
func New(name string, holds []model.Hold) (*Board, error) {
	if len(holds) == 0 {
		return nil, fmt.Errorf("board %q requires at least one hold", name)
	}

	byID := make(map[int]model.Hold, len(holds))
	ids := make([]int, 0, len(holds))
	for _, h := range holds {
		if _, exists := byID[h.ID]; exists {
			return nil, fmt.Errorf("duplicate hold id: %d", h.ID)
		}
		byID[h.ID] = h
		ids = append(ids, h.ID)
	}
	sort.Ints(ids)

	return &Board{name: name, holds: byID, ids: ids}, nil
}

func (b *Board) Name() string {
	return b.name
}

func (b *Board) Size() int {
	return len(b.ids)
}

// HoldByID resolves a hold key. The second result is false for unknown ids.
func (b *Board) HoldByID(id int) (model.Hold, bool) {
	h, ok := b.holds[id]
	return h, ok
}

// HoldIDs returns all hold ids in ascending order.
func (b *Board) HoldIDs() []int {
	return append([]int(nil), b.ids...)
}

// Record returns the persistent form of the board.
func (b *Board) Record() model.BoardRecord {
	holds := make([]model.Hold, 0, len(b.ids))
	for _, id := range b.ids {
		holds = append(holds, b.holds[id])
	}
	return model.BoardRecord{Name: b.name, Holds: holds}
}

// Reachable returns every hold other than current whose distance to current
// lies strictly inside (ReachMin, ReachMax) and whose vertical displacement
// stays above the downward cutoff. Result order is ascending by id for
// deterministic iteration; callers must not rely on any ordering. An empty
// result signals a dead end, not an error.
func (b *Board) Reachable(currentID int, style model.StyleParams) []int {
	current, ok := b.holds[currentID]
	if !ok {
		return nil
	}

	var candidates []int
	for _, id := range b.ids {
		if id == currentID {
			continue
		}
		h := b.holds[id]
		dx := h.X - current.X
		dy := h.Y - current.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > style.ReachMin && dist < style.ReachMax && dy > maxDownwardDelta {
			candidates = append(candidates, id)
		}
	}
	return candidates
}

// StartCandidates returns the ids of every hold in the start zone. An empty
// result means the board cannot seed routes, which is a configuration
// problem for the caller to surface.
func (b *Board) StartCandidates() []int {
	var starts []int
	for _, id := range b.ids {
		if b.holds[id].Y < startZoneMaxY {
			starts = append(starts, id)
		}
	}
	return starts
}

// Coordinates projects a route onto parallel x and y slices for rendering.
// Unknown hold ids fail: a route is only ever valid against the board that
// produced it.
func (b *Board) Coordinates(route model.Route) ([]float64, []float64, error) {
	xs := make([]float64, 0, route.Len())
	ys := make([]float64, 0, route.Len())
	for _, id := range route.HoldIDs {
		h, ok := b.holds[id]
		if !ok {
			return nil, nil, fmt.Errorf("route references unknown hold %d on board %q", id, b.name)
		}
		xs = append(xs, h.X)
		ys = append(ys, h.Y)
	}
	return xs, ys, nil
}

// Distance returns the Euclidean distance between two holds.
func (b *Board) Distance(fromID, toID int) (float64, error) {
	from, ok := b.holds[fromID]
	if !ok {
		return 0, fmt.Errorf("unknown hold %d on board %q", fromID, b.name)
	}
	to, ok := b.holds[toID]
	if !ok {
		return 0, fmt.Errorf("unknown hold %d on board %q", toID, b.name)
	}
	dx := to.X - from.X
	dy := to.Y - from.Y
	return math.Sqrt(dx*dx + dy*dy), nil
}
