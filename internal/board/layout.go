package board

import "kiltergen/internal/model"

const (
	layoutRows = 12
	layoutCols = 12
)

// GenerateKilterLayout builds a 12x12 staggered grid approximation of a
// kilter-style board. Odd rows are offset half a column so the holds form
// triangles. Lower rows carry bigger holds (feet and jugs), higher rows
// crimps.
func GenerateKilterLayout() []model.Hold {
	holds := make([]model.Hold, 0, layoutRows*layoutCols)
	id := 0
	for r := 0; r < layoutRows; r++ {
		xOffset := 0.0
		if r%2 != 0 {
			xOffset = 0.5
		}
		size := 0.4
		if r < 3 {
			size = 1.0
		}
		for c := 0; c < layoutCols; c++ {
			holds = append(holds, model.Hold{
				ID:          id,
				X:           (float64(c) + xOffset) / layoutCols,
				Y:           float64(r) / layoutRows,
				Orientation: 0,
				Size:        size,
			})
			id++
		}
	}
	return holds
}

// NewKilterBoard is the default board used by the ctl and tests.
func NewKilterBoard() (*Board, error) {
	return New("kilter", GenerateKilterLayout())
}
