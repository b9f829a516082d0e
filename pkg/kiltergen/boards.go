package kiltergen

import (
	"context"

	"kiltergen/internal/board"
	"kiltergen/internal/platform"
)

func registerBuiltinBoards(ctx context.Context, g *platform.Gym) error {
	kilter, err := board.NewKilterBoard()
	if err != nil {
		return err
	}
	return g.RegisterBoard(ctx, kilter)
}
