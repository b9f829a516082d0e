package storage

import (
	"context"

	"kiltergen/internal/model"
)

// Store persists boards, sessions and the per-session evolution history.
// Implementations must be safe for concurrent use.
type Store interface {
	Init(ctx context.Context) error

	SaveBoard(ctx context.Context, record model.BoardRecord) error
	GetBoard(ctx context.Context, name string) (model.BoardRecord, bool, error)

	SaveSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, id string) (model.Session, bool, error)
	ListSessions(ctx context.Context) ([]model.Session, error)

	SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulation(ctx context.Context, sessionID string) (model.PopulationSnapshot, bool, error)

	SaveFitnessHistory(ctx context.Context, sessionID string, history []float64) error
	GetFitnessHistory(ctx context.Context, sessionID string) ([]float64, bool, error)

	SaveDiagnostics(ctx context.Context, sessionID string, diags []model.GenerationDiagnostics) error
	GetDiagnostics(ctx context.Context, sessionID string) ([]model.GenerationDiagnostics, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}

// CloseIfSupported closes the store when the backend holds external
// resources, and is a no-op otherwise.
func CloseIfSupported(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
