package storage

import (
	"context"
	"sync"

	"kiltergen/internal/model"
)

// MemoryStore keeps all records in process memory. It is the default backend
// and the reference implementation for Store semantics.
type MemoryStore struct {
	mu          sync.RWMutex
	boards      map[string]model.BoardRecord
	sessions    map[string]model.Session
	populations map[string]model.PopulationSnapshot
	fitness     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards:      make(map[string]model.BoardRecord),
		sessions:    make(map[string]model.Session),
		populations: make(map[string]model.PopulationSnapshot),
		fitness:     make(map[string][]float64),
		diagnostics: make(map[string][]model.GenerationDiagnostics),
	}
}

func (s *MemoryStore) Init(ctx context.Context) error { return nil }

func (s *MemoryStore) SaveBoard(ctx context.Context, record model.BoardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.VersionedRecord = Stamp()
	record.Holds = append([]model.Hold(nil), record.Holds...)
	s.boards[record.Name] = record
	return nil
}

func (s *MemoryStore) GetBoard(ctx context.Context, name string) (model.BoardRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.boards[name]
	if !ok {
		return model.BoardRecord{}, false, nil
	}
	record.Holds = append([]model.Hold(nil), record.Holds...)
	return record, true, nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.VersionedRecord = Stamp()
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (model.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok, nil
}

func (s *MemoryStore) ListSessions(ctx context.Context) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out, nil
}

func (s *MemoryStore) SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.VersionedRecord = Stamp()
	routes := make([]model.Route, len(snapshot.Routes))
	for i, route := range snapshot.Routes {
		routes[i] = route.Clone()
	}
	snapshot.Routes = routes
	s.populations[snapshot.SessionID] = snapshot
	return nil
}

func (s *MemoryStore) GetPopulation(ctx context.Context, sessionID string) (model.PopulationSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.populations[sessionID]
	if !ok {
		return model.PopulationSnapshot{}, false, nil
	}
	routes := make([]model.Route, len(snapshot.Routes))
	for i, route := range snapshot.Routes {
		routes[i] = route.Clone()
	}
	snapshot.Routes = routes
	return snapshot, true, nil
}

func (s *MemoryStore) SaveFitnessHistory(ctx context.Context, sessionID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitness[sessionID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(ctx context.Context, sessionID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.fitness[sessionID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveDiagnostics(ctx context.Context, sessionID string, diags []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics[sessionID] = append([]model.GenerationDiagnostics(nil), diags...)
	return nil
}

func (s *MemoryStore) GetDiagnostics(ctx context.Context, sessionID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	diags, ok := s.diagnostics[sessionID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.GenerationDiagnostics(nil), diags...), true, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = make(map[string]model.BoardRecord)
	s.sessions = make(map[string]model.Session)
	s.populations = make(map[string]model.PopulationSnapshot)
	s.fitness = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	return nil
}
