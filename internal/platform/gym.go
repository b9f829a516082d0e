package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"kiltergen/internal/board"
	"kiltergen/internal/evo"
	"kiltergen/internal/model"
	"kiltergen/internal/storage"
)

type Config struct {
	Store storage.Store
}

// SessionConfig describes a new interactive generation session.
type SessionConfig struct {
	SessionID      string
	BoardName      string
	Difficulty     float64
	StyleName      string
	Style          model.StyleParams
	PopulationSize int
	EliteCount     int
	PoolSize       int
	MutationRate   float64
	Seed           int64
}

// SessionState is the live view of a session returned to callers.
type SessionState struct {
	Session     model.Session
	Population  []model.Route
	History     []float64
	Diagnostics []model.GenerationDiagnostics
}

type liveSession struct {
	session     model.Session
	board       *board.Board
	style       model.StyleParams
	evolver     *evo.Evolver
	population  []model.Route
	history     []float64
	diagnostics []model.GenerationDiagnostics
}

// Gym coordinates boards, sessions and persistence. It is the process-wide
// entry point for the interactive evolution loop.
type Gym struct {
	store storage.Store

	mu       sync.RWMutex
	boards   map[string]*board.Board
	sessions map[string]*liveSession
	started  bool

	config Config
}

var (
	defaultGymMu sync.Mutex
	defaultGym   *Gym
)

func NewGym(cfg Config) *Gym {
	return &Gym{
		store:    cfg.Store,
		boards:   make(map[string]*board.Board),
		sessions: make(map[string]*liveSession),
		config:   cfg,
	}
}

// StartDefault initializes the process-wide gym, reusing a running one.
func StartDefault(ctx context.Context, cfg Config) (*Gym, error) {
	defaultGymMu.Lock()
	defer defaultGymMu.Unlock()

	if defaultGym != nil && defaultGym.Started() {
		return defaultGym, nil
	}

	g := NewGym(cfg)
	if err := g.Init(ctx); err != nil {
		return nil, err
	}
	defaultGym = g
	return defaultGym, nil
}

func Default() (*Gym, bool) {
	defaultGymMu.Lock()
	g := defaultGym
	defaultGymMu.Unlock()

	if g == nil || !g.Started() {
		return nil, false
	}
	return g, true
}

func StopDefault() error {
	defaultGymMu.Lock()
	g := defaultGym
	defaultGymMu.Unlock()
	if g == nil {
		return nil
	}
	g.Stop()
	defaultGymMu.Lock()
	if defaultGym == g {
		defaultGym = nil
	}
	defaultGymMu.Unlock()
	return nil
}

func (g *Gym) Init(ctx context.Context) error {
	if g.store == nil {
		return fmt.Errorf("store is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return nil
	}
	if err := g.store.Init(ctx); err != nil {
		return err
	}
	g.started = true
	return nil
}

// Reset stops the gym, drops all persisted state and re-initializes.
func (g *Gym) Reset(ctx context.Context) error {
	g.Stop()
	if resetter, ok := g.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return g.Init(ctx)
}

func (g *Gym) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = false
	g.boards = make(map[string]*board.Board)
	g.sessions = make(map[string]*liveSession)
}

func (g *Gym) Started() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.started
}

// RegisterBoard makes a board available for sessions and persists its layout.
func (g *Gym) RegisterBoard(ctx context.Context, b *board.Board) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}

	g.mu.Lock()
	if !g.started {
		g.mu.Unlock()
		return fmt.Errorf("gym is not initialized")
	}
	g.boards[b.Name()] = b
	g.mu.Unlock()

	return g.store.SaveBoard(ctx, b.Record())
}

func (g *Gym) GetBoard(name string) (*board.Board, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.boards[name]
	return b, ok
}

func (g *Gym) RegisteredBoards() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.boards))
	for name := range g.boards {
		names = append(names, name)
	}
	return names
}

// StartSession seeds a population for the given board and persists the
// session record and the initial snapshot.
func (g *Gym) StartSession(ctx context.Context, cfg SessionConfig) (model.Session, error) {
	g.mu.RLock()
	b, ok := g.boards[cfg.BoardName]
	started := g.started
	g.mu.RUnlock()

	if !started {
		return model.Session{}, fmt.Errorf("gym is not initialized")
	}
	if !ok {
		return model.Session{}, fmt.Errorf("board not registered: %s", cfg.BoardName)
	}

	evolver, err := evo.NewEvolver(evo.Config{
		Board:          b,
		PopulationSize: cfg.PopulationSize,
		EliteCount:     cfg.EliteCount,
		PoolSize:       cfg.PoolSize,
		MutationRate:   cfg.MutationRate,
		Seed:           cfg.Seed,
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("start session: %w", err)
	}

	population, err := evolver.InitPopulation(cfg.Difficulty, cfg.Style)
	if err != nil {
		return model.Session{}, fmt.Errorf("start session: %w", err)
	}

	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	session := model.Session{
		ID:         id,
		BoardName:  cfg.BoardName,
		Difficulty: cfg.Difficulty,
		Style:      cfg.StyleName,
		Generation: 0,
		Seed:       cfg.Seed,
		CreatedAt:  time.Now().UTC(),
	}

	live := &liveSession{
		session:    session,
		board:      b,
		style:      cfg.Style,
		evolver:    evolver,
		population: population,
	}

	g.mu.Lock()
	if _, exists := g.sessions[id]; exists {
		g.mu.Unlock()
		return model.Session{}, fmt.Errorf("session already active: %s", id)
	}
	g.sessions[id] = live
	g.mu.Unlock()

	if err := g.persistSession(ctx, live); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// Advance applies one round of human feedback and breeds the next
// generation. Favorites index into the current population; out-of-range
// entries are ignored.
func (g *Gym) Advance(ctx context.Context, sessionID string, favorites []int) (model.GenerationDiagnostics, error) {
	g.mu.Lock()
	live, ok := g.sessions[sessionID]
	if !ok {
		g.mu.Unlock()
		return model.GenerationDiagnostics{}, fmt.Errorf("session not active: %s", sessionID)
	}

	next, diag := live.evolver.Evolve(live.population, favorites, live.session.Difficulty, live.style)
	live.population = next
	live.session.Generation++
	diag.Generation = live.session.Generation
	live.history = append(live.history, diag.BestScore)
	live.diagnostics = append(live.diagnostics, diag)
	g.mu.Unlock()

	if err := g.persistSession(ctx, live); err != nil {
		return model.GenerationDiagnostics{}, err
	}
	return diag, nil
}

// Session returns the live state of a session, falling back to the store
// for sessions from earlier processes.
func (g *Gym) Session(ctx context.Context, sessionID string) (SessionState, error) {
	g.mu.RLock()
	live, ok := g.sessions[sessionID]
	var state SessionState
	if ok {
		state = SessionState{
			Session:     live.session,
			Population:  cloneRoutes(live.population),
			History:     append([]float64(nil), live.history...),
			Diagnostics: append([]model.GenerationDiagnostics(nil), live.diagnostics...),
		}
	}
	g.mu.RUnlock()
	if ok {
		return state, nil
	}

	session, found, err := g.store.GetSession(ctx, sessionID)
	if err != nil {
		return SessionState{}, err
	}
	if !found {
		return SessionState{}, fmt.Errorf("session not found: %s", sessionID)
	}
	state.Session = session
	if snapshot, found, err := g.store.GetPopulation(ctx, sessionID); err != nil {
		return SessionState{}, err
	} else if found {
		state.Population = snapshot.Routes
	}
	if history, found, err := g.store.GetFitnessHistory(ctx, sessionID); err != nil {
		return SessionState{}, err
	} else if found {
		state.History = history
	}
	if diags, found, err := g.store.GetDiagnostics(ctx, sessionID); err != nil {
		return SessionState{}, err
	} else if found {
		state.Diagnostics = diags
	}
	return state, nil
}

func (g *Gym) ListSessions(ctx context.Context) ([]model.Session, error) {
	return g.store.ListSessions(ctx)
}

func (g *Gym) persistSession(ctx context.Context, live *liveSession) error {
	g.mu.RLock()
	session := live.session
	snapshot := model.PopulationSnapshot{
		SessionID:  session.ID,
		Generation: session.Generation,
		Routes:     cloneRoutes(live.population),
	}
	history := append([]float64(nil), live.history...)
	diags := append([]model.GenerationDiagnostics(nil), live.diagnostics...)
	g.mu.RUnlock()

	if err := g.store.SaveSession(ctx, session); err != nil {
		return err
	}
	if err := g.store.SavePopulation(ctx, snapshot); err != nil {
		return err
	}
	if err := g.store.SaveFitnessHistory(ctx, session.ID, history); err != nil {
		return err
	}
	return g.store.SaveDiagnostics(ctx, session.ID, diags)
}

func cloneRoutes(routes []model.Route) []model.Route {
	out := make([]model.Route, len(routes))
	for i, route := range routes {
		out[i] = route.Clone()
	}
	return out
}
