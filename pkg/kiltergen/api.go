// Package kiltergen is the public facade over the route generation
// platform: boards, interactive sessions and artifact export.
package kiltergen

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kiltergen/internal/evo"
	"kiltergen/internal/grade"
	"kiltergen/internal/model"
	"kiltergen/internal/platform"
	"kiltergen/internal/stats"
	"kiltergen/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultExportsDir   = "exports"
	defaultDBPath       = "kiltergen.db"

	styleSeparator = ","
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
}

type Client struct {
	store storage.Store
	gym   *platform.Gym

	artifactsDir string
	exportsDir   string
}

type SessionRequest struct {
	Board        string
	Grade        string
	Styles       []string
	Population   int
	EliteCount   int
	PoolSize     int
	MutationRate float64
	Seed         int64
}

type SessionSummary struct {
	SessionID    string
	Board        string
	Grade        string
	Difficulty   float64
	TargetLength int
	Styles       []string
	Population   int
	Seed         int64
}

type EvolveRequest struct {
	SessionID string
	Favorites []int
	Rounds    int
}

type EvolveSummary struct {
	SessionID   string
	Generation  int
	BestScore   float64
	MeanScore   float64
	BestByRound []float64
}

// RouteSummary is one displayed route. Index is the route's position in the
// session's population and is the value Evolve favorites refer to; Rank is
// only the display order after sorting by score.
type RouteSummary struct {
	Index   int
	Rank    int
	Score   float64
	HoldIDs []int
	X       []float64
	Y       []float64
}

type SessionItem struct {
	SessionID    string
	Board        string
	Difficulty   float64
	Styles       []string
	Generation   int
	Seed         int64
	CreatedAtUTC string
}

type ExportRequest struct {
	SessionID string
	Latest    bool
	OutDir    string
}

type ExportSummary struct {
	SessionID string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init brings up the gym and registers the built-in kilter board.
func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureGym(ctx)
	return err
}

// Reset drops all persisted state and re-registers the built-in board.
func (c *Client) Reset(ctx context.Context) error {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return err
	}
	if err := g.Reset(ctx); err != nil {
		return err
	}
	return registerBuiltinBoards(ctx, g)
}

// Board returns the persisted layout of a registered board.
func (c *Client) Board(ctx context.Context, name string) (model.BoardRecord, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return model.BoardRecord{}, err
	}
	b, ok := g.GetBoard(name)
	if !ok {
		return model.BoardRecord{}, fmt.Errorf("board not registered: %s", name)
	}
	return b.Record(), nil
}

// StartSession parses the grade and style labels and seeds a population.
func (c *Client) StartSession(ctx context.Context, req SessionRequest) (SessionSummary, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return SessionSummary{}, err
	}

	if req.Board == "" {
		req.Board = "kilter"
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	difficulty := grade.ParseDifficulty(req.Grade)
	style := grade.ParseStyle(req.Styles)

	session, err := g.StartSession(ctx, platform.SessionConfig{
		BoardName:      req.Board,
		Difficulty:     difficulty,
		StyleName:      strings.Join(req.Styles, styleSeparator),
		Style:          style,
		PopulationSize: req.Population,
		EliteCount:     req.EliteCount,
		PoolSize:       req.PoolSize,
		MutationRate:   req.MutationRate,
		Seed:           req.Seed,
	})
	if err != nil {
		return SessionSummary{}, err
	}

	state, err := g.Session(ctx, session.ID)
	if err != nil {
		return SessionSummary{}, err
	}

	return SessionSummary{
		SessionID:    session.ID,
		Board:        session.BoardName,
		Grade:        req.Grade,
		Difficulty:   difficulty,
		TargetLength: evo.TargetLength(difficulty),
		Styles:       req.Styles,
		Population:   len(state.Population),
		Seed:         session.Seed,
	}, nil
}

// Evolve advances a session by one or more rounds. Favorites apply to the
// first round only; later rounds in the same call run on machine scores.
func (c *Client) Evolve(ctx context.Context, req EvolveRequest) (EvolveSummary, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return EvolveSummary{}, err
	}
	if req.SessionID == "" {
		return EvolveSummary{}, fmt.Errorf("session id is required")
	}
	rounds := req.Rounds
	if rounds <= 0 {
		rounds = 1
	}

	summary := EvolveSummary{SessionID: req.SessionID}
	favorites := req.Favorites
	for round := 0; round < rounds; round++ {
		diag, err := g.Advance(ctx, req.SessionID, favorites)
		if err != nil {
			return EvolveSummary{}, err
		}
		favorites = nil
		summary.Generation = diag.Generation
		summary.BestScore = diag.BestScore
		summary.MeanScore = diag.MeanScore
		summary.BestByRound = append(summary.BestByRound, diag.BestScore)
	}
	return summary, nil
}

// Population returns the session's current routes ranked by machine score,
// with wall coordinates ready for display.
func (c *Client) Population(ctx context.Context, sessionID string) ([]RouteSummary, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return nil, err
	}
	state, err := g.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	b, ok := g.GetBoard(state.Session.BoardName)
	if !ok {
		return nil, fmt.Errorf("board not registered: %s", state.Session.BoardName)
	}
	style := grade.ParseStyle(splitStyles(state.Session.Style))

	out := make([]RouteSummary, 0, len(state.Population))
	for i, route := range state.Population {
		x, y, err := b.Coordinates(route)
		if err != nil {
			return nil, err
		}
		out = append(out, RouteSummary{
			Index:   i,
			Score:   evo.Score(b, route, style, state.Session.Difficulty),
			HoldIDs: append([]int(nil), route.HoldIDs...),
			X:       x,
			Y:       y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, sessionID string) ([]float64, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return nil, err
	}
	state, err := g.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.History, nil
}

func (c *Client) Diagnostics(ctx context.Context, sessionID string) ([]model.GenerationDiagnostics, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return nil, err
	}
	state, err := g.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Diagnostics, nil
}

// Sessions lists known sessions newest first.
func (c *Client) Sessions(ctx context.Context) ([]SessionItem, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := g.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	out := make([]SessionItem, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, SessionItem{
			SessionID:    session.ID,
			Board:        session.BoardName,
			Difficulty:   session.Difficulty,
			Styles:       splitStyles(session.Style),
			Generation:   session.Generation,
			Seed:         session.Seed,
			CreatedAtUTC: session.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// Export writes the session's artifacts (config, ranked routes, fitness
// history, diagnostics) under the artifacts dir and optionally copies them
// to an export directory.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	g, err := c.ensureGym(ctx)
	if err != nil {
		return ExportSummary{}, err
	}

	sessionID := req.SessionID
	if req.Latest {
		sessionID, err = c.latestSessionID(ctx)
		if err != nil {
			return ExportSummary{}, err
		}
	}
	if sessionID == "" {
		return ExportSummary{}, fmt.Errorf("session id is required")
	}

	state, err := g.Session(ctx, sessionID)
	if err != nil {
		return ExportSummary{}, err
	}
	routes, err := c.Population(ctx, sessionID)
	if err != nil {
		return ExportSummary{}, err
	}

	artifacts := stats.SessionArtifacts{
		Config: stats.SessionArtifactConfig{
			SessionID:      sessionID,
			BoardName:      state.Session.BoardName,
			Difficulty:     state.Session.Difficulty,
			Styles:         splitStyles(state.Session.Style),
			PopulationSize: len(state.Population),
			Generations:    state.Session.Generation,
			Seed:           state.Session.Seed,
		},
		BestByRound: state.History,
		Diagnostics: state.Diagnostics,
	}
	for _, route := range routes {
		artifacts.Routes = append(artifacts.Routes, stats.RouteCoordinates{
			Rank:  route.Rank,
			Score: route.Score,
			Holds: route.HoldIDs,
			X:     route.X,
			Y:     route.Y,
		})
	}

	dir, err := stats.WriteSessionArtifacts(c.artifactsDir, artifacts)
	if err != nil {
		return ExportSummary{}, err
	}

	best := 0.0
	for _, score := range state.History {
		if score > best {
			best = score
		}
	}
	if err := stats.AppendSessionIndex(c.artifactsDir, stats.SessionIndexEntry{
		SessionID:      sessionID,
		BoardName:      state.Session.BoardName,
		Difficulty:     state.Session.Difficulty,
		PopulationSize: len(state.Population),
		Generations:    state.Session.Generation,
		Seed:           state.Session.Seed,
		BestScore:      best,
		CreatedAtUTC:   state.Session.CreatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return ExportSummary{}, err
	}

	if req.OutDir != "" {
		dir, err = stats.ExportSessionArtifacts(c.artifactsDir, sessionID, req.OutDir)
		if err != nil {
			return ExportSummary{}, err
		}
	}
	return ExportSummary{SessionID: sessionID, Directory: dir}, nil
}

func (c *Client) latestSessionID(ctx context.Context) (string, error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", fmt.Errorf("no sessions recorded")
	}
	return sessions[0].SessionID, nil
}

func (c *Client) ensureGym(ctx context.Context) (*platform.Gym, error) {
	if c.gym != nil && c.gym.Started() {
		return c.gym, nil
	}
	g := platform.NewGym(platform.Config{Store: c.store})
	if err := g.Init(ctx); err != nil {
		return nil, err
	}
	if err := registerBuiltinBoards(ctx, g); err != nil {
		return nil, err
	}
	c.gym = g
	return g, nil
}

func splitStyles(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, styleSeparator)
}
