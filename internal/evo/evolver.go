package evo

import (
	"errors"
	"math/rand"
	"sort"

	"kiltergen/internal/board"
	"kiltergen/internal/model"
)

// Hybrid score weighting: human preference dominates, the machine score
// breaks ties among non-favorites.
const (
	humanWeight   = 0.7
	machineWeight = 0.3
)

// ScoredRoute is one population member with its hybrid score components.
type ScoredRoute struct {
	Index    int
	Route    model.Route
	Machine  float64
	Favorite bool
	Score    float64
}

// Config parameterizes an Evolver. Zero values select the defaults: a
// population of 24 with 4 elites, a top-12 breeding pool, mutation rate 0.2,
// uniform pool selection and the nudge/add/remove mutation policy.
type Config struct {
	Board          *board.Board
	PopulationSize int
	EliteCount     int
	PoolSize       int
	MutationRate   float64
	MutationPolicy []WeightedMutation
	Selector       Selector
	Seed           int64
}

// Evolver drives the generational loop: hybrid scoring, elitist selection,
// crossover and mutation. It is not safe for concurrent use; concurrent
// sessions own independent Evolver instances.
type Evolver struct {
	cfg   Config
	rng   *rand.Rand
	synth Synthesizer
}

func NewEvolver(cfg Config) (*Evolver, error) {
	if cfg.Board == nil {
		return nil, errors.New("board is required")
	}
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = 24
	}
	if cfg.EliteCount <= 0 {
		cfg.EliteCount = 4
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 12
	}
	if cfg.MutationRate <= 0 {
		cfg.MutationRate = 0.2
	}
	if cfg.EliteCount > cfg.PopulationSize {
		return nil, errors.New("elite count must be <= population size")
	}
	if cfg.PoolSize > cfg.PopulationSize {
		return nil, errors.New("pool size must be <= population size")
	}
	if cfg.MutationRate > 1 {
		return nil, errors.New("mutation rate must be <= 1")
	}
	if len(cfg.MutationPolicy) == 0 {
		cfg.MutationPolicy = DefaultMutationPolicy(cfg.Board)
	}
	total := 0.0
	for _, item := range cfg.MutationPolicy {
		if item.Operator == nil {
			return nil, errors.New("mutation policy operator is required")
		}
		if item.Weight < 0 {
			return nil, errors.New("mutation policy weight must be >= 0")
		}
		total += item.Weight
	}
	if total <= 0 {
		return nil, errors.New("mutation policy requires at least one positive weight")
	}
	if cfg.Selector == nil {
		cfg.Selector = UniformPoolSelector{}
	}

	return &Evolver{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		synth: Synthesizer{Board: cfg.Board},
	}, nil
}

// InitPopulation synthesizes generation one. Each route's target length is
// the difficulty target jittered by uniform{-2..2}, floored at 4.
func (e *Evolver) InitPopulation(difficulty float64, style model.StyleParams) ([]model.Route, error) {
	pop := make([]model.Route, 0, e.cfg.PopulationSize)
	target := TargetLength(difficulty)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		length := target + e.rng.Intn(5) - 2
		if length < minSeedLength {
			length = minSeedLength
		}
		route, err := e.synth.Synthesize(e.rng, length, style)
		if err != nil {
			return nil, err
		}
		pop = append(pop, route)
	}
	return pop, nil
}

// ScorePopulation computes the hybrid score for every route in population
// order. Favorite indices outside the population are ignored.
func (e *Evolver) ScorePopulation(population []model.Route, favorites []int, difficulty float64, style model.StyleParams) []ScoredRoute {
	favoriteSet := make(map[int]struct{}, len(favorites))
	for _, idx := range favorites {
		if idx >= 0 && idx < len(population) {
			favoriteSet[idx] = struct{}{}
		}
	}

	scored := make([]ScoredRoute, 0, len(population))
	for i, route := range population {
		machine := Score(e.cfg.Board, route, style, difficulty)
		human := 0.0
		_, favorite := favoriteSet[i]
		if favorite {
			human = 1.0
		}
		scored = append(scored, ScoredRoute{
			Index:    i,
			Route:    route,
			Machine:  machine,
			Favorite: favorite,
			Score:    humanWeight*human + machineWeight*machine,
		})
	}
	return scored
}

// Evolve produces the next generation: rank by hybrid score, carry the
// elites forward by value, breed the remainder from the top pool via
// crossover, and mutate each child with the configured probability. Favorite
// indices are valid only against this exact population instance.
func (e *Evolver) Evolve(population []model.Route, favorites []int, difficulty float64, style model.StyleParams) ([]model.Route, model.GenerationDiagnostics) {
	scored := e.ScorePopulation(population, favorites, difficulty, style)
	ranked := append([]ScoredRoute(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	diag := summarize(ranked)

	next := make([]model.Route, 0, e.cfg.PopulationSize)
	eliteCount := e.cfg.EliteCount
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}
	for i := 0; i < eliteCount; i++ {
		next = append(next, ranked[i].Route.Clone())
	}

	poolSize := e.cfg.PoolSize
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	pool := ranked[:poolSize]
	if len(pool) == 0 {
		return next, diag
	}

	for len(next) < e.cfg.PopulationSize {
		p1, err := e.cfg.Selector.PickParent(e.rng, pool)
		if err != nil {
			break
		}
		p2, err := e.cfg.Selector.PickParent(e.rng, pool)
		if err != nil {
			break
		}

		childIDs := Crossover(e.rng, p1.HoldIDs, p2.HoldIDs)
		if e.rng.Float64() < e.cfg.MutationRate {
			childIDs = e.applyMutation(childIDs, style)
		}
		next = append(next, model.Route{HoldIDs: childIDs})
	}

	return next, diag
}

// applyMutation picks one weighted operator and applies it. Routes too short
// to mutate and operator preconditions that cannot be met leave the sequence
// unchanged.
func (e *Evolver) applyMutation(holdIDs []int, style model.StyleParams) []int {
	if len(holdIDs) < minMutableLength {
		return holdIDs
	}

	operator := e.chooseMutation()
	mutated, err := operator.Apply(e.rng, holdIDs, style)
	if err != nil {
		return holdIDs
	}
	return mutated
}

func (e *Evolver) chooseMutation() Operator {
	total := 0.0
	for _, item := range e.cfg.MutationPolicy {
		total += item.Weight
	}
	pick := e.rng.Float64() * total
	acc := 0.0
	for _, item := range e.cfg.MutationPolicy {
		acc += item.Weight
		if pick <= acc {
			return item.Operator
		}
	}
	return e.cfg.MutationPolicy[len(e.cfg.MutationPolicy)-1].Operator
}

func summarize(ranked []ScoredRoute) model.GenerationDiagnostics {
	if len(ranked) == 0 {
		return model.GenerationDiagnostics{}
	}

	totalScore := 0.0
	totalLength := 0
	minScore := ranked[0].Score
	favorites := 0
	for _, item := range ranked {
		totalScore += item.Score
		totalLength += item.Route.Len()
		if item.Score < minScore {
			minScore = item.Score
		}
		if item.Favorite {
			favorites++
		}
	}

	return model.GenerationDiagnostics{
		BestScore:     ranked[0].Score,
		MeanScore:     totalScore / float64(len(ranked)),
		MinScore:      minScore,
		FavoriteCount: favorites,
		MeanLength:    float64(totalLength) / float64(len(ranked)),
	}
}
