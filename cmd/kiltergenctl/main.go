package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"kiltergen/internal/grade"
	"kiltergen/internal/storage"
	"kiltergen/pkg/kiltergen"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "board":
		return runBoard(ctx, args[1:])
	case "session":
		return runSession(ctx, args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "loop":
		return runLoop(ctx, args[1:])
	case "population":
		return runPopulation(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "sessions":
		return runSessions(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: kiltergenctl <init|reset|board|session|evolve|loop|population|fitness|diagnostics|sessions|export> [flags]", msg)
}

func addStoreFlags(fs *flag.FlagSet) (*string, *string) {
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "kiltergen.db", "sqlite database path")
	return storeKind, dbPath
}

func newClient(storeKind, dbPath string) (*kiltergen.Client, error) {
	return kiltergen.New(kiltergen.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runBoard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	name := fs.String("name", "kilter", "board name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	record, err := client.Board(ctx, *name)
	if err != nil {
		return err
	}
	fmt.Printf("board=%s holds=%d\n", record.Name, len(record.Holds))
	for _, hold := range record.Holds {
		fmt.Printf("  %3d  x=%.3f y=%.3f size=%.2f\n", hold.ID, hold.X, hold.Y, hold.Size)
	}
	return nil
}

func sessionFlags(fs *flag.FlagSet) (configPath, boardName, gradeLabel, styles *string, population *int, seed *int64) {
	configPath = fs.String("config", "", "optional session profile JSON path")
	boardName = fs.String("board", "kilter", "board name")
	gradeLabel = fs.String("grade", "V4", "difficulty grade (V-scale or Fontainebleau)")
	styles = fs.String("styles", "", "comma-separated style keywords: "+strings.Join(grade.StyleKeywords(), ", "))
	population = fs.Int("pop", 0, "population size (0 uses default)")
	seed = fs.Int64("seed", 0, "rng seed (0 uses wall clock)")
	return
}

func buildSessionRequest(configPath, boardName, gradeLabel, styles string, population int, seed int64, setFlags map[string]bool) (kiltergen.SessionRequest, error) {
	req, err := loadOrDefaultSessionRequest(configPath)
	if err != nil {
		return kiltergen.SessionRequest{}, err
	}
	if configPath == "" || setFlags["board"] {
		req.Board = boardName
	}
	if configPath == "" || setFlags["grade"] {
		req.Grade = gradeLabel
	}
	if configPath == "" || setFlags["styles"] {
		req.Styles = splitCSV(styles)
	}
	if configPath == "" || setFlags["pop"] {
		req.Population = population
	}
	if configPath == "" || setFlags["seed"] {
		req.Seed = seed
	}
	return req, nil
}

func runSession(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	configPath, boardName, gradeLabel, styles, population, seed := sessionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := visitedFlags(fs)

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	req, err := buildSessionRequest(*configPath, *boardName, *gradeLabel, *styles, *population, *seed, setFlags)
	if err != nil {
		return err
	}
	summary, err := client.StartSession(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("session=%s board=%s difficulty=%.2f target-length=%d population=%d seed=%d\n",
		summary.SessionID, summary.Board, summary.Difficulty, summary.TargetLength, summary.Population, summary.Seed)
	return nil
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	sessionID := fs.String("session", "", "session id")
	favorites := fs.String("favorites", "", "comma-separated favorite route indexes")
	rounds := fs.Int("rounds", 1, "generations to advance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	picks, err := parseFavorites(*favorites)
	if err != nil {
		return err
	}
	summary, err := client.Evolve(ctx, kiltergen.EvolveRequest{
		SessionID: *sessionID,
		Favorites: picks,
		Rounds:    *rounds,
	})
	if err != nil {
		return err
	}
	fmt.Printf("session=%s generation=%d best=%.4f mean=%.4f\n",
		summary.SessionID, summary.Generation, summary.BestScore, summary.MeanScore)
	return nil
}

// runLoop drives the interactive breed-and-rate cycle: show the ranked
// population, read favorite indexes from stdin, advance, repeat.
func runLoop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("loop", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	configPath, boardName, gradeLabel, styles, population, seed := sessionFlags(fs)
	sessionID := fs.String("session", "", "resume an existing session instead of starting one")
	top := fs.Int("top", 5, "routes to display per round")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := visitedFlags(fs)

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	id := *sessionID
	if id == "" {
		req, err := buildSessionRequest(*configPath, *boardName, *gradeLabel, *styles, *population, *seed, setFlags)
		if err != nil {
			return err
		}
		summary, err := client.StartSession(ctx, req)
		if err != nil {
			return err
		}
		id = summary.SessionID
		fmt.Printf("session=%s difficulty=%.2f target-length=%d\n", id, summary.Difficulty, summary.TargetLength)
	}

	return interactiveLoop(ctx, client, id, *top, os.Stdin, os.Stdout)
}

func interactiveLoop(ctx context.Context, client *kiltergen.Client, sessionID string, top int, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		routes, err := client.Population(ctx, sessionID)
		if err != nil {
			return err
		}
		if top > len(routes) {
			top = len(routes)
		}
		// The bracketed number is the population index favorites refer to,
		// not the display rank.
		for _, route := range routes[:top] {
			fmt.Fprintf(out, "  [%d] score=%.4f holds=%v\n", route.Index, route.Score, route.HoldIDs)
		}

		fmt.Fprint(out, "favorites (indexes, empty for none, q to quit): ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		picks, err := parseFavorites(line)
		if err != nil {
			fmt.Fprintf(out, "bad input: %v\n", err)
			continue
		}
		summary, err := client.Evolve(ctx, kiltergen.EvolveRequest{SessionID: sessionID, Favorites: picks})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "generation=%d best=%.4f mean=%.4f\n", summary.Generation, summary.BestScore, summary.MeanScore)
	}
}

func runPopulation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("population", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	sessionID := fs.String("session", "", "session id")
	limit := fs.Int("limit", 0, "routes to show (0 shows all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	routes, err := client.Population(ctx, *sessionID)
	if err != nil {
		return err
	}
	if *limit > 0 && *limit < len(routes) {
		routes = routes[:*limit]
	}
	for _, route := range routes {
		fmt.Printf("rank=%d index=%d score=%.4f holds=%v\n", route.Rank, route.Index, route.Score, route.HoldIDs)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	sessionID := fs.String("session", "", "session id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	history, err := client.FitnessHistory(ctx, *sessionID)
	if err != nil {
		return err
	}
	for i, best := range history {
		fmt.Printf("generation=%d best=%.4f\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	sessionID := fs.String("session", "", "session id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	diags, err := client.Diagnostics(ctx, *sessionID)
	if err != nil {
		return err
	}
	for _, diag := range diags {
		fmt.Printf("generation=%d best=%.4f mean=%.4f min=%.4f favorites=%d mean-length=%.1f\n",
			diag.Generation, diag.BestScore, diag.MeanScore, diag.MinScore, diag.FavoriteCount, diag.MeanLength)
	}
	return nil
}

func runSessions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	limit := fs.Int("limit", 0, "sessions to show (0 shows all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer client.Close()

	sessions, err := client.Sessions(ctx)
	if err != nil {
		return err
	}
	if *limit > 0 && *limit < len(sessions) {
		sessions = sessions[:*limit]
	}
	for _, session := range sessions {
		fmt.Printf("session=%s board=%s difficulty=%.2f generation=%d seed=%d created=%s\n",
			session.SessionID, session.Board, session.Difficulty, session.Generation, session.Seed, session.CreatedAtUTC)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	sessionID := fs.String("session", "", "session id")
	latest := fs.Bool("latest", false, "export the most recent session")
	outDir := fs.String("out", "", "copy artifacts into this directory")
	artifactsDir := fs.String("artifacts", "", "artifacts base directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := kiltergen.New(kiltergen.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: *artifactsDir,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Export(ctx, kiltergen.ExportRequest{
		SessionID: *sessionID,
		Latest:    *latest,
		OutDir:    *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported session=%s dir=%s\n", summary.SessionID, summary.Directory)
	return nil
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

func parseFavorites(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' '
	})
	picks := make([]int, 0, len(fields))
	for _, field := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("favorite index %q: %w", field, err)
		}
		picks = append(picks, idx)
	}
	return picks, nil
}

func splitCSV(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
