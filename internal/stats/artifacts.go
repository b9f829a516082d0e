package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"kiltergen/internal/model"
)

const sessionIndexFile = "session_index.json"

// SessionArtifactConfig is the on-disk summary of how a session was set up.
type SessionArtifactConfig struct {
	SessionID       string   `json:"session_id"`
	BoardName       string   `json:"board_name"`
	DifficultyLabel string   `json:"difficulty_label,omitempty"`
	Difficulty      float64  `json:"difficulty"`
	Styles          []string `json:"styles,omitempty"`
	PopulationSize  int      `json:"population_size"`
	Generations     int      `json:"generations"`
	Seed            int64    `json:"seed"`
}

// RouteCoordinates is the plot-ready projection of one route.
type RouteCoordinates struct {
	Rank  int       `json:"rank"`
	Score float64   `json:"score,omitempty"`
	Holds []int     `json:"holds"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

type SessionArtifacts struct {
	Config      SessionArtifactConfig         `json:"config"`
	BestByRound []float64                     `json:"best_by_round"`
	Diagnostics []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	Routes      []RouteCoordinates            `json:"routes"`
}

type SessionIndexEntry struct {
	SessionID      string  `json:"session_id"`
	BoardName      string  `json:"board_name"`
	Difficulty     float64 `json:"difficulty"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	BestScore      float64 `json:"best_score"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

// WriteSessionArtifacts lays out one directory per session under baseDir
// and returns the session directory path.
func WriteSessionArtifacts(baseDir string, artifacts SessionArtifacts) (string, error) {
	if artifacts.Config.SessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	sessionDir := filepath.Join(baseDir, artifacts.Config.SessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(sessionDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(sessionDir, "routes.json"), artifacts.Routes); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(sessionDir, "diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeFitnessCSV(filepath.Join(sessionDir, "fitness_history.csv"), artifacts.BestByRound); err != nil {
		return "", err
	}

	return sessionDir, nil
}

func AppendSessionIndex(baseDir string, entry SessionIndexEntry) error {
	if entry.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListSessionIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].SessionID == entry.SessionID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, sessionIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, sessionIndexFile), index)
}

// ListSessionIndex returns index entries newest first.
func ListSessionIndex(baseDir string) ([]SessionIndexEntry, error) {
	path := filepath.Join(baseDir, sessionIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []SessionIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry SessionIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]SessionIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportSessionArtifacts copies a session directory into outDir.
func ExportSessionArtifacts(baseDir, sessionID, outDir string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}

	src := filepath.Join(baseDir, sessionID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, sessionID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"config.json", "routes.json", "diagnostics.json", "fitness_history.csv"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadSessionConfig(baseDir, sessionID string) (SessionArtifactConfig, bool, error) {
	path := filepath.Join(baseDir, sessionID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SessionArtifactConfig{}, false, nil
		}
		return SessionArtifactConfig{}, false, err
	}

	var cfg SessionArtifactConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SessionArtifactConfig{}, false, err
	}
	return cfg, true, nil
}

func ReadRouteCoordinates(baseDir, sessionID string) ([]RouteCoordinates, bool, error) {
	path := filepath.Join(baseDir, sessionID, "routes.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var routes []RouteCoordinates
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, false, err
	}
	return routes, true, nil
}

func ReadFitnessSeries(baseDir, sessionID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, sessionID, "fitness_history.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("fitness history header must have at least 2 columns")
	}

	series := make([]float64, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("fitness history row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func writeFitnessCSV(path string, bestByRound []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_score"}); err != nil {
		return err
	}
	for i, best := range bestByRound {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(best, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
