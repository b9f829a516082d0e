package main

import (
	"encoding/json"
	"fmt"
	"os"

	"kiltergen/pkg/kiltergen"
)

// loadSessionRequestFromConfig reads a session profile JSON file. Profiles
// use loose typing so hand-written files stay forgiving about numbers.
func loadSessionRequestFromConfig(path string) (kiltergen.SessionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return kiltergen.SessionRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return kiltergen.SessionRequest{}, err
	}

	var req kiltergen.SessionRequest
	if v, ok := asString(raw["board"]); ok {
		req.Board = v
	}
	if v, ok := asString(raw["grade"]); ok {
		req.Grade = v
	}
	if v, ok := asStringSlice(raw["styles"]); ok {
		req.Styles = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["elite_count"]); ok {
		req.EliteCount = v
	}
	if v, ok := asInt(raw["pool_size"]); ok {
		req.PoolSize = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	return req, nil
}

func loadOrDefaultSessionRequest(configPath string) (kiltergen.SessionRequest, error) {
	if configPath == "" {
		return kiltergen.SessionRequest{}, nil
	}
	req, err := loadSessionRequestFromConfig(configPath)
	if err != nil {
		return kiltergen.SessionRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
