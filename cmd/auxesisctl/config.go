package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"auxesis/internal/experiment"
	auxesis "auxesis/pkg/auxesis"
)

func experimentList() []string {
	return experiment.List()
}

// loadRunRequest reads a run request from a JSON file. The file is read as a
// generic map so unknown fields are ignored and absent fields stay at their
// zero values for merging.
func loadRunRequest(path string) (auxesis.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return auxesis.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return auxesis.RunRequest{}, fmt.Errorf("parse run request %s: %w", path, err)
	}

	var req auxesis.RunRequest
	if v, ok := asString(raw["experiment"]); ok {
		req.Experiment = v
	}
	if v, ok := asString(raw["config_path"]); ok {
		req.ConfigPath = v
	}
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asInt(raw["max_generations"]); ok {
		req.MaxGenerations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asString(raw["continue_from"]); ok {
		req.ContinueFrom = v
	}
	if v, ok := asBool(raw["write_artifacts"]); ok {
		req.WriteArtifacts = v
	}
	return req, nil
}

// mergeRunRequests overlays non-zero fields of override onto base.
func mergeRunRequests(base, override auxesis.RunRequest) auxesis.RunRequest {
	out := base
	if override.Experiment != "" {
		out.Experiment = override.Experiment
	}
	if override.ConfigPath != "" {
		out.ConfigPath = override.ConfigPath
	}
	if override.RunID != "" {
		out.RunID = override.RunID
	}
	if override.MaxGenerations != 0 {
		out.MaxGenerations = override.MaxGenerations
	}
	if override.Seed != 0 {
		out.Seed = override.Seed
	}
	if override.ContinueFrom != "" {
		out.ContinueFrom = override.ContinueFrom
	}
	if override.WriteArtifacts {
		out.WriteArtifacts = true
	}
	return out
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
