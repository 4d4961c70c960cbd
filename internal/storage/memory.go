package storage

import (
	"context"
	"sort"
	"sync"

	"auxesis/internal/model"
)

// MemoryStore keeps all records in process memory. Values round-trip through
// the codec so callers cannot alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	snapshots   map[string][]byte
	fitness     map[string][]float64
	diagnostics map[string][]byte
	species     map[string][]byte
	top         map[string][]byte
	summaries   map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.snapshots = make(map[string][]byte)
	s.fitness = make(map[string][]float64)
	s.diagnostics = make(map[string][]byte)
	s.species = make(map[string][]byte)
	s.top = make(map[string][]byte)
	s.summaries = make(map[string][]byte)
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *MemoryStore) SavePopulationSnapshot(_ context.Context, snapshot model.PopulationSnapshot) error {
	payload, err := EncodePopulationSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshots[snapshot.ID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetPopulationSnapshot(_ context.Context, id string) (model.PopulationSnapshot, bool, error) {
	s.mu.RLock()
	payload, ok := s.snapshots[id]
	s.mu.RUnlock()
	if !ok {
		return model.PopulationSnapshot{}, false, nil
	}
	snapshot, err := DecodePopulationSnapshot(payload)
	if err != nil {
		return model.PopulationSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	s.fitness[runID] = append([]float64(nil), history...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.fitness[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	payload, err := encodeJSON(diagnostics)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.diagnostics[runID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	payload, ok := s.diagnostics[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var out []model.GenerationDiagnostics
	if err := decodeJSON(payload, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *MemoryStore) SaveSpeciesHistory(_ context.Context, runID string, history []model.SpeciesGeneration) error {
	payload, err := encodeJSON(history)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.species[runID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetSpeciesHistory(_ context.Context, runID string) ([]model.SpeciesGeneration, bool, error) {
	s.mu.RLock()
	payload, ok := s.species[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var out []model.SpeciesGeneration
	if err := decodeJSON(payload, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *MemoryStore) SaveTopGenomes(_ context.Context, runID string, top []model.TopGenomeRecord) error {
	payload, err := encodeJSON(top)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.top[runID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetTopGenomes(_ context.Context, runID string) ([]model.TopGenomeRecord, bool, error) {
	s.mu.RLock()
	payload, ok := s.top[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var out []model.TopGenomeRecord
	if err := decodeJSON(payload, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *MemoryStore) SaveExperimentSummary(_ context.Context, summary model.ExperimentSummary) error {
	payload, err := EncodeExperimentSummary(summary)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.summaries[summary.Name] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetExperimentSummary(_ context.Context, name string) (model.ExperimentSummary, bool, error) {
	s.mu.RLock()
	payload, ok := s.summaries[name]
	s.mu.RUnlock()
	if !ok {
		return model.ExperimentSummary{}, false, nil
	}
	summary, err := DecodeExperimentSummary(payload)
	if err != nil {
		return model.ExperimentSummary{}, false, err
	}
	return summary, true, nil
}

func (s *MemoryStore) ListRuns(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]string, 0, len(s.fitness))
	for runID := range s.fitness {
		runs = append(runs, runID)
	}
	sort.Strings(runs)
	return runs, nil
}
