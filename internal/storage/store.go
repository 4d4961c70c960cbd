// Package storage persists run artifacts: population snapshots, per-
// generation histories, and the best genomes of each run.
package storage

import (
	"context"

	"auxesis/internal/model"
)

// Store defines the persistence operations for run artifacts.
type Store interface {
	Init(ctx context.Context) error

	SavePopulationSnapshot(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulationSnapshot(ctx context.Context, id string) (model.PopulationSnapshot, bool, error)

	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)

	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)

	SaveSpeciesHistory(ctx context.Context, runID string, history []model.SpeciesGeneration) error
	GetSpeciesHistory(ctx context.Context, runID string) ([]model.SpeciesGeneration, bool, error)

	SaveTopGenomes(ctx context.Context, runID string, top []model.TopGenomeRecord) error
	GetTopGenomes(ctx context.Context, runID string) ([]model.TopGenomeRecord, bool, error)

	SaveExperimentSummary(ctx context.Context, summary model.ExperimentSummary) error
	GetExperimentSummary(ctx context.Context, name string) (model.ExperimentSummary, bool, error)

	ListRuns(ctx context.Context) ([]string, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
