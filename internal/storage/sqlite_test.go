//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"auxesis/internal/model"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "auxesis.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)

	snapshot := model.PopulationSnapshot{
		ID:         "run-1",
		Experiment: "xor",
		Generation: 7,
		Meta:       model.Meta{InputCount: 3, OutputCount: 1, Acyclic: true, Activation: "logistic-steep", WeightScale: 5},
		Genomes: []model.Genome{
			{ID: 3, Birth: 6, Conns: []model.ConnectionGene{{ID: 4, Source: 0, Target: 3, Weight: -2.5}}},
		},
	}
	if err := store.SavePopulationSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.GetPopulationSnapshot(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if loaded.Generation != 7 || loaded.Genomes[0].Conns[0].Weight != -2.5 {
		t.Fatalf("snapshot did not round-trip: %+v", loaded)
	}

	// Upsert replaces.
	snapshot.Generation = 9
	if err := store.SavePopulationSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("save again: %v", err)
	}
	loaded, _, _ = store.GetPopulationSnapshot(ctx, "run-1")
	if loaded.Generation != 9 {
		t.Fatalf("expected upsert to generation 9, got %d", loaded.Generation)
	}
}

func TestSQLiteRunArtifacts(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)

	if err := store.SaveFitnessHistory(ctx, "run-a", []float64{1, 2, 3}); err != nil {
		t.Fatalf("save fitness: %v", err)
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-a", []model.GenerationDiagnostics{{Generation: 0, BestFitness: 3}}); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	if err := store.SaveTopGenomes(ctx, "run-b", []model.TopGenomeRecord{{Rank: 1, Fitness: 3}}); err != nil {
		t.Fatalf("save top: %v", err)
	}

	history, ok, err := store.GetFitnessHistory(ctx, "run-a")
	if err != nil || !ok || len(history) != 3 {
		t.Fatalf("fitness history: ok=%v err=%v %v", ok, err, history)
	}
	if _, ok, _ := store.GetFitnessHistory(ctx, "run-z"); ok {
		t.Fatal("missing run must report absent")
	}

	runs, err := store.ListRuns(ctx)
	if err != nil || len(runs) != 2 || runs[0] != "run-a" || runs[1] != "run-b" {
		t.Fatalf("list runs: %v %v", runs, err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, _ = store.ListRuns(ctx)
	if len(runs) != 0 {
		t.Fatalf("reset must clear artifacts, got %v", runs)
	}
}

func TestSQLiteExperimentSummary(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t)

	if err := store.SaveExperimentSummary(ctx, model.ExperimentSummary{Name: "xor", BestFitness: 13.7}); err != nil {
		t.Fatalf("save: %v", err)
	}
	summary, ok, err := store.GetExperimentSummary(ctx, "xor")
	if err != nil || !ok || summary.BestFitness != 13.7 {
		t.Fatalf("summary: ok=%v err=%v %+v", ok, err, summary)
	}
}
