package storage

import (
	"context"
	"testing"

	"auxesis/internal/model"
)

func TestMemoryStoreSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	snapshot := model.PopulationSnapshot{
		ID:         "run-1",
		Experiment: "xor",
		Generation: 12,
		Meta:       model.Meta{InputCount: 3, OutputCount: 1, Acyclic: true, Activation: "logistic-steep", WeightScale: 5},
		Genomes: []model.Genome{
			{ID: 7, Birth: 11, Conns: []model.ConnectionGene{{ID: 4, Source: 0, Target: 3, Weight: 1.5}}},
		},
	}
	if err := store.SavePopulationSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.GetPopulationSnapshot(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if loaded.Generation != 12 || len(loaded.Genomes) != 1 || loaded.Genomes[0].Conns[0].Weight != 1.5 {
		t.Fatalf("snapshot did not round-trip: %+v", loaded)
	}
	if loaded.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected stamped schema version, got %d", loaded.SchemaVersion)
	}

	if _, ok, _ := store.GetPopulationSnapshot(ctx, "missing"); ok {
		t.Fatal("missing snapshot must report absent")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	history := []float64{1, 2, 3}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save: %v", err)
	}
	history[0] = 99

	loaded, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if loaded[0] != 1 {
		t.Fatal("stored history aliased the caller's slice")
	}
	loaded[1] = 99
	again, _, _ := store.GetFitnessHistory(ctx, "run-1")
	if again[1] != 2 {
		t.Fatal("returned history aliased the stored slice")
	}
}

func TestMemoryStoreListRunsAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.SaveFitnessHistory(ctx, "b", []float64{1})
	_ = store.SaveFitnessHistory(ctx, "a", []float64{2})

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0] != "a" || runs[1] != "b" {
		t.Fatalf("expected sorted runs [a b], got %v", runs)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, _ = store.ListRuns(ctx)
	if len(runs) != 0 {
		t.Fatalf("reset must clear runs, got %v", runs)
	}
}

func TestExperimentSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveExperimentSummary(ctx, model.ExperimentSummary{Name: "xor", BestFitness: 12.5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	summary, ok, err := store.GetExperimentSummary(ctx, "xor")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if summary.BestFitness != 12.5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	payload := []byte(`{"schema_version": 999, "codec_version": 1, "id": "x"}`)
	if _, err := DecodePopulationSnapshot(payload); err == nil {
		t.Fatal("expected version mismatch error")
	}
}

func TestNewStoreFactory(t *testing.T) {
	if _, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, err := NewStore("cloud", ""); err == nil {
		t.Fatal("unknown backend must be rejected")
	}
}
