package evo

import (
	"context"
	"reflect"
	"testing"

	"auxesis/internal/model"
	"auxesis/internal/network"
	"auxesis/internal/task"
)

func xorConfig(workers int, seed int64) Config {
	scheme := task.NewXORScheme()
	return Config{
		Scheme: scheme,
		Meta: model.Meta{
			InputCount:  scheme.InputCount() + 1,
			OutputCount: scheme.OutputCount(),
			Acyclic:     true,
			Activation:  "logistic-steep",
			WeightScale: 5,
		},
		PopulationSize:          150,
		Settings:                DefaultEvolutionSettings(),
		Asexual:                 DefaultAsexualSettings(),
		Sexual:                  DefaultSexualSettings(),
		InitialInterconnections: 0.5,
		Workers:                 workers,
		Seed:                    seed,
	}
}

func TestNewEvolutionAlgorithmValidation(t *testing.T) {
	cfg := xorConfig(1, 1)
	cfg.PopulationSize = 0
	if _, err := NewEvolutionAlgorithm(cfg); err == nil {
		t.Fatal("zero population must be rejected")
	}

	cfg = xorConfig(1, 1)
	cfg.Meta.Activation = "no-such-fn"
	if _, err := NewEvolutionAlgorithm(cfg); err == nil {
		t.Fatal("unknown activation must be rejected")
	}

	cfg = xorConfig(1, 1)
	cfg.Asexual = AsexualSettings{ConnectionWeightProbability: 0.5, AddNodeProbability: 0.1}
	if _, err := NewEvolutionAlgorithm(cfg); err == nil {
		t.Fatal("mutation probabilities not summing to 1 must be rejected")
	}
}

func TestRunRecordsDiagnosticsAndNeverRegresses(t *testing.T) {
	alg, err := NewEvolutionAlgorithm(xorConfig(2, 42))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	result, err := alg.Run(context.Background(), 40)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Generations == 0 || len(result.Diagnostics) != result.Generations {
		t.Fatalf("expected one diagnostics row per generation, got %d rows for %d generations", len(result.Diagnostics), result.Generations)
	}
	if len(result.FinalPopulation) != 150 {
		t.Fatalf("final population size %d", len(result.FinalPopulation))
	}
	// Elitism keeps the best genome alive, so the tracked best is monotone.
	if result.Best.Fitness.Primary < result.BestByGeneration[0] {
		t.Fatalf("best fitness regressed: %v < %v", result.Best.Fitness.Primary, result.BestByGeneration[0])
	}
	for _, d := range result.Diagnostics {
		if d.SpeciesCount < 1 {
			t.Fatalf("generation %d has no species", d.Generation)
		}
		if d.Evaluations != 150 {
			t.Fatalf("generation %d evaluated %d genomes", d.Generation, d.Evaluations)
		}
	}
}

func TestSerialRunIsReproducible(t *testing.T) {
	run := func() RunResult {
		alg, err := NewEvolutionAlgorithm(xorConfig(1, 42))
		if err != nil {
			t.Fatalf("construct: %v", err)
		}
		result, err := alg.Run(context.Background(), 15)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a.BestByGeneration, b.BestByGeneration) {
		t.Fatalf("fitness trajectories diverged:\n%v\n%v", a.BestByGeneration, b.BestByGeneration)
	}
	if !reflect.DeepEqual(a.FinalPopulation, b.FinalPopulation) {
		t.Fatal("final populations diverged for identical seeds")
	}
}

func TestParallelismDoesNotChangeTrajectory(t *testing.T) {
	run := func(workers int) RunResult {
		alg, err := NewEvolutionAlgorithm(xorConfig(workers, 42))
		if err != nil {
			t.Fatalf("construct: %v", err)
		}
		result, err := alg.Run(context.Background(), 15)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	serial, parallel := run(1), run(4)
	// Evaluation draws no randomness and reproduction is serial, so the
	// trajectory is identical for any worker count.
	if !reflect.DeepEqual(serial.BestByGeneration, parallel.BestByGeneration) {
		t.Fatalf("worker count changed the trajectory:\n%v\n%v", serial.BestByGeneration, parallel.BestByGeneration)
	}
}

func TestRunStopsOnCommand(t *testing.T) {
	cfg := xorConfig(1, 7)
	control := make(chan Command, 1)
	control <- CommandStop
	cfg.Control = control

	alg, err := NewEvolutionAlgorithm(cfg)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	result, err := alg.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Generations != 0 {
		t.Fatalf("expected stop before the first generation, ran %d", result.Generations)
	}
}

func TestRunHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	alg, err := NewEvolutionAlgorithm(xorConfig(1, 7))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if _, err := alg.Run(ctx, 10); err == nil {
		t.Fatal("expected context error")
	}
}

func TestPartitionsAreContiguousAndDisjoint(t *testing.T) {
	for _, tc := range []struct{ n, workers int }{{10, 3}, {4, 8}, {150, 4}, {1, 1}} {
		parts := partitions(tc.n, tc.workers)
		covered := 0
		for i, p := range parts {
			if p.end < p.start {
				t.Fatalf("n=%d workers=%d: inverted range %+v", tc.n, tc.workers, p)
			}
			if i > 0 && parts[i-1].end != p.start {
				t.Fatalf("n=%d workers=%d: gap between %+v and %+v", tc.n, tc.workers, parts[i-1], p)
			}
			covered += p.end - p.start
		}
		if covered != tc.n {
			t.Fatalf("n=%d workers=%d: covered %d", tc.n, tc.workers, covered)
		}
	}
}

func TestXORFitnessImprovesOverGenerations(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running evolution test")
	}
	alg, err := NewEvolutionAlgorithm(xorConfig(4, 42))
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	result, err := alg.Run(context.Background(), 200)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Best.Fitness.Primary <= result.BestByGeneration[0] {
		t.Fatalf("no improvement after %d generations: start %v, best %v",
			result.Generations, result.BestByGeneration[0], result.Best.Fitness.Primary)
	}
	if result.Solved {
		verifyXORTruthTable(t, result.Best.Genome)
	}
}

// verifyXORTruthTable decodes the genome and checks the classification side
// of every truth-table row: outputs above 0.5 for true, at or below for
// false.
func verifyXORTruthTable(t *testing.T, g model.Genome) {
	t.Helper()
	meta := xorConfig(1, 0).Meta
	box, ok, err := network.Decode(g, meta)
	if err != nil || !ok {
		t.Fatalf("winning genome failed to decode: ok=%v err=%v", ok, err)
	}
	for _, c := range [][3]float64{{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0}} {
		box.Reset()
		in := box.Inputs()
		in[0] = 1.0
		in[1] = c[0]
		in[2] = c[1]
		box.Activate()
		out := box.Outputs()[0]
		if (c[2] == 1) != (out > 0.5) {
			t.Fatalf("truth table row (%v,%v) misclassified: output %v", c[0], c[1], out)
		}
	}
}
