// Package platform wires the runtime together: a Lab owns the artifact
// store, tracks active runs for pause/continue/stop control, and persists
// results when a run completes.
package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"auxesis/internal/evo"
	"auxesis/internal/experiment"
	"auxesis/internal/model"
	"auxesis/internal/storage"
)

type Config struct {
	Store storage.Store
}

type Lab struct {
	store storage.Store

	mu      sync.RWMutex
	started bool
	runs    map[string]chan evo.Command
}

func NewLab(cfg Config) *Lab {
	return &Lab{
		store: cfg.Store,
		runs:  make(map[string]chan evo.Command),
	}
}

func (l *Lab) Init(ctx context.Context) error {
	if l.store == nil {
		return fmt.Errorf("store is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}
	if err := l.store.Init(ctx); err != nil {
		return err
	}
	l.started = true
	return nil
}

func (l *Lab) Started() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.started
}

// Reset drops all persisted state when the store supports it.
func (l *Lab) Reset(ctx context.Context) error {
	if resetter, ok := l.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return l.Init(ctx)
}

// RunConfig describes one evolution run of an experiment.
type RunConfig struct {
	Experiment     *experiment.Experiment
	RunID          string
	MaxGenerations int
	Seed           int64

	// ContinueFrom resumes from a persisted population snapshot. The
	// snapshot's model must match the experiment's.
	ContinueFrom string

	Control chan evo.Command
}

// topGenomeCount bounds how many ranked genomes are persisted per run.
const topGenomeCount = 5

// RunEvolution executes a run to completion (or stop/cancel) and persists
// its artifacts: final population snapshot, fitness history, diagnostics,
// species history, top genomes, and the experiment's best-fitness summary.
func (l *Lab) RunEvolution(ctx context.Context, cfg RunConfig) (evo.RunResult, error) {
	if cfg.Experiment == nil {
		return evo.RunResult{}, fmt.Errorf("experiment is required")
	}
	if cfg.RunID == "" {
		return evo.RunResult{}, fmt.Errorf("run id is required")
	}
	if cfg.MaxGenerations < 1 {
		return evo.RunResult{}, fmt.Errorf("max generations must be >= 1, got %d", cfg.MaxGenerations)
	}
	if !l.Started() {
		return evo.RunResult{}, fmt.Errorf("lab is not initialized")
	}

	control := cfg.Control
	if control == nil {
		control = make(chan evo.Command, 16)
	}
	if err := l.registerRunControl(cfg.RunID, control); err != nil {
		return evo.RunResult{}, err
	}
	defer l.unregisterRunControl(cfg.RunID)

	evoCfg := cfg.Experiment.EvolutionConfig(cfg.Seed, control)
	initialGeneration := 0
	if cfg.ContinueFrom != "" {
		snapshot, ok, err := l.store.GetPopulationSnapshot(ctx, cfg.ContinueFrom)
		if err != nil {
			return evo.RunResult{}, err
		}
		if !ok {
			return evo.RunResult{}, fmt.Errorf("population snapshot not found: %s", cfg.ContinueFrom)
		}
		if !snapshot.Meta.CompatibleWith(evoCfg.Meta) {
			return evo.RunResult{}, fmt.Errorf("population %s is incompatible with experiment %s", cfg.ContinueFrom, cfg.Experiment.ID)
		}
		if len(snapshot.Genomes) != evoCfg.PopulationSize {
			return evo.RunResult{}, fmt.Errorf("population %s size %d does not match experiment population size %d",
				cfg.ContinueFrom, len(snapshot.Genomes), evoCfg.PopulationSize)
		}
		evoCfg.Initial = snapshot.Genomes
		initialGeneration = snapshot.Generation
	}

	alg, err := evo.NewEvolutionAlgorithm(evoCfg)
	if err != nil {
		return evo.RunResult{}, err
	}
	result, err := alg.Run(ctx, cfg.MaxGenerations)
	if err != nil {
		return evo.RunResult{}, err
	}

	if err := l.persistRun(ctx, cfg, initialGeneration, result); err != nil {
		return evo.RunResult{}, err
	}
	return result, nil
}

func (l *Lab) persistRun(ctx context.Context, cfg RunConfig, initialGeneration int, result evo.RunResult) error {
	snapshot := model.PopulationSnapshot{
		ID:         cfg.RunID,
		Experiment: cfg.Experiment.ID,
		Generation: initialGeneration + result.Generations,
		Meta:       cfg.Experiment.Meta(),
		Genomes:    result.FinalPopulation,
	}
	if err := l.store.SavePopulationSnapshot(ctx, snapshot); err != nil {
		return err
	}
	if err := l.store.SaveFitnessHistory(ctx, cfg.RunID, result.BestByGeneration); err != nil {
		return err
	}
	if err := l.store.SaveGenerationDiagnostics(ctx, cfg.RunID, result.Diagnostics); err != nil {
		return err
	}
	if err := l.store.SaveSpeciesHistory(ctx, cfg.RunID, result.SpeciesHistory); err != nil {
		return err
	}
	if err := l.store.SaveTopGenomes(ctx, cfg.RunID, topGenomes(result)); err != nil {
		return err
	}
	return l.updateExperimentSummary(ctx, cfg.Experiment, result)
}

// topGenomes records the run's tracked best genome first, then fills the
// remaining slots from the final population in its last evaluated order,
// skipping duplicates. Final-population fitness is not re-evaluated here.
func topGenomes(result evo.RunResult) []model.TopGenomeRecord {
	out := make([]model.TopGenomeRecord, 0, topGenomeCount)
	seen := map[int]struct{}{}
	add := func(g model.Genome, fitness float64) {
		if len(out) == topGenomeCount {
			return
		}
		if _, dup := seen[g.ID]; dup {
			return
		}
		seen[g.ID] = struct{}{}
		out = append(out, model.TopGenomeRecord{Rank: len(out) + 1, Fitness: fitness, Genome: g})
	}

	if len(result.BestByGeneration) > 0 {
		add(result.Best.Genome, result.Best.Fitness.Primary)
	}
	for _, g := range result.FinalPopulation {
		add(g, 0)
	}
	return out
}

func (l *Lab) updateExperimentSummary(ctx context.Context, exp *experiment.Experiment, result evo.RunResult) error {
	summary, ok, err := l.store.GetExperimentSummary(ctx, exp.ID)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.ExperimentSummary{Name: exp.ID, Description: exp.Description}
	}
	best := result.Best.Fitness.Primary
	if best > summary.BestFitness || !ok {
		summary.BestFitness = best
	}
	return l.store.SaveExperimentSummary(ctx, summary)
}

func (l *Lab) PauseRun(runID string) error    { return l.sendRunCommand(runID, evo.CommandPause) }
func (l *Lab) ContinueRun(runID string) error { return l.sendRunCommand(runID, evo.CommandContinue) }
func (l *Lab) StopRun(runID string) error     { return l.sendRunCommand(runID, evo.CommandStop) }

func (l *Lab) ActiveRuns() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	runs := make([]string, 0, len(l.runs))
	for runID := range l.runs {
		runs = append(runs, runID)
	}
	sort.Strings(runs)
	return runs
}

func (l *Lab) registerRunControl(runID string, control chan evo.Command) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return fmt.Errorf("lab is not initialized")
	}
	if _, exists := l.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	l.runs[runID] = control
	return nil
}

func (l *Lab) unregisterRunControl(runID string) {
	l.mu.Lock()
	delete(l.runs, runID)
	l.mu.Unlock()
}

func (l *Lab) sendRunCommand(runID string, cmd evo.Command) error {
	l.mu.RLock()
	control, ok := l.runs[runID]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	select {
	case control <- cmd:
		return nil
	default:
		return fmt.Errorf("run control channel is full: %s", runID)
	}
}
