// Package auxesis is the public client API of the runtime: it owns a store
// and a lab, resolves experiments by id, runs evolution, and exports run
// artifacts.
package auxesis

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"auxesis/internal/evo"
	"auxesis/internal/experiment"
	"auxesis/internal/model"
	"auxesis/internal/platform"
	"auxesis/internal/stats"
	"auxesis/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "auxesis.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store storage.Store
	lab   *platform.Lab

	artifactsDir string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	lab := platform.NewLab(platform.Config{Store: store})
	if err := lab.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}

	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	return &Client{store: store, lab: lab, artifactsDir: artifactsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Lab() *platform.Lab { return c.lab }

// RunRequest selects an experiment and its run parameters. An empty RunID is
// assigned a fresh uuid; ConfigPath optionally overrides the experiment's
// defaults with a JSON file.
type RunRequest struct {
	Experiment     string
	ConfigPath     string
	RunID          string
	MaxGenerations int
	Seed           int64
	ContinueFrom   string
	WriteArtifacts bool
}

type RunSummary struct {
	RunID            string
	Experiment       string
	Generations      int
	Solved           bool
	BestFitness      float64
	BestGenome       model.Genome
	BestByGeneration []float64
	ArtifactsDir     string
}

// Run resolves the experiment, executes the evolution run, and optionally
// writes the artifact file set.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Experiment == "" {
		return RunSummary{}, fmt.Errorf("experiment id is required")
	}
	factory, ok := experiment.Get(req.Experiment)
	if !ok {
		return RunSummary{}, fmt.Errorf("unknown experiment: %s (known: %v)", req.Experiment, experiment.List())
	}

	var config io.Reader
	if req.ConfigPath != "" {
		f, err := os.Open(req.ConfigPath)
		if err != nil {
			return RunSummary{}, err
		}
		defer f.Close()
		config = f
	}
	exp, err := factory.CreateExperiment(config)
	if err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	maxGenerations := req.MaxGenerations
	if maxGenerations < 1 {
		maxGenerations = 500
	}

	result, err := c.lab.RunEvolution(ctx, platform.RunConfig{
		Experiment:     exp,
		RunID:          runID,
		MaxGenerations: maxGenerations,
		Seed:           req.Seed,
		ContinueFrom:   req.ContinueFrom,
	})
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:            runID,
		Experiment:       exp.ID,
		Generations:      result.Generations,
		Solved:           result.Solved,
		BestFitness:      result.Best.Fitness.Primary,
		BestGenome:       result.Best.Genome,
		BestByGeneration: result.BestByGeneration,
	}
	if req.WriteArtifacts {
		if err := stats.WriteRunArtifacts(c.artifactsDir, runID, result.BestByGeneration, result.Diagnostics, result.SpeciesHistory); err != nil {
			return RunSummary{}, err
		}
		summary.ArtifactsDir = filepath.Join(c.artifactsDir, runID)
	}
	return summary, nil
}

func (c *Client) ListRuns(ctx context.Context) ([]string, error) {
	return c.store.ListRuns(ctx)
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return diagnostics, nil
}

func (c *Client) SpeciesHistory(ctx context.Context, runID string) ([]model.SpeciesGeneration, error) {
	history, ok, err := c.store.GetSpeciesHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return history, nil
}

func (c *Client) TopGenomes(ctx context.Context, runID string) ([]model.TopGenomeRecord, error) {
	top, ok, err := c.store.GetTopGenomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return top, nil
}

func (c *Client) ExperimentSummary(ctx context.Context, name string) (model.ExperimentSummary, error) {
	summary, ok, err := c.store.GetExperimentSummary(ctx, name)
	if err != nil {
		return model.ExperimentSummary{}, err
	}
	if !ok {
		return model.ExperimentSummary{}, fmt.Errorf("experiment summary not found: %s", name)
	}
	return summary, nil
}

// Export writes a run's artifacts in the requested format: "csv" and "json"
// drop the standard file set, "xlsx" a two-sheet workbook. It returns the
// written path.
func (c *Client) Export(ctx context.Context, runID, format string) (string, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("run not found: %s", runID)
	}
	diagnostics, _, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return "", err
	}

	switch format {
	case "", "csv", "json":
		species, _, err := c.store.GetSpeciesHistory(ctx, runID)
		if err != nil {
			return "", err
		}
		if err := stats.WriteRunArtifacts(c.artifactsDir, runID, history, diagnostics, species); err != nil {
			return "", err
		}
		return filepath.Join(c.artifactsDir, runID), nil
	case "xlsx":
		if err := os.MkdirAll(c.artifactsDir, 0o755); err != nil {
			return "", err
		}
		path := filepath.Join(c.artifactsDir, runID+".xlsx")
		if err := stats.ExportDiagnosticsXLSX(path, history, diagnostics); err != nil {
			return "", err
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// PauseRun, ContinueRun and StopRun steer an active run.
func (c *Client) PauseRun(runID string) error    { return c.lab.PauseRun(runID) }
func (c *Client) ContinueRun(runID string) error { return c.lab.ContinueRun(runID) }
func (c *Client) StopRun(runID string) error     { return c.lab.StopRun(runID) }

// Commands re-exported for callers driving a run control channel directly.
const (
	CommandPause    = evo.CommandPause
	CommandContinue = evo.CommandContinue
	CommandStop     = evo.CommandStop
)
