// Package experiment binds an evaluation scheme to the full set of run
// parameters: network shape, reproduction settings, speciation, complexity
// regulation, and parallelism.
package experiment

import (
	"fmt"
	"runtime"

	"auxesis/internal/evo"
	"auxesis/internal/model"
	"auxesis/internal/task"
)

// Experiment is a fully resolved run descriptor produced by a Factory.
type Experiment struct {
	ID          string
	Description string

	Scheme task.EvaluationScheme

	Acyclic             bool
	CyclesPerActivation int
	Activation          string

	PopulationSize                    int
	InitialInterconnectionsProportion float64
	ConnectionWeightScale             float64

	Evolution  evo.EvolutionSettings
	Asexual    evo.AsexualSettings
	Sexual     evo.SexualSettings
	Regulation evo.RegulationStrategy

	EnableHardwareAcceleratedNeuralNets          bool
	EnableHardwareAcceleratedActivationFunctions bool

	// DegreeOfParallelism of -1 selects the logical CPU count; any other
	// value below 1 is rejected at construction.
	DegreeOfParallelism int
}

// Meta derives the population-wide model constants. The bias node joins the
// scheme's inputs, so the network input count is one larger than the task's.
func (e *Experiment) Meta() model.Meta {
	return model.Meta{
		InputCount:          e.Scheme.InputCount() + 1,
		OutputCount:         e.Scheme.OutputCount(),
		Acyclic:             e.Acyclic,
		CyclesPerActivation: e.CyclesPerActivation,
		Activation:          e.Activation,
		WeightScale:         e.ConnectionWeightScale,
	}
}

// Workers resolves the degree of parallelism to a concrete worker count.
func (e *Experiment) Workers() int {
	if e.DegreeOfParallelism == -1 {
		return runtime.NumCPU()
	}
	return e.DegreeOfParallelism
}

func (e *Experiment) validate() error {
	if e.ID == "" {
		return fmt.Errorf("experiment id is required")
	}
	if e.Scheme == nil {
		return fmt.Errorf("experiment %s: evaluation scheme is required", e.ID)
	}
	if e.Scheme.InputCount() < 0 {
		return fmt.Errorf("experiment %s: input count must be >= 0", e.ID)
	}
	if e.Scheme.OutputCount() < 1 {
		return fmt.Errorf("experiment %s: output count must be >= 1", e.ID)
	}
	if e.PopulationSize < 2 {
		return fmt.Errorf("experiment %s: population size must be >= 2, got %d", e.ID, e.PopulationSize)
	}
	if e.InitialInterconnectionsProportion < 0 || e.InitialInterconnectionsProportion > 1 {
		return fmt.Errorf("experiment %s: initial interconnections proportion must be in [0,1], got %v", e.ID, e.InitialInterconnectionsProportion)
	}
	if e.ConnectionWeightScale <= 0 {
		return fmt.Errorf("experiment %s: connection weight scale must be > 0, got %v", e.ID, e.ConnectionWeightScale)
	}
	if !e.Acyclic && e.CyclesPerActivation < 1 {
		return fmt.Errorf("experiment %s: cycles per activation must be >= 1 for cyclic networks, got %d", e.ID, e.CyclesPerActivation)
	}
	if e.DegreeOfParallelism < 1 && e.DegreeOfParallelism != -1 {
		return fmt.Errorf("experiment %s: degree of parallelism must be -1 or >= 1, got %d", e.ID, e.DegreeOfParallelism)
	}
	if err := e.Evolution.Validate(); err != nil {
		return fmt.Errorf("experiment %s: %w", e.ID, err)
	}
	if err := e.Asexual.Validate(); err != nil {
		return fmt.Errorf("experiment %s: %w", e.ID, err)
	}
	if err := e.Sexual.Validate(); err != nil {
		return fmt.Errorf("experiment %s: %w", e.ID, err)
	}
	if e.Regulation == nil {
		return fmt.Errorf("experiment %s: complexity regulation strategy is required", e.ID)
	}
	return nil
}

// EvolutionConfig assembles the evolution-loop configuration for this
// experiment.
func (e *Experiment) EvolutionConfig(seed int64, control <-chan evo.Command) evo.Config {
	return evo.Config{
		Scheme:                  e.Scheme,
		Meta:                    e.Meta(),
		PopulationSize:          e.PopulationSize,
		Settings:                e.Evolution,
		Asexual:                 e.Asexual,
		Sexual:                  e.Sexual,
		Regulation:              e.Regulation,
		InitialInterconnections: e.InitialInterconnectionsProportion,
		Workers:                 e.Workers(),
		Seed:                    seed,
		Control:                 control,
	}
}
