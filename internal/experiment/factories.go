package experiment

import (
	"fmt"
	"io"

	"auxesis/internal/evo"
	"auxesis/internal/task"
)

// schemeFactory builds experiments around a fixed evaluation scheme, with
// per-task defaults layered under the user configuration.
type schemeFactory struct {
	id          string
	description string
	acyclic     bool
	defaults    Config
	newScheme   func() task.EvaluationScheme
}

func (f *schemeFactory) ID() string { return f.id }

func (f *schemeFactory) CreateExperiment(config io.Reader) (*Experiment, error) {
	cfg, err := LoadConfig(config, f.defaults)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", f.id, err)
	}
	if err := cfg.validateActivation(); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", f.id, err)
	}
	regulation, err := cfg.regulation()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", f.id, err)
	}

	e := &Experiment{
		ID:                                f.id,
		Description:                       f.description,
		Scheme:                            f.newScheme(),
		Acyclic:                           f.acyclic,
		CyclesPerActivation:               cfg.CyclesPerActivation,
		Activation:                        cfg.ActivationFnName,
		PopulationSize:                    cfg.PopulationSize,
		InitialInterconnectionsProportion: cfg.InitialInterconnectionsProportion,
		ConnectionWeightScale:             cfg.ConnectionWeightScale,
		Evolution: evo.EvolutionSettings{
			SpeciesCount:                  cfg.EvolutionAlgorithm.SpeciesCount,
			ElitismProportion:             cfg.EvolutionAlgorithm.ElitismProportion,
			SelectionProportion:           cfg.EvolutionAlgorithm.SelectionProportion,
			OffspringAsexualProportion:    cfg.EvolutionAlgorithm.OffspringAsexualProportion,
			OffspringSexualProportion:     cfg.EvolutionAlgorithm.OffspringSexualProportion,
			InterspeciesMatingProportion:  cfg.EvolutionAlgorithm.InterspeciesMatingProportion,
			StatisticsMovingAverageLength: cfg.EvolutionAlgorithm.StatisticsMovingAverageLength,
		},
		Asexual: evo.AsexualSettings{
			ConnectionWeightProbability: cfg.ReproductionAsexual.ConnectionWeightMutationProbability,
			AddNodeProbability:          cfg.ReproductionAsexual.AddNodeMutationProbability,
			AddConnectionProbability:    cfg.ReproductionAsexual.AddConnectionMutationProbability,
			DeleteConnectionProbability: cfg.ReproductionAsexual.DeleteConnectionMutationProbability,
		},
		Sexual: evo.SexualSettings{
			SecondaryParentGeneProbability: cfg.ReproductionSexual.SecondaryParentGeneProbability,
		},
		Regulation: regulation,
		EnableHardwareAcceleratedNeuralNets:          cfg.EnableHardwareAcceleratedNeuralNets,
		EnableHardwareAcceleratedActivationFunctions: cfg.EnableHardwareAcceleratedActivationFunctions,
		DegreeOfParallelism:                          cfg.DegreeOfParallelism,
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func init() {
	xorDefaults := DefaultConfig()
	xorDefaults.ActivationFnName = "logistic-steep"
	xorDefaults.InitialInterconnectionsProportion = 0.5

	muxDefaults := DefaultConfig()
	muxDefaults.ActivationFnName = "logistic-steep"
	muxDefaults.PopulationSize = 500
	muxDefaults.InitialInterconnectionsProportion = 0.25

	sinDefaults := DefaultConfig()
	sinDefaults.ActivationFnName = "tanh"
	sinDefaults.InitialInterconnectionsProportion = 1.0

	for _, f := range []*schemeFactory{
		{
			id:          "xor",
			description: "two-input exclusive-or truth table",
			acyclic:     true,
			defaults:    xorDefaults,
			newScheme:   func() task.EvaluationScheme { return task.NewXORScheme() },
		},
		{
			id:          "binary-6-multiplexer",
			description: "two address bits select one of four data bits",
			acyclic:     true,
			defaults:    muxDefaults,
			newScheme:   func() task.EvaluationScheme { return task.NewBinary6MuxScheme() },
		},
		{
			id:          "sin-regression",
			description: "mimic one period of a sine wave",
			acyclic:     true,
			defaults:    sinDefaults,
			newScheme:   func() task.EvaluationScheme { return task.NewSinRegressionScheme() },
		},
	} {
		if err := Register(f); err != nil {
			panic(err)
		}
	}
}
