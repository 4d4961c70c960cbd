package experiment

import (
	"encoding/json"
	"fmt"
	"io"

	"auxesis/internal/evo"
	"auxesis/internal/network"
)

// Config is the JSON experiment configuration. Field matching is
// case-insensitive, unrecognised fields are ignored, and missing fields keep
// the defaults the decoder was seeded with, all properties of the standard
// JSON decoding into a pre-filled struct.
type Config struct {
	PopulationSize                    int     `json:"population_size"`
	InitialInterconnectionsProportion float64 `json:"initial_interconnections_proportion"`
	ConnectionWeightScale             float64 `json:"connection_weight_scale"`
	ActivationFnName                  string  `json:"activation_fn_name"`
	CyclesPerActivation               int     `json:"cycles_per_activation"`
	DegreeOfParallelism               int     `json:"degree_of_parallelism"`

	EnableHardwareAcceleratedNeuralNets          bool `json:"enable_hardware_accelerated_neural_nets"`
	EnableHardwareAcceleratedActivationFunctions bool `json:"enable_hardware_accelerated_activation_functions"`

	EvolutionAlgorithm   EvolutionAlgorithmConfig `json:"evolution_algorithm"`
	ReproductionAsexual  AsexualConfig            `json:"reproduction_asexual"`
	ReproductionSexual   SexualConfig             `json:"reproduction_sexual"`
	ComplexityRegulation RegulationConfig         `json:"complexity_regulation"`
}

type EvolutionAlgorithmConfig struct {
	SpeciesCount                  int     `json:"species_count"`
	ElitismProportion             float64 `json:"elitism_proportion"`
	SelectionProportion           float64 `json:"selection_proportion"`
	OffspringAsexualProportion    float64 `json:"offspring_asexual_proportion"`
	OffspringSexualProportion     float64 `json:"offspring_sexual_proportion"`
	InterspeciesMatingProportion  float64 `json:"interspecies_mating_proportion"`
	StatisticsMovingAverageLength int     `json:"statistics_moving_average_history_length"`
}

type AsexualConfig struct {
	ConnectionWeightMutationProbability float64 `json:"connection_weight_mutation_probability"`
	AddNodeMutationProbability          float64 `json:"add_node_mutation_probability"`
	AddConnectionMutationProbability    float64 `json:"add_connection_mutation_probability"`
	DeleteConnectionMutationProbability float64 `json:"delete_connection_mutation_probability"`
}

type SexualConfig struct {
	SecondaryParentGeneProbability float64 `json:"secondary_parent_gene_probability"`
}

// RegulationConfig is the tagged complexity-regulation variant: "absolute"
// carries a fixed ceiling, "relative" a floating margin.
type RegulationConfig struct {
	Type                         string  `json:"type"`
	ComplexityCeiling            float64 `json:"complexity_ceiling"`
	MinSimplificationGenerations int     `json:"min_simplification_generations"`
}

// DefaultConfig returns the configuration used when fields are absent.
func DefaultConfig() Config {
	ev := evo.DefaultEvolutionSettings()
	as := evo.DefaultAsexualSettings()
	return Config{
		PopulationSize:                    150,
		InitialInterconnectionsProportion: 0.05,
		ConnectionWeightScale:             5,
		ActivationFnName:                  "leaky-relu",
		CyclesPerActivation:               1,
		DegreeOfParallelism:               -1,
		EvolutionAlgorithm: EvolutionAlgorithmConfig{
			SpeciesCount:                  ev.SpeciesCount,
			ElitismProportion:             ev.ElitismProportion,
			SelectionProportion:           ev.SelectionProportion,
			OffspringAsexualProportion:    ev.OffspringAsexualProportion,
			OffspringSexualProportion:     ev.OffspringSexualProportion,
			InterspeciesMatingProportion:  ev.InterspeciesMatingProportion,
			StatisticsMovingAverageLength: ev.StatisticsMovingAverageLength,
		},
		ReproductionAsexual: AsexualConfig{
			ConnectionWeightMutationProbability: as.ConnectionWeightProbability,
			AddNodeMutationProbability:          as.AddNodeProbability,
			AddConnectionMutationProbability:    as.AddConnectionProbability,
			DeleteConnectionMutationProbability: as.DeleteConnectionProbability,
		},
		ReproductionSexual: SexualConfig{
			SecondaryParentGeneProbability: evo.DefaultSexualSettings().SecondaryParentGeneProbability,
		},
		ComplexityRegulation: RegulationConfig{
			Type:                         "absolute",
			ComplexityCeiling:            60,
			MinSimplificationGenerations: 10,
		},
	}
}

// LoadConfig decodes JSON from r over the supplied defaults. A nil or empty
// stream yields the defaults unchanged; malformed JSON and I/O failures are
// propagated.
func LoadConfig(r io.Reader, defaults Config) (Config, error) {
	cfg := defaults
	if r == nil {
		return cfg, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read experiment config: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse experiment config: %w", err)
	}
	return cfg, nil
}

func (c Config) regulation() (evo.RegulationStrategy, error) {
	switch c.ComplexityRegulation.Type {
	case "", "absolute":
		return evo.NewAbsoluteRegulation(c.ComplexityRegulation.ComplexityCeiling, c.ComplexityRegulation.MinSimplificationGenerations)
	case "relative":
		return evo.NewRelativeRegulation(c.ComplexityRegulation.ComplexityCeiling, c.ComplexityRegulation.MinSimplificationGenerations)
	default:
		return nil, fmt.Errorf("unknown complexity regulation type: %s", c.ComplexityRegulation.Type)
	}
}

func (c Config) validateActivation() error {
	_, err := network.GetActivation(c.ActivationFnName)
	return err
}
