package evo

import (
	"fmt"
	"math"
)

// EvolutionSettings are the population-level proportions driving speciation,
// selection, and offspring allocation.
type EvolutionSettings struct {
	SpeciesCount                  int
	ElitismProportion             float64
	SelectionProportion           float64
	OffspringAsexualProportion    float64
	OffspringSexualProportion     float64
	InterspeciesMatingProportion  float64
	StatisticsMovingAverageLength int
}

func DefaultEvolutionSettings() EvolutionSettings {
	return EvolutionSettings{
		SpeciesCount:                  10,
		ElitismProportion:             0.2,
		SelectionProportion:           0.2,
		OffspringAsexualProportion:    0.5,
		OffspringSexualProportion:     0.5,
		InterspeciesMatingProportion:  0.01,
		StatisticsMovingAverageLength: 100,
	}
}

func (s EvolutionSettings) Validate() error {
	if s.SpeciesCount < 1 {
		return fmt.Errorf("species count must be >= 1, got %d", s.SpeciesCount)
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"elitism proportion", s.ElitismProportion},
		{"selection proportion", s.SelectionProportion},
		{"offspring asexual proportion", s.OffspringAsexualProportion},
		{"offspring sexual proportion", s.OffspringSexualProportion},
		{"interspecies mating proportion", s.InterspeciesMatingProportion},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", p.name, p.value)
		}
	}
	if math.Abs(s.OffspringAsexualProportion+s.OffspringSexualProportion-1) > 1e-6 {
		return fmt.Errorf("offspring proportions must sum to 1, got %v", s.OffspringAsexualProportion+s.OffspringSexualProportion)
	}
	if s.StatisticsMovingAverageLength < 1 {
		return fmt.Errorf("statistics moving-average length must be >= 1, got %d", s.StatisticsMovingAverageLength)
	}
	return nil
}

// AsexualSettings are the four mutation probabilities; they must sum to 1.
type AsexualSettings struct {
	ConnectionWeightProbability float64
	AddNodeProbability          float64
	AddConnectionProbability    float64
	DeleteConnectionProbability float64
}

func DefaultAsexualSettings() AsexualSettings {
	return AsexualSettings{
		ConnectionWeightProbability: 0.94,
		AddNodeProbability:          0.01,
		AddConnectionProbability:    0.025,
		DeleteConnectionProbability: 0.025,
	}
}

func (s AsexualSettings) Validate() error {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"connection-weight probability", s.ConnectionWeightProbability},
		{"add-node probability", s.AddNodeProbability},
		{"add-connection probability", s.AddConnectionProbability},
		{"delete-connection probability", s.DeleteConnectionProbability},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", p.name, p.value)
		}
	}
	sum := s.ConnectionWeightProbability + s.AddNodeProbability + s.AddConnectionProbability + s.DeleteConnectionProbability
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("asexual mutation probabilities must sum to 1, got %v", sum)
	}
	return nil
}

// Simplify returns the settings reweighted for simplification: add-node is
// forbidden and its probability mass moves to delete-connection.
func (s AsexualSettings) Simplify() AsexualSettings {
	return AsexualSettings{
		ConnectionWeightProbability: s.ConnectionWeightProbability,
		AddNodeProbability:          0,
		AddConnectionProbability:    s.AddConnectionProbability,
		DeleteConnectionProbability: s.DeleteConnectionProbability + s.AddNodeProbability,
	}
}

// SexualSettings parameterise uniform crossover.
type SexualSettings struct {
	SecondaryParentGeneProbability float64
}

func DefaultSexualSettings() SexualSettings {
	return SexualSettings{SecondaryParentGeneProbability: 0.02}
}

func (s SexualSettings) Validate() error {
	if s.SecondaryParentGeneProbability < 0 || s.SecondaryParentGeneProbability > 1 {
		return fmt.Errorf("secondary parent gene probability must be in [0,1], got %v", s.SecondaryParentGeneProbability)
	}
	return nil
}
