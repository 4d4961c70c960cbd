package evo

import "fmt"

// RegulationMode is the current direction of the complexity pressure.
type RegulationMode int

const (
	ModeComplexify RegulationMode = iota
	ModeSimplify
)

func (m RegulationMode) String() string {
	switch m {
	case ModeSimplify:
		return "simplify"
	default:
		return "complexify"
	}
}

// ComplexityStats is the per-generation input to a regulation strategy.
type ComplexityStats struct {
	Generation       int
	MeanComplexity   float64
	MeanComplexityMA float64
	BestFitness      float64
}

// RegulationStrategy switches the run between complexifying and simplifying
// search. Strategies are stateful and owned by a single evolution loop.
type RegulationStrategy interface {
	Name() string
	UpdateMode(stats ComplexityStats) RegulationMode
}

// AbsoluteRegulation simplifies whenever the mean complexity moving average
// exceeds a fixed ceiling, and returns to complexifying once the minimum
// number of simplification generations has passed and complexity has stopped
// falling.
type AbsoluteRegulation struct {
	ComplexityCeiling            float64
	MinSimplificationGenerations int

	mode             RegulationMode
	simplifyStart    int
	prevComplexityMA float64
}

func NewAbsoluteRegulation(ceiling float64, minSimplificationGenerations int) (*AbsoluteRegulation, error) {
	if ceiling <= 0 {
		return nil, fmt.Errorf("complexity ceiling must be > 0, got %v", ceiling)
	}
	if minSimplificationGenerations < 1 {
		return nil, fmt.Errorf("min simplification generations must be >= 1, got %d", minSimplificationGenerations)
	}
	return &AbsoluteRegulation{
		ComplexityCeiling:            ceiling,
		MinSimplificationGenerations: minSimplificationGenerations,
	}, nil
}

func (r *AbsoluteRegulation) Name() string { return "absolute" }

func (r *AbsoluteRegulation) UpdateMode(stats ComplexityStats) RegulationMode {
	switch r.mode {
	case ModeComplexify:
		if stats.MeanComplexityMA > r.ComplexityCeiling {
			r.mode = ModeSimplify
			r.simplifyStart = stats.Generation
		}
	case ModeSimplify:
		elapsed := stats.Generation - r.simplifyStart
		if elapsed >= r.MinSimplificationGenerations && stats.MeanComplexityMA >= r.prevComplexityMA {
			r.mode = ModeComplexify
		}
	}
	r.prevComplexityMA = stats.MeanComplexityMA
	return r.mode
}

// RelativeRegulation carries a floating ceiling: each return to complexifying
// re-bases the ceiling to the current mean complexity plus a fixed margin, so
// the population may drift upward in complexity over the course of a run.
type RelativeRegulation struct {
	ComplexityMargin             float64
	MinSimplificationGenerations int

	mode             RegulationMode
	ceiling          float64
	simplifyStart    int
	prevComplexityMA float64
}

func NewRelativeRegulation(margin float64, minSimplificationGenerations int) (*RelativeRegulation, error) {
	if margin <= 0 {
		return nil, fmt.Errorf("complexity margin must be > 0, got %v", margin)
	}
	if minSimplificationGenerations < 1 {
		return nil, fmt.Errorf("min simplification generations must be >= 1, got %d", minSimplificationGenerations)
	}
	return &RelativeRegulation{
		ComplexityMargin:             margin,
		MinSimplificationGenerations: minSimplificationGenerations,
	}, nil
}

func (r *RelativeRegulation) Name() string { return "relative" }

func (r *RelativeRegulation) UpdateMode(stats ComplexityStats) RegulationMode {
	if r.ceiling == 0 {
		r.ceiling = stats.MeanComplexityMA + r.ComplexityMargin
	}
	switch r.mode {
	case ModeComplexify:
		if stats.MeanComplexityMA > r.ceiling {
			r.mode = ModeSimplify
			r.simplifyStart = stats.Generation
		}
	case ModeSimplify:
		elapsed := stats.Generation - r.simplifyStart
		if elapsed >= r.MinSimplificationGenerations && stats.MeanComplexityMA >= r.prevComplexityMA {
			r.mode = ModeComplexify
			r.ceiling = stats.MeanComplexityMA + r.ComplexityMargin
		}
	}
	r.prevComplexityMA = stats.MeanComplexityMA
	return r.mode
}
