package task

import (
	"math"

	"auxesis/internal/network"
)

// SinRegressionScheme asks the network to mimic one period of a sine wave,
// sampled at fixed points with input and target both scaled to [0,1].
// Fitness is 100 minus the scaled root-mean-square error.
type SinRegressionScheme struct {
	SampleCount int
	StopFitness float64
}

func NewSinRegressionScheme() SinRegressionScheme {
	return SinRegressionScheme{SampleCount: 21, StopFitness: 99}
}

func (SinRegressionScheme) InputCount() int            { return 1 }
func (SinRegressionScheme) OutputCount() int           { return 1 }
func (SinRegressionScheme) IsDeterministic() bool      { return true }
func (SinRegressionScheme) EvaluatorsHaveState() bool  { return false }
func (SinRegressionScheme) NullFitness() FitnessInfo   { return FitnessInfo{} }
func (SinRegressionScheme) Compare(a, b FitnessInfo) int { return ComparePrimary(a, b) }

func (s SinRegressionScheme) CreateEvaluator() Evaluator {
	count := s.SampleCount
	if count < 2 {
		count = 2
	}
	return sinEvaluator{sampleCount: count}
}

func (s SinRegressionScheme) TestForStopCondition(f FitnessInfo) bool {
	return f.Primary >= s.StopFitness
}

type sinEvaluator struct {
	sampleCount int
}

func (e sinEvaluator) Evaluate(box network.BlackBox) FitnessInfo {
	sse := 0.0
	for i := 0; i < e.sampleCount; i++ {
		x := float64(i) / float64(e.sampleCount-1)
		target := (math.Sin(2*math.Pi*x) + 1) / 2

		box.Reset()
		in := box.Inputs()
		in[0] = 1.0
		in[1] = x
		box.Activate()

		err := box.Outputs()[0] - target
		sse += err * err
	}
	rmse := math.Sqrt(sse / float64(e.sampleCount))
	fitness := 100 * (1 - rmse)
	if fitness < 0 {
		fitness = 0
	}
	return FitnessInfo{Primary: fitness}
}
