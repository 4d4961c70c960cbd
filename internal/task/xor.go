package task

import "auxesis/internal/network"

// XORScheme is the classic two-input exclusive-or task. Each of the four
// input patterns scores up to 1 by squared-error closeness, and classifying
// all four correctly (output > 0.5 for true, <= 0.5 for false) earns a bonus
// of 10, so any fitness at or above the bonus implies a full truth table.
type XORScheme struct {
	StopFitness float64
}

func NewXORScheme() XORScheme {
	return XORScheme{StopFitness: 10}
}

func (XORScheme) InputCount() int            { return 2 }
func (XORScheme) OutputCount() int           { return 1 }
func (XORScheme) IsDeterministic() bool      { return true }
func (XORScheme) EvaluatorsHaveState() bool  { return false }
func (XORScheme) NullFitness() FitnessInfo   { return FitnessInfo{} }
func (XORScheme) CreateEvaluator() Evaluator { return xorEvaluator{} }

func (XORScheme) Compare(a, b FitnessInfo) int { return ComparePrimary(a, b) }

func (s XORScheme) TestForStopCondition(f FitnessInfo) bool {
	return f.Primary >= s.StopFitness
}

var xorCases = [4]struct {
	a, b     float64
	expected float64
}{
	{0, 0, 0},
	{0, 1, 1},
	{1, 0, 1},
	{1, 1, 0},
}

type xorEvaluator struct{}

func (xorEvaluator) Evaluate(box network.BlackBox) FitnessInfo {
	fitness := 0.0
	allCorrect := true
	for _, c := range xorCases {
		box.Reset()
		in := box.Inputs()
		in[0] = 1.0
		in[1] = c.a
		in[2] = c.b
		box.Activate()

		out := box.Outputs()[0]
		if out < 0 {
			out = 0
		} else if out > 1 {
			out = 1
		}
		if (c.expected == 1) != (out > 0.5) {
			allCorrect = false
		}
		err := out - c.expected
		fitness += 1.0 - err*err
	}
	if allCorrect {
		fitness += 10
	}
	return FitnessInfo{Primary: fitness}
}
