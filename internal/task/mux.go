package task

import "auxesis/internal/network"

// Binary6MuxScheme is the binary 6-multiplexer: two address inputs select one
// of four data inputs, and the network must echo the selected bit. Each of
// the 64 input patterns scores 1 when classified correctly, with a bonus of
// 10 for a perfect sweep, so the maximum fitness is 74. The summed squared
// error is carried as a negated auxiliary measure to break ties between
// equal classification counts.
type Binary6MuxScheme struct {
	StopFitness float64
}

func NewBinary6MuxScheme() Binary6MuxScheme {
	return Binary6MuxScheme{StopFitness: 74}
}

func (Binary6MuxScheme) InputCount() int            { return 6 }
func (Binary6MuxScheme) OutputCount() int           { return 1 }
func (Binary6MuxScheme) IsDeterministic() bool      { return true }
func (Binary6MuxScheme) EvaluatorsHaveState() bool  { return false }
func (Binary6MuxScheme) NullFitness() FitnessInfo   { return FitnessInfo{Aux: []float64{-64}} }
func (Binary6MuxScheme) CreateEvaluator() Evaluator { return muxEvaluator{} }

func (Binary6MuxScheme) Compare(a, b FitnessInfo) int { return ComparePrimary(a, b) }

func (s Binary6MuxScheme) TestForStopCondition(f FitnessInfo) bool {
	return f.Primary >= s.StopFitness
}

type muxEvaluator struct{}

func (muxEvaluator) Evaluate(box network.BlackBox) FitnessInfo {
	fitness := 0.0
	sse := 0.0
	allCorrect := true

	for pattern := 0; pattern < 64; pattern++ {
		box.Reset()
		in := box.Inputs()
		in[0] = 1.0
		for bit := 0; bit < 6; bit++ {
			in[1+bit] = float64((pattern >> bit) & 1)
		}
		box.Activate()

		addr := pattern & 0x3
		expected := float64((pattern >> (2 + addr)) & 1)

		out := box.Outputs()[0]
		if out < 0 {
			out = 0
		} else if out > 1 {
			out = 1
		}
		if (expected == 1) == (out > 0.5) {
			fitness++
		} else {
			allCorrect = false
		}
		err := out - expected
		sse += err * err
	}
	if allCorrect {
		fitness += 10
	}
	return FitnessInfo{Primary: fitness, Aux: []float64{-sse}}
}
