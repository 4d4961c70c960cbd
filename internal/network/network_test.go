package network

import (
	"math"
	"testing"

	"auxesis/internal/model"
)

func TestGetActivation(t *testing.T) {
	if _, err := GetActivation("Leaky-ReLU"); err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if _, err := GetActivation("no-such-fn"); err == nil {
		t.Fatal("expected error for unknown activation")
	}
}

func acyclicMeta(in, out int) model.Meta {
	return model.Meta{InputCount: in, OutputCount: out, Acyclic: true, Activation: "relu", WeightScale: 5}
}

func TestDecodeAcyclicForwardPass(t *testing.T) {
	meta := acyclicMeta(2, 1)
	g := model.Genome{ID: 1, Conns: []model.ConnectionGene{
		{ID: 3, Source: 0, Target: 2, Weight: 0.5},
		{ID: 4, Source: 1, Target: 2, Weight: 2.0},
	}}

	box, ok, err := Decode(g, meta)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	box.Inputs()[0] = 1.0
	box.Inputs()[1] = 3.0
	box.Activate()
	if got := box.Outputs()[0]; math.Abs(got-6.5) > 1e-12 {
		t.Fatalf("expected output 6.5, got %v", got)
	}
}

func TestDecodeAcyclicHiddenChain(t *testing.T) {
	meta := acyclicMeta(2, 1)
	// 1 -> 9 -> 2, plus direct bias edge 0 -> 2.
	g := model.Genome{ID: 2, Conns: []model.ConnectionGene{
		{ID: 3, Source: 0, Target: 2, Weight: 1.0},
		{ID: 5, Source: 1, Target: 9, Weight: 2.0},
		{ID: 6, Source: 9, Target: 2, Weight: 3.0},
	}}

	box, ok, err := Decode(g, meta)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	box.Inputs()[0] = 1.0
	box.Inputs()[1] = 2.0
	box.Activate()
	// hidden = relu(2*2) = 4, output = relu(1 + 3*4) = 13.
	if got := box.Outputs()[0]; math.Abs(got-13.0) > 1e-12 {
		t.Fatalf("expected output 13, got %v", got)
	}
}

func TestDecodeDeterministicAcrossRedecode(t *testing.T) {
	meta := acyclicMeta(2, 1)
	g := model.Genome{ID: 3, Conns: []model.ConnectionGene{
		{ID: 3, Source: 0, Target: 2, Weight: -0.75},
		{ID: 5, Source: 1, Target: 7, Weight: 1.25},
		{ID: 6, Source: 7, Target: 2, Weight: 0.5},
	}}

	run := func() float64 {
		box, ok, err := Decode(g, meta)
		if err != nil || !ok {
			t.Fatalf("decode failed: ok=%v err=%v", ok, err)
		}
		box.Inputs()[0] = 1.0
		box.Inputs()[1] = 0.5
		box.Activate()
		return box.Outputs()[0]
	}
	first, second := run(), run()
	if first != second {
		t.Fatalf("re-decode changed output: %v vs %v", first, second)
	}
}

func TestDecodeNonViableGenome(t *testing.T) {
	meta := acyclicMeta(2, 1)
	// Only a hidden->hidden edge: no input-to-output path.
	g := model.Genome{ID: 4, Conns: []model.ConnectionGene{
		{ID: 5, Source: 8, Target: 9, Weight: 1.0},
	}}
	box, ok, err := Decode(g, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || box != nil {
		t.Fatal("expected non-viable sentinel")
	}

	empty := model.Genome{ID: 5}
	if _, ok, _ := Decode(empty, meta); ok {
		t.Fatal("empty genome must be non-viable")
	}
}

func TestCyclicNetDoubleBuffering(t *testing.T) {
	meta := model.Meta{InputCount: 1, OutputCount: 1, CyclesPerActivation: 2, Activation: "relu", WeightScale: 5}
	// Input feeds output, output feeds itself with weight 0.5.
	g := model.Genome{ID: 6, Conns: []model.ConnectionGene{
		{ID: 2, Source: 0, Target: 1, Weight: 1.0},
		{ID: 3, Source: 1, Target: 1, Weight: 0.5},
	}}

	box, ok, err := Decode(g, meta)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	box.Inputs()[0] = 2.0
	box.Activate()
	// cycle 1: out = relu(2*1 + 0*0.5) = 2; cycle 2: out = relu(2 + 2*0.5) = 3.
	if got := box.Outputs()[0]; math.Abs(got-3.0) > 1e-12 {
		t.Fatalf("expected output 3 after two cycles, got %v", got)
	}

	box.Reset()
	box.Inputs()[0] = 2.0
	box.Activate()
	if got := box.Outputs()[0]; math.Abs(got-3.0) > 1e-12 {
		t.Fatalf("expected identical output after reset, got %v", got)
	}
}

func TestAcyclicResetClearsState(t *testing.T) {
	meta := acyclicMeta(2, 1)
	g := model.Genome{ID: 7, Conns: []model.ConnectionGene{
		{ID: 3, Source: 1, Target: 2, Weight: 1.0},
	}}
	box, ok, err := Decode(g, meta)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	box.Inputs()[1] = 4.0
	box.Activate()
	box.Reset()
	if box.Inputs()[1] != 0 {
		t.Fatal("reset must clear the input buffer")
	}
	box.Activate()
	if got := box.Outputs()[0]; got != 0 {
		t.Fatalf("expected zero output after reset, got %v", got)
	}
}
