package evo

import "testing"

func TestAbsoluteRegulationSwitchesAtCeiling(t *testing.T) {
	reg, err := NewAbsoluteRegulation(10, 3)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if mode := reg.UpdateMode(ComplexityStats{Generation: 1, MeanComplexityMA: 5}); mode != ModeComplexify {
		t.Fatalf("below ceiling must complexify, got %v", mode)
	}
	if mode := reg.UpdateMode(ComplexityStats{Generation: 2, MeanComplexityMA: 12}); mode != ModeSimplify {
		t.Fatalf("above ceiling must simplify, got %v", mode)
	}

	// Complexity still falling inside the minimum window: stay simplifying.
	for gen, ma := range map[int]float64{3: 11, 4: 10} {
		if mode := reg.UpdateMode(ComplexityStats{Generation: gen, MeanComplexityMA: ma}); mode != ModeSimplify {
			t.Fatalf("generation %d: expected simplify, got %v", gen, mode)
		}
	}
	reg.prevComplexityMA = 9
	if mode := reg.UpdateMode(ComplexityStats{Generation: 6, MeanComplexityMA: 9}); mode != ModeComplexify {
		t.Fatalf("flat complexity after the window must complexify, got %v", mode)
	}
}

func TestRelativeRegulationRebasesCeiling(t *testing.T) {
	reg, err := NewRelativeRegulation(5, 2)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if mode := reg.UpdateMode(ComplexityStats{Generation: 1, MeanComplexityMA: 10}); mode != ModeComplexify {
		t.Fatalf("expected complexify at baseline, got %v", mode)
	}
	// Ceiling is 15; crossing it flips to simplify.
	if mode := reg.UpdateMode(ComplexityStats{Generation: 2, MeanComplexityMA: 16}); mode != ModeSimplify {
		t.Fatalf("expected simplify above floating ceiling, got %v", mode)
	}
	reg.UpdateMode(ComplexityStats{Generation: 3, MeanComplexityMA: 14})
	reg.UpdateMode(ComplexityStats{Generation: 4, MeanComplexityMA: 13})
	mode := reg.UpdateMode(ComplexityStats{Generation: 5, MeanComplexityMA: 13})
	if mode != ModeComplexify {
		t.Fatalf("expected return to complexify, got %v", mode)
	}
	if reg.ceiling != 18 {
		t.Fatalf("ceiling must rebase to 13+5, got %v", reg.ceiling)
	}
}

func TestRegulationConstructorValidation(t *testing.T) {
	if _, err := NewAbsoluteRegulation(0, 5); err == nil {
		t.Fatal("zero ceiling must be rejected")
	}
	if _, err := NewRelativeRegulation(3, 0); err == nil {
		t.Fatal("zero simplification window must be rejected")
	}
}
