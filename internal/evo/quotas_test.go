package evo

import (
	"testing"

	"auxesis/internal/task"
)

func TestAllocateQuotasSumsToPopulation(t *testing.T) {
	units := make([]ScoredGenome, 0, 17)
	for i := 0; i < 17; i++ {
		u := unitWith(i, 1)
		u.Fitness = task.FitnessInfo{Primary: float64(i % 5)}
		units = append(units, u)
	}
	species := []*Species{
		{ID: 1, Members: []int{0, 1, 2, 3, 4, 5}},
		{ID: 2, Members: []int{6, 7, 8, 9, 10, 11, 12}},
		{ID: 3, Members: []int{13, 14, 15, 16}},
	}

	settings := DefaultEvolutionSettings()
	for _, popSize := range []int{17, 50, 150, 151} {
		quotas := allocateQuotas(species, units, popSize, settings)
		total := 0
		for _, q := range quotas {
			if q.Elites+q.Asexual+q.Sexual != q.Total {
				t.Fatalf("species %d: parts %d+%d+%d != total %d", q.SpeciesIdx, q.Elites, q.Asexual, q.Sexual, q.Total)
			}
			if q.Elites > len(species[q.SpeciesIdx].Members) {
				t.Fatalf("species %d: %d elites from %d members", q.SpeciesIdx, q.Elites, len(species[q.SpeciesIdx].Members))
			}
			total += q.Total
		}
		if total != popSize {
			t.Fatalf("population %d: quotas sum to %d", popSize, total)
		}
	}
}

func TestAllocateQuotasZeroFitnessFallsBackToSize(t *testing.T) {
	units := make([]ScoredGenome, 0, 10)
	for i := 0; i < 10; i++ {
		u := unitWith(i, 1)
		u.Fitness = task.FitnessInfo{}
		units = append(units, u)
	}
	species := []*Species{
		{ID: 1, Members: []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{ID: 2, Members: []int{8, 9}},
	}

	quotas := allocateQuotas(species, units, 10, DefaultEvolutionSettings())
	if quotas[0].Total+quotas[1].Total != 10 {
		t.Fatalf("quotas must still sum to population: %+v", quotas)
	}
	if quotas[0].Total <= quotas[1].Total {
		t.Fatalf("larger species must get the larger share: %+v", quotas)
	}
}

func TestLargestRemainderDeterministic(t *testing.T) {
	weights := []float64{1, 1, 1}
	a := largestRemainder(weights, 3, 10)
	b := largestRemainder(weights, 3, 10)
	sum := 0
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("allocation not deterministic: %v vs %v", a, b)
		}
		sum += a[i]
	}
	if sum != 10 {
		t.Fatalf("expected 10 seats, got %d", sum)
	}
}
