package evo

import "sort"

// SpeciesQuota is one species' share of the next generation's population
// budget. Elites + Asexual + Sexual always equals Total, and the totals over
// all species sum to the population size.
type SpeciesQuota struct {
	SpeciesIdx int
	Total      int
	Elites     int
	Asexual    int
	Sexual     int
}

// allocateQuotas distributes the population budget across species in
// proportion to mean species fitness using the largest-remainder method, then
// splits each quota into elite, asexual, and sexual counts. Species whose
// membership cannot support a component (an empty species gets no elites; a
// single-member species cannot mate within itself unless interspecies mating
// is possible) have the counts shifted rather than lost.
func allocateQuotas(species []*Species, units []ScoredGenome, populationSize int, settings EvolutionSettings) []SpeciesQuota {
	weights := make([]float64, len(species))
	total := 0.0
	for i, sp := range species {
		if len(sp.Members) == 0 {
			continue
		}
		mean := 0.0
		for _, unit := range sp.Members {
			mean += units[unit].Fitness.Primary
		}
		mean /= float64(len(sp.Members))
		if mean < 0 {
			mean = 0
		}
		weights[i] = mean
		total += mean
	}
	if total <= 0 {
		// Degenerate fitness landscape: share the budget by species size.
		for i, sp := range species {
			weights[i] = float64(len(sp.Members))
			total += weights[i]
		}
	}

	totals := largestRemainder(weights, total, populationSize)

	multiSpecies := 0
	for _, sp := range species {
		if len(sp.Members) > 0 {
			multiSpecies++
		}
	}

	quotas := make([]SpeciesQuota, len(species))
	for i, sp := range species {
		q := SpeciesQuota{SpeciesIdx: i, Total: totals[i]}
		if q.Total > 0 && len(sp.Members) > 0 {
			q.Elites = int(settings.ElitismProportion*float64(q.Total) + 0.5)
			if q.Elites > len(sp.Members) {
				q.Elites = len(sp.Members)
			}
			if q.Elites > q.Total {
				q.Elites = q.Total
			}
			offspring := q.Total - q.Elites
			q.Sexual = int(settings.OffspringSexualProportion*float64(offspring) + 0.5)
			q.Asexual = offspring - q.Sexual
			// A lone genome in a lone species has no mate at all.
			if len(sp.Members) < 2 && multiSpecies < 2 {
				q.Asexual += q.Sexual
				q.Sexual = 0
			}
		}
		quotas[i] = q
	}
	return quotas
}

// largestRemainder apportions budget seats to weights: floor shares first,
// remaining seats to the largest fractional remainders, index order breaking
// ties for determinism.
func largestRemainder(weights []float64, total float64, budget int) []int {
	out := make([]int, len(weights))
	if budget == 0 || total <= 0 {
		return out
	}

	type remainder struct {
		idx  int
		frac float64
	}
	remainders := make([]remainder, 0, len(weights))
	allocated := 0
	for i, w := range weights {
		exact := w / total * float64(budget)
		out[i] = int(exact)
		allocated += out[i]
		remainders = append(remainders, remainder{idx: i, frac: exact - float64(out[i])})
	}
	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac > remainders[j].frac
	})
	for seat := 0; seat < budget-allocated; seat++ {
		out[remainders[seat%len(remainders)].idx]++
	}
	return out
}
