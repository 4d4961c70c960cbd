package evo

import (
	"math/rand"
	"sort"
)

// sortMembersByFitness orders a species' member indexes best-first under the
// scheme's fitness comparison.
func sortMembersByFitness(members []int, units []ScoredGenome, compare func(a, b ScoredGenome) int) {
	sort.SliceStable(members, func(i, j int) bool {
		return compare(units[members[i]], units[members[j]]) > 0
	})
}

// pickParent draws one parent from members (sorted best-first) by
// fitness-proportional selection restricted to the top selectionProportion
// fraction. Non-positive fitness mass degenerates to a uniform draw over the
// selection pool.
func pickParent(members []int, units []ScoredGenome, selectionProportion float64, rng *rand.Rand) int {
	pool := int(selectionProportion*float64(len(members)) + 0.5)
	if pool < 1 {
		pool = 1
	}
	if pool > len(members) {
		pool = len(members)
	}

	total := 0.0
	for _, unit := range members[:pool] {
		if f := units[unit].Fitness.Primary; f > 0 {
			total += f
		}
	}
	if total <= 0 {
		return members[rng.Intn(pool)]
	}

	r := rng.Float64() * total
	for _, unit := range members[:pool] {
		f := units[unit].Fitness.Primary
		if f <= 0 {
			continue
		}
		r -= f
		if r < 0 {
			return unit
		}
	}
	return members[pool-1]
}
