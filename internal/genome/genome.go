package genome

import (
	"fmt"
	"math/rand"
	"sort"

	"auxesis/internal/model"
)

// Validate checks the genome invariants: genes strictly sorted by innovation
// id with no duplicates, endpoints inside the id space, and weights within
// the model's weight scale.
func Validate(g model.Genome, meta model.Meta) error {
	for i, gene := range g.Conns {
		if i > 0 && gene.ID <= g.Conns[i-1].ID {
			return fmt.Errorf("genome %d: gene %d breaks innovation-id order (%d after %d)", g.ID, i, gene.ID, g.Conns[i-1].ID)
		}
		if gene.Source < 0 || gene.Target < 0 {
			return fmt.Errorf("genome %d: gene %d has negative endpoint", g.ID, i)
		}
		if gene.Target < meta.InputCount {
			return fmt.Errorf("genome %d: gene %d targets input node %d", g.ID, i, gene.Target)
		}
		if gene.Weight > meta.WeightScale || gene.Weight < -meta.WeightScale {
			return fmt.Errorf("genome %d: gene %d weight %v exceeds scale %v", g.ID, i, gene.Weight, meta.WeightScale)
		}
	}
	return nil
}

// HiddenNodes returns the sorted hidden-node ids referenced by the gene
// array. The hidden set is derived, never stored.
func HiddenNodes(conns []model.ConnectionGene, meta model.Meta) []int {
	ioCount := meta.InputCount + meta.OutputCount
	seen := make(map[int]struct{})
	for _, gene := range conns {
		if gene.Source >= ioCount {
			seen[gene.Source] = struct{}{}
		}
		if gene.Target >= ioCount {
			seen[gene.Target] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ContainsConnection reports whether the gene array already holds the
// (source, target) pair.
func ContainsConnection(conns []model.ConnectionGene, source, target int) bool {
	for _, gene := range conns {
		if gene.Source == source && gene.Target == target {
			return true
		}
	}
	return false
}

// Factory creates initial populations of randomly interconnected genomes.
// Innovation ids for the initial input->output connections are drawn through
// the shared tracker, so identical pairs receive identical ids across the
// whole population.
type Factory struct {
	meta      model.Meta
	tracker   *InnovationTracker
	genomeSeq *Sequence
}

func NewFactory(meta model.Meta, tracker *InnovationTracker, genomeSeq *Sequence) *Factory {
	return &Factory{meta: meta, tracker: tracker, genomeSeq: genomeSeq}
}

// CreatePopulation builds size genomes, each wired with a random subset of
// the input x output pairs. interconnections is the proportion of all
// possible pairs to realise, with at least one connection per genome.
func (f *Factory) CreatePopulation(size int, interconnections float64, rng *rand.Rand) ([]model.Genome, error) {
	if size <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", size)
	}
	if interconnections < 0 || interconnections > 1 {
		return nil, fmt.Errorf("initial interconnections proportion must be in [0,1], got %v", interconnections)
	}

	pairCount := f.meta.InputCount * f.meta.OutputCount
	connCount := int(float64(pairCount)*interconnections + 0.5)
	if connCount < 1 {
		connCount = 1
	}
	if connCount > pairCount {
		connCount = pairCount
	}

	genomes := make([]model.Genome, size)
	perm := make([]int, pairCount)
	for g := range genomes {
		for i := range perm {
			perm[i] = i
		}
		rng.Shuffle(pairCount, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		conns := make([]model.ConnectionGene, 0, connCount)
		for _, pair := range perm[:connCount] {
			source := pair / f.meta.OutputCount
			target := f.meta.InputCount + pair%f.meta.OutputCount
			conns = append(conns, model.ConnectionGene{
				ID:     f.tracker.ConnectionID(source, target),
				Source: source,
				Target: target,
				Weight: (rng.Float64()*2 - 1) * f.meta.WeightScale,
			})
		}
		sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
		genomes[g] = model.Genome{ID: f.genomeSeq.Next(), Birth: 0, Conns: conns}
	}
	return genomes, nil
}
