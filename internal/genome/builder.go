package genome

import (
	"sort"

	"auxesis/internal/graph"
	"auxesis/internal/model"
)

// GeneListBuilder accumulates proposed connection genes for a child genome.
// It rejects duplicate (source, target) pairs, and when the model is acyclic
// it additionally rejects guarded genes that would close a cycle. The builder
// is cleared and reused across calls to amortise allocation; instances are
// not safe for concurrent use.
type GeneListBuilder struct {
	acyclic bool

	genes   []model.ConnectionGene
	present map[pairKey]struct{}
	sorted  []graph.Connection
	check   *graph.ConnCycleCheck
}

func NewGeneListBuilder(acyclic bool) *GeneListBuilder {
	b := &GeneListBuilder{
		acyclic: acyclic,
		present: make(map[pairKey]struct{}),
	}
	if acyclic {
		b.check = graph.NewConnCycleCheck()
	}
	return b
}

// Add admits a gene unconditionally apart from duplicate rejection. Callers
// use it for genes whose structure is already known safe, such as genes
// inherited from the primary parent of a crossover.
func (b *GeneListBuilder) Add(gene model.ConnectionGene) bool {
	return b.add(gene, false)
}

// TryAddGuarded admits a gene only if it neither duplicates an existing pair
// nor, for acyclic models, closes a cycle against the accumulated set.
func (b *GeneListBuilder) TryAddGuarded(gene model.ConnectionGene) bool {
	return b.add(gene, true)
}

func (b *GeneListBuilder) add(gene model.ConnectionGene, guarded bool) bool {
	key := pairKey{source: gene.Source, target: gene.Target}
	if _, dup := b.present[key]; dup {
		return false
	}
	if guarded && b.acyclic && b.check.CreatesCycle(b.sorted, gene.Source, gene.Target) {
		return false
	}
	b.present[key] = struct{}{}
	b.genes = append(b.genes, gene)
	if b.acyclic {
		b.sorted = graph.InsertConnectionSorted(b.sorted, graph.Connection{Source: gene.Source, Target: gene.Target})
	}
	return true
}

// End returns the accumulated genes sorted by innovation id and resets the
// builder for reuse. The returned slice is owned by the caller.
func (b *GeneListBuilder) End() []model.ConnectionGene {
	out := make([]model.ConnectionGene, len(b.genes))
	copy(out, b.genes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	b.genes = b.genes[:0]
	b.sorted = b.sorted[:0]
	clear(b.present)
	return out
}
