package evo

import (
	"math/rand"

	"auxesis/internal/genome"
	"auxesis/internal/model"
)

// SexualReproduction creates a child by uniform crossover on innovation-
// aligned genes. The shared gene-list builder is cleared between calls;
// instances are not safe for concurrent use.
type SexualReproduction struct {
	meta      model.Meta
	genomeSeq *genome.Sequence
	builder   *genome.GeneListBuilder

	secondaryOnly []model.ConnectionGene
}

func NewSexualReproduction(meta model.Meta, genomeSeq *genome.Sequence) *SexualReproduction {
	return &SexualReproduction{
		meta:      meta,
		genomeSeq: genomeSeq,
		builder:   genome.NewGeneListBuilder(meta.Acyclic),
	}
}

// CreateChild merges the two parents' gene arrays in innovation-id order.
// One parent is randomly designated primary. Matched genes are copied from
// either parent with even odds; genes present only on the primary are always
// inherited; genes present only on the secondary are inherited with the
// configured probability and, for acyclic models, only if they do not close
// a cycle. Secondary-only genes are admitted after the primary structure is
// complete, so the cycle guard sees the whole inherited topology.
func (r *SexualReproduction) CreateChild(a, b model.Genome, settings SexualSettings, rng *rand.Rand, generation int) model.Genome {
	primary, secondary := a, b
	if rng.Intn(2) == 1 {
		primary, secondary = b, a
	}

	r.secondaryOnly = r.secondaryOnly[:0]
	i, j := 0, 0
	for i < len(primary.Conns) && j < len(secondary.Conns) {
		pg, sg := primary.Conns[i], secondary.Conns[j]
		switch {
		case pg.ID == sg.ID:
			gene := pg
			if rng.Intn(2) == 1 {
				gene = sg
			}
			r.builder.Add(gene)
			i++
			j++
		case pg.ID < sg.ID:
			r.builder.Add(pg)
			i++
		default:
			if rng.Float64() < settings.SecondaryParentGeneProbability {
				r.secondaryOnly = append(r.secondaryOnly, sg)
			}
			j++
		}
	}
	for ; i < len(primary.Conns); i++ {
		r.builder.Add(primary.Conns[i])
	}
	for ; j < len(secondary.Conns); j++ {
		if rng.Float64() < settings.SecondaryParentGeneProbability {
			r.secondaryOnly = append(r.secondaryOnly, secondary.Conns[j])
		}
	}

	for _, gene := range r.secondaryOnly {
		r.builder.TryAddGuarded(gene)
	}

	return model.Genome{ID: r.genomeSeq.Next(), Birth: generation, Conns: r.builder.End()}
}
