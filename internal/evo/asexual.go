package evo

import (
	"math/rand"
	"sort"

	"auxesis/internal/genome"
	"auxesis/internal/graph"
	"auxesis/internal/model"
)

// addConnectionAttempts bounds the random search for a new, non-duplicate,
// non-cyclic connection before the mutation is abandoned.
const addConnectionAttempts = 5

// AsexualReproduction creates a child genome from one parent by applying one
// of the four NEAT mutations. Instances hold reusable scratch buffers and are
// not safe for concurrent use; the evolution loop reproduces serially.
type AsexualReproduction struct {
	meta         model.Meta
	weightScheme WeightMutationScheme
	tracker      *genome.InnovationTracker
	genomeSeq    *genome.Sequence

	cycleCheck *graph.ConnCycleCheck
	connBuf    []graph.Connection
}

func NewAsexualReproduction(meta model.Meta, scheme WeightMutationScheme, tracker *genome.InnovationTracker, genomeSeq *genome.Sequence) *AsexualReproduction {
	r := &AsexualReproduction{
		meta:         meta,
		weightScheme: scheme,
		tracker:      tracker,
		genomeSeq:    genomeSeq,
	}
	if meta.Acyclic {
		r.cycleCheck = graph.NewConnCycleCheck()
	}
	return r
}

// CreateChild selects a mutation according to settings and applies it. An
// add-connection search that exhausts its retry budget is abandoned and, like
// a parent with no genes at all, yields an unchanged clone under a fresh id.
// A delete-connection that cannot apply to the parent falls back to weight
// mutation.
func (r *AsexualReproduction) CreateChild(parent model.Genome, settings AsexualSettings, rng *rand.Rand, generation int) model.Genome {
	if len(parent.Conns) == 0 {
		return parent.Clone(r.genomeSeq.Next(), generation)
	}

	var conns []model.ConnectionGene
	switch pickMutation(settings, rng) {
	case mutationAddNode:
		conns = r.addNode(parent, rng)
	case mutationAddConnection:
		conns = r.addConnection(parent, rng)
		if conns == nil {
			return parent.Clone(r.genomeSeq.Next(), generation)
		}
	case mutationDeleteConnection:
		conns = r.deleteConnection(parent, rng)
	}
	if conns == nil {
		conns = r.mutateWeights(parent, rng)
	}
	return model.Genome{ID: r.genomeSeq.Next(), Birth: generation, Conns: conns}
}

type mutationKind int

const (
	mutationConnectionWeight mutationKind = iota
	mutationAddNode
	mutationAddConnection
	mutationDeleteConnection
)

func pickMutation(s AsexualSettings, rng *rand.Rand) mutationKind {
	r := rng.Float64()
	if r < s.ConnectionWeightProbability {
		return mutationConnectionWeight
	}
	r -= s.ConnectionWeightProbability
	if r < s.AddNodeProbability {
		return mutationAddNode
	}
	r -= s.AddNodeProbability
	if r < s.AddConnectionProbability {
		return mutationAddConnection
	}
	return mutationDeleteConnection
}

func (r *AsexualReproduction) mutateWeights(parent model.Genome, rng *rand.Rand) []model.ConnectionGene {
	conns := append([]model.ConnectionGene(nil), parent.Conns...)
	r.weightScheme.Apply(conns, r.meta.WeightScale, rng)
	return conns
}

// addNode splits a random connection (s -> t, w) into (s -> h, 1.0) and
// (h -> t, w). The per-generation tracker hands out the node and connection
// ids, so simultaneous splits of the same connection in different genomes
// share them.
func (r *AsexualReproduction) addNode(parent model.Genome, rng *rand.Rand) []model.ConnectionGene {
	split := parent.Conns[rng.Intn(len(parent.Conns))]
	add := r.tracker.AddNode(split.Source, split.Target)

	conns := make([]model.ConnectionGene, 0, len(parent.Conns)+1)
	for _, gene := range parent.Conns {
		if gene.ID == split.ID {
			continue
		}
		conns = append(conns, gene)
	}
	conns = append(conns,
		model.ConnectionGene{ID: add.InID, Source: split.Source, Target: add.NodeID, Weight: 1.0},
		model.ConnectionGene{ID: add.OutID, Source: add.NodeID, Target: split.Target, Weight: split.Weight},
	)
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return conns
}

// addConnection tries a bounded number of random ordered node pairs; nil on
// exhaustion. For acyclic models each candidate is cycle-tested against the
// parent's connection set.
func (r *AsexualReproduction) addConnection(parent model.Genome, rng *rand.Rand) []model.ConnectionGene {
	hidden := genome.HiddenNodes(parent.Conns, r.meta)
	sources := make([]int, 0, r.meta.InputCount+r.meta.OutputCount+len(hidden))
	for id := 0; id < r.meta.InputCount+r.meta.OutputCount; id++ {
		sources = append(sources, id)
	}
	sources = append(sources, hidden...)
	// Targets exclude inputs: an edge into an input node is never useful.
	targets := sources[r.meta.InputCount:]

	var sorted []graph.Connection
	if r.meta.Acyclic {
		r.connBuf = r.connBuf[:0]
		for _, gene := range parent.Conns {
			r.connBuf = append(r.connBuf, graph.Connection{Source: gene.Source, Target: gene.Target})
		}
		graph.SortConnections(r.connBuf)
		sorted = r.connBuf
	}

	for attempt := 0; attempt < addConnectionAttempts; attempt++ {
		source := sources[rng.Intn(len(sources))]
		target := targets[rng.Intn(len(targets))]
		if source == target {
			continue
		}
		if genome.ContainsConnection(parent.Conns, source, target) {
			continue
		}
		if r.meta.Acyclic && r.cycleCheck.CreatesCycle(sorted, source, target) {
			continue
		}

		gene := model.ConnectionGene{
			ID:     r.tracker.ConnectionID(source, target),
			Source: source,
			Target: target,
			Weight: (rng.Float64()*2 - 1) * r.meta.WeightScale,
		}
		conns := append([]model.ConnectionGene(nil), parent.Conns...)
		conns = append(conns, gene)
		sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
		return conns
	}
	return nil
}

// deleteConnection removes one uniformly random connection. A hidden node
// left without edges disappears implicitly, since node ids are defined by
// connection presence. Parents with a single gene are left for the weight
// fallback instead.
func (r *AsexualReproduction) deleteConnection(parent model.Genome, rng *rand.Rand) []model.ConnectionGene {
	if len(parent.Conns) < 2 {
		return nil
	}
	drop := rng.Intn(len(parent.Conns))
	conns := make([]model.ConnectionGene, 0, len(parent.Conns)-1)
	conns = append(conns, parent.Conns[:drop]...)
	conns = append(conns, parent.Conns[drop+1:]...)
	return conns
}
