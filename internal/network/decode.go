package network

import (
	"fmt"

	"auxesis/internal/graph"
	"auxesis/internal/model"
)

// Decode compiles a genome into an executable black box under the given meta
// model. Non-viable genomes, those with no path from any input to any output,
// decode to (nil, false, nil) so the evolution loop can assign the null
// fitness. Errors indicate caller bugs: an unknown activation function, or a
// cyclic gene array handed to an acyclic model.
func Decode(g model.Genome, meta model.Meta) (BlackBox, bool, error) {
	fn, err := GetActivation(meta.Activation)
	if err != nil {
		return nil, false, err
	}
	if !viable(g.Conns, meta) {
		return nil, false, nil
	}

	conns := make([]graph.Connection, len(g.Conns))
	for i, gene := range g.Conns {
		conns[i] = graph.Connection{Source: gene.Source, Target: gene.Target, Weight: gene.Weight}
	}

	if meta.Acyclic {
		dg, err := graph.NewAcyclicDigraph(conns, meta.InputCount, meta.OutputCount)
		if err != nil {
			return nil, false, fmt.Errorf("decode genome %d: %w", g.ID, err)
		}
		return NewAcyclicNet(dg, fn), true, nil
	}
	return NewCyclicNet(graph.NewDigraph(conns, meta.InputCount, meta.OutputCount), fn, meta.CyclesPerActivation), true, nil
}

// viable reports whether at least one output node is reachable from an input
// node over the gene array.
func viable(conns []model.ConnectionGene, meta model.Meta) bool {
	if len(conns) == 0 {
		return false
	}
	out := make(map[int][]int, len(conns))
	for _, gene := range conns {
		out[gene.Source] = append(out[gene.Source], gene.Target)
	}

	ioCount := meta.InputCount + meta.OutputCount
	visited := make(map[int]struct{})
	stack := make([]int, 0, meta.InputCount)
	for input := 0; input < meta.InputCount; input++ {
		stack = append(stack, input)
		visited[input] = struct{}{}
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, tgt := range out[node] {
			if tgt >= meta.InputCount && tgt < ioCount {
				return true
			}
			if _, seen := visited[tgt]; seen {
				continue
			}
			visited[tgt] = struct{}{}
			stack = append(stack, tgt)
		}
	}
	return false
}
