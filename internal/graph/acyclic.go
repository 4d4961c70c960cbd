package graph

import (
	"fmt"
	"sort"
)

// LayerInfo bounds one depth layer. Layer k spans node indices
// [prev.EndNodeIdx, EndNodeIdx) and connection indices
// [prev.EndConnIdx, EndConnIdx), where prev is the entry for layer k-1
// (zero bounds for layer 0).
type LayerInfo struct {
	EndNodeIdx int
	EndConnIdx int
}

// AcyclicDigraph is a digraph whose nodes are assigned a depth (longest path
// from an input) and remapped so node indices are contiguous and ordered by
// depth: inputs first, then the remaining nodes by increasing depth, original
// order breaking ties. Every edge goes from a lower depth to a strictly
// higher depth, so a single forward pass over the layers activates the whole
// network.
type AcyclicDigraph struct {
	Digraph
	layers []LayerInfo

	// nodeRemap maps pre-remap compact indices to depth-ordered indices.
	// Input node indices are unchanged; output nodes land wherever their
	// depth puts them, so callers needing output positions go through here.
	nodeRemap []int
}

// NewAcyclicDigraph builds the layered form of conns. The caller is expected
// to guarantee acyclic input by construction; a cycle is reported as an
// error.
func NewAcyclicDigraph(conns []Connection, inputCount, outputCount int) (*AcyclicDigraph, error) {
	base := NewDigraph(conns, inputCount, outputCount)
	if NewCycleDetector().IsCyclic(base) {
		return nil, fmt.Errorf("graph: connection set contains a cycle")
	}
	return newAcyclicFromBase(base)
}

func newAcyclicFromBase(base *Digraph) (*AcyclicDigraph, error) {
	nodeCount := base.TotalNodeCount()
	depths := nodeDepths(base)

	// Depth-ordered remap, original index breaking ties. Inputs are depth 0
	// with the lowest original indices, so they stay in place.
	order := make([]int, nodeCount)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return depths[order[i]] < depths[order[j]]
	})
	remap := make([]int, nodeCount)
	for newIdx, origIdx := range order {
		remap[origIdx] = newIdx
	}

	remapped := make([]Connection, base.ConnectionCount())
	for i := 0; i < base.ConnectionCount(); i++ {
		src, tgt, w := base.Connection(i)
		remapped[i] = Connection{Source: remap[src], Target: remap[tgt], Weight: w}
	}
	SortConnections(remapped)

	g := &AcyclicDigraph{
		Digraph: Digraph{
			srcIDs:         make([]int, len(remapped)),
			tgtIDs:         make([]int, len(remapped)),
			weights:        make([]float64, len(remapped)),
			inputCount:     base.InputCount(),
			outputCount:    base.OutputCount(),
			totalNodeCount: nodeCount,
		},
		nodeRemap: remap,
	}
	for i, c := range remapped {
		g.srcIDs[i] = c.Source
		g.tgtIDs[i] = c.Target
		g.weights[i] = c.Weight
	}
	g.buildFirstConnIndex()

	layerCount := 0
	for _, d := range depths {
		if d+1 > layerCount {
			layerCount = d + 1
		}
	}
	if layerCount == 0 {
		layerCount = 1
	}
	g.layers = make([]LayerInfo, layerCount)
	for newIdx, origIdx := range order {
		g.layers[depths[origIdx]].EndNodeIdx = newIdx + 1
	}
	conn := 0
	for layer := 0; layer < layerCount; layer++ {
		end := g.layers[layer].EndNodeIdx
		for conn < len(g.srcIDs) && g.srcIDs[conn] < end {
			conn++
		}
		g.layers[layer].EndConnIdx = conn
	}
	return g, nil
}

// nodeDepths assigns every node the length of the longest path reaching it
// from depth 0, by repeated relaxation over the connection list. The graph is
// acyclic, so the depth of any node is bounded by the node count and the
// relaxation reaches a fixpoint.
func nodeDepths(g *Digraph) []int {
	depths := make([]int, g.TotalNodeCount())
	for changed := true; changed; {
		changed = false
		for i := 0; i < g.ConnectionCount(); i++ {
			src, tgt, _ := g.Connection(i)
			if depths[tgt] < depths[src]+1 {
				depths[tgt] = depths[src] + 1
				changed = true
			}
		}
	}
	return depths
}

// LayerCount returns the number of depth layers.
func (g *AcyclicDigraph) LayerCount() int { return len(g.layers) }

// Layer returns the bounds of layer k.
func (g *AcyclicDigraph) Layer(k int) LayerInfo { return g.layers[k] }

// RemappedNode translates a pre-remap compact node index to its depth-ordered
// index.
func (g *AcyclicDigraph) RemappedNode(origIdx int) int { return g.nodeRemap[origIdx] }
