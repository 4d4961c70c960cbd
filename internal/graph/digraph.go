package graph

import "sort"

// Connection is a weighted directed edge between node ids.
type Connection struct {
	Source int
	Target int
	Weight float64
}

// Digraph is the compact connection-array form of a directed graph. The
// parallel source/target/weight arrays are sorted by (source, target), and
// hidden node ids are remapped to contiguous indices following the fixed
// input and output blocks. Input nodes occupy [0, inputCount), output nodes
// [inputCount, inputCount+outputCount).
type Digraph struct {
	srcIDs  []int
	tgtIDs  []int
	weights []float64

	inputCount     int
	outputCount    int
	totalNodeCount int

	// firstConnBySrc[n] is the index of node n's first outgoing connection;
	// firstConnBySrc[n+1] bounds it, so out-edge iteration is O(1) amortised.
	firstConnBySrc []int
}

// NewDigraph builds a compact digraph from raw connections. Hidden node ids
// (anything outside the input/output id range) are assigned compact indices
// in order of first appearance.
func NewDigraph(conns []Connection, inputCount, outputCount int) *Digraph {
	ioCount := inputCount + outputCount
	hiddenIdx := make(map[int]int)
	mapID := func(id int) int {
		if id < ioCount {
			return id
		}
		if idx, ok := hiddenIdx[id]; ok {
			return idx
		}
		idx := ioCount + len(hiddenIdx)
		hiddenIdx[id] = idx
		return idx
	}

	mapped := make([]Connection, len(conns))
	for i, c := range conns {
		mapped[i] = Connection{Source: mapID(c.Source), Target: mapID(c.Target), Weight: c.Weight}
	}
	sort.Slice(mapped, func(i, j int) bool {
		if mapped[i].Source != mapped[j].Source {
			return mapped[i].Source < mapped[j].Source
		}
		return mapped[i].Target < mapped[j].Target
	})

	g := &Digraph{
		srcIDs:         make([]int, len(mapped)),
		tgtIDs:         make([]int, len(mapped)),
		weights:        make([]float64, len(mapped)),
		inputCount:     inputCount,
		outputCount:    outputCount,
		totalNodeCount: ioCount + len(hiddenIdx),
	}
	for i, c := range mapped {
		g.srcIDs[i] = c.Source
		g.tgtIDs[i] = c.Target
		g.weights[i] = c.Weight
	}
	g.buildFirstConnIndex()
	return g
}

func (g *Digraph) buildFirstConnIndex() {
	g.firstConnBySrc = make([]int, g.totalNodeCount+1)
	conn := 0
	for node := 0; node <= g.totalNodeCount; node++ {
		for conn < len(g.srcIDs) && g.srcIDs[conn] < node {
			conn++
		}
		g.firstConnBySrc[node] = conn
	}
}

func (g *Digraph) ConnectionCount() int { return len(g.srcIDs) }
func (g *Digraph) InputCount() int      { return g.inputCount }
func (g *Digraph) OutputCount() int     { return g.outputCount }
func (g *Digraph) TotalNodeCount() int  { return g.totalNodeCount }

// Connection returns the i-th connection in (source, target) order.
func (g *Digraph) Connection(i int) (source, target int, weight float64) {
	return g.srcIDs[i], g.tgtIDs[i], g.weights[i]
}

// OutRange returns the half-open connection-index range of node's out-edges.
func (g *Digraph) OutRange(node int) (first, end int) {
	return g.firstConnBySrc[node], g.firstConnBySrc[node+1]
}
