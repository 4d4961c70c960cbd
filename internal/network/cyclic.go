package network

import "auxesis/internal/graph"

// CyclicNet activates an arbitrary digraph with double-buffered node values:
// each of the configured cycles computes every node's next value from the
// previous step's values, then swaps buffers.
type CyclicNet struct {
	g      *graph.Digraph
	fn     Func
	cycles int

	inputs  []float64
	outputs []float64
	prev    []float64
	next    []float64
	pre     []float64
}

func NewCyclicNet(g *graph.Digraph, fn Func, cyclesPerActivation int) *CyclicNet {
	if cyclesPerActivation < 1 {
		cyclesPerActivation = 1
	}
	return &CyclicNet{
		g:       g,
		fn:      fn,
		cycles:  cyclesPerActivation,
		inputs:  make([]float64, g.InputCount()),
		outputs: make([]float64, g.OutputCount()),
		prev:    make([]float64, g.TotalNodeCount()),
		next:    make([]float64, g.TotalNodeCount()),
		pre:     make([]float64, g.TotalNodeCount()),
	}
}

func (n *CyclicNet) InputCount() int    { return n.g.InputCount() }
func (n *CyclicNet) OutputCount() int   { return n.g.OutputCount() }
func (n *CyclicNet) Inputs() []float64  { return n.inputs }
func (n *CyclicNet) Outputs() []float64 { return n.outputs }

func (n *CyclicNet) Activate() {
	inCount := n.g.InputCount()
	copy(n.prev[:inCount], n.inputs)

	for cycle := 0; cycle < n.cycles; cycle++ {
		for i := range n.pre {
			n.pre[i] = 0
		}
		for i := 0; i < n.g.ConnectionCount(); i++ {
			src, tgt, w := n.g.Connection(i)
			n.pre[tgt] += n.prev[src] * w
		}
		copy(n.next[:inCount], n.inputs)
		for node := inCount; node < len(n.next); node++ {
			n.next[node] = n.fn(n.pre[node])
		}
		n.prev, n.next = n.next, n.prev
	}

	for i := range n.outputs {
		n.outputs[i] = n.prev[inCount+i]
	}
}

func (n *CyclicNet) Reset() {
	for i := range n.prev {
		n.prev[i] = 0
		n.next[i] = 0
	}
	for i := range n.outputs {
		n.outputs[i] = 0
	}
}
