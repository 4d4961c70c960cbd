package genome

import (
	"sync"
	"sync/atomic"

	"auxesis/internal/model"
)

// Sequence hands out monotonically increasing ids. One process-wide sequence
// backs innovation ids and another backs genome ids; correctness depends on
// single-run monotonicity only.
type Sequence struct {
	next atomic.Int64
}

func NewSequence(start int) *Sequence {
	s := &Sequence{}
	s.next.Store(int64(start))
	return s
}

func (s *Sequence) Next() int {
	return int(s.next.Add(1)) - 1
}

// Peek returns the next id without consuming it.
func (s *Sequence) Peek() int {
	return int(s.next.Load())
}

type pairKey struct {
	source int
	target int
}

// NodeAddition records the ids minted when a connection (source, target) was
// split by an add-node mutation: the new hidden node and its two replacement
// connections.
type NodeAddition struct {
	NodeID int
	InID   int
	OutID  int
}

// InnovationTracker is the per-generation innovation cache. Two genomes that
// create the same structural element within one generation receive the same
// ids: add-connection ids are cached by (source, target), and add-node
// additions by the split connection's endpoints. The tracker is cleared at
// the start of each generation; lookups are serialized so implementations
// that parallelise reproduction still observe one id per key.
type InnovationTracker struct {
	seq *Sequence

	mu    sync.Mutex
	conns map[pairKey]int
	nodes map[pairKey]NodeAddition
}

func NewInnovationTracker(meta model.Meta) *InnovationTracker {
	return NewInnovationTrackerFrom(meta, meta.InputCount+meta.OutputCount)
}

// NewInnovationTrackerFrom starts the id sequence at nextID, used when a
// loaded population already occupies part of the id space. The floor never
// drops below the input/output node id range.
func NewInnovationTrackerFrom(meta model.Meta, nextID int) *InnovationTracker {
	if floor := meta.InputCount + meta.OutputCount; nextID < floor {
		nextID = floor
	}
	return &InnovationTracker{
		seq:   NewSequence(nextID),
		conns: make(map[pairKey]int),
		nodes: make(map[pairKey]NodeAddition),
	}
}

// ConnectionID returns the innovation id for a new connection (source,
// target), minting one on first request within the current generation.
func (t *InnovationTracker) ConnectionID(source, target int) int {
	key := pairKey{source: source, target: target}
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.conns[key]; ok {
		return id
	}
	id := t.seq.Next()
	t.conns[key] = id
	return id
}

// AddNode returns the ids for splitting the connection (source, target) with
// a new hidden node, minting the triple on first request within the current
// generation.
func (t *InnovationTracker) AddNode(source, target int) NodeAddition {
	key := pairKey{source: source, target: target}
	t.mu.Lock()
	defer t.mu.Unlock()
	if add, ok := t.nodes[key]; ok {
		return add
	}
	add := NodeAddition{
		NodeID: t.seq.Next(),
		InID:   t.seq.Next(),
		OutID:  t.seq.Next(),
	}
	t.nodes[key] = add
	return add
}

// Reset clears the per-generation caches. The id sequence keeps running, so
// ids stay unique across generations.
func (t *InnovationTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.conns)
	clear(t.nodes)
}
