package task

import "sync"

// EvaluatorPool is a bounded stack of stateful evaluators. A worker acquires
// one evaluator at partition start and releases it at partition end, so
// contention is negligible.
type EvaluatorPool struct {
	scheme EvaluationScheme

	mu    sync.Mutex
	stack []Evaluator
}

func NewEvaluatorPool(scheme EvaluationScheme) *EvaluatorPool {
	return &EvaluatorPool{scheme: scheme}
}

// Get pops a pooled evaluator, creating one when the stack is empty.
func (p *EvaluatorPool) Get() Evaluator {
	p.mu.Lock()
	if n := len(p.stack); n > 0 {
		e := p.stack[n-1]
		p.stack = p.stack[:n-1]
		p.mu.Unlock()
		return e
	}
	p.mu.Unlock()
	return p.scheme.CreateEvaluator()
}

// Release pushes an evaluator back for reuse.
func (p *EvaluatorPool) Release(e Evaluator) {
	if e == nil {
		return
	}
	p.mu.Lock()
	p.stack = append(p.stack, e)
	p.mu.Unlock()
}
