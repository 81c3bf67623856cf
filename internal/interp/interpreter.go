package interp

import (
	"slices"
	"sync"

	"github.com/roach88/daoism/internal/spex"
)

// EvalFunc evaluates one node into a backend fragment. Functions for
// composite kinds evaluate their children through ctx.Evaluate.
type EvalFunc[R any] func(ctx *Context[R], n spex.Node) (R, error)

// Interpreter dispatches predicate nodes to the function bound for their kind.
type Interpreter[R any] struct {
	mu    sync.RWMutex
	funcs map[spex.Kind]EvalFunc[R]
}

// New returns an Interpreter with no bindings.
func New[R any]() *Interpreter[R] {
	return &Interpreter[R]{funcs: make(map[spex.Kind]EvalFunc[R])}
}

// Bind registers fn for nodes of kind. A later binding for the same kind
// replaces the earlier one.
func (in *Interpreter[R]) Bind(kind spex.Kind, fn EvalFunc[R]) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.funcs[kind] = fn
}

// Supports reports whether a function is bound for kind.
func (in *Interpreter[R]) Supports(kind spex.Kind) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	_, ok := in.funcs[kind]
	return ok
}

// Kinds returns the bound kinds in sorted order.
func (in *Interpreter[R]) Kinds() []spex.Kind {
	in.mu.RLock()
	kinds := make([]spex.Kind, 0, len(in.funcs))
	for k := range in.funcs {
		kinds = append(kinds, k)
	}
	in.mu.RUnlock()
	slices.Sort(kinds)
	return kinds
}

// NewContext returns an empty evaluation context bound to in.
func (in *Interpreter[R]) NewContext() *Context[R] {
	return &Context[R]{in: in, bindings: make(map[string]any)}
}

// Evaluate looks up the function bound for n's kind and invokes it.
//
// A nil node or a kind with no binding fails with ErrCodeUnsupportedNode.
// Errors returned by the bound function are passed through unchanged.
func (in *Interpreter[R]) Evaluate(n spex.Node, ctx *Context[R]) (R, error) {
	var zero R
	if n == nil {
		return zero, &Error{Code: ErrCodeUnsupportedNode, Message: "nil node"}
	}

	in.mu.RLock()
	fn, ok := in.funcs[n.Kind()]
	in.mu.RUnlock()
	if !ok {
		return zero, &Error{
			Code:    ErrCodeUnsupportedNode,
			Message: "no evaluation function bound",
			Kind:    n.Kind(),
		}
	}
	return fn(ctx, n)
}
