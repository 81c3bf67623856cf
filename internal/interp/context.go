package interp

import (
	"fmt"
	"reflect"

	"github.com/roach88/daoism/internal/spex"
)

// Well-known binding names.
const (
	// BindingBuilder holds the backend's statement or criteria builder.
	BindingBuilder = "builder"
	// BindingQuery holds the query under construction.
	BindingQuery = "query"
	// BindingRoot holds the root entity the predicate is scoped to.
	BindingRoot = "root"
)

// Context carries named backend objects through one evaluation.
type Context[R any] struct {
	in       *Interpreter[R]
	bindings map[string]any
}

// Set binds v to name, replacing any previous binding, and returns c for
// chaining.
func (c *Context[R]) Set(name string, v any) *Context[R] {
	c.bindings[name] = v
	return c
}

// Get returns the value bound to name.
func (c *Context[R]) Get(name string) (any, bool) {
	v, ok := c.bindings[name]
	return v, ok
}

// Evaluate evaluates n with the context's interpreter.
func (c *Context[R]) Evaluate(n spex.Node) (R, error) {
	return c.in.Evaluate(n, c)
}

// Lookup returns the value bound to name as a T. A missing binding or a
// value of another type fails with ErrCodeMissingBinding.
func Lookup[T, R any](c *Context[R], name string) (T, error) {
	var zero T
	v, ok := c.bindings[name]
	if !ok {
		return zero, &Error{Code: ErrCodeMissingBinding, Message: fmt.Sprintf("no binding %q", name)}
	}
	t, ok := v.(T)
	if !ok {
		return zero, &Error{
			Code:    ErrCodeMissingBinding,
			Message: fmt.Sprintf("binding %q is %T, want %s", name, v, reflect.TypeFor[T]()),
		}
	}
	return t, nil
}
