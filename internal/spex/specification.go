package spex

// Specification is an immutable predicate over entities of type E.
//
// The zero Specification matches every entity. It is the identity for And
// and absorbs Or: s.And() of a zero receiver with no arguments stays zero,
// and Or with a zero operand is zero.
type Specification[E any] struct {
	node Node
}

// Wrap turns a node into a Specification for E. Use it with the dynamic
// constructors when attributes are only known at runtime.
func Wrap[E any](n Node) Specification[E] {
	return Specification[E]{node: n}
}

// All returns the Specification that matches every entity.
func All[E any]() Specification[E] {
	return Specification[E]{}
}

// Node returns the root of the predicate tree, or nil for the zero value.
func (s Specification[E]) Node() Node {
	return s.node
}

// IsZero reports whether s matches every entity.
func (s Specification[E]) IsZero() bool {
	return s.node == nil
}

// And returns a Specification matching entities that satisfy s and every
// one of others. The receiver becomes the first child and others follow in
// argument order. With no arguments the result is a single-child And node.
func (s Specification[E]) And(others ...Specification[E]) Specification[E] {
	operands := make([]Node, 0, len(others))
	for _, o := range others {
		if !o.IsZero() {
			operands = append(operands, o.node)
		}
	}
	if s.IsZero() {
		if len(operands) == 0 {
			return s
		}
		return Specification[E]{node: Logical{Op: KindAnd, Left: operands[0], Operands: operands[1:]}}
	}
	return Specification[E]{node: Logical{Op: KindAnd, Left: s.node, Operands: operands}}
}

// Or returns a Specification matching entities that satisfy s or any of
// others, with the same child ordering as And.
func (s Specification[E]) Or(others ...Specification[E]) Specification[E] {
	if s.IsZero() {
		return s
	}
	operands := make([]Node, 0, len(others))
	for _, o := range others {
		if o.IsZero() {
			return o
		}
		operands = append(operands, o.node)
	}
	return Specification[E]{node: Logical{Op: KindOr, Left: s.node, Operands: operands}}
}
