// Package spex provides composable, type-checked filter predicates over
// entity attributes.
//
// A predicate is built from attribute descriptors declared once per entity
// type:
//
//	var (
//	    Nics  = spex.NewNumber[VServer, int64]("numberOfNics")
//	    Ports = spex.NewNumber[VServer, int64]("numberOfPorts")
//	)
//
//	spec := Nics.GreaterThanAttr(Ports).Or(Ports.GreaterThan(8))
//
// Every combinator returns a new Specification wrapping a freshly built
// node. Nodes are never mutated after construction, so sub-trees can be
// shared between specifications and used from many goroutines.
//
// TYPE CHECKING:
//
// Attributes are parameterized by entity type E and value type T.
// Comparing an attribute with an attribute of another entity, another
// value type, or an equality-only attribute in an ordering comparison is a
// compile error. Trees built through the dynamic constructors (Compare,
// NullCheck, Combine) are checked when constructed and again by the
// backend during translation.
//
// NODE KINDS:
//
// Node is an open interface keyed by Kind. The built-in kinds are listed in
// kind.go. Backends register one evaluation function per kind with an
// interp.Interpreter; new kinds are added by implementing Node and
// registering a function, without touching existing code.
package spex
