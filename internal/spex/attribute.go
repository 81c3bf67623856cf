package spex

import (
	"cmp"
	"time"
)

// NumberType is the set of value types accepted by Number attributes.
type NumberType interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Path is any attribute of entity E. Used where the value type does not
// matter, such as ordering a selection.
type Path[E any] interface {
	Ref() Ref
	entity(E)
}

// Operand is an attribute of entity E holding values of type T.
// It can appear on the right-hand side of an equality comparison.
type Operand[E, T any] interface {
	Path[E]
	operand(T)
}

// OrderedOperand is an Operand whose category supports ordering.
// Equality-only attributes do not satisfy it.
type OrderedOperand[E, T any] interface {
	Operand[E, T]
	ordered()
}

// Attribute is an equality-only attribute: Equals and IsNull.
// Use it for opaque values such as identifiers and flags.
type Attribute[E, T any] struct {
	ref Ref
}

// NewAttribute declares an equality-only attribute at path.
func NewAttribute[E, T any](path string) Attribute[E, T] {
	return Attribute[E, T]{ref: Ref{Path: path, Category: Equality}}
}

// Ref returns the attribute's path reference.
func (a Attribute[E, T]) Ref() Ref { return a.ref }

func (Attribute[E, T]) entity(E)  {}
func (Attribute[E, T]) operand(T) {}

// Equals matches entities whose attribute equals v.
func (a Attribute[E, T]) Equals(v T) Specification[E] {
	return a.compare(KindEquals, LiteralValue(v))
}

// EqualsAttr matches entities whose attribute equals other's value.
func (a Attribute[E, T]) EqualsAttr(other Operand[E, T]) Specification[E] {
	return a.compare(KindEquals, AttrValue(other.Ref()))
}

// IsNull matches entities where the attribute has no value.
func (a Attribute[E, T]) IsNull() Specification[E] {
	return Specification[E]{node: NullCheck(a.ref)}
}

func (a Attribute[E, T]) compare(op Kind, right Value) Specification[E] {
	return Specification[E]{node: Comparison{Op: op, Left: AttrValue(a.ref), Right: right}}
}

// orderedAttribute adds ordering comparisons. It is embedded by the
// Comparable, Number, and Date attribute kinds.
type orderedAttribute[E, T any] struct {
	Attribute[E, T]
}

func (orderedAttribute[E, T]) ordered() {}

// GreaterThan matches entities whose attribute is greater than v.
func (a orderedAttribute[E, T]) GreaterThan(v T) Specification[E] {
	return a.compare(KindGreaterThan, LiteralValue(v))
}

// GreaterThanAttr matches entities whose attribute is greater than other's value.
func (a orderedAttribute[E, T]) GreaterThanAttr(other OrderedOperand[E, T]) Specification[E] {
	return a.compare(KindGreaterThan, AttrValue(other.Ref()))
}

// LessThan matches entities whose attribute is less than v.
func (a orderedAttribute[E, T]) LessThan(v T) Specification[E] {
	return a.compare(KindLessThan, LiteralValue(v))
}

// LessThanAttr matches entities whose attribute is less than other's value.
func (a orderedAttribute[E, T]) LessThanAttr(other OrderedOperand[E, T]) Specification[E] {
	return a.compare(KindLessThan, AttrValue(other.Ref()))
}

// GreaterOrEqual matches entities whose attribute is at least v.
func (a orderedAttribute[E, T]) GreaterOrEqual(v T) Specification[E] {
	return a.compare(KindGreaterOrEqual, LiteralValue(v))
}

// GreaterOrEqualAttr matches entities whose attribute is at least other's value.
func (a orderedAttribute[E, T]) GreaterOrEqualAttr(other OrderedOperand[E, T]) Specification[E] {
	return a.compare(KindGreaterOrEqual, AttrValue(other.Ref()))
}

// Comparable is an attribute with lexical or natural ordering.
type Comparable[E any, T cmp.Ordered] struct {
	orderedAttribute[E, T]
}

// NewComparable declares an ordered attribute at path.
func NewComparable[E any, T cmp.Ordered](path string) Comparable[E, T] {
	return Comparable[E, T]{orderedAttribute[E, T]{Attribute[E, T]{ref: Ref{Path: path, Category: Ordered}}}}
}

// Number is a numeric attribute.
type Number[E any, T NumberType] struct {
	orderedAttribute[E, T]
}

// NewNumber declares a numeric attribute at path.
func NewNumber[E any, T NumberType](path string) Number[E, T] {
	return Number[E, T]{orderedAttribute[E, T]{Attribute[E, T]{ref: Ref{Path: path, Category: Numeric}}}}
}

// Date is a temporal attribute.
type Date[E any] struct {
	orderedAttribute[E, time.Time]
}

// NewDate declares a temporal attribute at path.
func NewDate[E any](path string) Date[E] {
	return Date[E]{orderedAttribute[E, time.Time]{Attribute[E, time.Time]{ref: Ref{Path: path, Category: Temporal}}}}
}
