package spex

import "fmt"

// Kind identifies the type of a predicate node.
// Interpreters dispatch on Kind.
type Kind string

// Built-in node kinds.
const (
	KindEquals         Kind = "equals"
	KindGreaterThan    Kind = "greater_than"
	KindLessThan       Kind = "less_than"
	KindGreaterOrEqual Kind = "greater_or_equal"
	KindIsNull         Kind = "is_null"
	KindAnd            Kind = "and"
	KindOr             Kind = "or"
)

// IsOrdering reports whether k compares operands by order rather than equality.
func (k Kind) IsOrdering() bool {
	return k == KindGreaterThan || k == KindLessThan || k == KindGreaterOrEqual
}

// Category describes which comparisons an attribute supports and which
// ordering the backend applies.
type Category string

const (
	// Equality attributes support Equals and IsNull only.
	Equality Category = "equality"
	// Ordered attributes compare lexically (strings, other cmp.Ordered types).
	Ordered Category = "ordered"
	// Numeric attributes compare numerically.
	Numeric Category = "numeric"
	// Temporal attributes compare chronologically.
	Temporal Category = "temporal"
)

// Supports reports whether attributes of this category accept kind k.
func (c Category) Supports(k Kind) bool {
	if k.IsOrdering() {
		return c == Ordered || c == Numeric || c == Temporal
	}
	return true
}

// Compatible reports whether attributes of categories c and o can be
// compared with each other. Lexical and numeric orderings are
// interchangeable for backends; temporal and equality-only attributes only
// compare with their own category.
func (c Category) Compatible(o Category) bool {
	if c == o {
		return true
	}
	lexicalOrNumeric := func(x Category) bool { return x == Ordered || x == Numeric }
	return lexicalOrNumeric(c) && lexicalOrNumeric(o)
}

// CanCompare reports whether op may compare an attribute of category left
// with an attribute of category right. Equality accepts an equality-only
// attribute on either side.
func CanCompare(op Kind, left, right Category) bool {
	if !left.Supports(op) || !right.Supports(op) {
		return false
	}
	if op == KindEquals && (left == Equality || right == Equality) {
		return true
	}
	return left.Compatible(right)
}

// Node is a predicate tree node.
//
// The interface is intentionally open: packages outside spex may define
// their own node kinds and register evaluation functions for them.
type Node interface {
	Kind() Kind
}

// Ref is a reference to an attribute path of the root entity.
// Paths are dot-separated for nested navigation ("address.city").
type Ref struct {
	Path     string
	Category Category
}

func (r Ref) String() string {
	return r.Path
}

// Value is a comparison operand: either an attribute reference or a
// literal constant. Exactly one of Attr and Literal is meaningful; Attr
// takes precedence when non-nil.
type Value struct {
	Attr    *Ref
	Literal any
}

// AttrValue wraps an attribute reference as an operand.
func AttrValue(r Ref) Value {
	return Value{Attr: &r}
}

// LiteralValue wraps a constant as an operand.
func LiteralValue(v any) Value {
	return Value{Literal: v}
}

// IsAttr reports whether the operand is an attribute reference.
func (v Value) IsAttr() bool {
	return v.Attr != nil
}

// Comparison compares an attribute (Left) with another attribute or a
// literal (Right). Op is one of KindEquals, KindGreaterThan, KindLessThan,
// KindGreaterOrEqual.
type Comparison struct {
	Op    Kind
	Left  Value
	Right Value
}

func (c Comparison) Kind() Kind { return c.Op }

// IsNull matches rows where Operand's attribute has no value.
type IsNull struct {
	Operand Value
}

func (IsNull) Kind() Kind { return KindIsNull }

// Logical combines Left with Operands using Op (KindAnd or KindOr).
//
// A Logical node with no Operands is valid and has a single child.
// All children are always present and evaluated in order; no
// short-circuiting is implied.
type Logical struct {
	Op       Kind
	Left     Node
	Operands []Node
}

func (l Logical) Kind() Kind { return l.Op }

// Children returns Left followed by Operands.
func (l Logical) Children() []Node {
	children := make([]Node, 0, len(l.Operands)+1)
	children = append(children, l.Left)
	return append(children, l.Operands...)
}

// Compare builds a comparison node for trees whose attributes are only
// known at runtime (catalog-driven paths, scenario files).
//
// It enforces the same rules the typed attributes enforce at compile time:
// ordering comparisons need an ordered category on the left, and an
// attribute operand must have a compatible category.
func Compare(op Kind, left Ref, right Value) (Comparison, error) {
	switch op {
	case KindEquals, KindGreaterThan, KindLessThan, KindGreaterOrEqual:
	default:
		return Comparison{}, fmt.Errorf("%s is not a comparison kind", op)
	}
	if !left.Category.Supports(op) {
		return Comparison{}, fmt.Errorf("attribute %q (%s) does not support %s", left.Path, left.Category, op)
	}
	if right.IsAttr() && !CanCompare(op, left.Category, right.Attr.Category) {
		return Comparison{}, fmt.Errorf("cannot compare %q (%s) with %q (%s)",
			left.Path, left.Category, right.Attr.Path, right.Attr.Category)
	}
	return Comparison{Op: op, Left: AttrValue(left), Right: right}, nil
}

// NullCheck builds an IsNull node for a runtime attribute.
func NullCheck(r Ref) IsNull {
	return IsNull{Operand: AttrValue(r)}
}

// Combine builds a Logical node. op must be KindAnd or KindOr.
func Combine(op Kind, left Node, operands ...Node) (Logical, error) {
	if op != KindAnd && op != KindOr {
		return Logical{}, fmt.Errorf("%s is not a logical kind", op)
	}
	if left == nil {
		return Logical{}, fmt.Errorf("%s: left operand is required", op)
	}
	for i, o := range operands {
		if o == nil {
			return Logical{}, fmt.Errorf("%s: operand %d is nil", op, i)
		}
	}
	return Logical{Op: op, Left: left, Operands: append([]Node(nil), operands...)}, nil
}
