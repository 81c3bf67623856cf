package querysql

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/interp"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

var operators = map[spex.Kind]string{
	spex.KindEquals:         "=",
	spex.KindGreaterThan:    ">",
	spex.KindLessThan:       "<",
	spex.KindGreaterOrEqual: ">=",
}

// bindBuiltins registers the SQL evaluation functions for every built-in
// node kind.
func bindBuiltins(in *interp.Interpreter[sq.Sqlizer]) {
	for kind := range operators {
		in.Bind(kind, evalComparison)
	}
	in.Bind(spex.KindIsNull, evalIsNull)
	in.Bind(spex.KindAnd, evalLogical)
	in.Bind(spex.KindOr, evalLogical)
}

func evalComparison(ctx *interp.Context[sq.Sqlizer], n spex.Node) (sq.Sqlizer, error) {
	c, ok := n.(spex.Comparison)
	if !ok {
		return nil, interp.Errorf(interp.ErrCodeUnsupportedNode, n.Kind(), "unexpected node type %T", n)
	}
	root, err := interp.Lookup[*mapping.Entity](ctx, interp.BindingRoot)
	if err != nil {
		return nil, err
	}

	left, err := resolveOperand(root, c.Left, c.Op)
	if err != nil {
		return nil, err
	}
	if !left.Category.Supports(c.Op) {
		return nil, interp.Errorf(interp.ErrCodeOperandMismatch, c.Op,
			"attribute %q (%s) does not support %s", left.Path, left.Category, c.Op)
	}

	if c.Right.IsAttr() {
		right, err := resolveOperand(root, c.Right, c.Op)
		if err != nil {
			return nil, err
		}
		if !spex.CanCompare(c.Op, left.Category, right.Category) {
			return nil, interp.Errorf(interp.ErrCodeOperandMismatch, c.Op,
				"cannot compare %q (%s) with %q (%s)", left.Path, left.Category, right.Path, right.Category)
		}
		return sq.Expr(fmt.Sprintf("%s %s %s", left.Column, operators[c.Op], right.Column)), nil
	}

	v, err := left.Type.Coerce(c.Right.Literal)
	if err != nil {
		return nil, interp.Errorf(interp.ErrCodeOperandMismatch, c.Op,
			"literal for %q: %v", left.Path, err)
	}

	switch c.Op {
	case spex.KindEquals:
		return sq.Eq{left.Column: v}, nil
	case spex.KindGreaterThan:
		if v == nil {
			break
		}
		return sq.Gt{left.Column: v}, nil
	case spex.KindLessThan:
		if v == nil {
			break
		}
		return sq.Lt{left.Column: v}, nil
	case spex.KindGreaterOrEqual:
		if v == nil {
			break
		}
		return sq.GtOrEq{left.Column: v}, nil
	default:
		return nil, interp.Errorf(interp.ErrCodeUnsupportedNode, c.Op, "not a comparison")
	}
	return nil, interp.Errorf(interp.ErrCodeOperandMismatch, c.Op, "null literal cannot be ordered against %q", left.Path)
}

func evalIsNull(ctx *interp.Context[sq.Sqlizer], n spex.Node) (sq.Sqlizer, error) {
	in, ok := n.(spex.IsNull)
	if !ok {
		return nil, interp.Errorf(interp.ErrCodeUnsupportedNode, n.Kind(), "unexpected node type %T", n)
	}
	root, err := interp.Lookup[*mapping.Entity](ctx, interp.BindingRoot)
	if err != nil {
		return nil, err
	}
	a, err := resolveOperand(root, in.Operand, spex.KindIsNull)
	if err != nil {
		return nil, err
	}
	return sq.Eq{a.Column: nil}, nil
}

func evalLogical(ctx *interp.Context[sq.Sqlizer], n spex.Node) (sq.Sqlizer, error) {
	l, ok := n.(spex.Logical)
	if !ok {
		return nil, interp.Errorf(interp.ErrCodeUnsupportedNode, n.Kind(), "unexpected node type %T", n)
	}

	children := l.Children()
	parts := make([]sq.Sqlizer, 0, len(children))
	for i, child := range children {
		part, err := ctx.Evaluate(child)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", l.Op, i, err)
		}
		parts = append(parts, part)
	}

	if l.Op == spex.KindOr {
		return sq.Or(parts), nil
	}
	return sq.And(parts), nil
}

// resolveOperand maps an attribute operand to its column.
func resolveOperand(root *mapping.Entity, v spex.Value, op spex.Kind) (mapping.Attribute, error) {
	if !v.IsAttr() {
		return mapping.Attribute{}, interp.Errorf(interp.ErrCodeOperandMismatch, op, "operand must be an attribute")
	}
	a, ok := root.Resolve(v.Attr.Path)
	if !ok {
		return mapping.Attribute{}, errorf(ErrCodeUnmappedAttribute, "entity %s has no attribute %q", root.Name, v.Attr.Path)
	}
	return a, nil
}
