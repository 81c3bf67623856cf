package harness

import (
	"fmt"

	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

// Predicate is the YAML form of a predicate tree.
//
//	{op: gt, attr: numberOfNics, other: numberOfPorts}
//	{op: or, operands: [{op: is_null, attr: host}, {op: eq, attr: host, value: rack-1}]}
//
// Comparisons take either another attribute (other) or a literal (value).
type Predicate struct {
	Op       string      `yaml:"op"`
	Attr     string      `yaml:"attr,omitempty"`
	Other    string      `yaml:"other,omitempty"`
	Value    any         `yaml:"value,omitempty"`
	Operands []Predicate `yaml:"operands,omitempty"`
}

var predicateOps = map[string]spex.Kind{
	"eq":      spex.KindEquals,
	"gt":      spex.KindGreaterThan,
	"lt":      spex.KindLessThan,
	"ge":      spex.KindGreaterOrEqual,
	"is_null": spex.KindIsNull,
	"and":     spex.KindAnd,
	"or":      spex.KindOr,
}

// Node builds the predicate node over e. Attribute paths are resolved and
// literals coerced to the attribute's type.
func (p *Predicate) Node(e *mapping.Entity) (spex.Node, error) {
	kind, ok := predicateOps[p.Op]
	if !ok {
		return nil, fmt.Errorf("unknown op %q", p.Op)
	}

	switch kind {
	case spex.KindAnd, spex.KindOr:
		if len(p.Operands) == 0 {
			return nil, fmt.Errorf("%s needs at least one operand", p.Op)
		}
		nodes := make([]spex.Node, len(p.Operands))
		for i := range p.Operands {
			n, err := p.Operands[i].Node(e)
			if err != nil {
				return nil, fmt.Errorf("operands[%d]: %w", i, err)
			}
			nodes[i] = n
		}
		return spex.Combine(kind, nodes[0], nodes[1:]...)

	case spex.KindIsNull:
		a, err := resolve(e, p.Attr)
		if err != nil {
			return nil, err
		}
		return spex.NullCheck(a.Ref()), nil
	}

	a, err := resolve(e, p.Attr)
	if err != nil {
		return nil, err
	}

	var right spex.Value
	switch {
	case p.Other != "" && p.Value != nil:
		return nil, fmt.Errorf("%s on %s takes other or value, not both", p.Op, p.Attr)
	case p.Other != "":
		o, err := resolve(e, p.Other)
		if err != nil {
			return nil, err
		}
		right = spex.AttrValue(o.Ref())
	case p.Value != nil:
		v, err := a.Type.Coerce(p.Value)
		if err != nil {
			return nil, fmt.Errorf("value for %s: %w", p.Attr, err)
		}
		right = spex.LiteralValue(v)
	default:
		return nil, fmt.Errorf("%s on %s needs other or value (use is_null for null checks)", p.Op, p.Attr)
	}

	return spex.Compare(kind, a.Ref(), right)
}

func resolve(e *mapping.Entity, path string) (mapping.Attribute, error) {
	if path == "" {
		return mapping.Attribute{}, fmt.Errorf("attr is required")
	}
	a, ok := e.Resolve(path)
	if !ok {
		return mapping.Attribute{}, fmt.Errorf("entity %s has no attribute %q", e.Name, path)
	}
	return a, nil
}

// Selection builds the case's selection over e.
func (c *Case) Selection(e *mapping.Entity) (spex.Selection, error) {
	var sel spex.Selection
	if c.Where != nil {
		n, err := c.Where.Node(e)
		if err != nil {
			return sel, fmt.Errorf("where: %w", err)
		}
		sel.Where = n
	}
	for i, o := range c.OrderBy {
		a, err := resolve(e, o.Attr)
		if err != nil {
			return sel, fmt.Errorf("order_by[%d]: %w", i, err)
		}
		dir := spex.Asc
		if o.Desc {
			dir = spex.Desc
		}
		sel.Orders = append(sel.Orders, spex.Order{Ref: a.Ref(), Direction: dir})
	}
	return sel, nil
}
