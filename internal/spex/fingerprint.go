package spex

import (
	"fmt"

	"github.com/roach88/daoism/internal/ir"
)

// Canonicalizer is implemented by custom node kinds that want to take part
// in fingerprinting.
type Canonicalizer interface {
	Canonical() (ir.Value, error)
}

// Fingerprint returns a stable identifier for a predicate tree.
//
// Two trees built independently from the same attribute calls have the same
// fingerprint. A nil node (match everything) has a fingerprint too.
func Fingerprint(n Node) (string, error) {
	v, err := canonicalNode(n)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return ir.Hash(ir.DomainSpec, v)
}

func canonicalNode(n Node) (ir.Value, error) {
	switch node := n.(type) {
	case nil:
		return ir.Object{"kind": ir.String("all")}, nil
	case Comparison:
		left, err := canonicalValue(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := canonicalValue(node.Right)
		if err != nil {
			return nil, err
		}
		return ir.Object{"kind": ir.String(node.Op), "left": left, "right": right}, nil
	case IsNull:
		operand, err := canonicalValue(node.Operand)
		if err != nil {
			return nil, err
		}
		return ir.Object{"kind": ir.String(KindIsNull), "operand": operand}, nil
	case Logical:
		children := node.Children()
		operands := make(ir.Array, len(children))
		for i, child := range children {
			cv, err := canonicalNode(child)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", node.Op, i, err)
			}
			operands[i] = cv
		}
		return ir.Object{"kind": ir.String(node.Op), "operands": operands}, nil
	case Canonicalizer:
		return node.Canonical()
	default:
		return nil, fmt.Errorf("node kind %q cannot be fingerprinted", n.Kind())
	}
}

func canonicalValue(v Value) (ir.Value, error) {
	if v.IsAttr() {
		return ir.Object{
			"attr":     ir.String(v.Attr.Path),
			"category": ir.String(v.Attr.Category),
		}, nil
	}
	lit, err := ir.FromGo(v.Literal)
	if err != nil {
		return nil, fmt.Errorf("literal: %w", err)
	}
	return ir.Object{"literal": lit}, nil
}
