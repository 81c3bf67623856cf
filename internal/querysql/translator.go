package querysql

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/interp"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

// Translator turns predicate trees and selections into SQL statements for
// one dialect.
//
// A Translator is safe for concurrent use once construction and any
// additional Bind calls on its Interpreter are done.
type Translator struct {
	dialect Dialect
	in      *interp.Interpreter[sq.Sqlizer]
}

// NewTranslator returns a Translator with SQL functions bound for all
// built-in node kinds.
func NewTranslator(d Dialect) *Translator {
	in := interp.New[sq.Sqlizer]()
	bindBuiltins(in)
	return &Translator{dialect: d, in: in}
}

// Interpreter returns the underlying interpreter so callers can bind
// functions for their own node kinds.
func (t *Translator) Interpreter() *interp.Interpreter[sq.Sqlizer] {
	return t.in
}

// Dialect returns the translator's dialect.
func (t *Translator) Dialect() Dialect {
	return t.dialect
}

// BuildQuery returns a SELECT of root's columns filtered by n, ordered by
// the identifier.
func (t *Translator) BuildQuery(n spex.Node, root *mapping.Entity) (sq.SelectBuilder, error) {
	return BuildQuery(t.in, n, root, t.dialect.Builder())
}

// BuildSelect returns the SELECT for a full selection: filter, ordering,
// and window. The identifier is always the last sort key.
func (t *Translator) BuildSelect(sel spex.Selection, root *mapping.Entity) (sq.SelectBuilder, error) {
	if err := requireRoot(root); err != nil {
		return sq.SelectBuilder{}, err
	}
	b, err := buildFiltered(t.in, sel.Where, root, t.dialect.Builder(), root.Columns()...)
	if err != nil {
		return b, err
	}

	orderedByID := false
	for _, o := range sel.Orders {
		a, ok := root.Resolve(o.Ref.Path)
		if !ok {
			return b, errorf(ErrCodeUnmappedAttribute, "entity %s has no attribute %q", root.Name, o.Ref.Path)
		}
		b = b.OrderBy(t.orderTerm(a, o.Direction))
		orderedByID = orderedByID || a.Column == root.ID.Column
	}
	if !orderedByID {
		b = b.OrderBy(t.orderTerm(root.ID, spex.Asc))
	}

	return t.window(b, sel.Limit, sel.HasLimit, sel.Offset, sel.HasOffset), nil
}

// BuildCount returns SELECT COUNT(*) over root filtered by n.
func (t *Translator) BuildCount(n spex.Node, root *mapping.Entity) (sq.SelectBuilder, error) {
	return buildFiltered(t.in, n, root, t.dialect.Builder(), "COUNT(*)")
}

// BuildQuery creates a query over root's table with the builder, binds
// the evaluation context, evaluates n into the filter, and orders by the
// identifier. A nil node means no filter.
func BuildQuery(in *interp.Interpreter[sq.Sqlizer], n spex.Node, root *mapping.Entity, builder sq.StatementBuilderType) (sq.SelectBuilder, error) {
	if err := requireRoot(root); err != nil {
		return sq.SelectBuilder{}, err
	}
	b, err := buildFiltered(in, n, root, builder, root.Columns()...)
	if err != nil {
		return b, err
	}
	return b.OrderBy(root.ID.Column + " ASC"), nil
}

func buildFiltered(in *interp.Interpreter[sq.Sqlizer], n spex.Node, root *mapping.Entity, builder sq.StatementBuilderType, columns ...string) (sq.SelectBuilder, error) {
	if err := requireRoot(root); err != nil {
		return sq.SelectBuilder{}, err
	}
	b := builder.Select(columns...).From(root.Table)
	if n == nil {
		return b, nil
	}

	ctx := in.NewContext().
		Set(interp.BindingBuilder, builder).
		Set(interp.BindingQuery, b).
		Set(interp.BindingRoot, root)
	pred, err := ctx.Evaluate(n)
	if err != nil {
		return b, fmt.Errorf("build query for %s: %w", root.Name, err)
	}
	return b.Where(pred), nil
}

func requireRoot(root *mapping.Entity) error {
	if root == nil {
		return fmt.Errorf("build query: root entity is required")
	}
	return nil
}

func (t *Translator) orderTerm(a mapping.Attribute, dir spex.Direction) string {
	if dir != spex.Desc {
		dir = spex.Asc
	}
	if a.Type == mapping.TypeText {
		return fmt.Sprintf("%s %s %s", a.Column, t.dialect.collate(), dir)
	}
	return fmt.Sprintf("%s %s", a.Column, dir)
}

// window applies LIMIT before OFFSET. SQLite needs a LIMIT for OFFSET, so
// an offset alone is written as LIMIT -1 OFFSET n there.
func (t *Translator) window(b sq.SelectBuilder, limit int, hasLimit bool, offset int, hasOffset bool) sq.SelectBuilder {
	if hasLimit {
		b = b.Limit(uint64(limit))
	}
	if hasOffset {
		if !hasLimit && t.dialect.offsetNeedsLimit() {
			return b.Suffix(fmt.Sprintf("LIMIT -1 OFFSET %d", offset))
		}
		b = b.Offset(uint64(offset))
	}
	return b
}

// Compile renders any statement to SQL and arguments.
func Compile(s sq.Sqlizer) (string, []any, error) {
	sql, args, err := s.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("compile: %w", err)
	}
	return sql, args, nil
}
