package querysql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/query"
)

// Statement is rendered SQL with its arguments.
type Statement struct {
	SQL  string
	Args []any

	// Entity is the entity the rows map to. It is nil for native queries.
	Entity *mapping.Entity
}

// ToSql implements sq.Sqlizer.
func (s Statement) ToSql() (string, []any, error) {
	return s.SQL, s.Args, nil
}

// RenderQuery renders a query-model query.
//
// Named queries take their text and entity from the catalog; if root is
// non-nil it must be that entity. Literal queries run over root. The text
// of both is appended to a SELECT of the entity's columns: {path}
// references become columns and :KEY placeholders bind the parameter with
// that key. Native text is used as is and binds parameters positionally
// in declaration order.
//
// The result cap and offset are applied last, LIMIT before OFFSET.
func (t *Translator) RenderQuery(q query.Query, cat *mapping.Catalog, root *mapping.Entity) (Statement, error) {
	switch q.Type() {
	case query.TypeNamed:
		nq, ok := cat.Query(q.Text())
		if !ok {
			return Statement{}, errorf(ErrCodeUnknownQuery, "no named query %q", q.Text())
		}
		e, ok := cat.Entity(nq.Entity)
		if !ok {
			return Statement{}, errorf(ErrCodeUnknownQuery, "named query %q references unknown entity %q", nq.Name, nq.Entity)
		}
		if root != nil && root.Name != e.Name {
			return Statement{}, errorf(ErrCodeEntityMismatch, "named query %q returns %s, not %s", nq.Name, e.Name, root.Name)
		}
		return t.renderTyped(q, nq.Text, e)

	case query.TypeLiteral:
		if root == nil {
			return Statement{}, fmt.Errorf("render literal query: root entity is required")
		}
		return t.renderTyped(q, q.Text(), root)

	case query.TypeNative:
		return t.renderNative(q), nil
	}
	return Statement{}, fmt.Errorf("render: unknown query type %q", q.Type())
}

func (t *Translator) renderTyped(q query.Query, text string, e *mapping.Entity) (Statement, error) {
	var tail strings.Builder
	var args []any
	for _, tok := range query.Scan(text) {
		switch tok.Kind {
		case query.TokenText:
			tail.WriteString(t.dialect.escapeText(tok.Value))
		case query.TokenPath:
			a, ok := e.Resolve(tok.Value)
			if !ok {
				return Statement{}, errorf(ErrCodeUnmappedAttribute, "entity %s has no attribute %q", e.Name, tok.Value)
			}
			tail.WriteString(a.Column)
		case query.TokenParam:
			v, ok := q.Lookup(tok.Value)
			if !ok {
				return Statement{}, errorf(ErrCodeMissingParameter, "no parameter bound for :%s", tok.Value)
			}
			tail.WriteString("?")
			args = append(args, v)
		}
	}

	b := t.dialect.Builder().Select(e.Columns()...).From(e.Table)
	if s := strings.TrimSpace(tail.String()); s != "" {
		b = b.Suffix(s, args...)
	}
	if w := t.windowClause(q); w != "" {
		b = b.Suffix(w)
	}

	sql, sqlArgs, err := b.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("render %s: %w", q.Type(), err)
	}
	return Statement{SQL: sql, Args: sqlArgs, Entity: e}, nil
}

func (t *Translator) renderNative(q query.Query) Statement {
	params := q.Parameters()
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Value
	}

	sql := q.Text()
	if w := t.windowClause(q); w != "" {
		sql = fmt.Sprintf("SELECT * FROM (%s) AS q %s", strings.TrimRight(strings.TrimSpace(sql), ";"), w)
	}
	return Statement{SQL: sql, Args: args}
}

// windowClause returns the LIMIT/OFFSET text for q, or "".
func (t *Translator) windowClause(q query.Query) string {
	var parts []string
	if q.HasResultLimit() {
		parts = append(parts, fmt.Sprintf("LIMIT %d", q.MaxResults()))
	} else if q.IsFirstResultSet() && t.dialect.offsetNeedsLimit() {
		parts = append(parts, "LIMIT -1")
	}
	if q.IsFirstResultSet() {
		parts = append(parts, fmt.Sprintf("OFFSET %d", q.FirstResult()))
	}
	return strings.Join(parts, " ")
}

var _ sq.Sqlizer = Statement{}
