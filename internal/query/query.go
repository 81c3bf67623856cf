package query

import (
	"fmt"
	"strings"

	"github.com/roach88/daoism/internal/ir"
)

// Type identifies the query variant.
type Type string

const (
	TypeNamed   Type = "named"
	TypeLiteral Type = "literal"
	TypeNative  Type = "native"
)

// Parameter is one bound parameter.
type Parameter struct {
	Key   string
	Value any
}

// Query is an immutable, fully self-describing query descriptor.
//
// The zero Query has no type and fails validation.
type Query struct {
	typ    Type
	text   string
	params []Parameter

	maxResults int
	hasMax     bool
	first      int
	hasFirst   bool
}

// Named returns a query referencing a catalog entry by name.
func Named(name string) Query {
	return Query{typ: TypeNamed, text: name}
}

// Literal returns a query over entity attributes given as text.
func Literal(text string) Query {
	return Query{typ: TypeLiteral, text: text}
}

// Native returns a backend-native query.
func Native(text string) Query {
	return Query{typ: TypeNative, text: text}
}

// Binder completes a Set call.
type Binder struct {
	q   Query
	key string
}

// Set starts binding a parameter. The parameter is added by To.
func (q Query) Set(key string) Binder {
	return Binder{q: q, key: key}
}

// To returns the query with the parameter appended.
func (b Binder) To(v any) Query {
	q := b.q
	params := make([]Parameter, len(q.params), len(q.params)+1)
	copy(params, q.params)
	q.params = append(params, Parameter{Key: b.key, Value: v})
	return q
}

// SetMaxResults caps the number of results. A negative n removes the cap;
// zero is a valid cap that returns no rows.
func (q Query) SetMaxResults(n int) Query {
	q.maxResults, q.hasMax = n, n >= 0
	return q
}

// SetFirstResult skips the first n results. A negative n removes the
// offset; zero is a valid, explicit offset.
func (q Query) SetFirstResult(n int) Query {
	q.first, q.hasFirst = n, n >= 0
	return q
}

// Type returns the query variant.
func (q Query) Type() Type { return q.typ }

// Text returns the catalog name for named queries and the query text otherwise.
func (q Query) Text() string { return q.text }

// IsTyped reports whether the query executes with a typed entity result.
// Native queries are untyped.
func (q Query) IsTyped() bool {
	return q.typ == TypeNamed || q.typ == TypeLiteral
}

// Parameters returns the bound parameters in declaration order.
func (q Query) Parameters() []Parameter {
	return append([]Parameter(nil), q.params...)
}

// Lookup returns the value of the last parameter bound to key.
func (q Query) Lookup(key string) (any, bool) {
	for i := len(q.params) - 1; i >= 0; i-- {
		if q.params[i].Key == key {
			return q.params[i].Value, true
		}
	}
	return nil, false
}

// HasResultLimit reports whether a result cap is set.
func (q Query) HasResultLimit() bool { return q.hasMax }

// MaxResults returns the result cap. Meaningful only if HasResultLimit.
func (q Query) MaxResults() int { return q.maxResults }

// IsFirstResultSet reports whether an offset is set.
func (q Query) IsFirstResultSet() bool { return q.hasFirst }

// FirstResult returns the offset. Meaningful only if IsFirstResultSet.
func (q Query) FirstResult() int { return q.first }

func (q Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%q)", q.typ, q.text)
	for _, p := range q.params {
		fmt.Fprintf(&b, " %s=%v", p.Key, p.Value)
	}
	if q.hasMax {
		fmt.Fprintf(&b, " max=%d", q.maxResults)
	}
	if q.hasFirst {
		fmt.Fprintf(&b, " first=%d", q.first)
	}
	return b.String()
}

// Fingerprint returns a stable identifier for q, covering its variant,
// text, parameters in order, and window.
func Fingerprint(q Query) (string, error) {
	params := make(ir.Array, len(q.params))
	for i, p := range q.params {
		v, err := ir.FromGo(p.Value)
		if err != nil {
			return "", fmt.Errorf("fingerprint: parameter %q: %w", p.Key, err)
		}
		params[i] = ir.Object{"key": ir.String(p.Key), "value": v}
	}
	obj := ir.Object{
		"type":   ir.String(q.typ),
		"text":   ir.String(q.text),
		"params": params,
	}
	if q.hasMax {
		obj["max"] = ir.Int(q.maxResults)
	}
	if q.hasFirst {
		obj["first"] = ir.Int(q.first)
	}
	return ir.Hash(ir.DomainQuery, obj)
}
