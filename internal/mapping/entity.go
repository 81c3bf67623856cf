package mapping

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/daoism/internal/spex"
)

// Attribute maps an entity attribute path to a column.
type Attribute struct {
	Path     string
	Column   string
	Type     Type
	Category spex.Category
	Pos      token.Pos
}

// Ref returns the attribute as a predicate reference.
func (a Attribute) Ref() spex.Ref {
	return spex.Ref{Path: a.Path, Category: a.Category}
}

// Entity describes how one entity type is stored.
type Entity struct {
	Name  string
	Table string

	// ID is the identifier attribute. Version, Created, and Modified are
	// optional and have an empty Path when absent.
	ID       Attribute
	Version  Attribute
	Created  Attribute
	Modified Attribute

	attrs  []Attribute
	byPath map[string]int
	byCol  map[string]int
}

// Versioned reports whether the entity has a version attribute.
func (e *Entity) Versioned() bool { return e.Version.Path != "" }

// Resolve returns the attribute at path.
func (e *Entity) Resolve(path string) (Attribute, bool) {
	i, ok := e.byPath[path]
	if !ok {
		return Attribute{}, false
	}
	return e.attrs[i], true
}

// Column returns the column backing path.
func (e *Entity) Column(path string) (string, error) {
	a, ok := e.Resolve(path)
	if !ok {
		return "", fmt.Errorf("entity %s has no attribute %q", e.Name, path)
	}
	return a.Column, nil
}

// ByColumn returns the attribute backed by column.
func (e *Entity) ByColumn(column string) (Attribute, bool) {
	i, ok := e.byCol[column]
	if !ok {
		return Attribute{}, false
	}
	return e.attrs[i], true
}

// Attributes returns the attributes in declaration order.
func (e *Entity) Attributes() []Attribute {
	return append([]Attribute(nil), e.attrs...)
}

// Columns returns the column names in declaration order.
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.attrs))
	for i, a := range e.attrs {
		cols[i] = a.Column
	}
	return cols
}

func (e *Entity) add(a Attribute) {
	if e.byPath == nil {
		e.byPath = make(map[string]int)
		e.byCol = make(map[string]int)
	}
	e.byPath[a.Path] = len(e.attrs)
	e.byCol[a.Column] = len(e.attrs)
	e.attrs = append(e.attrs, a)
}

// NamedQuery is a query registered in the catalog.
type NamedQuery struct {
	Name   string
	Entity string
	Text   string
	Pos    token.Pos
}
