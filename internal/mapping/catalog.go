package mapping

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/daoism/internal/query"
	"github.com/roach88/daoism/internal/spex"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Catalog holds entity mappings and named queries.
type Catalog struct {
	entities map[string]*Entity
	queries  map[string]NamedQuery
}

// Entity returns the mapping for the entity called name.
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.entities[name]
	return e, ok
}

// Entities returns all entities sorted by name.
func (c *Catalog) Entities() []*Entity {
	out := make([]*Entity, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Query returns the named query called name.
func (c *Catalog) Query(name string) (NamedQuery, bool) {
	q, ok := c.queries[name]
	return q, ok
}

// Queries returns all named queries sorted by name.
func (c *Catalog) Queries() []NamedQuery {
	out := make([]NamedQuery, 0, len(c.queries))
	for _, q := range c.queries {
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b NamedQuery) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Load loads every CUE file in dir as one catalog and returns the first
// error found.
func Load(dir string) (*Catalog, error) {
	c, errs := LoadAll(dir)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return c, nil
}

// LoadAll loads every CUE file in dir and collects all definition errors.
// The returned catalog contains the entities and queries that compiled.
func LoadAll(dir string) (*Catalog, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("catalog directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, []error{fmt.Errorf("scanning %s: %w", dir, err)}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded from %s", dir)}
	}
	if inst := instances[0]; inst.Err != nil {
		return nil, []error{formatCUEError("load", inst.Err)}
	}

	v := cuecontext.New().BuildInstance(instances[0])
	return Compile(v)
}

// LoadString compiles a catalog from CUE source. filename is used in
// error positions.
func LoadString(filename, src string) (*Catalog, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(filename))
	c, errs := Compile(v)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return c, nil
}

// Compile builds a catalog from a CUE value with top-level entity and
// query structs. All definition errors are collected.
func Compile(v cue.Value) (*Catalog, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError("cue", err)}
	}

	c := &Catalog{
		entities: make(map[string]*Entity),
		queries:  make(map[string]NamedQuery),
	}
	var errs []error

	if ents := v.LookupPath(cue.ParsePath("entity")); ents.Exists() {
		iter, err := ents.Fields()
		if err != nil {
			return nil, []error{formatCUEError("entity", err)}
		}
		for iter.Next() {
			e, err := compileEntity(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			c.entities[e.Name] = e
		}
	}

	if queries := v.LookupPath(cue.ParsePath("query")); queries.Exists() {
		iter, err := queries.Fields()
		if err != nil {
			return nil, append(errs, formatCUEError("query", err))
		}
		for iter.Next() {
			q, err := compileQuery(c, iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			c.queries[q.Name] = q
		}
	}

	if len(c.entities) == 0 && len(errs) == 0 {
		errs = append(errs, &CompileError{Field: "entity", Message: "catalog defines no entities", Pos: v.Pos()})
	}
	return c, errs
}

func compileEntity(name string, v cue.Value) (*Entity, error) {
	field := "entity." + name
	e := &Entity{Name: name}

	table, err := requiredString(v, "table", field)
	if err != nil {
		return nil, err
	}
	if !identifier.MatchString(table) {
		return nil, &CompileError{Field: field + ".table", Message: fmt.Sprintf("invalid table name %q", table), Pos: v.LookupPath(cue.ParsePath("table")).Pos()}
	}
	e.Table = table

	attrs := v.LookupPath(cue.ParsePath("attributes"))
	if !attrs.Exists() {
		return nil, &CompileError{Field: field + ".attributes", Message: "attributes are required", Pos: v.Pos()}
	}
	iter, err := attrs.Fields()
	if err != nil {
		return nil, formatCUEError(field+".attributes", err)
	}
	for iter.Next() {
		path := iter.Selector().Unquoted()
		a, err := compileAttribute(field+".attributes."+path, path, iter.Value())
		if err != nil {
			return nil, err
		}
		if prev, ok := e.ByColumn(a.Column); ok {
			return nil, &CompileError{
				Field:   field + ".attributes." + path,
				Message: fmt.Sprintf("column %q is already mapped by %q", a.Column, prev.Path),
				Pos:     a.Pos,
			}
		}
		e.add(a)
	}

	idPath, err := requiredString(v, "id", field)
	if err != nil {
		return nil, err
	}
	if e.ID, err = lookupRole(e, v, field, "id", idPath, ""); err != nil {
		return nil, err
	}
	for _, s := range []struct {
		key    string
		typ    Type
		target *Attribute
	}{
		{"version", TypeInteger, &e.Version},
		{"created", TypeTimestamp, &e.Created},
		{"modified", TypeTimestamp, &e.Modified},
	} {
		pv := v.LookupPath(cue.ParsePath(s.key))
		if !pv.Exists() {
			continue
		}
		path, err := pv.String()
		if err != nil {
			return nil, formatCUEError(field+"."+s.key, err)
		}
		if *s.target, err = lookupRole(e, v, field, s.key, path, s.typ); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// lookupRole resolves an id/version/created/modified reference to one of the
// entity's attributes, checking its type when want is set.
func lookupRole(e *Entity, v cue.Value, field, key, path string, want Type) (Attribute, error) {
	a, ok := e.Resolve(path)
	if !ok {
		return Attribute{}, &CompileError{
			Field:   field + "." + key,
			Message: fmt.Sprintf("%s references unknown attribute %q", key, path),
			Pos:     v.LookupPath(cue.ParsePath(key)).Pos(),
		}
	}
	if want != "" && a.Type != want {
		return Attribute{}, &CompileError{
			Field:   field + "." + key,
			Message: fmt.Sprintf("%s attribute %q must be %s, not %s", key, path, want, a.Type),
			Pos:     a.Pos,
		}
	}
	return a, nil
}

func compileAttribute(field, path string, v cue.Value) (Attribute, error) {
	a := Attribute{Path: path, Pos: v.Pos()}

	column, err := requiredString(v, "column", field)
	if err != nil {
		return a, err
	}
	if !identifier.MatchString(column) {
		return a, &CompileError{Field: field + ".column", Message: fmt.Sprintf("invalid column name %q", column), Pos: a.Pos}
	}
	a.Column = column

	typ, err := requiredString(v, "type", field)
	if err != nil {
		return a, err
	}
	a.Type = Type(typ)
	if !a.Type.Valid() {
		return a, &CompileError{Field: field + ".type", Message: fmt.Sprintf("unknown type %q", typ), Pos: a.Pos}
	}

	a.Category = a.Type.Category()
	if cv := v.LookupPath(cue.ParsePath("category")); cv.Exists() {
		s, err := cv.String()
		if err != nil {
			return a, formatCUEError(field+".category", err)
		}
		cat := spex.Category(s)
		if !a.Type.allows(cat) {
			return a, &CompileError{
				Field:   field + ".category",
				Message: fmt.Sprintf("category %q is not valid for type %s", s, a.Type),
				Pos:     cv.Pos(),
			}
		}
		a.Category = cat
	}
	return a, nil
}

func compileQuery(c *Catalog, name string, v cue.Value) (NamedQuery, error) {
	field := "query." + name
	q := NamedQuery{Name: name, Pos: v.Pos()}

	entity, err := requiredString(v, "entity", field)
	if err != nil {
		return q, err
	}
	e, ok := c.entities[entity]
	if !ok {
		return q, &CompileError{Field: field + ".entity", Message: fmt.Sprintf("unknown entity %q", entity), Pos: q.Pos}
	}
	q.Entity = entity

	if q.Text, err = requiredString(v, "text", field); err != nil {
		return q, err
	}
	for _, tok := range query.Scan(q.Text) {
		if tok.Kind != query.TokenPath {
			continue
		}
		if _, ok := e.Resolve(tok.Value); !ok {
			return q, &CompileError{
				Field:   field + ".text",
				Message: fmt.Sprintf("entity %s has no attribute %q", entity, tok.Value),
				Pos:     q.Pos,
			}
		}
	}
	return q, nil
}

func requiredString(v cue.Value, key, field string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(key))
	if !sv.Exists() {
		return "", &CompileError{Field: field + "." + key, Message: key + " is required", Pos: v.Pos()}
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(field+"."+key, err)
	}
	if s == "" {
		return "", &CompileError{Field: field + "." + key, Message: key + " must not be empty", Pos: sv.Pos()}
	}
	return s, nil
}
