package dao

import (
	"context"
	"fmt"

	"github.com/roach88/daoism/internal/access"
	"github.com/roach88/daoism/internal/query"
	"github.com/roach88/daoism/internal/spex"
)

// DAO is the typed facade over one catalog entity. E is usually a pointer
// to a struct whose db tags name the entity's columns.
type DAO[E Entity] struct {
	p    *Provider
	name string
}

// New returns a DAO for the named catalog entity.
func New[E Entity](p *Provider, entity string) (*DAO[E], error) {
	if _, err := p.entity(entity); err != nil {
		return nil, err
	}
	return &DAO[E]{p: p, name: entity}, nil
}

// Entity returns the catalog entity name.
func (d *DAO[E]) Entity() string { return d.name }

// Provider returns the underlying provider.
func (d *DAO[E]) Provider() *Provider { return d.p }

// FindByID loads one entity. See Provider.FindByID for the strategies the
// plan selects.
func (d *DAO[E]) FindByID(ctx context.Context, id string, plan access.Plan) (E, bool, error) {
	var e E
	ok, err := d.p.FindByID(ctx, &e, d.name, id, plan)
	return e, ok, err
}

func (d *DAO[E]) FindAll(ctx context.Context) ([]E, error) {
	return d.FindAllBy(ctx, spex.All[E]())
}

func (d *DAO[E]) FindAllBy(ctx context.Context, spec spex.Specification[E]) ([]E, error) {
	var out []E
	if err := d.p.FindAll(ctx, &out, d.name, spec.Node()); err != nil {
		return nil, err
	}
	return out, nil
}

// Find returns the single entity matching spec.
func (d *DAO[E]) Find(ctx context.Context, spec spex.Specification[E]) (E, bool, error) {
	var e E
	ok, err := d.p.FindOne(ctx, &e, d.name, spec.Node())
	return e, ok, err
}

func (d *DAO[E]) Select(ctx context.Context, sel spex.Select[E]) ([]E, error) {
	var out []E
	if err := d.p.Select(ctx, &out, d.name, sel.Selection()); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DAO[E]) Count(ctx context.Context, spec spex.Specification[E]) (int64, error) {
	return d.p.Count(ctx, d.name, spec.Node())
}

func (d *DAO[E]) CountAll(ctx context.Context) (int64, error) {
	return d.p.Count(ctx, d.name, nil)
}

func (d *DAO[E]) Exists(ctx context.Context, spec spex.Specification[E]) (bool, error) {
	n, err := d.Count(ctx, spec)
	return n > 0, err
}

// Persist saves e and returns the stored state, reloaded from the database
// so that identifier, version and timestamps are current.
func (d *DAO[E]) Persist(ctx context.Context, e E) (E, error) {
	var zero E
	id, err := d.p.Save(ctx, d.name, e)
	if err != nil {
		return zero, err
	}
	stored, ok, err := d.FindByID(ctx, id, access.Refresh())
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, fmt.Errorf("persist %s: row %s not found after save", d.name, id)
	}
	return stored, nil
}

// PersistAll saves every entity in one unit of work.
func (d *DAO[E]) PersistAll(ctx context.Context, es []E) ([]E, error) {
	out := make([]E, 0, len(es))
	err := d.p.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, e := range es {
			stored, err := d.Persist(ctx, e)
			if err != nil {
				return err
			}
			out = append(out, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes e and reports whether a row was removed.
func (d *DAO[E]) Delete(ctx context.Context, e E) (bool, error) {
	if isNil(e) {
		return false, nil
	}
	return d.p.Delete(ctx, d.name, e.GetID())
}

// DeleteAll removes every entity in one unit of work and reports whether
// all of them were removed.
func (d *DAO[E]) DeleteAll(ctx context.Context, es []E) (bool, error) {
	all := true
	err := d.p.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, e := range es {
			ok, err := d.Delete(ctx, e)
			if err != nil {
				return err
			}
			all = all && ok
		}
		return nil
	})
	return all && err == nil, err
}

// FindAllQuery runs a named or literal query over the entity.
func (d *DAO[E]) FindAllQuery(ctx context.Context, q query.Query) ([]E, error) {
	if !q.IsTyped() {
		return nil, errorf(ErrCodeUnknownQueryType, d.name, "%s queries do not return entities; only named or literal queries are supported", q.Type())
	}
	var out []E
	if err := d.p.RunQuery(ctx, &out, q, d.name); err != nil {
		return nil, err
	}
	return out, nil
}

// FindQuery runs a named or literal query expected to match at most one
// entity.
func (d *DAO[E]) FindQuery(ctx context.Context, q query.Query) (E, bool, error) {
	var zero E
	rows, err := d.FindAllQuery(ctx, q)
	switch {
	case err != nil:
		return zero, false, err
	case len(rows) == 0:
		d.p.log.Warn().Str("entity", d.name).Str("query", q.String()).Msg("no result")
		return zero, false, nil
	case len(rows) > 1:
		return zero, false, errorf(ErrCodeNonUniqueResult, d.name, "query %s matched %d rows", q, len(rows))
	}
	return rows[0], true, nil
}

// Query runs any query, native included, scanning into dst.
func (d *DAO[E]) Query(ctx context.Context, dst any, q query.Query) error {
	entity := d.name
	if q.Type() == query.TypeNative {
		entity = ""
	}
	return d.p.RunQuery(ctx, dst, q, entity)
}

// RunInTransaction runs fn as a unit of work on the provider.
func (d *DAO[E]) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.p.RunInTransaction(ctx, fn)
}

// IsManaged reports whether e is held by the unit of work in ctx.
func (d *DAO[E]) IsManaged(ctx context.Context, e E) bool {
	if isNil(e) {
		return false
	}
	return d.p.IsManaged(ctx, d.name, e.GetID())
}

// IsSameVersion reports whether a and b are the same row at the same
// version.
func (d *DAO[E]) IsSameVersion(a, b E) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	return a.GetID() == b.GetID() && a.GetVersion() == b.GetVersion()
}
