package dao

import (
	"context"
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/access"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

// Count returns the number of rows of entity matching spec. A nil spec
// counts every row.
func (p *Provider) Count(ctx context.Context, entity string, spec spex.Node) (int64, error) {
	e, err := p.entity(entity)
	if err != nil {
		return 0, err
	}
	b, err := p.sql.BuildCount(spec, e)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := p.getValue(ctx, &n, e.Name, b, spec); err != nil {
		return 0, err
	}
	return n, nil
}

// FindAll scans every row of entity matching spec into dst, a pointer to a
// slice of structs or maps. Rows are ordered by identifier.
func (p *Provider) FindAll(ctx context.Context, dst any, entity string, spec spex.Node) error {
	e, err := p.entity(entity)
	if err != nil {
		return err
	}
	b, err := p.sql.BuildQuery(spec, e)
	if err != nil {
		return err
	}
	return p.selectRows(ctx, dst, e.Name, b, spec)
}

// Select scans the rows of a full selection into dst.
func (p *Provider) Select(ctx context.Context, dst any, entity string, sel spex.Selection) error {
	e, err := p.entity(entity)
	if err != nil {
		return err
	}
	b, err := p.sql.BuildSelect(sel, e)
	if err != nil {
		return err
	}
	return p.selectRows(ctx, dst, e.Name, b, sel.Where)
}

// FindOne scans the single row of entity matching spec into dst, a
// non-nil pointer. It reports false, and logs a warning, when nothing
// matches; more than one match is NON_UNIQUE_RESULT.
func (p *Provider) FindOne(ctx context.Context, dst any, entity string, spec spex.Node) (bool, error) {
	e, err := p.entity(entity)
	if err != nil {
		return false, err
	}
	b, err := p.sql.BuildQuery(spec, e)
	if err != nil {
		return false, err
	}

	n, err := p.loadOne(ctx, dst, e, b.Limit(2), spec)
	switch {
	case err != nil:
		return false, err
	case n == 0:
		p.log.Warn().Str("entity", e.Name).Msg("no result")
		return false, nil
	case n > 1:
		return false, errorf(ErrCodeNonUniqueResult, e.Name, "specification matched more than one row")
	}
	return true, nil
}

// FindByID loads the row with identifier id into dst, a non-nil pointer.
// An empty id finds nothing.
//
// The plan selects the strategy:
//   - default lock without refresh: a plain lookup, served from the
//     identity map inside a unit of work
//   - refresh: always reads the row and replaces the managed instance
//   - PessimisticWrite: requires a unit of work; the row is locked for
//     update where the dialect supports it
//   - Optimistic: requires a unit of work and a versioned entity; the
//     version read is checked again before commit
func (p *Provider) FindByID(ctx context.Context, dst any, entity, id string, plan access.Plan) (bool, error) {
	e, err := p.entity(entity)
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}

	mode := plan.LockMode()
	sess := sessionFrom(ctx)
	if mode.RequiresTransaction() && sess == nil {
		return false, errorf(ErrCodeTransactionRequired, e.Name, "lock mode %s requires a unit of work", mode)
	}
	if mode == access.Optimistic && !e.Versioned() {
		return false, errorf(ErrCodeNotVersioned, e.Name, "optimistic lock needs a version attribute")
	}

	k := entityKey{entity: e.Name, id: id}
	plain := !plan.IsRefresh() && (mode == access.LockDefault || mode == access.LockNone)
	if sess != nil && plain {
		if v, ok := sess.lookup(k); ok {
			return true, assign(dst, v)
		}
	}

	b := p.sql.BuildFindByID(e, id, mode == access.PessimisticWrite)
	n, err := p.loadOne(ctx, dst, e, b, nil)
	if err != nil || n == 0 {
		return false, err
	}

	if sess != nil {
		loaded := reflect.ValueOf(dst).Elem().Interface()
		sess.manage(k, loaded)
		if mode == access.Optimistic {
			version, err := p.versionOf(ctx, e, id, loaded)
			if err != nil {
				return false, err
			}
			sess.expect(k, version)
		}
	}
	return true, nil
}

// IsManaged reports whether the row is held by the unit of work in ctx.
func (p *Provider) IsManaged(ctx context.Context, entity, id string) bool {
	sess := sessionFrom(ctx)
	if sess == nil || id == "" {
		return false
	}
	return sess.isManaged(entityKey{entity: entity, id: id})
}

// loadOne selects into a slice of dst's element type and stores the first
// row in dst. It returns the number of rows read.
func (p *Provider) loadOne(ctx context.Context, dst any, e *mapping.Entity, stmt sq.Sqlizer, spec spex.Node) (int, error) {
	target := reflect.ValueOf(dst)
	if !target.IsValid() || target.Kind() != reflect.Ptr || target.IsNil() {
		return 0, fmt.Errorf("load %s: destination must be a non-nil pointer, got %T", e.Name, dst)
	}

	rows := reflect.New(reflect.SliceOf(target.Type().Elem()))
	if err := p.selectRows(ctx, rows.Interface(), e.Name, stmt, spec); err != nil {
		return 0, err
	}

	s := rows.Elem()
	if s.Len() > 0 {
		target.Elem().Set(s.Index(0))
	}
	return s.Len(), nil
}

// versionOf returns the version of a loaded entity, reading it from the
// database when the value does not expose it.
func (p *Provider) versionOf(ctx context.Context, e *mapping.Entity, id string, loaded any) (int64, error) {
	if v, ok := loaded.(Versioned); ok && !isNil(loaded) {
		return v.GetVersion(), nil
	}
	version, found, err := p.currentVersion(ctx, e, id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("version of %s %s: row vanished", e.Name, id)
	}
	return version, nil
}

// assign copies a managed instance into dst.
func assign(dst, v any) error {
	target := reflect.ValueOf(dst)
	if !target.IsValid() || target.Kind() != reflect.Ptr || target.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dst)
	}
	val := reflect.ValueOf(v)
	if !val.Type().AssignableTo(target.Elem().Type()) {
		return fmt.Errorf("managed instance is %s, destination wants %s", val.Type(), target.Elem().Type())
	}
	target.Elem().Set(val)
	return nil
}
