package dao

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

// Save inserts or updates ent and returns its identifier.
//
// A versioned entity is stored already when its version is above zero; an
// unversioned one when its identifier names an existing row. Inserts
// assign an identifier if ent has none, write version 1, and stamp the
// created and modified attributes. Updates stamp modified and increment
// the version, but only while the row still has ent's version; otherwise
// the update fails with STALE_ENTITY.
func (p *Provider) Save(ctx context.Context, entity string, ent Entity) (string, error) {
	e, err := p.entity(entity)
	if err != nil {
		return "", err
	}
	if isNil(ent) {
		return "", fmt.Errorf("save %s: entity is nil", e.Name)
	}

	values := maps.Clone(ent.Values())
	if values == nil {
		values = make(map[string]any)
	}

	stored, err := p.isStored(ctx, e, ent)
	if err != nil {
		return "", err
	}

	now := p.clock.Now()
	if stored {
		return ent.GetID(), p.update(ctx, e, ent.GetID(), ent.GetVersion(), values, now)
	}
	return p.insert(ctx, e, ent.GetID(), values, now)
}

func (p *Provider) isStored(ctx context.Context, e *mapping.Entity, ent Entity) (bool, error) {
	if e.Versioned() {
		return ent.GetVersion() > 0, nil
	}
	if ent.GetID() == "" {
		return false, nil
	}
	byID, err := spex.Compare(spex.KindEquals, e.ID.Ref(), spex.LiteralValue(ent.GetID()))
	if err != nil {
		return false, err
	}
	n, err := p.Count(ctx, e.Name, byID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Provider) insert(ctx context.Context, e *mapping.Entity, id string, values map[string]any, now time.Time) (string, error) {
	if id == "" {
		id = p.newID()
	}
	values[e.ID.Path] = id
	if e.Versioned() {
		values[e.Version.Path] = int64(1)
	}
	if e.Created.Path != "" {
		values[e.Created.Path] = now
	}
	if e.Modified.Path != "" {
		values[e.Modified.Path] = now
	}

	b, err := p.sql.BuildInsert(e, values)
	if err != nil {
		return "", err
	}
	if _, err := p.exec(ctx, e.Name, b); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) update(ctx context.Context, e *mapping.Entity, id string, version int64, values map[string]any, now time.Time) error {
	values[e.ID.Path] = id
	if e.Modified.Path != "" {
		values[e.Modified.Path] = now
	}

	b, err := p.sql.BuildUpdate(e, values, version)
	if err != nil {
		return err
	}
	n, err := p.exec(ctx, e.Name, b)
	if err != nil {
		return err
	}
	if n == 0 {
		p.log.Warn().Str("entity", e.Name).Str("id", id).Int64("version", version).Msg("stale update")
		return errorf(ErrCodeStaleEntity, e.Name, "row %s is no longer at version %d", id, version)
	}

	if sess := sessionFrom(ctx); sess != nil {
		sess.written(entityKey{entity: e.Name, id: id}, version+1)
	}
	return nil
}

// Delete removes the row with identifier id and reports whether a row was
// removed. An empty id removes nothing.
func (p *Provider) Delete(ctx context.Context, entity, id string) (bool, error) {
	e, err := p.entity(entity)
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}

	n, err := p.exec(ctx, e.Name, p.sql.BuildDelete(e, id))
	if err != nil {
		return false, err
	}

	if sess := sessionFrom(ctx); sess != nil {
		sess.forget(entityKey{entity: e.Name, id: id})
	}
	return n > 0, nil
}
