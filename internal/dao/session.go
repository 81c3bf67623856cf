package dao

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/daoism/internal/mapping"
)

type sessionKey struct{}

type entityKey struct {
	entity string
	id     string
}

func compareKeys(a, b entityKey) int {
	if c := cmp.Compare(a.entity, b.entity); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// session is the state of one unit of work.
type session struct {
	tx *sql.Tx

	mu       sync.Mutex
	managed  map[entityKey]any
	expected map[entityKey]int64
}

func newSession(tx *sql.Tx) *session {
	return &session{
		tx:       tx,
		managed:  make(map[entityKey]any),
		expected: make(map[entityKey]int64),
	}
}

func sessionFrom(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func (s *session) lookup(k entityKey) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.managed[k]
	return v, ok
}

func (s *session) manage(k entityKey, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managed[k] = v
}

// expect records the version an optimistic read observed. The first
// observation wins until the unit of work itself writes the row.
func (s *session) expect(k entityKey, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expected[k]; !ok {
		s.expected[k] = version
	}
}

// written records an update made by this unit of work.
func (s *session) written(k entityKey, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managed, k)
	if _, ok := s.expected[k]; ok {
		s.expected[k] = version
	}
}

func (s *session) forget(k entityKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managed, k)
	delete(s.expected, k)
}

func (s *session) isManaged(k entityKey) bool {
	_, ok := s.lookup(k)
	return ok
}

// expectations returns the optimistic reads in a stable order.
func (s *session) expectations() []entityKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]entityKey, 0, len(s.expected))
	for k := range s.expected {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// RunInTransaction runs fn as a unit of work. All provider calls made with
// the context passed to fn share one transaction. The transaction commits
// when fn returns nil and every optimistic read still matches; otherwise
// it rolls back.
//
// A call made inside another unit of work joins it: fn runs directly and
// the outer call decides the outcome.
func (p *Provider) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if sessionFrom(ctx) != nil {
		return fn(ctx)
	}

	return p.store.InTx(ctx, func(tx *sql.Tx) error {
		sess := newSession(tx)
		txCtx := context.WithValue(ctx, sessionKey{}, sess)

		if err := fn(txCtx); err != nil {
			return err
		}
		return p.verify(txCtx, sess)
	})
}

// InTransaction reports whether ctx carries a unit of work.
func InTransaction(ctx context.Context) bool {
	return sessionFrom(ctx) != nil
}

// verify re-reads the version of every optimistically read row.
func (p *Provider) verify(ctx context.Context, sess *session) error {
	for _, k := range sess.expectations() {
		e, err := p.entity(k.entity)
		if err != nil {
			return err
		}

		current, found, err := p.currentVersion(ctx, e, k.id)
		if err != nil {
			return fmt.Errorf("verify %s %s: %w", k.entity, k.id, err)
		}

		sess.mu.Lock()
		want := sess.expected[k]
		sess.mu.Unlock()

		if !found || current != want {
			p.log.Warn().
				Str("entity", k.entity).
				Str("id", k.id).
				Int64("expected", want).
				Int64("current", current).
				Bool("deleted", !found).
				Msg("optimistic check failed")
			return errorf(ErrCodeOptimisticLock, k.entity, "row %s changed since it was read at version %d", k.id, want)
		}
	}
	return nil
}

// currentVersion reads the stored version of one row.
func (p *Provider) currentVersion(ctx context.Context, e *mapping.Entity, id string) (int64, bool, error) {
	b, err := p.sql.BuildVersion(e, id)
	if err != nil {
		return 0, false, err
	}
	var versions []int64
	if err := p.selectRows(ctx, &versions, e.Name, b, nil); err != nil {
		return 0, false, err
	}
	if len(versions) == 0 {
		return 0, false, nil
	}
	return versions[0], true, nil
}
