package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/dbscan"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/roach88/daoism/internal/logger"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/querysql"
	"github.com/roach88/daoism/internal/spex"
	"github.com/roach88/daoism/internal/store"
)

// Clock supplies timestamps for created and modified attributes.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Provider runs entity operations against a store using a catalog for the
// attribute-to-column mapping.
//
// A Provider is safe for concurrent use. Unit-of-work state lives in the
// context passed to each call, not in the Provider.
type Provider struct {
	store   *store.Store
	catalog *mapping.Catalog
	dialect querysql.Dialect
	sql     *querysql.Translator
	scan    *sqlscan.API
	log     logger.Logger
	clock   Clock
	newID   func() string
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) { p.log = l.Component("dao") }
}

// WithClock sets the time source for created and modified attributes.
func WithClock(c Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithDialect overrides the dialect derived from the store's driver.
func WithDialect(d querysql.Dialect) Option {
	return func(p *Provider) { p.dialect = d }
}

// WithIDGenerator sets the generator for identifiers of new entities. The
// default produces time-ordered UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(p *Provider) { p.newID = fn }
}

// NewProvider returns a Provider over s and cat.
func NewProvider(s *store.Store, cat *mapping.Catalog, opts ...Option) (*Provider, error) {
	if s == nil {
		return nil, errors.New("new provider: store is required")
	}
	if cat == nil {
		return nil, errors.New("new provider: catalog is required")
	}

	p := &Provider{
		store:   s,
		catalog: cat,
		log:     logger.NewTestLogger(),
		clock:   systemClock{},
		newID:   newUUID,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.dialect == "" {
		d, err := querysql.DialectFor(s.Driver())
		if err != nil {
			return nil, fmt.Errorf("new provider: %w", err)
		}
		p.dialect = d
	}
	p.sql = querysql.NewTranslator(p.dialect)

	// Entity structs may map a subset of the selected columns.
	scanAPI, err := sqlscan.NewDBScanAPI(dbscan.WithAllowUnknownColumns(true))
	if err != nil {
		return nil, fmt.Errorf("new provider: %w", err)
	}
	p.scan, err = sqlscan.NewAPI(scanAPI)
	if err != nil {
		return nil, fmt.Errorf("new provider: %w", err)
	}

	return p, nil
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Translator returns the SQL translator. Bind functions for custom node
// kinds on its Interpreter before the Provider is shared.
func (p *Provider) Translator() *querysql.Translator {
	return p.sql
}

// Catalog returns the entity catalog.
func (p *Provider) Catalog() *mapping.Catalog {
	return p.catalog
}

func (p *Provider) entity(name string) (*mapping.Entity, error) {
	e, ok := p.catalog.Entity(name)
	if !ok {
		return nil, errorf(ErrCodeUnknownEntity, name, "entity is not in the catalog")
	}
	return e, nil
}

// querier returns the unit-of-work transaction in ctx, or the database.
func (p *Provider) querier(ctx context.Context) store.Querier {
	if s := sessionFrom(ctx); s != nil {
		return s.tx
	}
	return p.store.DB()
}

// selectRows compiles stmt and scans every row into dst, a pointer to a
// slice.
func (p *Provider) selectRows(ctx context.Context, dst any, entity string, stmt sq.Sqlizer, spec spex.Node) error {
	sql, args, err := querysql.Compile(stmt)
	if err != nil {
		return err
	}
	p.logStatement(ctx, entity, sql, args, spec)

	if err := p.scan.Select(ctx, p.querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("query %s: %w", entity, err)
	}
	return nil
}

// getValue scans a single-column, single-row result into dst.
func (p *Provider) getValue(ctx context.Context, dst any, entity string, stmt sq.Sqlizer, spec spex.Node) error {
	sql, args, err := querysql.Compile(stmt)
	if err != nil {
		return err
	}
	p.logStatement(ctx, entity, sql, args, spec)

	if err := p.scan.Get(ctx, p.querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("query %s: %w", entity, err)
	}
	return nil
}

// exec runs a write statement and returns the number of affected rows.
func (p *Provider) exec(ctx context.Context, entity string, stmt sq.Sqlizer) (int64, error) {
	sql, args, err := querysql.Compile(stmt)
	if err != nil {
		return 0, err
	}
	p.logStatement(ctx, entity, sql, args, nil)

	res, err := p.querier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec %s: rows affected: %w", entity, err)
	}
	return n, nil
}

func (p *Provider) logStatement(ctx context.Context, entity, sql string, args []any, spec spex.Node) {
	ev := p.log.Debug()
	if !ev.Enabled() {
		return
	}
	ev = ev.Str("entity", entity).Str("sql", sql).Int("args", len(args))
	if spec != nil {
		// Trees with custom node kinds have no canonical form.
		if fp, err := spex.Fingerprint(spec); err == nil {
			ev = ev.Str("spec", fp)
		}
	}
	ev.Bool("tx", sessionFrom(ctx) != nil).Msg("execute")
}
