package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/daoism/internal/dao"
	"github.com/roach88/daoism/internal/logger"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/querysql"
	"github.com/roach88/daoism/internal/store"
	"github.com/roach88/daoism/internal/testutil"
)

// Harness runs one scenario against a private SQLite database.
type Harness struct {
	scenario *Scenario
	entity   *mapping.Entity
	provider *dao.Provider
	log      logger.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger routes provider and harness logs to l.
func WithLogger(l logger.Logger) Option {
	return func(h *Harness) { h.log = l }
}

// Run executes a scenario and returns the result.
//
// Each run creates a fresh SQLite file in a temporary directory, creates
// the entity's table, and stores the fixtures with a deterministic clock
// and sequential identifiers. Every case is then counted and selected;
// case failures are reported in the result, while setup failures are
// returned as errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{scenario: scenario, log: logger.NewTestLogger()}
	for _, opt := range opts {
		opt(h)
	}

	cat, err := LoadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}
	e, ok := cat.Entity(scenario.Entity)
	if !ok {
		return nil, fmt.Errorf("entity %q is not in catalog %s", scenario.Entity, scenario.Catalog)
	}
	h.entity = e

	dir, err := os.MkdirTemp("", "daoism-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "scenario.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario store: %w", err)
	}
	defer st.Close()

	if err := st.Exec(ctx, querysql.CreateTable(e, querysql.SQLite)); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	ids := &testutil.SequentialIDs{}
	h.provider, err = dao.NewProvider(st, cat,
		dao.WithLogger(h.log),
		dao.WithClock(testutil.NewDeterministicClock()),
		dao.WithIDGenerator(ids.Next),
	)
	if err != nil {
		return nil, err
	}

	if err := h.storeFixtures(ctx); err != nil {
		return nil, fmt.Errorf("failed to store fixtures: %w", err)
	}

	result := NewResult(scenario.Name)
	for _, c := range scenario.Cases {
		result.AddCase(h.runCase(ctx, c))
	}

	h.log.Debug().
		Str("scenario", scenario.Name).
		Int("cases", len(result.Cases)).
		Bool("pass", result.Pass).
		Msg("scenario finished")
	return result, nil
}

// LoadCatalog loads a catalog from a CUE file or a directory of them.
func LoadCatalog(path string) (*mapping.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if info.IsDir() {
		return mapping.Load(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return mapping.LoadString(filepath.Base(path), string(src))
}

// fixture adapts a YAML row to dao.Entity. Its version is always zero so
// the provider inserts it.
type fixture struct {
	id     string
	values map[string]any
}

func (f fixture) GetID() string          { return f.id }
func (f fixture) GetVersion() int64      { return 0 }
func (f fixture) Values() map[string]any { return f.values }

func (h *Harness) storeFixtures(ctx context.Context) error {
	rows := make([]fixture, len(h.scenario.Fixtures))
	for i, raw := range h.scenario.Fixtures {
		f, err := h.fixture(raw)
		if err != nil {
			return fmt.Errorf("fixtures[%d]: %w", i, err)
		}
		rows[i] = f
	}

	return h.provider.RunInTransaction(ctx, func(ctx context.Context) error {
		for i, f := range rows {
			if _, err := h.provider.Save(ctx, h.entity.Name, f); err != nil {
				return fmt.Errorf("fixtures[%d]: %w", i, err)
			}
		}
		return nil
	})
}

// fixture coerces each value to its attribute's type so stored values
// compare the same way as query literals.
func (h *Harness) fixture(raw map[string]any) (fixture, error) {
	f := fixture{values: make(map[string]any, len(raw))}
	for path, v := range raw {
		a, err := resolve(h.entity, path)
		if err != nil {
			return f, err
		}
		cv, err := a.Type.Coerce(v)
		if err != nil {
			return f, fmt.Errorf("%s: %w", path, err)
		}
		if path == h.entity.ID.Path {
			id, ok := cv.(string)
			if !ok {
				return f, fmt.Errorf("%s: identifier must be text", path)
			}
			f.id = id
			continue
		}
		f.values[path] = cv
	}
	return f, nil
}

func (h *Harness) runCase(ctx context.Context, c Case) CaseResult {
	cr := CaseResult{Name: c.Name, Args: []any{}, IDs: []string{}}

	sel, err := c.Selection(h.entity)
	if err != nil {
		cr.Errors = append(cr.Errors, err.Error())
		return cr
	}

	b, err := h.provider.Translator().BuildSelect(sel, h.entity)
	if err == nil {
		cr.SQL, cr.Args, err = querysql.Compile(b)
	}
	if err != nil {
		cr.Errors = append(cr.Errors, err.Error())
		return cr
	}
	if cr.Args == nil {
		cr.Args = []any{}
	}

	cr.Count, err = h.provider.Count(ctx, h.entity.Name, sel.Where)
	if err != nil {
		cr.Errors = append(cr.Errors, fmt.Sprintf("count: %v", err))
		return cr
	}

	var rows []map[string]any
	if err := h.provider.Select(ctx, &rows, h.entity.Name, sel); err != nil {
		cr.Errors = append(cr.Errors, fmt.Sprintf("select: %v", err))
		return cr
	}
	cr.Rows = len(rows)
	for _, row := range rows {
		cr.IDs = append(cr.IDs, fmt.Sprint(row[h.entity.ID.Column]))
	}

	for _, err := range checkCase(c, cr) {
		cr.Errors = append(cr.Errors, err.Error())
	}
	return cr
}
