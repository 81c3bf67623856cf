package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/querysql"
	"github.com/roach88/daoism/internal/spex"
	"github.com/roach88/daoism/internal/store"
	"github.com/roach88/daoism/internal/testutil"
)

const widgetCatalog = `
entity: Widget: {
	table:    "widget"
	id:       "id"
	version:  "version"
	created:  "created"
	modified: "modified"
	attributes: {
		id:       {column: "id", type: "text", category: "equality"}
		name:     {column: "name", type: "text"}
		size:     {column: "size", type: "integer"}
		stock:    {column: "stock", type: "integer"}
		shipped:  {column: "shipped", type: "timestamp"}
		version:  {column: "version", type: "integer"}
		created:  {column: "created_at", type: "timestamp"}
		modified: {column: "modified_at", type: "timestamp"}
	}
}

entity: Tag: {
	table: "tag"
	id:    "label"
	attributes: {
		label: {column: "label", type: "text", category: "equality"}
		color: {column: "color", type: "text"}
	}
}

query: "widget-by-name": {
	entity: "Widget"
	text:   "WHERE {name} = :NAME"
}

query: "widgets-larger-than": {
	entity: "Widget"
	text:   "WHERE {size} > :SIZE ORDER BY {size} DESC, {id}"
}
`

const widgetColumns = "id, name, size, stock, shipped, version, created_at, modified_at"

type Widget struct {
	ID       string     `db:"id"`
	Name     string     `db:"name"`
	Size     int64      `db:"size"`
	Stock    int64      `db:"stock"`
	Shipped  *time.Time `db:"shipped"`
	Version  int64      `db:"version"`
	Created  time.Time  `db:"created_at"`
	Modified time.Time  `db:"modified_at"`
}

func (w *Widget) GetID() string     { return w.ID }
func (w *Widget) GetVersion() int64 { return w.Version }
func (w *Widget) Values() map[string]any {
	return map[string]any{
		"name":    w.Name,
		"size":    w.Size,
		"stock":   w.Stock,
		"shipped": w.Shipped,
	}
}

type Tag struct {
	Label string `db:"label"`
	Color string `db:"color"`
}

func (t *Tag) GetID() string          { return t.Label }
func (t *Tag) GetVersion() int64      { return 0 }
func (t *Tag) Values() map[string]any { return map[string]any{"color": t.Color} }

var (
	widgetID      = spex.NewAttribute[*Widget, string]("id")
	widgetName    = spex.NewAttribute[*Widget, string]("name")
	widgetSize    = spex.NewNumber[*Widget, int64]("size")
	widgetStock   = spex.NewNumber[*Widget, int64]("stock")
	widgetShipped = spex.NewDate[*Widget]("shipped")
)

func day(n int) *time.Time {
	t := time.Date(2024, 2, n, 0, 0, 0, 0, time.UTC)
	return &t
}

func loadWidgetCatalog(t *testing.T) *mapping.Catalog {
	t.Helper()
	c, err := mapping.LoadString("widget.cue", widgetCatalog)
	require.NoError(t, err)
	return c
}

// newSQLiteProvider opens a temp sqlite store with the catalog's tables and
// a deterministic clock and id sequence.
func newSQLiteProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "dao.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cat := loadWidgetCatalog(t)
	for _, e := range cat.Entities() {
		require.NoError(t, s.Exec(context.Background(), querysql.CreateTable(e, querysql.SQLite)))
	}

	ids := &testutil.SequentialIDs{}
	opts = append([]Option{
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(ids.Next),
	}, opts...)

	p, err := NewProvider(s, cat, opts...)
	require.NoError(t, err)
	return p
}

// newMockProvider returns a postgres provider backed by sqlmock with exact
// SQL matching.
func newMockProvider(t *testing.T) (*Provider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p, err := NewProvider(store.New(db, store.DriverPostgres), loadWidgetCatalog(t),
		WithClock(testutil.NewDeterministicClock()))
	require.NoError(t, err)
	return p, mock
}

func widgetDAO(t *testing.T, p *Provider) *DAO[*Widget] {
	t.Helper()
	d, err := New[*Widget](p, "Widget")
	require.NoError(t, err)
	return d
}

// seedWidgets stores bolt, nut, gear, cog in that order; with the
// sequential generator their ids end in 1 to 4.
func seedWidgets(t *testing.T, d *DAO[*Widget]) []*Widget {
	t.Helper()
	stored, err := d.PersistAll(context.Background(), []*Widget{
		{Name: "bolt", Size: 3, Stock: 10, Shipped: day(1)},
		{Name: "nut", Size: 1, Stock: 0},
		{Name: "gear", Size: 7, Stock: 7, Shipped: day(3)},
		{Name: "cog", Size: 7, Stock: 2},
	})
	require.NoError(t, err)
	require.Len(t, stored, 4)
	return stored
}

func names(ws []*Widget) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Name
	}
	return out
}
