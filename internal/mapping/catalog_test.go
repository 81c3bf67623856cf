package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daoism/internal/spex"
)

func TestLoadDirectory(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "catalog"))
	require.NoError(t, err)

	e, ok := c.Entity("Device")
	require.True(t, ok)
	assert.Equal(t, "device", e.Table)
	assert.Equal(t, []string{"serial", "model", "rack", "weight_kg", "retired", "version", "updated_at"}, e.Columns())

	assert.Equal(t, "serial", e.ID.Column)
	assert.True(t, e.Versioned())
	assert.Equal(t, "version", e.Version.Column)
	assert.Empty(t, e.Created.Path)
	assert.Equal(t, "updated_at", e.Modified.Column)

	q, ok := c.Query("device-by-rack")
	require.True(t, ok)
	assert.Equal(t, "Device", q.Entity)
	assert.Equal(t, "WHERE {location.rack} = :RACK ORDER BY {serial}", q.Text)
	assert.True(t, q.Pos.IsValid())
}

func TestResolve(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "catalog"))
	require.NoError(t, err)
	e, _ := c.Entity("Device")

	tests := []struct {
		path     string
		column   string
		typ      Type
		category spex.Category
	}{
		{"serial", "serial", TypeText, spex.Equality},
		{"model", "model", TypeText, spex.Ordered},
		{"location.rack", "rack", TypeInteger, spex.Numeric},
		{"weight", "weight_kg", TypeReal, spex.Numeric},
		{"retired", "retired", TypeBoolean, spex.Equality},
		{"updatedAt", "updated_at", TypeTimestamp, spex.Temporal},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			a, ok := e.Resolve(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.column, a.Column)
			assert.Equal(t, tt.typ, a.Type)
			assert.Equal(t, spex.Ref{Path: tt.path, Category: tt.category}, a.Ref())

			byCol, ok := e.ByColumn(tt.column)
			require.True(t, ok)
			assert.Equal(t, tt.path, byCol.Path)
		})
	}

	_, ok := e.Resolve("location")
	assert.False(t, ok)
	_, err = e.Column("missing")
	assert.ErrorContains(t, err, `entity Device has no attribute "missing"`)
}

func TestLoadStringErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		field    string
		contains string
	}{
		{
			name:     "no entities",
			src:      `query: {}`,
			field:    "entity",
			contains: "catalog defines no entities",
		},
		{
			name:     "missing table",
			src:      `entity: E: {id: "id", attributes: id: {column: "id", type: "text"}}`,
			field:    "entity.E.table",
			contains: "table is required",
		},
		{
			name:     "invalid table",
			src:      `entity: E: {table: "drop table", id: "id", attributes: id: {column: "id", type: "text"}}`,
			field:    "entity.E.table",
			contains: "invalid table name",
		},
		{
			name:     "invalid column",
			src:      `entity: E: {table: "e", id: "id", attributes: id: {column: "id;--", type: "text"}}`,
			field:    "entity.E.attributes.id.column",
			contains: "invalid column name",
		},
		{
			name: "duplicate column",
			src: `entity: E: {table: "e", id: "a", attributes: {
				a: {column: "x", type: "text"}
				b: {column: "x", type: "text"}
			}}`,
			field:    "entity.E.attributes.b",
			contains: `column "x" is already mapped by "a"`,
		},
		{
			name:     "unknown type",
			src:      `entity: E: {table: "e", id: "id", attributes: id: {column: "id", type: "uuid"}}`,
			field:    "entity.E.attributes.id.type",
			contains: `unknown type "uuid"`,
		},
		{
			name:     "category not valid for type",
			src:      `entity: E: {table: "e", id: "id", attributes: id: {column: "id", type: "text", category: "temporal"}}`,
			field:    "entity.E.attributes.id.category",
			contains: `category "temporal" is not valid for type text`,
		},
		{
			name:     "unknown id",
			src:      `entity: E: {table: "e", id: "uuid", attributes: id: {column: "id", type: "text"}}`,
			field:    "entity.E.id",
			contains: `references unknown attribute "uuid"`,
		},
		{
			name: "version must be integer",
			src: `entity: E: {table: "e", id: "id", version: "v", attributes: {
				id: {column: "id", type: "text"}
				v:  {column: "v", type: "text"}
			}}`,
			field:    "entity.E.version",
			contains: "must be integer, not text",
		},
		{
			name: "query on unknown entity",
			src: `entity: E: {table: "e", id: "id", attributes: id: {column: "id", type: "text"}}
			query: q: {entity: "F", text: "WHERE {id} = :ID"}`,
			field:    "query.q.entity",
			contains: `unknown entity "F"`,
		},
		{
			name: "query with unknown path",
			src: `entity: E: {table: "e", id: "id", attributes: id: {column: "id", type: "text"}}
			query: q: {entity: "E", text: "WHERE {name} = :NAME"}`,
			field:    "query.q.text",
			contains: `entity E has no attribute "name"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString("test.cue", tt.src)
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "expected CompileError, got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.contains)
		})
	}
}

func TestLoadStringSyntaxError(t *testing.T) {
	_, err := LoadString("broken.cue", `entity: {`)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
}

func TestLoadAllCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	src := `package catalog

entity: Good: {table: "good", id: "id", attributes: id: {column: "id", type: "text"}}
entity: Bad1: {id: "id", attributes: id: {column: "id", type: "text"}}
entity: Bad2: {table: "bad", id: "id", attributes: id: {column: "id", type: "decimal"}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.cue"), []byte(src), 0o644))

	c, errs := LoadAll(dir)
	require.Len(t, errs, 2)
	require.NotNil(t, c)
	_, ok := c.Entity("Good")
	assert.True(t, ok, "valid entities are kept")
	assert.Len(t, c.Entities(), 1)

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadMissingAndEmptyDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "no CUE files found")
}

func TestEntitiesAndQueriesSorted(t *testing.T) {
	c, err := LoadString("c.cue", `
entity: B: {table: "b", id: "id", attributes: id: {column: "id", type: "text"}}
entity: A: {table: "a", id: "id", attributes: id: {column: "id", type: "text"}}
query: z: {entity: "A", text: "ORDER BY {id}"}
query: y: {entity: "B", text: "WHERE {id} = :ID"}
`)
	require.NoError(t, err)

	ents := c.Entities()
	require.Len(t, ents, 2)
	assert.Equal(t, "A", ents[0].Name)
	assert.Equal(t, "B", ents[1].Name)

	qs := c.Queries()
	require.Len(t, qs, 2)
	assert.Equal(t, "y", qs[0].Name)
	assert.False(t, ents[0].Versioned())
}
