package querysql

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFindByID(t *testing.T) {
	_, e := loadCatalog(t)

	tests := []struct {
		name    string
		dialect Dialect
		lock    bool
		sql     string
	}{
		{"sqlite", SQLite, false, "SELECT " + columns + " FROM vserver WHERE v_uuid = ?"},
		{"sqlite lock is a no-op", SQLite, true, "SELECT " + columns + " FROM vserver WHERE v_uuid = ?"},
		{"postgres", Postgres, false, "SELECT " + columns + " FROM vserver WHERE v_uuid = $1"},
		{"postgres lock", Postgres, true, "SELECT " + columns + " FROM vserver WHERE v_uuid = $1 FOR UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := Compile(NewTranslator(tt.dialect).BuildFindByID(e, "u-1", tt.lock))
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, []any{"u-1"}, args)
		})
	}
}

func TestBuildInsert(t *testing.T) {
	_, e := loadCatalog(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := NewTranslator(Postgres).BuildInsert(e, map[string]any{
		"numberOfNics": int64(2),
		"uuid":         "u-1",
		"version":      int64(1),
		"created":      now,
	})
	require.NoError(t, err)
	sql, args, err := Compile(b)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO vserver (v_uuid,number_of_nics,version,ts_created) VALUES ($1,$2,$3,$4)", sql)
	assert.Equal(t, []any{"u-1", int64(2), int64(1), now}, args)

	_, err = NewTranslator(Postgres).BuildInsert(e, map[string]any{"disks": 1})
	assert.True(t, IsCode(err, ErrCodeUnmappedAttribute))
}

func TestBuildUpdate(t *testing.T) {
	_, e := loadCatalog(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := NewTranslator(SQLite).BuildUpdate(e, map[string]any{
		"uuid":     "u-1",
		"host":     "edge",
		"version":  int64(7),
		"created":  now,
		"modified": now,
	}, 3)
	require.NoError(t, err)
	sql, args, err := Compile(b)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE vserver SET v_host = ?, ts_last_modified = ?, version = version + 1 WHERE v_uuid = ? AND version = ?", sql)
	assert.Equal(t, []any{"edge", now, "u-1", int64(3)}, args)

	_, err = NewTranslator(SQLite).BuildUpdate(e, map[string]any{"host": "edge"}, 0)
	assert.ErrorContains(t, err, "identifier")
}

func TestBuildVersionAndDelete(t *testing.T) {
	_, e := loadCatalog(t)
	tr := NewTranslator(Postgres)

	vb, err := tr.BuildVersion(e, "u-1")
	require.NoError(t, err)
	sql, args, err := Compile(vb)
	require.NoError(t, err)
	assert.Equal(t, "SELECT version FROM vserver WHERE v_uuid = $1", sql)
	assert.Equal(t, []any{"u-1"}, args)

	sql, args, err = Compile(tr.BuildDelete(e, "u-1"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM vserver WHERE v_uuid = $1", sql)
	assert.Equal(t, []any{"u-1"}, args)
}

func TestCreateTable(t *testing.T) {
	_, e := loadCatalog(t)

	expected := strings.Join([]string{
		"CREATE TABLE IF NOT EXISTS vserver (",
		"    v_uuid TEXT PRIMARY KEY,",
		"    v_name TEXT,",
		"    v_host TEXT,",
		"    generated TIMESTAMPTZ,",
		"    number_of_nics BIGINT,",
		"    number_of_ports BIGINT,",
		"    version BIGINT NOT NULL DEFAULT 0,",
		"    ts_created TIMESTAMPTZ,",
		"    ts_last_modified TIMESTAMPTZ",
		")",
	}, "\n")
	assert.Equal(t, expected, CreateTable(e, Postgres))

	assert.Contains(t, CreateTable(e, SQLite), "generated TIMESTAMP,")
	assert.Contains(t, CreateTable(e, SQLite), "number_of_nics INTEGER,")
}
