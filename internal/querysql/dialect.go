package querysql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/mapping"
)

// Dialect selects placeholder style, row locking, collation, and column
// types.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "postgres", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("no SQL dialect for driver %q", driver)
}

// Builder returns a statement builder using the dialect's placeholders.
func (d Dialect) Builder() sq.StatementBuilderType {
	if d == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// escapeText protects literal question marks in SQL text from
// placeholder rewriting.
func (d Dialect) escapeText(s string) string {
	if d == Postgres {
		return strings.ReplaceAll(s, "?", "??")
	}
	return s
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available.
// SQLite serializes writers instead.
func (d Dialect) SupportsRowLocks() bool {
	return d == Postgres
}

// collate returns the binary collation clause for text ordering.
func (d Dialect) collate() string {
	if d == Postgres {
		return `COLLATE "C"`
	}
	return "COLLATE BINARY"
}

// offsetNeedsLimit reports whether OFFSET is only valid after a LIMIT.
func (d Dialect) offsetNeedsLimit() bool {
	return d == SQLite
}

// ColumnType returns the column type used for t.
func (d Dialect) ColumnType(t mapping.Type) string {
	switch t {
	case mapping.TypeInteger:
		if d == Postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case mapping.TypeReal:
		if d == Postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case mapping.TypeTimestamp:
		if d == Postgres {
			return "TIMESTAMPTZ"
		}
		return "TIMESTAMP"
	case mapping.TypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
