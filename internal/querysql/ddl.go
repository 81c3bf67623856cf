package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/daoism/internal/mapping"
)

// CreateTable returns a CREATE TABLE IF NOT EXISTS statement for e with
// the identifier as primary key.
func CreateTable(e *mapping.Entity, d Dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", e.Table)
	attrs := e.Attributes()
	for i, a := range attrs {
		fmt.Fprintf(&b, "    %s %s", a.Column, d.ColumnType(a.Type))
		switch a.Path {
		case e.ID.Path:
			b.WriteString(" PRIMARY KEY")
		case e.Version.Path:
			b.WriteString(" NOT NULL DEFAULT 0")
		}
		if i < len(attrs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}
