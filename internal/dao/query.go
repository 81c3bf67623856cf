package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/query"
)

// RunQuery runs q and scans the rows into dst, a pointer to a slice.
//
// Named queries run over the entity the catalog registers them for; if
// entity is not empty it must be that entity. Literal queries run over
// entity. Native queries ignore entity, bind parameters positionally, and
// may return any columns.
func (p *Provider) RunQuery(ctx context.Context, dst any, q query.Query, entity string) error {
	var root *mapping.Entity
	if entity != "" {
		e, err := p.entity(entity)
		if err != nil {
			return err
		}
		root = e
	}

	if err := p.checkQuery(q); err != nil {
		return err
	}

	stmt, err := p.sql.RenderQuery(q, p.catalog, root)
	if err != nil {
		return err
	}

	name := q.Text()
	if stmt.Entity != nil {
		name = stmt.Entity.Name
	}
	return p.selectRows(ctx, dst, name, stmt, nil)
}

// RunQueryRows runs q and returns each row as a column-to-value map. It is
// meant for native queries and other results with no entity struct.
func (p *Provider) RunQueryRows(ctx context.Context, q query.Query) ([]map[string]any, error) {
	var rows []map[string]any
	if err := p.RunQuery(ctx, &rows, q, ""); err != nil {
		return nil, err
	}
	return rows, nil
}

// checkQuery rejects invalid queries and logs validation warnings.
func (p *Provider) checkQuery(q query.Query) error {
	res := query.Validate(q)
	for _, w := range res.Warnings {
		p.log.Warn().Str("query", q.String()).Msg(w)
	}
	if !res.Valid {
		return fmt.Errorf("invalid query %s: %s", q, strings.Join(res.Errors, "; "))
	}
	return nil
}
