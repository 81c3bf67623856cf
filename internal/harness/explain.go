package harness

import (
	"fmt"

	"github.com/roach88/daoism/internal/querysql"
)

// Explanation is the SQL one case renders to in one dialect.
type Explanation struct {
	Case      string           `json:"case"`
	Dialect   querysql.Dialect `json:"dialect"`
	SQL       string           `json:"sql"`
	Args      []any            `json:"args"`
	CountSQL  string           `json:"count_sql"`
	CountArgs []any            `json:"count_args"`
}

// Explain renders every case of a scenario for each dialect without
// touching a database. Cases are listed in scenario order, dialects in
// argument order within a case.
func Explain(scenario *Scenario, dialects ...querysql.Dialect) ([]Explanation, error) {
	cat, err := LoadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}
	e, ok := cat.Entity(scenario.Entity)
	if !ok {
		return nil, fmt.Errorf("entity %q is not in catalog %s", scenario.Entity, scenario.Catalog)
	}

	translators := make([]*querysql.Translator, len(dialects))
	for i, d := range dialects {
		translators[i] = querysql.NewTranslator(d)
	}

	var out []Explanation
	for _, c := range scenario.Cases {
		sel, err := c.Selection(e)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		for _, tr := range translators {
			x := Explanation{Case: c.Name, Dialect: tr.Dialect()}

			b, err := tr.BuildSelect(sel, e)
			if err == nil {
				x.SQL, x.Args, err = querysql.Compile(b)
			}
			if err != nil {
				return nil, fmt.Errorf("case %s (%s): %w", c.Name, tr.Dialect(), err)
			}

			cb, err := tr.BuildCount(sel.Where, e)
			if err == nil {
				x.CountSQL, x.CountArgs, err = querysql.Compile(cb)
			}
			if err != nil {
				return nil, fmt.Errorf("case %s (%s): %w", c.Name, tr.Dialect(), err)
			}

			out = append(out, x)
		}
	}
	return out, nil
}
