package dao

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/interp"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

const kindPrefix spex.Kind = "prefix"

// prefix matches text attributes starting with value.
type prefix struct {
	path  string
	value string
}

func (prefix) Kind() spex.Kind { return kindPrefix }

func bindPrefix(p *Provider) {
	p.Translator().Interpreter().Bind(kindPrefix, func(ctx *interp.Context[sq.Sqlizer], n spex.Node) (sq.Sqlizer, error) {
		root, err := interp.Lookup[*mapping.Entity](ctx, interp.BindingRoot)
		if err != nil {
			return nil, err
		}
		pn := n.(prefix)
		col, err := root.Column(pn.path)
		if err != nil {
			return nil, err
		}
		return sq.Like{col: pn.value + "%"}, nil
	})
}
