package querysql

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/daoism/internal/mapping"
)

// BuildFindByID selects one row by identifier. With lock set, the row is
// locked for update on dialects that support row locks.
func (t *Translator) BuildFindByID(root *mapping.Entity, id any, lock bool) sq.SelectBuilder {
	b := t.dialect.Builder().
		Select(root.Columns()...).
		From(root.Table).
		Where(sq.Eq{root.ID.Column: id})
	if lock && t.dialect.SupportsRowLocks() {
		b = b.Suffix("FOR UPDATE")
	}
	return b
}

// BuildVersion selects the current version of one row.
func (t *Translator) BuildVersion(root *mapping.Entity, id any) (sq.SelectBuilder, error) {
	if !root.Versioned() {
		return sq.SelectBuilder{}, fmt.Errorf("entity %s has no version attribute", root.Name)
	}
	return t.dialect.Builder().
		Select(root.Version.Column).
		From(root.Table).
		Where(sq.Eq{root.ID.Column: id}), nil
}

// BuildInsert inserts one row. values is keyed by attribute path; columns
// are written in declaration order and paths not present are omitted.
func (t *Translator) BuildInsert(root *mapping.Entity, values map[string]any) (sq.InsertBuilder, error) {
	if err := checkPaths(root, values); err != nil {
		return sq.InsertBuilder{}, err
	}
	var cols []string
	var vals []any
	for _, a := range root.Attributes() {
		v, ok := values[a.Path]
		if !ok {
			continue
		}
		cols = append(cols, a.Column)
		vals = append(vals, v)
	}
	return t.dialect.Builder().Insert(root.Table).Columns(cols...).Values(vals...), nil
}

// BuildUpdate updates one row identified by values[id path].
//
// For versioned entities the version column is incremented in the same
// statement and the row must still have version expected; callers detect
// a concurrent update by zero rows affected. The version and created
// attributes in values are ignored.
func (t *Translator) BuildUpdate(root *mapping.Entity, values map[string]any, expected int64) (sq.UpdateBuilder, error) {
	if err := checkPaths(root, values); err != nil {
		return sq.UpdateBuilder{}, err
	}
	id, ok := values[root.ID.Path]
	if !ok {
		return sq.UpdateBuilder{}, fmt.Errorf("update %s: identifier %q is required", root.Name, root.ID.Path)
	}

	b := t.dialect.Builder().Update(root.Table)
	for _, a := range root.Attributes() {
		switch a.Path {
		case root.ID.Path, root.Version.Path, root.Created.Path:
			continue
		}
		if v, ok := values[a.Path]; ok {
			b = b.Set(a.Column, v)
		}
	}

	where := sq.Eq{root.ID.Column: id}
	if root.Versioned() {
		b = b.Set(root.Version.Column, sq.Expr(root.Version.Column+" + 1"))
		where[root.Version.Column] = expected
	}
	return b.Where(where), nil
}

// BuildDelete deletes one row by identifier.
func (t *Translator) BuildDelete(root *mapping.Entity, id any) sq.DeleteBuilder {
	return t.dialect.Builder().Delete(root.Table).Where(sq.Eq{root.ID.Column: id})
}

func checkPaths(root *mapping.Entity, values map[string]any) error {
	for path := range values {
		if _, ok := root.Resolve(path); !ok {
			return errorf(ErrCodeUnmappedAttribute, "entity %s has no attribute %q", root.Name, path)
		}
	}
	return nil
}
