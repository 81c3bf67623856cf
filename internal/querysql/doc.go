// Package querysql is the SQL backend of the predicate interpreter.
//
// A Translator binds an evaluation function for every built-in node kind
// into an interp.Interpreter whose results are squirrel Sqlizers:
//
//	attribute vs literal     sq.Eq / sq.Gt / sq.Lt / sq.GtOrEq
//	attribute vs attribute   sq.Expr("a > b")
//	is null                  sq.Eq{col: nil}
//	and / or                 sq.And / sq.Or, children in order
//
// Attribute paths are resolved to columns through the root entity's
// mapping, bound in the evaluation context under interp.BindingRoot.
// Comparison semantics (numeric, temporal, lexical) are the database's.
//
// All values are bound as parameters and never interpolated. Every
// retrieval has an ORDER BY ending in the identifier column so results
// are deterministic.
//
// The package also renders query-model queries (named, literal, native),
// builds the insert/update/delete statements the dao package executes,
// and emits CREATE TABLE statements for catalog entities.
package querysql
