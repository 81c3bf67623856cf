// Package dao executes specifications and query-model queries against a
// store.
//
// Provider is the untyped persistence provider: every operation names the
// catalog entity it works on and scans rows into caller-supplied
// destinations with scany. DAO[E] is the typed facade over one entity.
//
// A unit of work is started with Provider.RunInTransaction. Inside it all
// statements share one transaction, loaded entities are kept in an
// identity map, and versions read with an optimistic lock are re-checked
// just before commit. Nested calls join the outer unit of work.
//
// Single-result reads report "no result" through a boolean, never through
// an error.
package dao
