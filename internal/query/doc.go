// Package query describes parametrized queries that are not built from
// specifications.
//
// A Query is one of three variants:
//
//	Named(name)    a query registered in the mapping catalog
//	Literal(text)  query text over entity attributes, executed with a typed result
//	Native(text)   backend SQL executed as is, without a typed result
//
// Each variant carries an ordered list of bind parameters, an optional
// result cap, and an optional first-result offset:
//
//	q := query.Named("vserver-by-host").
//		Set("HOST").To("edge-1").
//		SetMaxResults(10)
//
// Queries are values. Every builder call returns a new Query and never
// modifies the receiver, so a partially built query can be shared between
// call sites and extended independently.
//
// Parameter order is preserved exactly as declared. Named and literal
// queries reference parameters by key with :KEY placeholders and may
// reference entity attributes as {path}. Native queries bind parameters
// positionally in declaration order.
//
// A Query has no behavior of its own. Execution belongs to the dao
// package, rendering to SQL belongs to querysql.
package query
