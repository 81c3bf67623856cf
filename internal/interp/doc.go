// Package interp evaluates predicate trees into backend fragments.
//
// An Interpreter is a registry from node kind to evaluation function. It
// is generic over the result type R so that one predicate tree can be
// translated to several backends: SQL builders, in-memory filters, or
// anything else that can represent a predicate.
//
// Evaluation state lives in a Context: a name-keyed set of backend objects
// (the statement builder, the query under construction, the root entity)
// created once per translation and threaded through every recursive call.
//
//	in := interp.New[sq.Sqlizer]()
//	in.Bind(spex.KindEquals, evalEquals)
//	ctx := in.NewContext()
//	ctx.Set(interp.BindingRoot, entity)
//	pred, err := ctx.Evaluate(spec.Node())
//
// Adding a node kind means binding one function. Adding a backend means
// binding one function per kind on a new Interpreter. Nothing outside the
// registry switches over kinds.
//
// Bindings are safe to add concurrently with evaluation, but backends are
// expected to bind everything at construction and treat the registry as
// read-only afterwards. A Context is single-use and not safe for
// concurrent use.
package interp
