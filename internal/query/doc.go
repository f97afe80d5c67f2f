// Package query provides the immutable KQL pipeline builder and its
// renderer.
//
// A TableExpr is a table reference plus an ordered list of stages. Every
// fluent method returns a new TableExpr with exactly one more stage; the
// receiver is never modified, so a prefix can be shared between branches:
//
//	base := query.Table("StormEvents").Where(expr.Col("State").Eq("WA"))
//	top := base.OrderBy(query.Desc("DamageProperty")).Take(10)
//	n := base.Count()
//
// VALIDATION:
//
// All validation happens in the fluent call that introduces a value. A call
// that fails returns a TableExpr carrying the error (see Err); further calls
// on it are no-ops that keep the first error. The receiver stays valid.
//
// RENDERING:
//
// Render (and String) turn a TableExpr into KQL text:
//
//	StormEvents
//	| where State == 'WA' and DamageProperty > 100000
//	| project
//		State,
//		EventType
//	| limit 10
//
// Stages render in the order they were added, one pipe per stage. The
// builder never merges, reorders or drops stages. Rendering a valid
// TableExpr cannot fail and is deterministic.
package query
