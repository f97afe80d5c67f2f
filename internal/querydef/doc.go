// Package querydef loads query definitions from YAML or CUE documents and
// compiles them into query.TableExpr values.
//
// A definition names a source table and lists stages, one operator per
// stage, in pipeline order:
//
//	name: storm_damage
//	table: StormEvents
//	stages:
//	  - project: [State, EventType, DamageProperty]
//	  - summarize:
//	      aggregations:
//	        - name: sum_damage
//	          expr: {fn: sum, args: [DamageProperty]}
//	      by: [State, EventType]
//	  - order_by: [sum_damage]
//	  - limit: 20
//
// CUE files carry the same documents as fields of a top-level "query"
// struct, keyed by name:
//
//	query: storm_damage: {
//		table: "StormEvents"
//		stages: [{count: true}]
//	}
//
// EXPRESSION DOCUMENTS:
//
// Expressions are written as plain data. A bare string is a column, other
// scalars are literals, a sequence is a value list, and a map selects one of
// these forms by its key:
//
//	{col: Name, side: left}      column, optionally $left/$right qualified
//	{left: Name} {right: Name}   shorthand for side-qualified columns
//	{lit: WA}                    literal (use this for string values)
//	{fn: sum, args: [X]}         function call
//	{op: "==", args: [A, B]}     operator; and/or take two or more args
//	{not: X} {neg: X}            unary operators
//	{as: Name, expr: X}          binding, for project and summarize by
//
// Compile drives the fluent builder, so every check the builder makes
// applies to definitions unchanged.
package querydef
