// Package expr provides the scalar and boolean expression trees used inside
// KQL pipeline stages.
//
// Expressions are schema-free: a column is just a caller-supplied name and
// nothing here ever inspects a table definition.
//
// NODES:
//
// Expr is a sealed interface. The variants are:
//
//	Column   State, $left.Id, ['Event Type']
//	Literal  'WA', 100000, 2.5, true, dynamic(null)
//	Unary    not(x), -x
//	Binary   l == r, l and r, l has r, l + r, ...
//	FuncCall sum(DamageProperty)
//	List     ('WA', 'TX')          (right-hand side of in / !in)
//	Alias    sum_damage=sum(X)     (binding contexts only)
//	Bad      a construction failure, carried until Check reports it
//
// All nodes are value types. Slices are copied when a node is built and are
// only handed out as copies, so a node never changes after construction and
// any subtree can be shared freely between trees.
//
// CONSTRUCTION:
//
// Operators are package functions (Eq, And, Has, Add, ...) with fluent
// method forms on the common node types:
//
//	expr.Col("State").Eq("WA").And(expr.Col("DamageProperty").Gt(100000))
//
// A Go value in operand position becomes a Literal. A Go string inside Call
// arguments is a column name instead, which matches how aggregate helpers
// are written: sum("DamageProperty") renders as sum(DamageProperty).
//
// Fluent constructors never return an error. An invalid operand is replaced
// by a Bad node and Check reports it; the pipeline builder calls Check on
// every expression it receives, so the failure surfaces at the stage call
// that introduced it. NewLiteral, NewUnary and NewBinary return the error
// directly for callers that want it immediately.
//
// RENDERING:
//
// String renders KQL text. Parentheses are added only where the tree's
// grouping would otherwise be lost when the text is parsed back.
package expr
