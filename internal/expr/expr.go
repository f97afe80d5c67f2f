package expr

// Expr is a KQL expression node.
//
// This is a sealed interface - only types in this package implement it, so
// renderers and validators can switch over the variants exhaustively.
type Expr interface {
	// String renders the expression as KQL text.
	String() string

	exprNode() // Marker method - seals interface to this package
}

// Side qualifies a column with the join side it comes from.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// Column references a column by name.
//
// Column names are never checked against a schema. A name that is not a
// plain identifier renders bracket-quoted: ['Event Type'].
type Column struct {
	Name string
	Side Side
}

func (Column) exprNode() {}

// Unary applies OpNot or OpNeg to a single operand.
type Unary struct {
	Op      Op
	Operand Expr
}

func (Unary) exprNode() {}

// Binary applies a binary operator to two operands.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (Binary) exprNode() {}

// FuncCall is a function application: name(arg1, arg2, ...).
type FuncCall struct {
	name string
	args []Expr
}

func (FuncCall) exprNode() {}

// Name returns the function name.
func (c FuncCall) Name() string { return c.name }

// Args returns a copy of the argument list.
func (c FuncCall) Args() []Expr { return cloneExprs(c.args) }

// List is a parenthesized value list, used as the right operand of in/!in.
type List struct {
	items []Expr
}

func (List) exprNode() {}

// Items returns a copy of the list items.
func (l List) Items() []Expr { return cloneExprs(l.items) }

// Len returns the number of items.
func (l List) Len() int { return len(l.items) }

// Alias binds an expression to a result name.
//
// Aliases are only meaningful in binding contexts (project, summarize,
// extend). Check rejects an alias anywhere else.
type Alias struct {
	Name string
	Expr Expr
}

func (Alias) exprNode() {}

// Bad stands in for an operand that could not be converted. It carries the
// conversion error until Check reports it and is never rendered by a valid
// query.
type Bad struct {
	Err error
}

func (Bad) exprNode() {}

func cloneExprs(in []Expr) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	copy(out, in)
	return out
}
