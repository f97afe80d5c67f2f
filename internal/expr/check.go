package expr

import "fmt"

// Check validates an expression used outside a binding context.
//
// It reports the first problem found in a depth-first walk: a Bad node, an
// alias, a nil operand, an empty or malformed name, an empty list, or an
// operator used with the wrong arity. Check is a pure function.
func Check(e Expr) error {
	return check(e, "expression")
}

// CheckBinding validates an alias used in a binding context (project,
// summarize, extend): the name must be non-empty and the bound expression
// must pass Check.
func CheckBinding(a Alias) error {
	if a.Name == "" {
		return Errorf(ErrCodeInvalidArgument, "binding name is empty")
	}
	return check(a.Expr, fmt.Sprintf("binding %q", a.Name))
}

func check(e Expr, where string) error {
	switch n := e.(type) {
	case nil:
		return Errorf(ErrCodeInvalidOperand, "%s: missing operand", where)
	case Bad:
		if n.Err == nil {
			return Errorf(ErrCodeInvalidOperand, "%s: invalid operand", where)
		}
		return n.Err
	case Alias:
		return Errorf(ErrCodeInvalidOperand, "%s: alias %q is only allowed in project, summarize or extend", where, n.Name)
	case Literal:
		return nil
	case Column:
		if n.Name == "" {
			return Errorf(ErrCodeInvalidArgument, "%s: column name is empty", where)
		}
		return nil
	case Unary:
		if !n.Op.IsUnary() {
			return Errorf(ErrCodeInvalidOperand, "%s: %v is not a unary operator", where, n.Op)
		}
		return check(n.Operand, where)
	case Binary:
		if !n.Op.IsBinary() {
			return Errorf(ErrCodeInvalidOperand, "%s: %v is not a binary operator", where, n.Op)
		}
		if err := check(n.Left, where); err != nil {
			return err
		}
		if n.Op == OpIn || n.Op == OpNotIn {
			if _, ok := n.Right.(List); !ok {
				return Errorf(ErrCodeInvalidOperand, "%s: right side of %v must be a list", where, n.Op)
			}
		}
		return check(n.Right, where)
	case FuncCall:
		if !bareIdent.MatchString(n.name) {
			return Errorf(ErrCodeInvalidArgument, "%s: invalid function name %q", where, n.name)
		}
		for _, a := range n.args {
			if err := check(a, where); err != nil {
				return err
			}
		}
		return nil
	case List:
		if len(n.items) == 0 {
			return Errorf(ErrCodeInvalidArgument, "%s: value list is empty", where)
		}
		for _, item := range n.items {
			if err := check(item, where); err != nil {
				return err
			}
		}
		return nil
	default:
		return Errorf(ErrCodeInvalidOperand, "%s: unsupported expression %T", where, e)
	}
}

// SideColumn returns the first $left or $right column found in e.
func SideColumn(e Expr) (Column, bool) {
	switch n := e.(type) {
	case Column:
		if n.Side != SideNone {
			return n, true
		}
	case Alias:
		return SideColumn(n.Expr)
	case Unary:
		return SideColumn(n.Operand)
	case Binary:
		if c, ok := SideColumn(n.Left); ok {
			return c, true
		}
		return SideColumn(n.Right)
	case FuncCall:
		return sideColumnIn(n.args)
	case List:
		return sideColumnIn(n.items)
	}
	return Column{}, false
}

func sideColumnIn(items []Expr) (Column, bool) {
	for _, item := range items {
		if c, ok := SideColumn(item); ok {
			return c, true
		}
	}
	return Column{}, false
}

// IsPredicate reports whether e can stand alone as a where predicate. The
// model is schema-free, so anything whose type cannot be known (columns,
// calls) is accepted; only literals of a non-boolean kind, arithmetic
// results and lists are rejected.
func IsPredicate(e Expr) bool {
	switch n := e.(type) {
	case Literal:
		return n.kind == KindBool
	case Binary:
		return n.Op.IsComparison() || n.Op.IsLogical()
	case Unary:
		return n.Op == OpNot
	case List:
		return false
	default:
		return true
	}
}
