package expr

import "reflect"

// Col references a column by name.
func Col(name string) Column { return Column{Name: name} }

// LeftCol references a column of the left side of a join ($left.name).
func LeftCol(name string) Column { return Column{Name: name, Side: SideLeft} }

// RightCol references a column of the right side of a join ($right.name).
func RightCol(name string) Column { return Column{Name: name, Side: SideRight} }

// Call builds a function call. Go strings among args are column names; use
// Str for a string literal argument.
func Call(name string, args ...any) FuncCall {
	out := make([]Expr, len(args))
	for i, a := range args {
		out[i] = callArg(a)
	}
	return FuncCall{name: name, args: out}
}

// ListOf builds a value list. Go values become literals.
func ListOf(values ...any) List {
	items := make([]Expr, len(values))
	for i, v := range values {
		items[i] = operand(v)
	}
	return List{items: items}
}

// As binds e to name. A Go value for e becomes a literal.
func As(name string, e any) Alias {
	return Alias{Name: name, Expr: operand(e)}
}

// NewUnary applies a unary operator and validates the result.
func NewUnary(op Op, x any) (Unary, error) {
	if !op.IsUnary() {
		return Unary{}, Errorf(ErrCodeInvalidArgument, "%v is not a unary operator", op)
	}
	u := Unary{Op: op, Operand: operand(x)}
	if err := Check(u); err != nil {
		return Unary{}, err
	}
	return u, nil
}

// NewBinary applies a binary operator and validates the result.
func NewBinary(op Op, l, r any) (Binary, error) {
	if !op.IsBinary() {
		return Binary{}, Errorf(ErrCodeInvalidArgument, "%v is not a binary operator", op)
	}
	b := binary(op, l, r)
	if err := Check(b); err != nil {
		return Binary{}, err
	}
	return b, nil
}

func binary(op Op, l, r any) Binary {
	return Binary{Op: op, Left: operand(l), Right: operand(r)}
}

// operand converts a Go value in operand position. Expressions pass through
// (Check deals with aliases and Bad nodes); anything else must be a literal.
func operand(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	l, err := NewLiteral(v)
	if err != nil {
		return Bad{Err: Errorf(ErrCodeInvalidOperand, "operand of type %T is neither an expression nor a literal", v)}
	}
	return l
}

func callArg(v any) Expr {
	if s, ok := v.(string); ok {
		return Col(s)
	}
	return operand(v)
}

// valueList turns the variadic tail of In/NotIn into a List. A single List
// or Go slice argument is used as the whole list.
func valueList(values []any) List {
	if len(values) == 1 {
		switch v := values[0].(type) {
		case List:
			return v
		case string, []byte:
		default:
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				expanded := make([]any, rv.Len())
				for i := range expanded {
					expanded[i] = rv.Index(i).Interface()
				}
				return ListOf(expanded...)
			}
		}
	}
	return ListOf(values...)
}

// Not is logical negation: not(x).
func Not(x any) Unary { return Unary{Op: OpNot, Operand: operand(x)} }

// Neg is arithmetic negation: -x.
func Neg(x any) Unary { return Unary{Op: OpNeg, Operand: operand(x)} }

// And combines two or more predicates. More than two operands build a
// left-deep tree, which renders without parentheses.
func And(l, r any, more ...any) Binary { return chain(OpAnd, l, r, more) }

// Or combines two or more predicates, left-deep like And.
func Or(l, r any, more ...any) Binary { return chain(OpOr, l, r, more) }

func chain(op Op, l, r any, more []any) Binary {
	b := binary(op, l, r)
	for _, m := range more {
		b = binary(op, b, m)
	}
	return b
}

func Eq(l, r any) Binary { return binary(OpEq, l, r) }
func Ne(l, r any) Binary { return binary(OpNe, l, r) }
func Lt(l, r any) Binary { return binary(OpLt, l, r) }
func Le(l, r any) Binary { return binary(OpLe, l, r) }
func Gt(l, r any) Binary { return binary(OpGt, l, r) }
func Ge(l, r any) Binary { return binary(OpGe, l, r) }

// In tests membership: l in ('a', 'b'). values may also be a single List or
// Go slice.
func In(l any, values ...any) Binary {
	return Binary{Op: OpIn, Left: operand(l), Right: valueList(values)}
}

// NotIn is the negated form of In: l !in (...).
func NotIn(l any, values ...any) Binary {
	return Binary{Op: OpNotIn, Left: operand(l), Right: valueList(values)}
}

func Has(l, r any) Binary         { return binary(OpHas, l, r) }
func NotHas(l, r any) Binary      { return binary(OpNotHas, l, r) }
func Contains(l, r any) Binary    { return binary(OpContains, l, r) }
func NotContains(l, r any) Binary { return binary(OpNotContains, l, r) }
func StartsWith(l, r any) Binary  { return binary(OpStartsWith, l, r) }
func EndsWith(l, r any) Binary    { return binary(OpEndsWith, l, r) }
func Matches(l, r any) Binary     { return binary(OpMatches, l, r) }

func Add(l, r any) Binary { return binary(OpAdd, l, r) }
func Sub(l, r any) Binary { return binary(OpSub, l, r) }
func Mul(l, r any) Binary { return binary(OpMul, l, r) }
func Div(l, r any) Binary { return binary(OpDiv, l, r) }
func Mod(l, r any) Binary { return binary(OpMod, l, r) }
