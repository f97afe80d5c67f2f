package expr

import (
	"math"
	"reflect"
	"unicode/utf8"
)

// LiteralKind is the tagged kind of a Literal.
type LiteralKind int

const (
	KindNull LiteralKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns the kind name.
func (k LiteralKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Literal is a constant value. The kind is fixed when the literal is built;
// rendering never has to guess at a Go type.
type Literal struct {
	kind LiteralKind
	b    bool
	i    int64
	f    float64
	s    string
}

func (Literal) exprNode() {}

// Kind returns the literal's kind.
func (l Literal) Kind() LiteralKind { return l.kind }

// Value returns the literal as a Go value: nil, bool, int64, float64 or
// string.
func (l Literal) Value() any {
	switch l.kind {
	case KindBool:
		return l.b
	case KindInt:
		return l.i
	case KindFloat:
		return l.f
	case KindString:
		return l.s
	default:
		return nil
	}
}

// Str builds a string literal. s must be valid UTF-8; NewLiteral checks
// that, Str does not.
func Str(s string) Literal { return Literal{kind: KindString, s: s} }

// Int builds an integer literal.
func Int(i int64) Literal { return Literal{kind: KindInt, i: i} }

// Float builds a real literal.
func Float(f float64) Literal { return Literal{kind: KindFloat, f: f} }

// Bool builds a boolean literal.
func Bool(b bool) Literal { return Literal{kind: KindBool, b: b} }

// Null builds the null literal.
func Null() Literal { return Literal{kind: KindNull} }

// NewLiteral converts a Go value to a Literal.
//
// Supported: nil, bool, every signed and unsigned integer type (unsigned
// values above math.MaxInt64 are rejected), float32, float64, string, and
// named types whose underlying kind is one of these. Strings must be valid
// UTF-8. Anything else fails with ErrCodeUnsupportedLiteralType.
func NewLiteral(v any) (Literal, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Literal:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return newString(val)
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	}

	// Unsigned values and named types go through reflection.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return newString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Literal{}, Errorf(ErrCodeUnsupportedLiteralType, "unsigned value %d overflows long", u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Literal{}, Errorf(ErrCodeUnsupportedLiteralType, "unsupported literal type %T", v)
}

// newString rejects invalid UTF-8, which has no KQL literal form.
func newString(s string) (Literal, error) {
	if !utf8.ValidString(s) {
		return Literal{}, Errorf(ErrCodeUnsupportedLiteralType, "string %q is not valid UTF-8", s)
	}
	return Str(s), nil
}

// Lit converts a Go value to a literal expression. On failure it returns a
// Bad node carrying the NewLiteral error.
func Lit(v any) Expr {
	l, err := NewLiteral(v)
	if err != nil {
		return Bad{Err: err}
	}
	return l
}
