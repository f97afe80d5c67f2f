package expr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var bareIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved words that cannot appear as bare identifiers. KQL keywords are
// case-sensitive, so Count or Order stay bare.
var reserved = map[string]bool{
	"and": true, "as": true, "asc": true, "between": true, "by": true,
	"contains": true, "count": true, "datatable": true, "desc": true,
	"distinct": true, "dynamic": true, "evaluate": true, "extend": true,
	"false": true, "has": true, "in": true, "join": true, "kind": true,
	"let": true, "limit": true, "not": true, "null": true, "on": true,
	"or": true, "order": true, "print": true, "project": true, "range": true,
	"sample": true, "sort": true, "summarize": true, "take": true,
	"true": true, "union": true, "where": true, "with": true,
}

// IsBareIdent reports whether name can be written without quoting.
func IsBareIdent(name string) bool {
	return bareIdent.MatchString(name) && !reserved[name]
}

// QuoteString renders s as a single-quoted KQL string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// BracketIdent always renders name in bracket form: ['name'].
func BracketIdent(name string) string {
	return "[" + QuoteString(name) + "]"
}

// QuoteIdent renders name bare when possible, bracket-quoted otherwise.
func QuoteIdent(name string) string {
	if IsBareIdent(name) {
		return name
	}
	return BracketIdent(name)
}

// FormatFloat renders f as a KQL real literal. Integral values keep a ".0"
// suffix so they stay real when parsed back.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "real(nan)"
	case math.IsInf(f, 1):
		return "real(+inf)"
	case math.IsInf(f, -1):
		return "real(-inf)"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if mant, exp, ok := strings.Cut(s, "e"); ok {
		sign := ""
		switch exp[0] {
		case '+':
			exp = exp[1:]
		case '-':
			sign, exp = "-", exp[1:]
		}
		return mant + "e" + sign + strings.TrimLeft(exp, "0")
	}
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

func (l Literal) String() string {
	switch l.kind {
	case KindBool:
		if l.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(l.i, 10)
	case KindFloat:
		return FormatFloat(l.f)
	case KindString:
		return QuoteString(l.s)
	default:
		return "dynamic(null)"
	}
}

func (c Column) String() string {
	switch c.Side {
	case SideLeft:
		return "$left." + QuoteIdent(c.Name)
	case SideRight:
		return "$right." + QuoteIdent(c.Name)
	default:
		return QuoteIdent(c.Name)
	}
}

func (u Unary) String() string {
	var b strings.Builder
	writeExpr(&b, u)
	return b.String()
}

func (bin Binary) String() string {
	var b strings.Builder
	writeExpr(&b, bin)
	return b.String()
}

func (c FuncCall) String() string {
	var b strings.Builder
	writeExpr(&b, c)
	return b.String()
}

func (l List) String() string {
	var b strings.Builder
	writeExpr(&b, l)
	return b.String()
}

// String renders the binding form name=expr.
func (a Alias) String() string {
	var b strings.Builder
	b.WriteString(QuoteIdent(a.Name))
	b.WriteByte('=')
	writeExpr(&b, a.Expr)
	return b.String()
}

func (e Bad) String() string {
	if e.Err == nil {
		return "<bad expression>"
	}
	return "<bad expression: " + e.Err.Error() + ">"
}

// precedenceOf returns how tightly e binds when it appears as an operand.
func precedenceOf(e Expr) int {
	switch n := e.(type) {
	case Binary:
		return n.Op.precedence()
	case Unary:
		return n.Op.precedence()
	case Literal:
		// A negative number reads as a unary minus.
		if (n.kind == KindInt && n.i < 0) || (n.kind == KindFloat && !math.IsNaN(n.f) && math.Signbit(n.f)) {
			return precUnary
		}
	}
	return precAtom
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case Binary:
		writeOperand(b, n.Left, n.Op, false)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		writeOperand(b, n.Right, n.Op, true)
	case Unary:
		if n.Op == OpNot {
			b.WriteString("not(")
			writeExpr(b, n.Operand)
			b.WriteByte(')')
			return
		}
		b.WriteString(n.Op.String())
		inner := renderString(n.Operand)
		if precedenceOf(n.Operand) < precAtom {
			b.WriteByte('(')
			b.WriteString(inner)
			b.WriteByte(')')
			return
		}
		b.WriteString(inner)
	case FuncCall:
		b.WriteString(n.name)
		b.WriteByte('(')
		writeList(b, n.args)
		b.WriteByte(')')
	case List:
		b.WriteByte('(')
		writeList(b, n.items)
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString(e.String())
	}
}

func writeList(b *strings.Builder, items []Expr) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, item)
	}
}

// writeOperand renders a child of a binary node, parenthesizing it when the
// flat text would parse into a different tree. Children that bind looser
// than the parent always need parentheses; so do right children at the same
// level (operators parse left-associative) and either child of a comparison
// at the comparison level (comparisons do not chain).
func writeOperand(b *strings.Builder, child Expr, parent Op, right bool) {
	cp, pp := precedenceOf(child), parent.precedence()
	wrap := cp < pp || (cp == pp && (right || pp == precCompare))
	if wrap {
		b.WriteByte('(')
	}
	writeExpr(b, child)
	if wrap {
		b.WriteByte(')')
	}
}

func renderString(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// RenderConjunct renders e as one operand of a top-level "and" chain, first
// being the leftmost. Where stages use it to join their predicates, so an
// "or" predicate comes back parenthesized.
func RenderConjunct(e Expr, first bool) string {
	var b strings.Builder
	writeOperand(&b, e, OpAnd, !first)
	return b.String()
}
