package querydef

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/kustoq/internal/expr"
)

// exprForms lists the keys that select an expression form, each with the
// extra keys that form accepts.
var exprForms = map[string][]string{
	"col":   {"side"},
	"left":  nil,
	"right": nil,
	"lit":   nil,
	"fn":    {"args"},
	"op":    {"args"},
	"not":   nil,
	"neg":   nil,
	"as":    {"expr"},
}

// Expr converts an expression document into an expression.
func Expr(doc any) (expr.Expr, error) {
	return exprAt(doc, "expr")
}

func exprAt(doc any, field string) (expr.Expr, error) {
	switch v := doc.(type) {
	case nil:
		return expr.Null(), nil
	case string:
		return expr.Col(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return expr.Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, errorf(field, "invalid number %q", v.String())
		}
		return expr.Float(f), nil
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			e, err := exprAt(item, fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return nil, err
			}
			items[i] = e
		}
		return expr.ListOf(items...), nil
	case map[string]any:
		return mapExpr(v, field)
	default:
		l, err := expr.NewLiteral(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return l, nil
	}
}

func mapExpr(m map[string]any, field string) (expr.Expr, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var form string
	for _, k := range keys {
		if _, ok := exprForms[k]; !ok {
			continue
		}
		if form != "" {
			return nil, errorf(field, "ambiguous expression: both %q and %q given", form, k)
		}
		form = k
	}
	if form == "" {
		return nil, errorf(field, "expression map needs one of col, left, right, lit, fn, op, not, neg or as; got keys %v", keys)
	}
	for _, k := range keys {
		if k != form && !slices.Contains(exprForms[form], k) {
			return nil, errorf(field, "unexpected key %q in %s expression", k, form)
		}
	}

	switch form {
	case "col":
		name, err := stringField(m, "col", field)
		if err != nil {
			return nil, err
		}
		side, ok := m["side"]
		if !ok {
			return expr.Col(name), nil
		}
		switch side {
		case "left":
			return expr.LeftCol(name), nil
		case "right":
			return expr.RightCol(name), nil
		default:
			return nil, errorf(field+".side", "must be left or right, got %v", side)
		}

	case "left":
		name, err := stringField(m, "left", field)
		if err != nil {
			return nil, err
		}
		return expr.LeftCol(name), nil

	case "right":
		name, err := stringField(m, "right", field)
		if err != nil {
			return nil, err
		}
		return expr.RightCol(name), nil

	case "lit":
		switch v := m["lit"].(type) {
		case json.Number:
			return exprAt(v, field+".lit")
		default:
			l, err := expr.NewLiteral(v)
			if err != nil {
				return nil, fmt.Errorf("%s.lit: %w", field, err)
			}
			return l, nil
		}

	case "fn":
		name, err := stringField(m, "fn", field)
		if err != nil {
			return nil, err
		}
		args, err := argsField(m, field)
		if err != nil {
			return nil, err
		}
		return expr.Call(name, args...), nil

	case "op":
		return opExpr(m, field)

	case "not":
		x, err := exprAt(m["not"], field+".not")
		if err != nil {
			return nil, err
		}
		return expr.Not(x), nil

	case "neg":
		x, err := exprAt(m["neg"], field+".neg")
		if err != nil {
			return nil, err
		}
		return expr.Neg(x), nil

	case "as":
		name, err := stringField(m, "as", field)
		if err != nil {
			return nil, err
		}
		if _, ok := m["expr"]; !ok {
			return nil, errorf(field, "binding %q has no expr", name)
		}
		x, err := exprAt(m["expr"], field+".expr")
		if err != nil {
			return nil, err
		}
		return expr.As(name, x), nil
	}
	return nil, errorf(field, "unsupported expression form %q", form)
}

func opExpr(m map[string]any, field string) (expr.Expr, error) {
	token, err := stringField(m, "op", field)
	if err != nil {
		return nil, err
	}
	args, err := argsField(m, field)
	if err != nil {
		return nil, err
	}

	switch token {
	case "not":
		if len(args) != 1 {
			return nil, errorf(field, "not takes one argument, got %d", len(args))
		}
		return expr.Not(args[0]), nil
	case "neg":
		if len(args) != 1 {
			return nil, errorf(field, "neg takes one argument, got %d", len(args))
		}
		return expr.Neg(args[0]), nil
	}

	op, ok := expr.ParseBinaryOp(token)
	if !ok {
		return nil, errorf(field+".op", "unknown operator %q", token)
	}
	if len(args) < 2 {
		return nil, errorf(field, "%s takes at least two arguments, got %d", token, len(args))
	}

	switch op {
	case expr.OpAnd:
		return expr.And(args[0], args[1], args[2:]...), nil
	case expr.OpOr:
		return expr.Or(args[0], args[1], args[2:]...), nil
	case expr.OpIn:
		return expr.In(args[0], args[1:]...), nil
	case expr.OpNotIn:
		return expr.NotIn(args[0], args[1:]...), nil
	}
	if len(args) != 2 {
		return nil, errorf(field, "%s takes two arguments, got %d", token, len(args))
	}
	b, err := expr.NewBinary(op, args[0], args[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}

func stringField(m map[string]any, key, field string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", errorf(field+"."+key, "must be a string, got %T", m[key])
	}
	return s, nil
}

func argsField(m map[string]any, field string) ([]any, error) {
	raw, ok := m["args"]
	if !ok || raw == nil {
		return nil, nil
	}
	docs, ok := raw.([]any)
	if !ok {
		return nil, errorf(field+".args", "must be a sequence, got %T", raw)
	}
	return exprArgs(docs, field+".args")
}
