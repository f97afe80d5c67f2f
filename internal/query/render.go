package query

import (
	"strconv"
	"strings"

	"github.com/roach88/kustoq/internal/expr"
)

const indent = "\t"

// Render renders t as KQL text. It only fails when t carries a construction
// error, or for the zero TableExpr.
func Render(t TableExpr) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	if t.source.Name == "" {
		return "", expr.Errorf(expr.ErrCodeInvalidArgument, "query has no source table")
	}
	return strings.Join(t.lines(), "\n"), nil
}

// KQL is Render as a method.
func (t TableExpr) KQL() (string, error) {
	return Render(t)
}

// String renders t as KQL text, or returns "" when t is invalid. Use KQL or
// Render to see the error.
func (t TableExpr) String() string {
	s, err := Render(t)
	if err != nil {
		return ""
	}
	return s
}

func (t TableExpr) lines() []string {
	lines := []string{t.source.String()}
	for _, s := range t.stages {
		lines = append(lines, stageLines(s)...)
	}
	return lines
}

func stageLines(s Stage) []string {
	switch st := s.(type) {
	case Project:
		return block(st.Keyword(), exprStrings(st.Columns))
	case Where:
		parts := make([]string, len(st.Predicates))
		for i, p := range st.Predicates {
			parts[i] = expr.RenderConjunct(p, i == 0)
		}
		return inline(st.Keyword(), strings.Join(parts, " and "))
	case Summarize:
		aggs := make([]string, len(st.Aggregations))
		for i, a := range st.Aggregations {
			aggs[i] = a.String()
		}
		lines := block(st.Keyword(), aggs)
		if len(st.By) > 0 {
			lines = append(lines, indent+"by "+strings.Join(exprStrings(st.By), ", "))
		}
		return lines
	case Extend:
		assigns := make([]string, len(st.Assignments))
		for i, a := range st.Assignments {
			assigns[i] = a.String()
		}
		return block(st.Keyword(), assigns)
	case Join:
		lines := []string{"| join kind=" + string(st.Kind) + " ("}
		for _, l := range st.Right.lines() {
			lines = append(lines, indent+l)
		}
		return append(lines, ") on "+strings.Join(exprStrings(st.On), ", "))
	case Order:
		keys := make([]string, len(st.Keys))
		for i, k := range st.Keys {
			keys[i] = k.String()
		}
		return block(st.Keyword(), keys)
	case Limit:
		return inline(st.Keyword(), strconv.FormatInt(st.N, 10))
	case Sample:
		return inline(st.Keyword(), strconv.FormatInt(st.N, 10))
	case Distinct:
		if len(st.Columns) == 0 {
			return inline(st.Keyword(), "*")
		}
		return inline(st.Keyword(), strings.Join(exprStrings(st.Columns), ", "))
	case Count:
		return []string{"| " + st.Keyword()}
	case Evaluate:
		return inline(st.Keyword(), st.Plugin.String())
	default:
		// Unreachable: Stage is sealed.
		return []string{"| " + s.Keyword()}
	}
}

// inline renders "| keyword body".
func inline(keyword, body string) []string {
	return []string{"| " + keyword + " " + body}
}

// block renders "| keyword" followed by one tab-indented item per line,
// comma-terminated except for the last.
func block(keyword string, items []string) []string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "| "+keyword)
	for i, item := range items {
		if i < len(items)-1 {
			item += ","
		}
		lines = append(lines, indent+item)
	}
	return lines
}

func exprStrings(es []expr.Expr) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.String()
	}
	return out
}
