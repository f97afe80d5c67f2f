package query

import (
	"github.com/roach88/kustoq/internal/expr"
)

// TableExpr is an immutable KQL pipeline: a source table plus stages.
//
// The zero value is not useful; start from Table, Database(...).Table or
// Cluster(...).Database(...).Table.
type TableExpr struct {
	source TableRef
	stages []Stage
	err    error
}

// Source returns the table the pipeline reads from.
func (t TableExpr) Source() TableRef { return t.source }

// Stages returns a copy of the stage list.
func (t TableExpr) Stages() []Stage {
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Len returns the number of stages.
func (t TableExpr) Len() int { return len(t.stages) }

// Err returns the construction error, if any call in the chain failed.
func (t TableExpr) Err() error { return t.err }

// with returns a new TableExpr with s appended. The stage slice is always
// reallocated so values that share a prefix never see each other's stages.
func (t TableExpr) with(s Stage) TableExpr {
	if t.err != nil {
		return t
	}
	stages := make([]Stage, len(t.stages)+1)
	copy(stages, t.stages)
	stages[len(t.stages)] = s
	return TableExpr{source: t.source, stages: stages}
}

func (t TableExpr) fail(err error) TableExpr {
	if t.err != nil {
		return t
	}
	return TableExpr{source: t.source, stages: t.stages, err: err}
}

// Project keeps the given columns, in order. Each argument is a column name,
// an expr.Column or an expr.Alias (name=expression).
func (t TableExpr) Project(cols ...any) TableExpr {
	if t.err != nil {
		return t
	}
	if len(cols) == 0 {
		return t.fail(expr.Errorf(expr.ErrCodeEmptyProjection, "project needs at least one column"))
	}
	out := make([]expr.Expr, 0, len(cols))
	for _, c := range cols {
		e, err := projectionArg(c)
		if err == nil {
			err = unqualified("project", e)
		}
		if err != nil {
			return t.fail(err)
		}
		out = append(out, e)
	}
	return t.with(Project{Columns: out})
}

func projectionArg(v any) (expr.Expr, error) {
	switch c := v.(type) {
	case string:
		col := expr.Col(c)
		return col, expr.Check(col)
	case expr.Column:
		return c, expr.Check(c)
	case expr.Alias:
		return c, expr.CheckBinding(c)
	case expr.Expr:
		return nil, expr.Errorf(expr.ErrCodeInvalidOperand, "project takes columns or name=expression bindings, got %s", c)
	default:
		return nil, expr.Errorf(expr.ErrCodeInvalidOperand, "project takes columns or name=expression bindings, got %T", v)
	}
}

// unqualified rejects $left and $right columns, which only mean something
// in join keys.
func unqualified(stage string, e expr.Expr) error {
	if c, ok := expr.SideColumn(e); ok {
		return expr.Errorf(expr.ErrCodeInvalidOperand, "%s: %s is only allowed in join keys", stage, c)
	}
	return nil
}

// Where filters rows by the given predicates, AND-combined on one line.
// Each call adds its own where stage. Predicates are expressions or Go
// bools.
func (t TableExpr) Where(preds ...any) TableExpr {
	if t.err != nil {
		return t
	}
	if len(preds) == 0 {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "where needs at least one predicate"))
	}
	out := make([]expr.Expr, 0, len(preds))
	for _, p := range preds {
		var e expr.Expr
		switch v := p.(type) {
		case expr.Expr:
			e = v
		case bool:
			e = expr.Bool(v)
		default:
			return t.fail(expr.Errorf(expr.ErrCodeInvalidOperand, "where predicate must be an expression, got %T", p))
		}
		if err := expr.Check(e); err != nil {
			return t.fail(err)
		}
		if !expr.IsPredicate(e) {
			return t.fail(expr.Errorf(expr.ErrCodeInvalidOperand, "where predicate %s is not boolean", e))
		}
		if err := unqualified("where", e); err != nil {
			return t.fail(err)
		}
		out = append(out, e)
	}
	return t.with(Where{Predicates: out})
}

// Summarize aggregates with the given named aggregations, grouped by the
// by arguments (column names, expressions, or bindings such as
// Day=bin(Timestamp, 1d)). At least one aggregation or grouping is needed.
func (t TableExpr) Summarize(aggs []expr.Alias, by ...any) TableExpr {
	if t.err != nil {
		return t
	}
	if len(aggs) == 0 && len(by) == 0 {
		return t.fail(expr.Errorf(expr.ErrCodeEmptyAggregation, "summarize needs an aggregation or a by clause"))
	}
	bindings, err := checkBindings("summarize", aggs)
	if err != nil {
		return t.fail(err)
	}
	groups := make([]expr.Expr, 0, len(by))
	for _, b := range by {
		e, err := groupArg(b)
		if err == nil {
			err = unqualified("summarize by", e)
		}
		if err != nil {
			return t.fail(err)
		}
		groups = append(groups, e)
	}
	return t.with(Summarize{Aggregations: bindings, By: groups})
}

func groupArg(v any) (expr.Expr, error) {
	e := columnArg(v)
	if a, ok := e.(expr.Alias); ok {
		return a, expr.CheckBinding(a)
	}
	return e, expr.Check(e)
}

// Extend adds computed columns, in order.
func (t TableExpr) Extend(assignments ...expr.Alias) TableExpr {
	if t.err != nil {
		return t
	}
	if len(assignments) == 0 {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "extend needs at least one assignment"))
	}
	bindings, err := checkBindings("extend", assignments)
	if err != nil {
		return t.fail(err)
	}
	return t.with(Extend{Assignments: bindings})
}

// checkBindings validates an ordered name->expression mapping and returns
// a private copy of it. Names must be unique.
func checkBindings(stage string, in []expr.Alias) ([]expr.Alias, error) {
	seen := make(map[string]bool, len(in))
	out := make([]expr.Alias, 0, len(in))
	for _, a := range in {
		if err := expr.CheckBinding(a); err != nil {
			return nil, err
		}
		if err := unqualified(stage, a); err != nil {
			return nil, err
		}
		if seen[a.Name] {
			return nil, expr.Errorf(expr.ErrCodeInvalidArgument, "%s binds %q more than once", stage, a.Name)
		}
		seen[a.Name] = true
		out = append(out, a)
	}
	return out, nil
}

// Join joins with other. on lists the join keys: a column name present on
// both sides, or an equality such as expr.Eq(expr.LeftCol("a"),
// expr.RightCol("b")).
func (t TableExpr) Join(other TableExpr, kind JoinKind, on ...any) TableExpr {
	if t.err != nil {
		return t
	}
	if !kind.Valid() {
		return t.fail(expr.Errorf(expr.ErrCodeUnsupportedJoinKind, "unsupported join kind %q", string(kind)))
	}
	if other.err != nil {
		return t.fail(other.err)
	}
	if other.source.Name == "" {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "join needs a table to join with"))
	}
	if len(on) == 0 {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "join needs at least one key"))
	}
	keys := make([]expr.Expr, 0, len(on))
	for _, k := range on {
		e := columnArg(k)
		if err := expr.Check(e); err != nil {
			return t.fail(err)
		}
		switch n := e.(type) {
		case expr.Column:
		case expr.Binary:
			if n.Op != expr.OpEq {
				return t.fail(expr.Errorf(expr.ErrCodeInvalidOperand, "join key %s is not an equality", n))
			}
		default:
			return t.fail(expr.Errorf(expr.ErrCodeInvalidOperand, "join key %s is neither a column nor an equality", e))
		}
		keys = append(keys, e)
	}
	return t.with(Join{Kind: kind, Right: other, On: keys})
}

// OrderBy sorts by the given keys: column names, expressions, or Asc/Desc
// sort keys.
func (t TableExpr) OrderBy(keys ...any) TableExpr {
	if t.err != nil {
		return t
	}
	if len(keys) == 0 {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "order by needs at least one key"))
	}
	out := make([]SortKey, 0, len(keys))
	for _, k := range keys {
		sk, ok := k.(SortKey)
		if !ok {
			sk = SortKey{Expr: columnArg(k)}
		}
		if err := expr.Check(sk.Expr); err != nil {
			return t.fail(err)
		}
		if !sk.Dir.Valid() {
			return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "order by %s: unknown sort direction %d", sk.Expr, int(sk.Dir)))
		}
		if err := unqualified("order by", sk.Expr); err != nil {
			return t.fail(err)
		}
		out = append(out, sk)
	}
	return t.with(Order{Keys: out})
}

// Sort is a synonym for OrderBy.
func (t TableExpr) Sort(keys ...any) TableExpr {
	return t.OrderBy(keys...)
}

// Limit caps the result at n rows. Zero is allowed.
func (t TableExpr) Limit(n int) TableExpr {
	return t.limit(n, false)
}

// Take is Limit spelled "take".
func (t TableExpr) Take(n int) TableExpr {
	return t.limit(n, true)
}

func (t TableExpr) limit(n int, take bool) TableExpr {
	if t.err != nil {
		return t
	}
	if n < 0 {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "row count must not be negative, got %d", n))
	}
	return t.with(Limit{N: int64(n), Take: take})
}

// Distinct keeps distinct rows over cols, or over all columns when none are
// given.
func (t TableExpr) Distinct(cols ...any) TableExpr {
	if t.err != nil {
		return t
	}
	out := make([]expr.Expr, 0, len(cols))
	for _, c := range cols {
		e := columnArg(c)
		if err := expr.Check(e); err != nil {
			return t.fail(err)
		}
		if err := unqualified("distinct", e); err != nil {
			return t.fail(err)
		}
		out = append(out, e)
	}
	return t.with(Distinct{Columns: out})
}

// Sample returns n arbitrary rows.
func (t TableExpr) Sample(n int) TableExpr {
	if t.err != nil {
		return t
	}
	if n < 0 {
		return t.fail(expr.Errorf(expr.ErrCodeInvalidArgument, "sample size must not be negative, got %d", n))
	}
	return t.with(Sample{N: int64(n)})
}

// Count replaces the rows with their count.
func (t TableExpr) Count() TableExpr {
	return t.with(Count{})
}

// Evaluate invokes the named plugin. Arguments follow expr.Call rules: Go
// strings are column names.
func (t TableExpr) Evaluate(plugin string, args ...any) TableExpr {
	if t.err != nil {
		return t
	}
	call := expr.Call(plugin, args...)
	if err := expr.Check(call); err != nil {
		return t.fail(err)
	}
	if err := unqualified("evaluate", call); err != nil {
		return t.fail(err)
	}
	return t.with(Evaluate{Plugin: call})
}
