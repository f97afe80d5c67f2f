package query

import (
	"fmt"
	"strings"

	"github.com/roach88/kustoq/internal/expr"
)

// Stage is one pipe-delimited operation of a pipeline.
//
// This is a sealed interface - only types in this package implement it.
// Stage values are built by the TableExpr methods, which validate them;
// treat their slices as read-only.
type Stage interface {
	// Keyword returns the KQL operator name of the stage.
	Keyword() string

	stageNode() // Marker method - seals interface to this package
}

// Project keeps (and optionally computes) the listed columns. Each entry is
// an expr.Column or an expr.Alias.
type Project struct {
	Columns []expr.Expr
}

// Where filters rows. Predicates are AND-combined.
type Where struct {
	Predicates []expr.Expr
}

// Summarize aggregates rows, grouped by the By expressions.
type Summarize struct {
	Aggregations []expr.Alias
	By           []expr.Expr
}

// Extend adds computed columns.
type Extend struct {
	Assignments []expr.Alias
}

// Join joins the pipeline with another one.
type Join struct {
	Kind  JoinKind
	Right TableExpr
	On    []expr.Expr
}

// Order sorts rows by the given keys.
type Order struct {
	Keys []SortKey
}

// Limit caps the number of rows. Take selects the "take" spelling; both
// spellings mean the same thing in KQL.
type Limit struct {
	N    int64
	Take bool
}

// Distinct keeps one row per distinct combination of Columns. No columns
// means all of them.
type Distinct struct {
	Columns []expr.Expr
}

// Sample returns N arbitrary rows.
type Sample struct {
	N int64
}

// Count replaces the rows with their count.
type Count struct{}

// Evaluate invokes a plugin.
type Evaluate struct {
	Plugin expr.FuncCall
}

func (Project) stageNode()   {}
func (Where) stageNode()     {}
func (Summarize) stageNode() {}
func (Extend) stageNode()    {}
func (Join) stageNode()      {}
func (Order) stageNode()     {}
func (Limit) stageNode()     {}
func (Distinct) stageNode()  {}
func (Sample) stageNode()    {}
func (Count) stageNode()     {}
func (Evaluate) stageNode()  {}

func (Project) Keyword() string   { return "project" }
func (Where) Keyword() string     { return "where" }
func (Summarize) Keyword() string { return "summarize" }
func (Extend) Keyword() string    { return "extend" }
func (Join) Keyword() string      { return "join" }
func (Order) Keyword() string     { return "order by" }
func (Distinct) Keyword() string  { return "distinct" }
func (Sample) Keyword() string    { return "sample" }
func (Count) Keyword() string     { return "count" }
func (Evaluate) Keyword() string  { return "evaluate" }

func (l Limit) Keyword() string {
	if l.Take {
		return "take"
	}
	return "limit"
}

// JoinKind is the KQL join flavor.
type JoinKind string

const (
	JoinInnerUnique JoinKind = "innerunique"
	JoinInner       JoinKind = "inner"
	JoinLeftOuter   JoinKind = "leftouter"
	JoinRightOuter  JoinKind = "rightouter"
	JoinFullOuter   JoinKind = "fullouter"
	JoinLeftAnti    JoinKind = "leftanti"
	JoinRightAnti   JoinKind = "rightanti"
	JoinLeftSemi    JoinKind = "leftsemi"
	JoinRightSemi   JoinKind = "rightsemi"
)

// JoinKinds lists every supported kind.
var JoinKinds = []JoinKind{
	JoinInnerUnique, JoinInner, JoinLeftOuter, JoinRightOuter, JoinFullOuter,
	JoinLeftAnti, JoinRightAnti, JoinLeftSemi, JoinRightSemi,
}

// Valid reports whether k is a supported join kind.
func (k JoinKind) Valid() bool {
	for _, known := range JoinKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseJoinKind parses a kind name, case-insensitively. The KQL aliases
// "anti", "leftantisemi" and "rightantisemi" are accepted.
func ParseJoinKind(s string) (JoinKind, error) {
	k := JoinKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "anti", "leftantisemi":
		return JoinLeftAnti, nil
	case "rightantisemi":
		return JoinRightAnti, nil
	}
	if !k.Valid() {
		return "", expr.Errorf(expr.ErrCodeUnsupportedJoinKind, "unsupported join kind %q", s)
	}
	return k, nil
}

// Direction is a sort direction. DirDefault renders nothing and leaves the
// engine default (descending) in effect.
type Direction int

const (
	DirDefault Direction = iota
	DirAsc
	DirDesc
)

// Valid reports whether d is one of the declared directions.
func (d Direction) Valid() bool {
	return d == DirDefault || d == DirAsc || d == DirDesc
}

func (d Direction) String() string {
	switch d {
	case DirAsc:
		return "asc"
	case DirDesc:
		return "desc"
	default:
		return ""
	}
}

// SortKey is one entry of an order by stage.
type SortKey struct {
	Expr expr.Expr
	Dir  Direction
}

func (k SortKey) String() string {
	if k.Dir == DirDefault {
		return k.Expr.String()
	}
	return fmt.Sprintf("%s %s", k.Expr, k.Dir)
}

// Asc sorts ascending by col (a column name or an expression).
func Asc(col any) SortKey { return SortKey{Expr: columnArg(col), Dir: DirAsc} }

// Desc sorts descending by col (a column name or an expression).
func Desc(col any) SortKey { return SortKey{Expr: columnArg(col), Dir: DirDesc} }

// columnArg converts a column-context argument: Go strings are column
// names, expressions pass through, everything else becomes a Bad node.
func columnArg(v any) expr.Expr {
	switch c := v.(type) {
	case string:
		return expr.Col(c)
	case expr.Expr:
		return c
	default:
		return expr.Bad{Err: expr.Errorf(expr.ErrCodeInvalidOperand, "expected a column name or expression, got %T", v)}
	}
}
