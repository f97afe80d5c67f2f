package querydef

import (
	"fmt"

	"github.com/roach88/kustoq/internal/expr"
	"github.com/roach88/kustoq/internal/query"
)

// Definition is a named query document.
type Definition struct {
	Name        string     `yaml:"name" json:"name,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Cluster     string     `yaml:"cluster,omitempty" json:"cluster,omitempty"`
	Database    string     `yaml:"database,omitempty" json:"database,omitempty"`
	Table       string     `yaml:"table" json:"table"`
	Stages      []StageDef `yaml:"stages,omitempty" json:"stages,omitempty"`
}

// StageDef is one pipeline stage. Exactly one field must be set.
type StageDef struct {
	Project   []any         `yaml:"project,omitempty" json:"project,omitempty"`
	Where     []any         `yaml:"where,omitempty" json:"where,omitempty"`
	Summarize *SummarizeDef `yaml:"summarize,omitempty" json:"summarize,omitempty"`
	Extend    []BindingDef  `yaml:"extend,omitempty" json:"extend,omitempty"`
	Join      *JoinDef      `yaml:"join,omitempty" json:"join,omitempty"`
	OrderBy   []any         `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Limit     *int          `yaml:"limit,omitempty" json:"limit,omitempty"`
	Take      *int          `yaml:"take,omitempty" json:"take,omitempty"`
	Sample    *int          `yaml:"sample,omitempty" json:"sample,omitempty"`
	Distinct  *[]any        `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	Count     bool          `yaml:"count,omitempty" json:"count,omitempty"`
	Evaluate  *EvaluateDef  `yaml:"evaluate,omitempty" json:"evaluate,omitempty"`
}

// SummarizeDef holds the aggregations and grouping of a summarize stage.
type SummarizeDef struct {
	Aggregations []BindingDef `yaml:"aggregations,omitempty" json:"aggregations,omitempty"`
	By           []any        `yaml:"by,omitempty" json:"by,omitempty"`
}

// BindingDef binds an expression document to a column name.
type BindingDef struct {
	Name string `yaml:"name" json:"name"`
	Expr any    `yaml:"expr" json:"expr"`
}

// JoinDef joins with another definition. The nested definition needs no
// name.
type JoinDef struct {
	Kind string     `yaml:"kind" json:"kind"`
	With Definition `yaml:"with" json:"with"`
	On   []any      `yaml:"on" json:"on"`
}

// EvaluateDef invokes a plugin.
type EvaluateDef struct {
	Plugin string `yaml:"plugin" json:"plugin"`
	Args   []any  `yaml:"args,omitempty" json:"args,omitempty"`
}

// operators returns the names of the fields set on s.
func (s StageDef) operators() []string {
	var ops []string
	add := func(set bool, name string) {
		if set {
			ops = append(ops, name)
		}
	}
	add(s.Project != nil, "project")
	add(s.Where != nil, "where")
	add(s.Summarize != nil, "summarize")
	add(s.Extend != nil, "extend")
	add(s.Join != nil, "join")
	add(s.OrderBy != nil, "order_by")
	add(s.Limit != nil, "limit")
	add(s.Take != nil, "take")
	add(s.Sample != nil, "sample")
	add(s.Distinct != nil, "distinct")
	add(s.Count, "count")
	add(s.Evaluate != nil, "evaluate")
	return ops
}

// Compile builds the pipeline a definition describes. Errors from the
// builder keep their expr.ErrorCode and are wrapped with the stage they
// came from.
func Compile(def Definition) (query.TableExpr, error) {
	return compile(def, "")
}

func compile(def Definition, prefix string) (query.TableExpr, error) {
	t := query.From(query.TableRef{Name: def.Table, Database: def.Database, Cluster: def.Cluster})
	if err := t.Err(); err != nil {
		return query.TableExpr{}, fmt.Errorf("%stable: %w", prefix, err)
	}

	for i, s := range def.Stages {
		field := fmt.Sprintf("%sstages[%d]", prefix, i)

		ops := s.operators()
		switch len(ops) {
		case 0:
			return query.TableExpr{}, errorf(field, "stage has no operator")
		case 1:
		default:
			return query.TableExpr{}, errorf(field, "stage has more than one operator: %v", ops)
		}

		next, err := applyStage(t, s, field)
		if err != nil {
			return query.TableExpr{}, err
		}
		if err := next.Err(); err != nil {
			return query.TableExpr{}, fmt.Errorf("%s (%s): %w", field, ops[0], err)
		}
		t = next
	}
	return t, nil
}

func applyStage(t query.TableExpr, s StageDef, field string) (query.TableExpr, error) {
	switch {
	case s.Project != nil:
		cols, err := exprArgs(s.Project, field+".project")
		if err != nil {
			return t, err
		}
		return t.Project(cols...), nil

	case s.Where != nil:
		preds, err := exprArgs(s.Where, field+".where")
		if err != nil {
			return t, err
		}
		return t.Where(preds...), nil

	case s.Summarize != nil:
		aggs, err := bindings(s.Summarize.Aggregations, field+".summarize.aggregations")
		if err != nil {
			return t, err
		}
		by, err := exprArgs(s.Summarize.By, field+".summarize.by")
		if err != nil {
			return t, err
		}
		return t.Summarize(aggs, by...), nil

	case s.Extend != nil:
		assigns, err := bindings(s.Extend, field+".extend")
		if err != nil {
			return t, err
		}
		return t.Extend(assigns...), nil

	case s.Join != nil:
		kind, err := query.ParseJoinKind(s.Join.Kind)
		if err != nil {
			return t, fmt.Errorf("%s.join.kind: %w", field, err)
		}
		right, err := compile(s.Join.With, field+".join.with.")
		if err != nil {
			return t, err
		}
		on, err := exprArgs(s.Join.On, field+".join.on")
		if err != nil {
			return t, err
		}
		return t.Join(right, kind, on...), nil

	case s.OrderBy != nil:
		keys := make([]any, len(s.OrderBy))
		for i, doc := range s.OrderBy {
			k, err := sortKey(doc, fmt.Sprintf("%s.order_by[%d]", field, i))
			if err != nil {
				return t, err
			}
			keys[i] = k
		}
		return t.OrderBy(keys...), nil

	case s.Limit != nil:
		return t.Limit(*s.Limit), nil

	case s.Take != nil:
		return t.Take(*s.Take), nil

	case s.Sample != nil:
		return t.Sample(*s.Sample), nil

	case s.Distinct != nil:
		cols, err := exprArgs(*s.Distinct, field+".distinct")
		if err != nil {
			return t, err
		}
		return t.Distinct(cols...), nil

	case s.Count:
		return t.Count(), nil

	case s.Evaluate != nil:
		args, err := exprArgs(s.Evaluate.Args, field+".evaluate.args")
		if err != nil {
			return t, err
		}
		return t.Evaluate(s.Evaluate.Plugin, args...), nil
	}
	return t, errorf(field, "stage has no operator")
}

func exprArgs(docs []any, field string) ([]any, error) {
	out := make([]any, len(docs))
	for i, doc := range docs {
		e, err := exprAt(doc, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func bindings(defs []BindingDef, field string) ([]expr.Alias, error) {
	out := make([]expr.Alias, len(defs))
	for i, b := range defs {
		e, err := exprAt(b.Expr, fmt.Sprintf("%s[%d].expr", field, i))
		if err != nil {
			return nil, err
		}
		out[i] = expr.As(b.Name, e)
	}
	return out, nil
}

// sortKey converts an order_by entry: an expression document, optionally
// carrying a "dir" key of asc or desc.
func sortKey(doc any, field string) (any, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return exprAt(doc, field)
	}
	dir, hasDir := m["dir"]
	if !hasDir {
		return exprAt(doc, field)
	}

	rest := make(map[string]any, len(m)-1)
	for k, v := range m {
		if k != "dir" {
			rest[k] = v
		}
	}
	e, err := exprAt(rest, field)
	if err != nil {
		return nil, err
	}

	switch dir {
	case "asc":
		return query.Asc(e), nil
	case "desc":
		return query.Desc(e), nil
	default:
		return nil, errorf(field+".dir", "must be asc or desc, got %v", dir)
	}
}
