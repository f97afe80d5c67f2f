package query

import (
	"fmt"
)

// ValidationResult contains the lint findings for a pipeline.
//
// Lint findings are not errors: every TableExpr that was built without an
// error renders, and renders the same text regardless of warnings. They
// point at pipelines that are valid KQL but rarely what the author meant.
type ValidationResult struct {
	// IsClean is true when there are no warnings.
	IsClean bool

	// Warnings lists the findings in pipeline order.
	Warnings []string
}

// Validate lints a pipeline.
//
// Rules:
//  1. limit/take without a preceding order by returns arbitrary rows
//  2. sample right after order by throws the ordering away
//  3. order by before summarize, distinct or join is lost by that stage
//  4. join kind=innerunique silently deduplicates the left side
//
// The right-hand side of every join is linted too, with its findings
// prefixed. A TableExpr carrying a construction error yields one warning
// describing the error.
//
// Validate is a pure function with no side effects.
func Validate(t TableExpr) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validate(t, "")

	return ValidationResult{
		IsClean:  len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(prefix, format string, args ...any) {
	v.warnings = append(v.warnings, prefix+fmt.Sprintf(format, args...))
}

func (v *validator) validate(t TableExpr, prefix string) {
	if t.err != nil {
		v.addWarning(prefix, "query does not build: %v", t.err)
		return
	}

	// Index of the order by stage whose ordering is still in effect, or -1.
	ordered := -1
	for i, s := range t.stages {
		pos := i + 1
		switch st := s.(type) {
		case Order:
			ordered = i
		case Limit:
			if ordered < 0 {
				v.addWarning(prefix, "stage %d: %s %d without a preceding order by returns arbitrary rows", pos, st.Keyword(), st.N)
			}
		case Sample:
			if ordered == i-1 && ordered >= 0 {
				v.addWarning(prefix, "stage %d: sample discards the ordering of stage %d", pos, ordered+1)
			}
			ordered = -1
		case Summarize, Distinct:
			if ordered >= 0 {
				v.addWarning(prefix, "stage %d: %s does not preserve the ordering of stage %d", pos, s.Keyword(), ordered+1)
			}
			ordered = -1
		case Join:
			if ordered >= 0 {
				v.addWarning(prefix, "stage %d: join does not preserve the ordering of stage %d", pos, ordered+1)
			}
			ordered = -1
			if st.Kind == JoinInnerUnique {
				v.addWarning(prefix, "stage %d: join kind=innerunique deduplicates the left side; use kind=inner for a plain inner join", pos)
			}
			v.validate(st.Right, fmt.Sprintf("%sstage %d join: ", prefix, pos))
		case Count:
			ordered = -1
		}
	}
}
