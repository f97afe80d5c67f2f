package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kustoq/internal/expr"
	"github.com/roach88/kustoq/internal/fn"
)

func TestScenarios(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		text, err := Table("StormEvents").Count().KQL()
		require.NoError(t, err)
		assert.Equal(t, "StormEvents\n| count", text)
	})

	t.Run("summarize", func(t *testing.T) {
		text, err := Table("StormEvents").
			Project("State", "EventType", "DamageProperty").
			Summarize([]expr.Alias{fn.Sum("DamageProperty").As("sum_damage")}, "State", "EventType").
			Sort("sum_damage").
			Limit(20).
			KQL()
		require.NoError(t, err)
		assert.Equal(t, "StormEvents\n"+
			"| project\n\tState,\n\tEventType,\n\tDamageProperty\n"+
			"| summarize\n\tsum_damage=sum(DamageProperty)\n\tby State, EventType\n"+
			"| order by\n\tsum_damage\n"+
			"| limit 20", text)
	})

	t.Run("filter", func(t *testing.T) {
		text, err := Table("StormEvents").
			Where(expr.Col("State").Eq("WA"), expr.Col("DamageProperty").Gt(100000)).
			Project("State", "EventType", "DamageProperty").
			Limit(10).
			KQL()
		require.NoError(t, err)
		assert.Equal(t, "StormEvents\n"+
			"| where State == 'WA' and DamageProperty > 100000\n"+
			"| project\n\tState,\n\tEventType,\n\tDamageProperty\n"+
			"| limit 10", text)
	})
}

func TestTableExpr_Immutable(t *testing.T) {
	base := Table("T").Where(expr.Col("a").Gt(1))
	before := base.String()

	left := base.Limit(5)
	right := base.Project("a", "b")

	assert.Equal(t, before, base.String(), "receiver must not change")
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, left.Len())
	assert.Equal(t, 2, right.Len())
	assert.Equal(t, before+"\n| limit 5", left.String())
	assert.Equal(t, before+"\n| project\n\ta,\n\tb", right.String())
}

func TestTableExpr_BranchesDoNotShareStages(t *testing.T) {
	// Appending to a value whose slice has spare capacity must not leak
	// into a sibling branch.
	base := Table("T").Count().Count().Count()
	a := base.Limit(1)
	b := base.Take(2)

	assert.Equal(t, "| limit 1", lastLine(a.String()))
	assert.Equal(t, "| take 2", lastLine(b.String()))
}

func TestTableExpr_StagesCopy(t *testing.T) {
	q := Table("T").Count()
	stages := q.Stages()
	require.Len(t, stages, 1)
	stages[0] = Limit{N: 9}

	assert.Equal(t, "T\n| count", q.String())
	assert.Equal(t, TableRef{Name: "T"}, q.Source())
}

func TestTableExpr_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		query TableExpr
		code  expr.ErrorCode
	}{
		{name: "empty table name", query: Table(""), code: expr.ErrCodeInvalidArgument},
		{name: "cluster without database", query: From(TableRef{Name: "T", Cluster: "c"}), code: expr.ErrCodeInvalidArgument},
		{name: "empty project", query: Table("T").Project(), code: expr.ErrCodeEmptyProjection},
		{name: "project expression without name", query: Table("T").Project(expr.Add(expr.Col("a"), 1)), code: expr.ErrCodeInvalidOperand},
		{name: "project bad type", query: Table("T").Project(42), code: expr.ErrCodeInvalidOperand},
		{name: "empty where", query: Table("T").Where(), code: expr.ErrCodeInvalidArgument},
		{name: "where non-boolean", query: Table("T").Where(expr.Add(expr.Col("a"), 1)), code: expr.ErrCodeInvalidOperand},
		{name: "where bad operand", query: Table("T").Where(expr.Col("a").Eq(struct{}{})), code: expr.ErrCodeInvalidOperand},
		{name: "where bad type", query: Table("T").Where(3), code: expr.ErrCodeInvalidOperand},
		{name: "empty summarize", query: Table("T").Summarize(nil), code: expr.ErrCodeEmptyAggregation},
		{
			name:  "duplicate aggregation",
			query: Table("T").Summarize([]expr.Alias{fn.Count().As("n"), fn.Sum("x").As("n")}),
			code:  expr.ErrCodeInvalidArgument,
		},
		{name: "unnamed aggregation", query: Table("T").Summarize([]expr.Alias{fn.Count().As("")}), code: expr.ErrCodeInvalidArgument},
		{name: "empty extend", query: Table("T").Extend(), code: expr.ErrCodeInvalidArgument},
		{name: "unsupported join kind", query: Table("T").Join(Table("U"), JoinKind("sideways"), "Id"), code: expr.ErrCodeUnsupportedJoinKind},
		{name: "empty join kind", query: Table("T").Join(Table("U"), "", "Id"), code: expr.ErrCodeUnsupportedJoinKind},
		{name: "join without keys", query: Table("T").Join(Table("U"), JoinInner), code: expr.ErrCodeInvalidArgument},
		{name: "join on inequality", query: Table("T").Join(Table("U"), JoinInner, expr.Gt(expr.LeftCol("a"), expr.RightCol("b"))), code: expr.ErrCodeInvalidOperand},
		{name: "join with zero table", query: Table("T").Join(TableExpr{}, JoinInner, "Id"), code: expr.ErrCodeInvalidArgument},
		{name: "join with invalid right", query: Table("T").Join(Table("U").Limit(-1), JoinInner, "Id"), code: expr.ErrCodeInvalidArgument},
		{name: "empty order by", query: Table("T").OrderBy(), code: expr.ErrCodeInvalidArgument},
		{name: "order by bad key", query: Table("T").OrderBy(1.5), code: expr.ErrCodeInvalidOperand},
		{name: "negative limit", query: Table("T").Limit(-1), code: expr.ErrCodeInvalidArgument},
		{name: "negative take", query: Table("T").Take(-3), code: expr.ErrCodeInvalidArgument},
		{name: "negative sample", query: Table("T").Sample(-1), code: expr.ErrCodeInvalidArgument},
		{name: "distinct bad column", query: Table("T").Distinct(true), code: expr.ErrCodeInvalidOperand},
		{name: "evaluate empty name", query: Table("T").Evaluate(""), code: expr.ErrCodeInvalidArgument},
		{name: "unknown sort direction", query: Table("T").OrderBy(SortKey{Expr: expr.Col("a"), Dir: Direction(7)}), code: expr.ErrCodeInvalidArgument},
		{name: "project side column", query: Table("T").Project(expr.LeftCol("a")), code: expr.ErrCodeInvalidOperand},
		{name: "project binding over side column", query: Table("T").Project(expr.RightCol("a").As("b")), code: expr.ErrCodeInvalidOperand},
		{name: "where side column", query: Table("T").Where(expr.LeftCol("a").Eq(1)), code: expr.ErrCodeInvalidOperand},
		{name: "summarize side column", query: Table("T").Summarize([]expr.Alias{fn.Sum(expr.LeftCol("x")).As("s")}), code: expr.ErrCodeInvalidOperand},
		{name: "summarize by side column", query: Table("T").Summarize(nil, expr.RightCol("k")), code: expr.ErrCodeInvalidOperand},
		{name: "extend side column", query: Table("T").Extend(expr.Add(expr.LeftCol("a"), 1).As("b")), code: expr.ErrCodeInvalidOperand},
		{name: "order by side column", query: Table("T").OrderBy(Desc(expr.LeftCol("a"))), code: expr.ErrCodeInvalidOperand},
		{name: "distinct side column", query: Table("T").Distinct(expr.RightCol("a")), code: expr.ErrCodeInvalidOperand},
		{name: "evaluate side column", query: Table("T").Evaluate("bag_unpack", expr.LeftCol("a")), code: expr.ErrCodeInvalidOperand},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.query.Err()
			require.Error(t, err)
			assert.Equal(t, tc.code, expr.CodeOf(err), "error: %v", err)

			_, renderErr := tc.query.KQL()
			assert.Equal(t, err, renderErr)
			assert.Equal(t, "", tc.query.String())
		})
	}
}

func TestTableExpr_ErrorIsSticky(t *testing.T) {
	base := Table("T").Where(expr.Col("a").Eq(1))
	bad := base.Limit(-1)
	later := bad.Project("a").Count().Take(3)

	require.Error(t, later.Err())
	assert.Equal(t, bad.Err(), later.Err(), "the first error wins")
	assert.Equal(t, 1, later.Len())

	// The receiver of the failed call is still usable.
	require.NoError(t, base.Err())
	assert.Equal(t, "T\n| where a == 1\n| take 3", base.Take(3).String())
}

func TestTableExpr_LimitZero(t *testing.T) {
	for _, q := range []TableExpr{Table("T").Limit(0), Table("T").Take(0), Table("T").Sample(0)} {
		require.NoError(t, q.Err())
	}
}

func TestTableExpr_SummarizeByBinding(t *testing.T) {
	q := Table("T").Summarize(
		[]expr.Alias{fn.Count().As("n")},
		expr.As("Day", fn.Bin("Timestamp", fn.Timespan("1d"))),
	)
	require.NoError(t, q.Err())

	stages := q.Stages()
	require.Len(t, stages, 1)
	s, ok := stages[0].(Summarize)
	require.True(t, ok)
	require.Len(t, s.By, 1)
	assert.IsType(t, expr.Alias{}, s.By[0])
}

func TestTableExpr_SummarizeCopiesAggregations(t *testing.T) {
	aggs := []expr.Alias{fn.Count().As("n")}
	q := Table("T").Summarize(aggs)
	aggs[0] = fn.Sum("x").As("total")

	assert.Equal(t, "T\n| summarize\n\tn=count()", q.String())
}

func TestTableExpr_WhereNotMerged(t *testing.T) {
	q := Table("T").Where(expr.Col("a").Eq(1)).Where(expr.Col("b").Eq(2))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, "T\n| where a == 1\n| where b == 2", q.String())
}

func TestParseJoinKind(t *testing.T) {
	testCases := []struct {
		in   string
		want JoinKind
	}{
		{in: "inner", want: JoinInner},
		{in: "LeftOuter", want: JoinLeftOuter},
		{in: " innerunique ", want: JoinInnerUnique},
		{in: "anti", want: JoinLeftAnti},
		{in: "leftantisemi", want: JoinLeftAnti},
		{in: "rightantisemi", want: JoinRightAnti},
		{in: "fullouter", want: JoinFullOuter},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseJoinKind(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseJoinKind("outer")
	assert.True(t, expr.IsCode(err, expr.ErrCodeUnsupportedJoinKind))

	for _, k := range JoinKinds {
		assert.True(t, k.Valid(), string(k))
	}
}

func TestSortKey_String(t *testing.T) {
	assert.Equal(t, "a", SortKey{Expr: expr.Col("a")}.String())
	assert.Equal(t, "a asc", Asc("a").String())
	assert.Equal(t, "strlen(a) desc", Desc(fn.StrLen("a")).String())
}

func lastLine(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}

func TestTableExpr_SideColumnsInJoinKeys(t *testing.T) {
	q := Table("T").Join(Table("U"), JoinInner, expr.Eq(expr.LeftCol("Id"), expr.RightCol("UserId")))
	require.NoError(t, q.Err())
	assert.Contains(t, q.String(), "on $left.Id == $right.UserId")
}

func TestTableExpr_SortDirections(t *testing.T) {
	q := Table("T").OrderBy(
		SortKey{Expr: expr.Col("a"), Dir: DirDefault},
		SortKey{Expr: expr.Col("b"), Dir: DirAsc},
		SortKey{Expr: expr.Col("c"), Dir: DirDesc},
	)
	require.NoError(t, q.Err())
	assert.Equal(t, "T\n| order by\n\ta,\n\tb asc,\n\tc desc", q.String())

	assert.False(t, Direction(-1).Valid())
	assert.False(t, Direction(3).Valid())
}
