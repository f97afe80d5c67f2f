package querydef

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kustoq/internal/expr"
	"github.com/roach88/kustoq/internal/fn"
	"github.com/roach88/kustoq/internal/query"
)

const stormDamageKQL = "StormEvents\n" +
	"| project\n\tState,\n\tEventType,\n\tDamageProperty\n" +
	"| summarize\n\tsum_damage=sum(DamageProperty)\n\tby State, EventType\n" +
	"| order by\n\tsum_damage\n" +
	"| limit 20"

func compileOne(t *testing.T, defs []Definition, name string) string {
	t.Helper()
	for _, d := range defs {
		if d.Name != name {
			continue
		}
		q, err := Compile(d)
		require.NoError(t, err)
		text, err := q.KQL()
		require.NoError(t, err)
		return text
	}
	t.Fatalf("definition %q not found", name)
	return ""
}

func TestLoadYAML_StormDamage(t *testing.T) {
	defs, err := LoadYAML(filepath.Join("testdata", "storm_damage.yaml"))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	assert.Equal(t, "storm_damage", defs[0].Name)
	assert.Equal(t, "Total property damage by state and event type.", defs[0].Description)
	assert.Equal(t, stormDamageKQL, compileOne(t, defs, "storm_damage"))
}

func TestLoadCUE_MatchesYAML(t *testing.T) {
	yamlDefs, err := LoadYAML(filepath.Join("testdata", "storm_damage.yaml"))
	require.NoError(t, err)
	cueDefs, err := LoadCUE(filepath.Join("testdata", "cue"))
	require.NoError(t, err)
	require.Len(t, cueDefs, 2)

	assert.Equal(t,
		compileOne(t, yamlDefs, "storm_damage"),
		compileOne(t, cueDefs, "storm_damage"),
	)
}

func TestLoadCUE_Join(t *testing.T) {
	defs, err := LoadCUE(filepath.Join("testdata", "cue"))
	require.NoError(t, err)

	want := query.Cluster("help").Database("Samples").Table("StormEvents").
		Join(
			query.Database("Samples").Table("PopulationData").Where(expr.Col("Population").Gt(1000000)),
			query.JoinLeftOuter,
			"State",
		).
		Extend(expr.As("DamagePerCapita", expr.Div(expr.Col("DamageProperty"), expr.Col("Population")))).
		OrderBy(query.Desc("DamagePerCapita")).
		Take(5)

	assert.Equal(t, want.String(), compileOne(t, defs, "damage_per_capita"))
}

func TestParseYAML_MultipleDocuments(t *testing.T) {
	defs, err := LoadYAML(filepath.Join("testdata", "queries.yaml"))
	require.NoError(t, err)
	require.Len(t, defs, 3)

	testCases := []struct {
		name string
		want query.TableExpr
	}{
		{
			name: "wa_damage",
			want: query.Table("StormEvents").
				Where(expr.Col("State").Eq("WA"), expr.Col("DamageProperty").Gt(100000)).
				Project("State", "EventType", "DamageProperty").
				Limit(10),
		},
		{
			name: "floods",
			want: query.Table("Storm Events").
				Where(
					expr.Or(expr.Col("State").Eq("WA"), expr.Col("State").Eq("OR")),
					expr.Col("EventType").Has("Flood"),
				).
				Where(expr.Col("Deaths").Gt(0)).
				Distinct("State", "EventType").
				Sample(100).
				Evaluate("bag_unpack", "Details"),
		},
		{
			name: "hourly_p95",
			want: query.Table("Requests").
				Summarize(
					[]expr.Alias{fn.Count().As("n"), fn.Percentile("Duration", 95).As("p95")},
					expr.As("Hour", fn.Bin("Timestamp", fn.Timespan("1h"))),
					"Service",
				),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.want.Err())
			assert.Equal(t, tc.want.String(), compileOne(t, defs, tc.name))
		})
	}
}

func TestParseCUE(t *testing.T) {
	src := []byte(`
query: counts: {
	table: "StormEvents"
	stages: [{count: true}]
}
query: top: {
	name:  "top_states"
	table: "StormEvents"
	stages: [
		{summarize: {aggregations: [{name: "n", expr: {fn: "count"}}], by: ["State"]}},
		{order_by: [{col: "n", dir: "desc"}]},
		{take: 3},
	]
}
`)
	defs, err := ParseCUE(src, "inline.cue")
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "counts", defs[0].Name, "name defaults to the field label")
	assert.Equal(t, "top_states", defs[1].Name)
	assert.Equal(t, "StormEvents\n| count", compileOne(t, defs, "counts"))
	assert.Equal(t, "StormEvents\n| summarize\n\tn=count()\n\tby State\n| order by\n\tn desc\n| take 3",
		compileOne(t, defs, "top_states"))
}

func TestParseCUE_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `query: x: {table: `},
		{name: "no query struct", src: `other: 1`},
		{name: "incomplete value", src: `query: x: {table: string}`},
		{name: "unknown field", src: `query: x: {table: "T", stagez: []}`},
		{name: "missing table", src: `query: x: {description: "d"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCUE([]byte(tc.src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestParseYAML_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "empty", src: ``},
		{name: "unknown field", src: "name: x\ntable: T\norder: [a]\n"},
		{name: "missing name", src: "table: T\n"},
		{name: "missing table", src: "name: x\n"},
		{name: "malformed", src: "name: [x\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		code expr.ErrorCode
	}{
		{
			name: "empty project keeps builder code",
			src:  "name: x\ntable: T\nstages:\n  - project: []\n",
			code: expr.ErrCodeEmptyProjection,
		},
		{
			name: "negative limit",
			src:  "name: x\ntable: T\nstages:\n  - limit: -1\n",
			code: expr.ErrCodeInvalidArgument,
		},
		{
			name: "unknown join kind",
			src:  "name: x\ntable: T\nstages:\n  - join: {kind: sideways, with: {table: U}, on: [Id]}\n",
			code: expr.ErrCodeUnsupportedJoinKind,
		},
		{
			name: "empty summarize",
			src:  "name: x\ntable: T\nstages:\n  - summarize: {}\n",
			code: expr.ErrCodeEmptyAggregation,
		},
		{
			name: "unsupported literal",
			src:  "name: x\ntable: T\nstages:\n  - where: [{op: '==', args: [a, {lit: {k: v}}]}]\n",
			code: expr.ErrCodeUnsupportedLiteralType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defs, err := ParseYAML([]byte(tc.src))
			require.NoError(t, err)
			_, err = Compile(defs[0])
			require.Error(t, err)
			assert.True(t, expr.IsCode(err, tc.code), "error: %v", err)
		})
	}
}

func TestCompile_StageShape(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "no operator", src: "name: x\ntable: T\nstages:\n  - {}\n"},
		{name: "two operators", src: "name: x\ntable: T\nstages:\n  - {count: true, limit: 1}\n"},
		{name: "bad direction", src: "name: x\ntable: T\nstages:\n  - order_by: [{col: a, dir: up}]\n"},
		{name: "unknown operator", src: "name: x\ntable: T\nstages:\n  - where: [{op: '<>', args: [a, b]}]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defs, err := ParseYAML([]byte(tc.src))
			require.NoError(t, err)
			_, err = Compile(defs[0])
			require.Error(t, err)
			var defErr *Error
			assert.ErrorAs(t, err, &defErr)
		})
	}
}
