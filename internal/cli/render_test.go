package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stormDamageYAML = `name: storm_damage
description: Total property damage by state and event type.
table: StormEvents
stages:
  - project: [State, EventType, DamageProperty]
  - summarize:
      aggregations:
        - name: sum_damage
          expr: {fn: sum, args: [DamageProperty]}
      by: [State, EventType]
  - order_by: [sum_damage]
  - limit: 20
`

const stormDamageKQL = `StormEvents
| project
	State,
	EventType,
	DamageProperty
| summarize
	sum_damage=sum(DamageProperty)
	by State, EventType
| order by
	sum_damage
| limit 20`

const countsYAML = `name: event_count
table: StormEvents
stages:
  - count: true
---
name: wa_sample
table: StormEvents
stages:
  - where: [{op: "==", args: [State, {lit: WA}]}]
  - take: 5
`

const stormDamageCUE = `package queries

query: storm_damage: {
	description: "Total property damage by state and event type."
	table:       "StormEvents"
	stages: [
		{project: ["State", "EventType", "DamageProperty"]},
		{summarize: {
			aggregations: [{name: "sum_damage", expr: {fn: "sum", args: ["DamageProperty"]}}]
			by: ["State", "EventType"]
		}},
		{order_by: ["sum_damage"]},
		{limit: 20},
	]
}
`

func TestRender_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "storm.yaml", stormDamageYAML)

	stdout, _, err := execute(t, "render", path)
	require.NoError(t, err)
	assert.Equal(t, stormDamageKQL+"\n", stdout)
}

func TestRender_CUEMatchesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "storm.cue", stormDamageCUE)

	stdout, _, err := execute(t, "render", dir)
	require.NoError(t, err)
	assert.Equal(t, stormDamageKQL+"\n", stdout)
}

func TestRender_MultipleDefinitions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "counts.yaml", countsYAML)

	stdout, _, err := execute(t, "render", path)
	require.NoError(t, err)

	want := "// event_count\nStormEvents\n| count\n\n// wa_sample\nStormEvents\n| where State == 'WA'\n| take 5\n"
	assert.Equal(t, want, stdout)
}

func TestRender_ByName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "counts.yaml", countsYAML)

	stdout, _, err := execute(t, "render", path, "--name", "event_count")
	require.NoError(t, err)
	assert.Equal(t, "StormEvents\n| count\n", stdout)

	stdout, _, err = execute(t, "render", path, "--name", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}

func TestRender_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "storm.yaml", stormDamageYAML)

	stdout, _, err := execute(t, "--format", "json", "render", path)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []RenderedQuery `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "storm_damage", resp.Data[0].Name)
	assert.Equal(t, "Total property damage by state and event type.", resp.Data[0].Description)
	assert.Equal(t, path, resp.Data[0].Source)
	assert.Equal(t, stormDamageKQL, resp.Data[0].KQL)
	assert.Empty(t, resp.Data[0].CatalogID)
}

func TestRender_SaveToCatalog(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "storm.yaml", stormDamageYAML)
	db := filepath.Join(dir, "catalog.db")

	stdout, stderr, err := execute(t, "--verbose", "render", path, "--save", db)
	require.NoError(t, err)
	assert.Equal(t, stormDamageKQL+"\n", stdout)
	assert.Contains(t, stderr, "Saved storm_damage as version 1")

	// Saving the same text again does not add a version.
	_, stderr, err = execute(t, "--verbose", "render", path, "--save", db)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Saved storm_damage as version 1")

	stdout, _, err = execute(t, "catalog", "show", "storm_damage", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, stormDamageKQL+"\n", stdout)
}

func TestRender_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{
			name:     "negative limit",
			file:     "q.yaml",
			content:  "name: q\ntable: T\nstages:\n  - limit: -1\n",
			wantCode: ErrCodeInvalidArgument,
		},
		{
			name:     "unknown join kind",
			file:     "q.yaml",
			content:  "name: q\ntable: T\nstages:\n  - join:\n      kind: sideways\n      with: {name: r, table: R}\n      on: [Id]\n",
			wantCode: ErrCodeUnsupportedJoinKind,
		},
		{
			name:     "empty project",
			file:     "q.yaml",
			content:  "name: q\ntable: T\nstages:\n  - project: []\n",
			wantCode: ErrCodeEmptyProjection,
		},
		{
			name:     "two operators in one stage",
			file:     "q.yaml",
			content:  "name: q\ntable: T\nstages:\n  - limit: 1\n    take: 1\n",
			wantCode: ErrCodeDefinition,
		},
		{
			name:     "missing name",
			file:     "q.yaml",
			content:  "table: T\n",
			wantCode: ErrCodeDefinition,
		},
		{
			name:     "unknown field",
			file:     "q.yaml",
			content:  "name: q\ntable: T\norder: [x]\n",
			wantCode: ErrCodeLoadFailed,
		},
		{
			name:     "unsupported extension",
			file:     "q.json",
			content:  "{}",
			wantCode: ErrCodeNoFiles,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tc.file, tc.content)

			stdout, _, err := execute(t, "render", path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+tc.wantCode+"]")
		})
	}
}

func TestRender_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: q\ntable: A\n")
	writeFile(t, dir, "b.yaml", "name: q\ntable: B\n")

	stdout, _, err := execute(t, "render", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "Error [E102]")
}

func TestRender_NoFiles(t *testing.T) {
	_, _, err := execute(t, "render", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")

	_, _, err = execute(t, "render", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005")
}
