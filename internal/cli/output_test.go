package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Out:    buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Out:    buf,
	}

	err := formatter.Error("E006", "definition does not compile", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E006", resp.Error.Code)
	assert.Equal(t, "definition does not compile", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Out:    buf,
	}

	details := map[string]string{"file": "queries.cue", "line": "42"}
	err := formatter.Error("E002", "expected '}'", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Out:    buf,
	}

	err := formatter.Success("StormEvents\n| count")
	require.NoError(t, err)
	assert.Equal(t, "StormEvents\n| count\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Out:     buf,
		Verbose: false,
	}

	err := formatter.Error("E006", "definition does not compile", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E006]")
	assert.Contains(t, buf.String(), "definition does not compile")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Out:     buf,
		Verbose: true,
	}

	details := map[string]string{"file": "queries.yaml"}
	err := formatter.Error("E101", "unknown field", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E101]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Out:     buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Rendering %s", "storm_damage")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Rendering storm_damage")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesLogWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Out: out, Log: errOut, Verbose: true}

	formatter.VerboseLog("Loaded %d definition(s)", 3)

	assert.Empty(t, out.String())
	assert.Equal(t, "Loaded 3 definition(s)\n", errOut.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Out: buf}

	err := formatter.Fail(ExitCommandError, ErrCodeNotFound, "path not found: x", nil)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E005: path not found: x", err.Error())
	assert.Equal(t, "Error [E005]: path not found: x\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitFailure, "inner"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitError_Error(t *testing.T) {
	assert.Equal(t, "validation failed", NewExitError(ExitFailure, "validation failed").Error())

	err := &ExitError{Code: ExitCommandError, ErrCode: ErrCodeCatalog, Message: "database is locked"}
	assert.Equal(t, "E008: database is locked", err.Error())
}

func TestOutputFormatter_JSONHelper(t *testing.T) {
	assert.True(t, (&OutputFormatter{Format: "json"}).JSON())
	assert.False(t, (&OutputFormatter{Format: "text"}).JSON())
}

func TestOutputFormatter_VerboseLogFallsBackToOut(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Out: buf, Verbose: true}

	formatter.VerboseLog("Opening catalog %s", "q.db")
	assert.Equal(t, "Opening catalog q.db\n", buf.String())
}
