package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure (broken definitions, lint findings with --strict)
	ExitCommandError = 2 // Command error (bad paths, unrenderable input, catalog errors)
)

// ExitError is returned by a command whose failure has already been
// reported to the user. main only maps it to the process exit code.
type ExitError struct {
	Code    int    // process exit code
	ErrCode string // E0xx code, empty when there is none
	Message string
}

func (e *ExitError) Error() string {
	if e.ErrCode == "" {
		return e.Message
	}
	return e.ErrCode + ": " + e.Message
}

// NewExitError creates an ExitError without an error code.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode returns the process exit code for err: 0 for nil, the
// ExitError's code, or ExitFailure for anything else.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every --format json command writes.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"` // "E001", "E002", etc.
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format  string    // "text" | "json"
	Out     io.Writer // results and errors
	Log     io.Writer // verbose diagnostics; nil means Out
	Verbose bool
}

// JSON reports whether results are written as JSON envelopes.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Success writes a result. Text mode prints data on its own line.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.respond(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Out, data)
	return err
}

// Error writes an error report. Details are shown in text mode only with
// --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.respond(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Out, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Out, "Details: %v\n", details)
	}
	return nil
}

// Fail reports an error and returns the ExitError the command should
// return.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details any) error {
	_ = f.Error(code, message, details)
	return &ExitError{Code: exitCode, ErrCode: code, Message: message}
}

// VerboseLog writes a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.Log
	if w == nil {
		w = f.Out
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) respond(resp CLIResponse) error {
	return json.NewEncoder(f.Out).Encode(resp)
}
