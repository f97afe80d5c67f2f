package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kustoq/internal/query"
	"github.com/roach88/kustoq/internal/querydef"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Queries []QueryValidation `json:"queries"`
}

// QueryValidation is the outcome for one definition.
type QueryValidation struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Code     string   `json:"code,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (q QueryValidation) failed() bool { return q.Error != "" }

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file-or-dir>",
		Short: "Check query definitions without printing KQL",
		Long: `Compile every query definition and lint the resulting pipeline.

A definition that does not compile fails validation. Lint findings (a limit
without an order by, an ordering thrown away by summarize) are reported as
warnings and only fail validation with --strict.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat lint warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadDefinitions(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, MapErrorToCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Found %d definition(s) in %d file(s) under %s", len(loaded.Definitions), loaded.FileCount, path)

	result := ValidationResult{Valid: true, Queries: make([]QueryValidation, 0, len(loaded.Definitions))}
	warnings := 0
	for _, d := range loaded.Definitions {
		formatter.VerboseLog("Validating %s", d.Name)
		qv := validateDefinition(d)
		if qv.failed() {
			result.Valid = false
		}
		warnings += len(qv.Warnings)
		result.Queries = append(result.Queries, qv)
	}
	if opts.Strict && warnings > 0 {
		result.Valid = false
	}

	if err := outputValidationResult(formatter, result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %s", path))
	}
	return nil
}

func validateDefinition(d LoadedDefinition) QueryValidation {
	qv := QueryValidation{Name: d.Name, Source: d.Source}

	q, err := querydef.Compile(d.Definition)
	if err == nil {
		_, err = q.KQL()
	}
	if err != nil {
		qv.Code = MapErrorToCode(err)
		qv.Error = err.Error()
		return qv
	}

	qv.Warnings = query.Validate(q).Warnings
	return qv
}

// outputValidationResult writes the per-query outcomes.
func outputValidationResult(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			response.Error = firstFailure(result)
		}
		return formatter.respond(response)
	}

	for _, q := range result.Queries {
		if q.failed() {
			fmt.Fprintf(formatter.Out, "✗ %s (%s)\n", q.Name, q.Source)
			fmt.Fprintf(formatter.Out, "  %s: %s\n", q.Code, q.Error)
			continue
		}
		fmt.Fprintf(formatter.Out, "✓ %s\n", q.Name)
		for _, w := range q.Warnings {
			fmt.Fprintf(formatter.Out, "  warning: %s\n", w)
		}
	}

	fmt.Fprintln(formatter.Out)
	if result.Valid {
		fmt.Fprintf(formatter.Out, "✓ All %d queries valid\n", len(result.Queries))
	} else {
		fmt.Fprintln(formatter.Out, "✗ Validation failed")
	}
	return nil
}

func firstFailure(result ValidationResult) *CLIError {
	for _, q := range result.Queries {
		if q.failed() {
			return &CLIError{Code: q.Code, Message: fmt.Sprintf("%s: %s", q.Name, q.Error)}
		}
	}
	for _, q := range result.Queries {
		if len(q.Warnings) > 0 {
			return &CLIError{Code: ErrCodeLint, Message: fmt.Sprintf("%s: %s", q.Name, q.Warnings[0])}
		}
	}
	return &CLIError{Code: ErrCodeGeneric, Message: "validation failed"}
}
