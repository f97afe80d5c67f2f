package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/kustoq/internal/template"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	TemplateOptions
	Table     string
	Folder    string
	Docstring string
	Replace   bool
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{TemplateOptions: TemplateOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "set <file-or-query>",
		Short: "Wrap a query in a .set-or-append control command",
		Long: `Render a query template and wrap it in a control command that stores the
query's result in a table, creating the table when it does not exist.

The default is .set-or-append; --replace emits .set-or-replace. The template
takes the same parameter flags as the template command.`,
		Example:       `  kustoq set daily.kql --table DailyTotals --folder Reports -p day=2024-01-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "target table (required)")
	cmd.Flags().StringVar(&opts.Folder, "folder", "", "folder for a newly created table")
	cmd.Flags().StringVar(&opts.Docstring, "docstring", "", "docstring for a newly created table")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "replace the table's data instead of appending")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runSet(opts *SetOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	params, err := opts.parse()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadFlag, err.Error(), nil)
	}

	text, err := template.Render(query, params)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTemplate, err.Error(), nil)
	}

	set := template.SetCommand{
		Table:     opts.Table,
		Folder:    opts.Folder,
		Docstring: opts.Docstring,
		Replace:   opts.Replace,
	}
	formatter.VerboseLog("Wrapping query in %s %s", set.Verb(), set.Table)

	out, err := set.Wrap(text)
	if err != nil {
		return formatter.Fail(ExitCommandError, MapErrorToCode(err), err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]string{"command": out})
	}
	return formatter.Success(out)
}
