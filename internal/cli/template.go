package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kustoq/internal/template"
)

// TemplateOptions holds the parameter flags shared by template and set.
type TemplateOptions struct {
	*RootOptions
	Params     []string // name=value
	Lists      []string // name=a,b,c
	Datatables []string // name=key:value,key:value
}

func (o *TemplateOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.Params, "param", "p", nil, "template parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&o.Lists, "list", nil, "list parameter as name=a,b,c, rendered as a dynamic array (repeatable)")
	cmd.Flags().StringArrayVar(&o.Datatables, "datatable", nil, "key/value parameter as name=k1:v1,k2:v2, rendered as a datatable (repeatable)")
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TemplateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "template <file-or-query>",
		Short: "Render a parameterised KQL template",
		Long: `Render a KQL query template with Go template syntax.

The argument is a template file, or the template text itself. Parameters
are referenced as {{ .name }}. Scalar values given with --param are parsed
as YAML scalars, so numbers and booleans keep their type. The sprig function
library is available, along with kqlstring, ident and dynamic.`,
		Example: `  kustoq template query.kql --param n=10 --list states=WA,OR
  kustoq template 'StormEvents | where State == {{ kqlstring .state }}' -p state=WA`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runTemplate(opts *TemplateOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	params, err := opts.parse()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadFlag, err.Error(), nil)
	}
	formatter.VerboseLog("Rendering template with %d parameter(s)", len(params))

	text, err := template.Render(query, params)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTemplate, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]string{"kql": text})
	}
	return formatter.Success(strings.TrimRight(text, "\n"))
}

// parse turns the flag values into template data.
func (o *TemplateOptions) parse() (map[string]any, error) {
	params := make(map[string]any)
	set := func(flag, name string, v any) error {
		if _, dup := params[name]; dup {
			return fmt.Errorf("--%s %s: parameter given twice", flag, name)
		}
		params[name] = v
		return nil
	}

	for _, p := range o.Params {
		name, raw, err := splitParam("param", p)
		if err != nil {
			return nil, err
		}
		if err := set("param", name, scalarValue(raw)); err != nil {
			return nil, err
		}
	}

	for _, l := range o.Lists {
		name, raw, err := splitParam("list", l)
		if err != nil {
			return nil, err
		}
		items := []any{}
		if raw != "" {
			for _, item := range strings.Split(raw, ",") {
				items = append(items, scalarValue(strings.TrimSpace(item)))
			}
		}
		if err := set("list", name, items); err != nil {
			return nil, err
		}
	}

	for _, d := range o.Datatables {
		name, raw, err := splitParam("datatable", d)
		if err != nil {
			return nil, err
		}
		var rows []template.Pair
		if raw != "" {
			for _, pair := range strings.Split(raw, ",") {
				k, v, ok := strings.Cut(pair, ":")
				if !ok {
					return nil, fmt.Errorf("--datatable %s: row %q is not key:value", name, pair)
				}
				rows = append(rows, template.Pair{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
			}
		}
		if err := set("datatable", name, template.Datatable(rows)); err != nil {
			return nil, err
		}
	}

	return params, nil
}

func splitParam(flag, s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("--%s %q: expected name=value", flag, s)
	}
	return name, value, nil
}

// scalarValue decodes s as a YAML scalar so 10 stays a number and true a
// boolean. Everything else is kept as the raw string.
func scalarValue(s string) any {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil || len(node.Content) != 1 {
		return s
	}
	n := node.Content[0]
	if n.Kind != yaml.ScalarNode || n.Style != 0 {
		return s
	}
	switch n.ShortTag() {
	case "!!int", "!!float", "!!bool":
		var v any
		if err := n.Decode(&v); err == nil {
			return v
		}
	}
	return s
}
