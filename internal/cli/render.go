package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kustoq/internal/catalog"
	"github.com/roach88/kustoq/internal/querydef"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Name string // render only this definition
	Save string // catalog database path
}

// RenderedQuery is one rendered definition.
type RenderedQuery struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	KQL         string `json:"kql"`
	CatalogID   string `json:"catalog_id,omitempty"`
	Version     int64  `json:"version,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file-or-dir>",
		Short: "Render query definitions to KQL",
		Long: `Render YAML or CUE query definitions to KQL text.

With a directory, every .yaml/.yml file and the directory's CUE package are
loaded. Use --name to render a single definition and --save to store the
rendered text in a catalog database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "render only the named definition")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save rendered queries to this catalog database")

	return cmd
}

func runRender(ctx context.Context, opts *RenderOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadDefinitions(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, MapErrorToCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d definition(s) from %d file(s) in %s", len(loaded.Definitions), loaded.FileCount, path)

	defs := loaded.Definitions
	if opts.Name != "" {
		d, ok := loaded.Find(opts.Name)
		if !ok {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no definition named %q in %s", opts.Name, path), nil)
		}
		defs = []LoadedDefinition{d}
	}

	rendered := make([]RenderedQuery, 0, len(defs))
	for _, d := range defs {
		formatter.VerboseLog("Rendering %s (%s)", d.Name, d.Source)
		text, err := renderDefinition(d.Definition)
		if err != nil {
			return formatter.Fail(ExitCommandError, MapErrorToCode(err), fmt.Sprintf("%s: %v", d.Name, err), nil)
		}
		rendered = append(rendered, RenderedQuery{
			Name:        d.Name,
			Description: d.Description,
			Source:      d.Source,
			KQL:         text,
		})
	}

	if opts.Save != "" {
		if err := saveRendered(ctx, opts.Save, rendered, formatter); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
		}
	}

	return outputRenderSuccess(formatter, rendered)
}

func renderDefinition(d querydef.Definition) (string, error) {
	q, err := querydef.Compile(d)
	if err != nil {
		return "", err
	}
	return q.KQL()
}

func saveRendered(ctx context.Context, dbPath string, rendered []RenderedQuery, formatter *OutputFormatter) error {
	c, err := catalog.Open(dbPath)
	if err != nil {
		return err
	}
	defer c.Close()

	for i := range rendered {
		r := &rendered[i]
		e, err := c.Save(ctx, r.Name, r.Description, r.KQL)
		if err != nil {
			return err
		}
		r.CatalogID = e.ID
		r.Version = e.Version
		formatter.VerboseLog("Saved %s as version %d (%s)", e.Name, e.Version, e.ID)
	}
	return nil
}

// outputRenderSuccess prints the rendered queries. A single query is
// printed bare so the output can be piped; several are separated by a blank
// line and headed by a KQL comment naming each.
func outputRenderSuccess(formatter *OutputFormatter, rendered []RenderedQuery) error {
	if formatter.JSON() {
		return formatter.Success(rendered)
	}

	if len(rendered) == 1 {
		return formatter.Success(rendered[0].KQL)
	}

	blocks := make([]string, len(rendered))
	for i, r := range rendered {
		blocks[i] = "// " + r.Name + "\n" + r.KQL
	}
	return formatter.Success(strings.Join(blocks, "\n\n"))
}
