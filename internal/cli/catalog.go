package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/kustoq/internal/catalog"
)

// CatalogOptions holds flags for the catalog commands.
type CatalogOptions struct {
	*RootOptions
	DB      string
	Version int64
}

// CatalogEntry is the JSON form of a saved query.
type CatalogEntry struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Name        string    `json:"name"`
	Version     int64     `json:"version"`
	Description string    `json:"description,omitempty"`
	KQL         string    `json:"kql"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCatalogEntry(e catalog.Entry) CatalogEntry {
	return CatalogEntry{
		ID:          e.ID,
		Seq:         e.Seq,
		Name:        e.Name,
		Version:     e.Version,
		Description: e.Description,
		KQL:         e.KQL,
		ContentHash: e.ContentHash,
		CreatedAt:   e.CreatedAt,
	}
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect saved queries",
		Long: `Inspect the queries saved with "kustoq render --save".

Every distinct text saved under a name is kept as a numbered version.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "catalog database path (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List the latest version of every saved query",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(cmd.Context(), opts, cmd)
		},
	})

	show := &cobra.Command{
		Use:           "show <name>",
		Short:         "Print a saved query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(cmd.Context(), opts, args[0], cmd)
		},
	}
	show.Flags().Int64Var(&opts.Version, "version", 0, "version to print (default latest)")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:           "history <name>",
		Short:         "List every saved version of a query, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogHistory(cmd.Context(), opts, args[0], cmd)
		},
	})

	return cmd
}

// withCatalog opens the catalog for the duration of fn.
func withCatalog(opts *CatalogOptions, formatter *OutputFormatter, fn func(*catalog.Catalog) error) error {
	formatter.VerboseLog("Opening catalog %s", opts.DB)
	c, err := catalog.Open(opts.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
	}
	defer c.Close()
	return fn(c)
}

func runCatalogList(ctx context.Context, opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	return withCatalog(opts, formatter, func(c *catalog.Catalog) error {
		entries, err := c.List(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
		}
		return outputEntries(formatter, entries, "No saved queries")
	})
}

func runCatalogShow(ctx context.Context, opts *CatalogOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	return withCatalog(opts, formatter, func(c *catalog.Catalog) error {
		var (
			e   catalog.Entry
			err error
		)
		if opts.Version > 0 {
			e, err = c.Version(ctx, name, opts.Version)
		} else {
			e, err = c.Latest(ctx, name)
		}
		if errors.Is(err, catalog.ErrNotFound) {
			msg := fmt.Sprintf("no saved query named %q", name)
			if opts.Version > 0 {
				msg = fmt.Sprintf("query %q has no version %d", name, opts.Version)
			}
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, msg, nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
		}

		if formatter.JSON() {
			return formatter.Success(toCatalogEntry(e))
		}
		formatter.VerboseLog("%s version %d (%s)", e.Name, e.Version, e.ID)
		return formatter.Success(e.KQL)
	})
}

func runCatalogHistory(ctx context.Context, opts *CatalogOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	return withCatalog(opts, formatter, func(c *catalog.Catalog) error {
		entries, err := c.History(ctx, name)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
		}
		if len(entries) == 0 {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no saved query named %q", name), nil)
		}
		return outputEntries(formatter, entries, "")
	})
}

// outputEntries prints one line per entry in text mode.
func outputEntries(formatter *OutputFormatter, entries []catalog.Entry, empty string) error {
	if formatter.JSON() {
		out := make([]CatalogEntry, len(entries))
		for i, e := range entries {
			out[i] = toCatalogEntry(e)
		}
		return formatter.Success(out)
	}

	if len(entries) == 0 {
		return formatter.Success(empty)
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s\tv%d\t%s\t%s", e.Name, e.Version, e.CreatedAt.Format(time.RFC3339), e.ContentHash[:12])
	}
	return formatter.Success(strings.Join(lines, "\n"))
}
