package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/daoism/internal/harness"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/querysql"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Apply bool
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema [entity...]",
		Short: "Print or apply CREATE TABLE statements for catalog entities",
		Long: `Print a CREATE TABLE IF NOT EXISTS statement for each catalog entity
(or only the named ones) in the dialect of --driver. With --apply the
statements are executed against --dsn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "execute the statements")

	return cmd
}

func runSchema(opts *SchemaOptions, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dialect, err := querysql.DialectFor(opts.Driver)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgs, err)
	}

	cat, err := harness.LoadCatalog(opts.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err)
	}

	entities, err := selectEntities(cat, names)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgs, err)
	}

	stmts := make([]string, len(entities))
	for i, e := range entities {
		stmts[i] = querysql.CreateTable(e, dialect)
	}

	if opts.Apply {
		sess, err := opts.open(cmd.Context())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
		}
		defer sess.Close()

		if err := sess.store.Exec(cmd.Context(), stmts...); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeDatabase, err)
		}
		formatter.VerboseLog("applied %d statement(s) to %s", len(stmts), opts.DSN)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"dialect":    dialect,
			"applied":    opts.Apply,
			"statements": stmts,
		})
	}
	for _, s := range stmts {
		fmt.Fprintf(formatter.Writer, "%s;\n\n", s)
	}
	return nil
}

func selectEntities(cat *mapping.Catalog, names []string) ([]*mapping.Entity, error) {
	if len(names) == 0 {
		return cat.Entities(), nil
	}
	out := make([]*mapping.Entity, 0, len(names))
	for _, n := range names {
		e, ok := cat.Entity(n)
		if !ok {
			return nil, fmt.Errorf("unknown entity %q", n)
		}
		out = append(out, e)
	}
	return out, nil
}
