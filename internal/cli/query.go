package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/daoism/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Params []string
	Entity string
	Native bool
	Limit  int
	Offset int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <named-query | text>",
		Short: "Run a catalog query and print the rows",
		Long: `Run a named query from the catalog. With --entity the argument is
literal query text over that entity, using {attribute} references and
:KEY placeholders. With --native it is SQL passed to the database as is,
binding --param values in order.

Examples:
  daoism query vserver-by-host --param HOST=rack-1
  daoism query "WHERE {numberOfNics} > :N" --entity VServer --param N=4
  daoism query "SELECT count(*) AS n FROM vserver" --native`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "query parameter KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "run the argument as literal query text over this entity")
	cmd.Flags().BoolVar(&opts.Native, "native", false, "run the argument as native SQL")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of rows to skip")
	cmd.MarkFlagsMutuallyExclusive("entity", "native")

	return cmd
}

func runQuery(opts *QueryOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	q, err := buildQuery(opts, text)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgs, err)
	}
	if cmd.Flags().Changed("limit") {
		q = q.SetMaxResults(opts.Limit)
	}
	if cmd.Flags().Changed("offset") {
		q = q.SetFirstResult(opts.Offset)
	}

	sess, err := opts.open(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	defer sess.Close()

	var rows []map[string]any
	if err := sess.provider.RunQuery(cmd.Context(), &rows, q, opts.Entity); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatabase, err)
	}
	formatter.VerboseLog("%s returned %d row(s)", q, len(rows))

	if formatter.Format == "json" {
		if rows == nil {
			rows = []map[string]any{}
		}
		return formatter.Success(rows)
	}
	return writeRows(formatter.Writer, resultColumns(sess, q, opts.Entity), rows)
}

func buildQuery(opts *QueryOptions, text string) (query.Query, error) {
	var q query.Query
	switch {
	case opts.Native:
		q = query.Native(text)
	case opts.Entity != "":
		q = query.Literal(text)
	default:
		q = query.Named(text)
	}

	for _, p := range opts.Params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return q, fmt.Errorf("invalid --param %q: want KEY=VALUE", p)
		}
		q = q.Set(key).To(value)
	}
	return q, nil
}

// resultColumns returns the entity's columns for typed queries so the
// table follows catalog order.
func resultColumns(sess *session, q query.Query, entity string) []string {
	switch q.Type() {
	case query.TypeNamed:
		if nq, ok := sess.catalog.Query(q.Text()); ok {
			entity = nq.Entity
		}
	case query.TypeNative:
		return nil
	}
	if e, ok := sess.catalog.Entity(entity); ok {
		return e.Columns()
	}
	return nil
}
