package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/daoism/internal/harness"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/spex"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Where string
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <entity>",
		Short: "Count the rows of an entity",
		Long: `Count the rows of a catalog entity, optionally filtered by a predicate
written in the scenario format.

Examples:
  daoism count VServer
  daoism count VServer --where '{op: gt, attr: numberOfNics, other: numberOfPorts}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "predicate tree in YAML")

	return cmd
}

func runCount(opts *CountOptions, entity string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := opts.open(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	defer sess.Close()

	e, ok := sess.catalog.Entity(entity)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeArgs, fmt.Errorf("unknown entity %q", entity))
	}

	var where spex.Node
	if opts.Where != "" {
		where, err = parseWhere(opts.Where, e)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeArgs, err)
		}
	}

	n, err := sess.provider.Count(cmd.Context(), e.Name, where)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatabase, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"entity": e.Name, "count": n})
	}
	fmt.Fprintln(formatter.Writer, n)
	return nil
}

// parseWhere decodes a YAML predicate tree and builds it over e.
func parseWhere(src string, e *mapping.Entity) (spex.Node, error) {
	var p harness.Predicate
	dec := yaml.NewDecoder(strings.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid --where: %w", err)
	}
	n, err := p.Node(e)
	if err != nil {
		return nil, fmt.Errorf("invalid --where: %w", err)
	}
	return n, nil
}
