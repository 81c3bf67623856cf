package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/daoism/internal/harness"
	"github.com/roach88/daoism/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Dialects []string
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <scenario>",
		Short: "Show the SQL each scenario case renders to",
		Long: `Render the SELECT and COUNT statements of every case in a scenario
without running them.

Examples:
  daoism explain scenarios/vserver.yaml
  daoism explain scenarios/vserver.yaml --dialect postgres --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Dialects, "dialect", []string{"sqlite", "postgres"}, "SQL dialects to render (sqlite|postgres)")

	return cmd
}

func runExplain(opts *ExplainOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dialects := make([]querysql.Dialect, 0, len(opts.Dialects))
	for _, d := range opts.Dialects {
		dialect, err := querysql.DialectFor(d)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeArgs, err)
		}
		dialects = append(dialects, dialect)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, err)
	}

	xs, err := harness.Explain(scenario, dialects...)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeScenario, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"scenario": scenario.Name,
			"entity":   scenario.Entity,
			"cases":    xs,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Scenario: %s (%s)\n", scenario.Name, scenario.Entity)
	last := ""
	for _, x := range xs {
		if x.Case != last {
			fmt.Fprintf(w, "\n%s\n", x.Case)
			last = x.Case
		}
		fmt.Fprintf(w, "  [%s] %s\n", x.Dialect, x.SQL)
		fmt.Fprintf(w, "  [%s] %s\n", x.Dialect, x.CountSQL)
		if len(x.Args) > 0 {
			fmt.Fprintf(w, "  [%s] args: %v\n", x.Dialect, x.Args)
		}
	}
	return nil
}
