package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/daoism/internal/config"
	"github.com/roach88/daoism/internal/dao"
	"github.com/roach88/daoism/internal/harness"
	"github.com/roach88/daoism/internal/logger"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/store"
)

// RootOptions holds global flags for all commands. Database and catalog
// flags default to the DAOISM_* environment.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Driver  string
	DSN     string
	Catalog string

	Logger logger.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the daoism CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Logger: logger.NewTestLogger()}

	cmd := &cobra.Command{
		Use:           "daoism",
		Short:         "daoism - typed data access over SQL",
		Long:          "Validate entity catalogs, explain and test predicate scenarios, and run catalog queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|sqlite|postgres|pgx) [DAOISM_DB_DRIVER]")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database path or connection string [DAOISM_DB_DSN]")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog CUE file or directory [DAOISM_CATALOG]")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))

	return cmd
}

// resolve checks the format, fills unset flags from the environment, and
// builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Init()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Database.Driver = o.Driver
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = o.DSN
	}
	if flags.Changed("catalog") {
		cfg.Catalog = o.Catalog
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Driver, o.DSN, o.Catalog = cfg.Database.Driver, cfg.Database.DSN, cfg.Catalog

	level := cfg.Logging.Level
	if o.Verbose {
		level = logger.LogLevelDebug
	}
	o.Logger = logger.NewWithWriter(level, cfg.Logging.Format, cmd.ErrOrStderr())
	return nil
}

// session is an open database with the catalog loaded.
type session struct {
	store    *store.Store
	catalog  *mapping.Catalog
	provider *dao.Provider
}

func (s *session) Close() error { return s.store.Close() }

// open connects to the configured database and loads the catalog.
func (o *RootOptions) open(ctx context.Context) (*session, error) {
	cat, err := harness.LoadCatalog(o.Catalog)
	if err != nil {
		return nil, err
	}

	st, err := store.Connect(ctx, o.Driver, o.DSN)
	if err != nil {
		return nil, err
	}

	p, err := dao.NewProvider(st, cat, dao.WithLogger(o.Logger))
	if err != nil {
		st.Close()
		return nil, err
	}

	o.Logger.Debug().Str("driver", o.Driver).Str("catalog", o.Catalog).Msg("connected")
	return &session{store: st, catalog: cat, provider: p}, nil
}
