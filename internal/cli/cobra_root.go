package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/api"
	"tracker/internal/clock"
	"tracker/internal/config"
	"tracker/internal/logging"
)

// Runtime is what a Builder opens for one invocation.
type Runtime struct {
	API    api.BusinessAPI
	Clock  clock.Clock
	Logger *slog.Logger
	Close  func() error
}

// Builder opens the store and services for cfg.
type Builder func(ctx context.Context, cfg *config.Config) (*Runtime, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	loader  *config.Loader
	build   Builder
	config  *config.Config
	runtime *Runtime
	app     *App
}

// NewRootCommand creates the root cobra command with global flags. The
// configuration is loaded and build is called once flags are parsed.
func NewRootCommand(loader *config.Loader, build Builder) *RootCommand {
	root := &RootCommand{
		loader: loader,
		build:  build,
	}

	root.cmd = &cobra.Command{
		Use:   "tracker",
		Short: "A multi-user time tracker",
		Long: `Time Tracker (tt) records time entries per user, keeps at most one timer
running per user and reports hours per project or client.

EXAMPLES:
  tracker user add alice                        # Register a user
  tracker --user alice start "Writing docs"     # Start a timer now
  tracker --user alice current                  # Show the running timer
  tracker --user alice stop                     # Stop it
  tracker --user alice add --day yesterday --start 09:00 --stop 12:00 "Review"
  tracker --user alice list --day yesterday     # Entries of one day
  tracker --user alice report --days 7          # Closed entries of the last week
  tracker serve                                 # Serve the JSON API

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  The config file is ~/.tt/config.yaml, or the file named by TT_CONFIG.

  Database Configuration:
    TT_DB_DRIVER                           sqlite, postgres or mysql (default: sqlite)
    TT_DB_DIR                              SQLite directory (default: ~/.tt)
    TT_DB_FILENAME                         SQLite filename (default: tracker.db)
    TT_DB_DSN                              Connection string for postgres and mysql

  Timer Configuration:
    TT_TIMER_DAY_END                       Stop time given to timers left on a past day (default: 23:59)
    TT_TIMER_LOCATION                      Time zone that decides "today" (default: Local)

  Application Configuration:
    TT_USER                                User ID or name to act as
    TT_APP_TIMEOUT                         Application timeout (default: 60s)
    TT_APP_VERBOSE                         Enable verbose output (default: false)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd.Context())
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the cobra command, mainly for tests and completion.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases whatever setup opened.
func (r *RootCommand) Execute(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if r.runtime != nil && r.runtime.Close != nil {
		if closeErr := r.runtime.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", closeErr)
		}
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Database configuration
	flags.String("db-driver", "", "Database driver (overrides TT_DB_DRIVER)")
	flags.String("db-dir", "", "SQLite directory (overrides TT_DB_DIR)")
	flags.String("db-filename", "", "SQLite filename (overrides TT_DB_FILENAME)")
	flags.String("dsn", "", "Database connection string (overrides TT_DB_DSN)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TT_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TT_DB_WRITE_TIMEOUT)")

	// Timer configuration
	flags.String("day-end", "", "Stop time for timers left on a past day (overrides TT_TIMER_DAY_END)")
	flags.String("location", "", "Time zone deciding today (overrides TT_TIMER_LOCATION)")

	// Application configuration
	flags.StringP("user", "u", "", "User ID or name (overrides TT_USER)")
	flags.Duration("app-timeout", 0, "Application timeout (overrides TT_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TT_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newUserCmd(),
		r.newClientCmd(),
		r.newProjectCmd(),
		r.newStartCmd(),
		r.newStopCmd(),
		r.newCurrentCmd(),
		r.newAddCmd(),
		r.newEditCmd(),
		r.newDeleteCmd(),
		r.newListCmd(),
		r.newReportCmd(),
		r.newServeCmd(),
	)
}

// setup loads configuration with the flag overrides and opens the runtime.
func (r *RootCommand) setup(ctx context.Context) error {
	cfg, err := r.loader.LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return err
	}
	r.config = cfg

	runtime, err := r.build(ctx, cfg)
	if err != nil {
		return err
	}
	r.runtime = runtime
	if runtime.Logger == nil {
		runtime.Logger = logging.Discard()
	}
	r.app = NewApp(runtime.API, cfg, runtime.Clock, r.cmd.OutOrStdout())
	return nil
}

// overridesFromFlags collects the global flags the user actually set.
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	overrides.DBDriver = str("db-driver")
	overrides.DBDir = str("db-dir")
	overrides.DBFilename = str("db-filename")
	overrides.DBDSN = str("dsn")
	overrides.DBQueryTimeout = dur("db-query-timeout")
	overrides.DBWriteTimeout = dur("db-write-timeout")
	overrides.DayEnd = str("day-end")
	overrides.Location = str("location")
	overrides.User = str("user")
	overrides.Timeout = dur("app-timeout")
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	return overrides
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// run wraps a command body with the application timeout.
func (r *RootCommand) run(fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()
		return fn(ctx, r.app, args)
	}
}
