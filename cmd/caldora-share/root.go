package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cyp0633/caldora-share/internal/config"
	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/internal/metrics"
	"github.com/cyp0633/caldora-share/sharing"
	"github.com/cyp0633/caldora-share/sharing/sqlite"
)

// Exit codes by error type.
const (
	exitOK               = 0
	exitError            = 1
	exitUnknownPrincipal = 3
	exitNotFound         = 4
	exitStoreUnavailable = 5
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	database   string
	logLevel   string
	logFormat  string

	cfg      *config.Config
	logger   *slog.Logger
	store    *sqlite.Backend
	backend  sharing.Backend
	registry *prometheus.Registry
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "caldora-share",
		Short: "Manage CalDAV calendar sharing and notifications",
		Long: `caldora-share manages the sharing side of a CalDAV server: which
principals a calendar is shared with, how they answered their invites,
public subscriptions of calendars and the notification queue of every
principal.

All commands operate on one SQLite database.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "caldora-share version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to the config file")
	flags.StringVar(&a.database, "database", "", "SQLite database path (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json (overrides config)")

	rootCmd.AddCommand(newPrincipalCmd(a))
	rootCmd.AddCommand(newCalendarCmd(a))
	rootCmd.AddCommand(newShareCmd(a))
	rootCmd.AddCommand(newPublishCmd(a))
	rootCmd.AddCommand(newNotificationCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of caldora-share",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "caldora-share version %s\n", version)
		},
	}
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, sharing.ErrUnknownPrincipal):
		return exitUnknownPrincipal
	case errors.Is(err, sharing.ErrNotFound):
		return exitNotFound
	case errors.Is(err, sharing.ErrStoreUnavailable):
		return exitStoreUnavailable
	default:
		return exitError
	}
}

// open loads the configuration and opens the database on first use.
func (a *app) open(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.database != "" {
		cfg.Database = a.database
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cmd.Context(), cfg.Database,
		sqlite.WithLogger(logger),
		sqlite.WithBusyTimeout(cfg.BusyTimeout),
		sqlite.WithCalendarRoot(cfg.CalendarRoot),
		sqlite.WithPrincipalPrefix(cfg.PrincipalPrefix),
	)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.store = store
	a.backend = metrics.Instrument(store, m)
	a.registry = registry
	logger.Debug("config loaded", slog.String("path", cfg.Path), slog.String("database", cfg.Database))
	return nil
}

// catalog returns the merged calendar listing over the open database.
func (a *app) catalog() *sharing.Catalog {
	return sharing.NewCatalog(a.backend, a.backend, a.store.Directory(),
		sharing.WithLogger(a.logger),
		sharing.WithCalendarRoot(a.cfg.CalendarRoot),
	)
}

// close writes the metrics textfile, if configured, and closes the database.
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	var err error
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err = metrics.WriteTextfile(path, a.registry); err != nil {
			a.logger.Warn("failed to write metrics textfile", slog.String("path", path), logging.Err(err))
			err = fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}
	if cerr := a.store.Close(); cerr != nil && err == nil {
		err = sharing.StoreUnavailable("close database", cerr)
	}
	a.store = nil
	return err
}
