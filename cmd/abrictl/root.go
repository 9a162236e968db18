package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgao/abri-data/internal/config"
	"github.com/rickgao/abri-data/internal/database"
	"github.com/rickgao/abri-data/internal/logging"
)

// app carries flag values and the resources built from them.
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "abrictl",
		Short: "Manage the ABRI data store",
		Long: `abrictl manages the PostgreSQL store behind the AI Bubble Risk Index.

The connection descriptor comes from database.url in the config file or,
when that is empty, from the DATABASE_URL environment variable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file (default: environment only)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		a.initCmd(),
		a.healthCmd(),
		a.infoCmd(),
		schemaCmd(),
		a.tasksCmd(),
		a.latestCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

// setup loads and validates configuration and builds the logger. Logs go
// to stderr so command output on stdout stays machine readable.
func (a *app) setup() error {
	cfg, err := config.LoadAndValidate(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// withStore runs fn against a freshly opened store and closes it after.
func (a *app) withStore(ctx context.Context, fn func(ctx context.Context, st *database.Store) error, opts ...database.Option) error {
	if err := a.setup(); err != nil {
		return err
	}
	defer a.close()

	opts = append([]database.Option{database.WithLogger(a.logger)}, opts...)
	st, err := database.New(ctx, a.cfg.Database, opts...)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, st)
}
