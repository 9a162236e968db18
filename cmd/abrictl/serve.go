package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/abri-data/internal/database"
	"github.com/rickgao/abri-data/internal/metrics"
	"github.com/rickgao/abri-data/internal/version"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		initSchema bool
		port       int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the health, diagnostics and metrics server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), initSchema, port)
		},
	}
	cmd.Flags().BoolVar(&initSchema, "init-schema", false, "create missing tables before serving")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: server.port from config)")
	return cmd
}

func (a *app) serve(ctx context.Context, initSchema bool, port int) error {
	if err := a.setup(); err != nil {
		return err
	}
	defer a.close()
	logger := a.logger
	if port == 0 {
		port = a.cfg.Server.Port
	}

	logger.Info("starting abrictl serve",
		"version", version.Version,
		"commit", version.Commit,
		"config", a.configPath,
	)

	sessions := metrics.NewSessionMetrics()
	st, err := database.New(ctx, a.cfg.Database,
		database.WithLogger(logger),
		database.WithObserver(sessions),
	)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(reg, st, sessions); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	if initSchema {
		if err := st.InitSchema(ctx); err != nil {
			return err
		}
	}
	// An unreachable database is reported by /health rather than fatal.
	st.CheckConnection(ctx)

	sched := cron.New()
	if _, err := sched.AddFunc(a.cfg.Server.StatsSchedule, func() { logPoolStats(logger, st.Stat()) }); err != nil {
		return fmt.Errorf("stats schedule %q: %w", a.cfg.Server.StatsSchedule, err)
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newRouter(st, reg, logger),
		ReadHeaderTimeout: checkTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting ops server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("abrictl serve stopped")
	return err
}

func logPoolStats(logger *slog.Logger, s database.PoolStats) {
	logger.Info("database pool stats",
		"total", s.TotalConns,
		"idle", s.IdleConns,
		"acquired", s.AcquiredConns,
		"max", s.MaxConns,
		"acquires", s.AcquireCount,
		"empty_acquires", s.EmptyAcquireCount,
		"canceled_acquires", s.CanceledAcquireCount,
	)
}
