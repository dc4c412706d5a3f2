package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nhlstats/ingestion/internal/api"
	"nhlstats/ingestion/internal/app"
	"nhlstats/ingestion/internal/config"
	"nhlstats/ingestion/internal/metrics"
	"nhlstats/ingestion/internal/scheduler"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()
	app.SetupLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().Msg("Starting NHL Stats Ingestion Worker")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("store_backend", cfg.StoreBackend).
		Str("report_type", cfg.ReportType).
		Bool("scheduler_enabled", cfg.EnableScheduler).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize worker")
	}
	defer a.Close()

	var srv *http.Server
	if cfg.EnableMetrics {
		srv = startServer(cfg.MetricsPort, a.Handler())
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			}
		}
	}()

	sched := scheduler.NewScheduler(a.Runner, a.Client, cfg.NightlyRefreshCron, cfg.RebuildMaps, a.StatOptions())

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	if cfg.InitialSyncEnabled {
		go runInitialSync(ctx, a, sched)
	}

	log.Info().Msg("Worker is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	if cfg.EnableScheduler {
		log.Info().Msg("Shutting down scheduler...")
		sched.Stop()
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}

	log.Info().Msg("Worker shutdown complete")
}

// runInitialSync ingests the configured seasons, or the current one, once at
// startup. It shares the scheduler's guard so a cron tick cannot write a season
// the sync is still writing.
func runInitialSync(ctx context.Context, a *app.App, sched *scheduler.Scheduler) {
	log.Info().Msg("Running initial sync...")

	seasons, err := a.Seasons(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve seasons for initial sync")
		return
	}

	report, err := sched.RunSeasons(ctx, seasons)
	switch {
	case report == nil && err == nil:
		log.Warn().Msg("Initial sync skipped, another batch is running")
	case report == nil:
		log.Error().Err(err).Msg("Initial sync aborted")
	case err != nil:
		log.Warn().
			Int("failed", len(report.Failed())).
			Int("seasons", len(report.Seasons)).
			Err(err).
			Msg("Initial sync completed with failures")
	default:
		log.Info().Int("seasons", len(report.Seasons)).Msg("Initial sync completed")
	}
}

func startServer(port int, h *api.Handler) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting metrics and read API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	return srv
}
