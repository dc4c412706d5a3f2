// Command backfill ingests identifier maps and stat tables for a list of seasons
// and exits. Seasons come from the command line, then SEASONS, then the
// provider's current season.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nhlstats/ingestion/internal/app"
	"nhlstats/ingestion/internal/config"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()
	app.SetupLogger(cfg.AppEnv, cfg.LogLevel)

	if len(os.Args) > 1 {
		cfg.Seasons = os.Args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backfill")
	}
	defer a.Close()

	seasons, err := a.Seasons(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve seasons")
	}

	log.Info().
		Int("seasons", len(seasons)).
		Str("report_type", cfg.ReportType).
		Bool("rebuild_maps", cfg.RebuildMaps).
		Msg("Starting backfill")

	report, err := a.Runner.Run(ctx, seasons, cfg.RebuildMaps, a.StatOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("Backfill aborted")
	}

	for _, result := range report.Seasons {
		event := log.Info()
		if !result.OK() {
			event = log.Error().Err(result.Err)
		}
		event.
			Str("season", result.Season.String()).
			Int("players", result.Players).
			Int("goalies", result.Goalies).
			Int("skaters", result.Skaters).
			Int("absent", len(result.Absent)).
			Int("malformed", len(result.Malformed)).
			Dur("duration", result.Duration).
			Msg("Season summary")
	}

	failed := report.Failed()
	log.Info().
		Int("successful", len(report.Seasons)-len(failed)).
		Int("failed", len(failed)).
		Msg("Backfill complete")

	if len(failed) > 0 {
		a.Close()
		os.Exit(1)
	}
}
