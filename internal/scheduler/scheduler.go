package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nhlstats/ingestion/internal/batch"
	"nhlstats/ingestion/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// BatchRunner runs a season update
type BatchRunner interface {
	Run(ctx context.Context, seasons []models.Season, rebuildMaps bool, opts batch.StatOptions) (*batch.Report, error)
}

// SeasonResolver turns an empty season into the current one
type SeasonResolver interface {
	ResolveSeason(ctx context.Context, season models.Season) (models.Season, error)
}

// Scheduler refreshes the current season on a cron schedule.
// Runs never overlap: a tick that fires while a refresh or a RunSeasons call
// is still running is skipped.
type Scheduler struct {
	runner      BatchRunner
	seasons     SeasonResolver
	schedule    string
	rebuildMaps bool
	opts        batch.StatOptions

	cron    *cron.Cron
	running sync.Mutex
}

// NewScheduler creates a new scheduler instance
func NewScheduler(runner BatchRunner, seasons SeasonResolver, schedule string, rebuildMaps bool, opts batch.StatOptions) *Scheduler {
	return &Scheduler{
		runner:      runner,
		seasons:     seasons,
		schedule:    schedule,
		rebuildMaps: rebuildMaps,
		opts:        opts,
		cron:        cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		log.Info().Msg("Running nightly refresh...")
		if _, err := s.RefreshCurrentSeason(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Msg("Nightly refresh scheduled")

	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("Scheduler stopped")
}

// RefreshCurrentSeason resolves the current season and runs the batch for it.
// It returns a nil report when another run is already in progress.
func (s *Scheduler) RefreshCurrentSeason(ctx context.Context) (*batch.Report, error) {
	if !s.running.TryLock() {
		log.Warn().Msg("Refresh already running, skipping")
		return nil, nil
	}
	defer s.running.Unlock()

	season, err := s.seasons.ResolveSeason(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current season: %w", err)
	}

	return s.run(ctx, []models.Season{season})
}

// RunSeasons runs the batch for seasons under the same guard as the nightly
// refresh, so the two never write a season concurrently. It returns a nil
// report when another run is already in progress.
func (s *Scheduler) RunSeasons(ctx context.Context, seasons []models.Season) (*batch.Report, error) {
	if !s.running.TryLock() {
		log.Warn().Int("seasons", len(seasons)).Msg("Batch already running, skipping")
		return nil, nil
	}
	defer s.running.Unlock()

	return s.run(ctx, seasons)
}

func (s *Scheduler) run(ctx context.Context, seasons []models.Season) (*batch.Report, error) {
	start := time.Now()

	report, err := s.runner.Run(ctx, seasons, s.rebuildMaps, s.opts)
	if err != nil {
		return report, err
	}
	if err := report.Err(); err != nil {
		return report, err
	}

	log.Info().
		Int("seasons", len(seasons)).
		Dur("duration", time.Since(start)).
		Msg("Batch run complete")

	return report, nil
}
