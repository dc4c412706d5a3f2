// Package batch drives map rebuilds, stat fetches and persistence across seasons.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nhlstats/ingestion/internal/client"
	"nhlstats/ingestion/internal/metrics"
	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/normalizer"
	"nhlstats/ingestion/internal/store"
)

// MapBuilder builds the identifier snapshot of a season
type MapBuilder interface {
	BuildMaps(ctx context.Context, season models.Season, activeOnly bool) (*models.IdentifierMaps, error)
}

// StatsSource fetches one player's stats
type StatsSource interface {
	PlayerStats(ctx context.Context, playerID int, season models.Season, reportType client.ReportType) (models.PlayerStats, error)
}

// Runner executes batch updates. Seasons run sequentially in input order and
// requests are paced by the stats source's client.
type Runner struct {
	maps       MapBuilder
	stats      StatsSource
	store      store.Store
	normalizer *normalizer.Normalizer
	reporter   Reporter
}

// Option configures a Runner
type Option func(*Runner)

// WithReporter replaces the default LogReporter
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithNormalizer replaces the default normalizer
func WithNormalizer(n *normalizer.Normalizer) Option {
	return func(r *Runner) {
		if n != nil {
			r.normalizer = n
		}
	}
}

// NewRunner creates a runner
func NewRunner(maps MapBuilder, stats StatsSource, st store.Store, opts ...Option) *Runner {
	r := &Runner{
		maps:       maps,
		stats:      stats,
		store:      st,
		normalizer: normalizer.New(),
		reporter:   LogReporter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run updates each season in order. A failed season is recorded in the report
// and the next season is attempted. The returned error is non-nil only for an
// invalid season list or a cancelled context; per-season failures are in the
// report.
func (r *Runner) Run(ctx context.Context, seasons []models.Season, rebuildMaps bool, opts StatOptions) (*Report, error) {
	for _, s := range seasons {
		if _, err := models.ParseSeason(s.String()); err != nil {
			return nil, err
		}
	}

	report := &Report{Seasons: make([]SeasonResult, 0, len(seasons))}
	total := len(seasons)

	for i, season := range seasons {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		r.reporter.OnSeasonStart(season, i+1, total)

		result := r.runSeason(ctx, season, rebuildMaps, opts)
		report.Seasons = append(report.Seasons, result)

		if result.Err != nil {
			metrics.RecordSeason("error", result.Duration.Seconds())
			metrics.RecordError("batch", errorType(result.Err))
			r.reporter.OnSeasonError(season, result.Err)

			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			continue
		}

		metrics.RecordSeason("success", result.Duration.Seconds())
		metrics.RecordAbsent(len(result.Absent))
		r.reporter.OnSeasonDone(result)
	}

	return report, nil
}

func (r *Runner) runSeason(ctx context.Context, season models.Season, rebuildMaps bool, opts StatOptions) SeasonResult {
	start := time.Now()
	reportType := opts.reportType()
	result := SeasonResult{Season: season, ReportType: reportType}

	fail := func(err error) SeasonResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if rebuildMaps {
		maps, err := r.maps.BuildMaps(ctx, season, opts.ActiveOnly)
		if err != nil {
			return fail(err)
		}
		if err := store.PutMaps(ctx, r.store, maps); err != nil {
			return fail(err)
		}
		result.MapsRebuilt = true
	}

	ids, err := store.GetPlayerIDs(ctx, r.store, season)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(fmt.Errorf("no identifier maps stored for season %s, rebuild maps first: %w", season, err))
		}
		return fail(err)
	}
	result.Players = len(ids)

	raw := make(map[int]models.PlayerStats, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		r.reporter.OnPlayer(season, id, i+1, len(ids))

		stats, err := r.stats.PlayerStats(ctx, id, season, reportType)
		if err != nil {
			return fail(fmt.Errorf("failed to fetch stats for player %d: %w", id, err))
		}
		raw[id] = stats
	}

	normalized := r.normalizer.Normalize(season, string(reportType), ids, raw)
	if err := store.PutTables(ctx, r.store, &normalized); err != nil {
		return fail(err)
	}

	result.Goalies = len(normalized.Goalies.PlayerIDs())
	result.Skaters = len(normalized.Skaters.PlayerIDs())
	result.Absent = normalized.Absent
	result.Malformed = normalized.Malformed
	result.Duration = time.Since(start)
	return result
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, client.ErrTransport):
		return "transport"
	case errors.Is(err, client.ErrStatus):
		return "status"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrPartialWrite):
		return "partial_write"
	default:
		return "other"
	}
}
