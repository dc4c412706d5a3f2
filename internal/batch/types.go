package batch

import (
	"errors"
	"fmt"
	"time"

	"nhlstats/ingestion/internal/client"
	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// StatOptions selects what the stats step fetches
type StatOptions struct {
	// ReportType defaults to statsSingleSeason
	ReportType client.ReportType
	// ActiveOnly restricts map rebuilds to active teams
	ActiveOnly bool
}

func (o StatOptions) reportType() client.ReportType {
	if o.ReportType == "" {
		return client.ReportSingleSeason
	}
	return o.ReportType
}

// SeasonResult is the outcome of one season. Err is set when the season failed;
// nothing is persisted for a step that did not complete.
type SeasonResult struct {
	Season      models.Season
	ReportType  client.ReportType
	MapsRebuilt bool
	Players     int
	Goalies     int
	Skaters     int
	Absent      []int
	Malformed   []int
	Duration    time.Duration
	Err         error
}

// OK reports whether the season completed
func (r SeasonResult) OK() bool {
	return r.Err == nil
}

// Report collects the per-season results of a run in input order
type Report struct {
	Seasons []SeasonResult
}

// Failed returns the seasons that did not complete
func (r *Report) Failed() []SeasonResult {
	var failed []SeasonResult
	for _, s := range r.Seasons {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// Err joins the failures of every failed season, nil when all succeeded
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Failed() {
		errs = append(errs, fmt.Errorf("season %s: %w", s.Season, s.Err))
	}
	return errors.Join(errs...)
}

// Reporter receives progress callbacks from the runner.
// index is 1-based so "season i of n" can be printed directly.
type Reporter interface {
	OnSeasonStart(season models.Season, index, total int)
	OnPlayer(season models.Season, playerID, index, total int)
	OnSeasonDone(result SeasonResult)
	OnSeasonError(season models.Season, err error)
}

// LogReporter reports progress through zerolog
type LogReporter struct {
	// PlayerEvery logs every n-th player; 0 disables player lines
	PlayerEvery int
}

func (r LogReporter) OnSeasonStart(season models.Season, index, total int) {
	log.Info().
		Str("season", season.String()).
		Int("index", index).
		Int("total", total).
		Msgf("Updating season %d of %d", index, total)
}

func (r LogReporter) OnPlayer(season models.Season, playerID, index, total int) {
	if r.PlayerEvery <= 0 || index%r.PlayerEvery != 0 {
		return
	}
	log.Debug().
		Str("season", season.String()).
		Int("player_id", playerID).
		Int("index", index).
		Int("total", total).
		Msg("Fetching player stats")
}

func (r LogReporter) OnSeasonDone(result SeasonResult) {
	log.Info().
		Str("season", result.Season.String()).
		Str("report_type", string(result.ReportType)).
		Bool("maps_rebuilt", result.MapsRebuilt).
		Int("players", result.Players).
		Int("goalies", result.Goalies).
		Int("skaters", result.Skaters).
		Ints("absent", result.Absent).
		Ints("malformed", result.Malformed).
		Dur("duration", result.Duration).
		Msg("Season updated")
}

func (r LogReporter) OnSeasonError(season models.Season, err error) {
	log.Error().
		Err(err).
		Str("season", season.String()).
		Msg("Season update failed, continuing with next season")
}
