// Package timeseries derives per-game sequences from a team's schedule.
//
// Games are taken in schedule order up to the first game that is not final;
// that game and everything after it are ignored. The schedule must be in
// chronological order, which is checked rather than assumed.
package timeseries

import (
	"context"
	"errors"
	"fmt"

	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrScheduleOrder is returned when a game starts before the one listed ahead of it
var ErrScheduleOrder = errors.New("schedule is not in chronological order")

// ScheduleSource fetches a team's schedule
type ScheduleSource interface {
	Schedule(ctx context.Context, teamID int, season models.Season) ([]models.ScheduleGame, error)
}

// BoxScoreSource fetches a game's box score
type BoxScoreSource interface {
	BoxScore(ctx context.Context, gameID int) (home, away models.BoxScoreTeam, err error)
}

// Source is what the deriver needs from the endpoint client
type Source interface {
	ScheduleSource
	BoxScoreSource
}

// SeasonResolver turns an empty season into a concrete one
type SeasonResolver interface {
	ResolveSeason(ctx context.Context, season models.Season) (models.Season, error)
}

// Filter selects game types besides the regular season
type Filter struct {
	IncludePreseason  bool
	IncludePostseason bool
}

func (f Filter) keep(g *models.ScheduleGame) bool {
	switch {
	case g.IsPreseason():
		return f.IncludePreseason
	case g.IsPostseason():
		return f.IncludePostseason
	default:
		return true
	}
}

// Deriver builds series from schedules and box scores
type Deriver struct {
	source  Source
	seasons SeasonResolver
}

// New creates a deriver
func New(source Source, seasons SeasonResolver) *Deriver {
	return &Deriver{source: source, seasons: seasons}
}

// CompletedGames returns the team's final games in schedule order, stopping at
// the first non-final game and applying the filter to what remains.
func (d *Deriver) CompletedGames(ctx context.Context, teamID int, season models.Season, filter Filter) (models.Season, []models.ScheduleGame, error) {
	season, err := d.seasons.ResolveSeason(ctx, season)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve season: %w", err)
	}

	schedule, err := d.source.Schedule(ctx, teamID, season)
	if err != nil {
		return "", nil, err
	}

	if err := checkOrder(schedule); err != nil {
		return "", nil, fmt.Errorf("team %d season %s: %w", teamID, season, err)
	}

	var games []models.ScheduleGame
	for i := range schedule {
		g := &schedule[i]
		if !g.IsFinal() {
			break
		}
		if _, _, _, ok := g.Sides(teamID); !ok {
			log.Warn().
				Int("game_id", g.GamePK).
				Int("team_id", teamID).
				Msg("Skipping scheduled game the team does not play in")
			continue
		}
		if filter.keep(g) {
			games = append(games, *g)
		}
	}

	return season, games, nil
}

// checkOrder rejects schedules whose game dates go backwards. Games without a
// parsable date are not compared.
func checkOrder(schedule []models.ScheduleGame) error {
	var last *models.ScheduleGame
	for i := range schedule {
		g := &schedule[i]
		date := g.Date()
		if date.IsZero() {
			continue
		}
		if last != nil && date.Before(last.Date()) {
			return fmt.Errorf("%w: game %d (%s) is listed after game %d (%s)",
				ErrScheduleOrder, g.GamePK, g.GameDate, last.GamePK, last.GameDate)
		}
		last = g
	}
	return nil
}
