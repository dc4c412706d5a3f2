package timeseries

import (
	"context"
	"sort"
	"time"

	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// GameStats is one game of a box-score series. Team and Opponent carry every
// column of the series, null where the box score lacked the stat.
type GameStats struct {
	GameID     int                     `json:"gameId"`
	Date       time.Time               `json:"date"`
	Home       bool                    `json:"home"`
	OpponentID int                     `json:"opponentId"`
	Team       map[string]models.Value `json:"team"`
	Opponent   map[string]models.Value `json:"opponent"`
}

// BoxScoreSeries holds per-game team skater stats for a team and its opponents
type BoxScoreSeries struct {
	Season  models.Season `json:"season"`
	TeamID  int           `json:"teamId"`
	Columns []string      `json:"columns"`
	Games   []GameStats   `json:"games"`
	// Skipped lists games whose box score could not be fetched
	Skipped []int `json:"skipped,omitempty"`
}

// Stat returns one column for the team and for its opponents, in game order
func (s *BoxScoreSeries) Stat(name string) (team, opponent []models.Value) {
	team = make([]models.Value, 0, len(s.Games))
	opponent = make([]models.Value, 0, len(s.Games))
	for _, g := range s.Games {
		team = append(team, g.Team[name])
		opponent = append(opponent, g.Opponent[name])
	}
	return team, opponent
}

// StatFloats is Stat converted to numbers; non-numeric cells report ok=false
func (s *BoxScoreSeries) StatFloats(name string) (team, opponent []float64, ok bool) {
	ok = true
	tv, ov := s.Stat(name)
	team = make([]float64, len(tv))
	opponent = make([]float64, len(ov))
	for i := range tv {
		var tok, ook bool
		team[i], tok = tv[i].Float()
		opponent[i], ook = ov[i].Float()
		ok = ok && tok && ook
	}
	return team, opponent, ok
}

// TeamBoxScoreSeries fetches the box score of every completed game. A game
// whose box score fails is skipped and listed in Skipped.
func (d *Deriver) TeamBoxScoreSeries(ctx context.Context, teamID int, season models.Season, filter Filter) (*BoxScoreSeries, error) {
	season, games, err := d.CompletedGames(ctx, teamID, season, filter)
	if err != nil {
		return nil, err
	}

	series := &BoxScoreSeries{Season: season, TeamID: teamID}
	seen := make(map[string]struct{})

	for i := range games {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g := &games[i]
		home, away, err := d.source.BoxScore(ctx, g.GamePK)
		if err != nil {
			log.Warn().
				Err(err).
				Int("game_id", g.GamePK).
				Int("team_id", teamID).
				Msg("Skipping game without box score")
			series.Skipped = append(series.Skipped, g.GamePK)
			continue
		}

		var team, opponent models.BoxScoreTeam
		switch teamID {
		case home.Team.ID:
			team, opponent = home, away
		case away.Team.ID:
			team, opponent = away, home
		default:
			log.Warn().
				Int("game_id", g.GamePK).
				Int("team_id", teamID).
				Int("home_id", home.Team.ID).
				Int("away_id", away.Team.ID).
				Msg("Skipping box score the team does not appear in")
			series.Skipped = append(series.Skipped, g.GamePK)
			continue
		}

		stats := GameStats{
			GameID:     g.GamePK,
			Date:       g.Date(),
			Home:       team.Team.ID == home.Team.ID,
			OpponentID: opponent.Team.ID,
			Team:       team.SkaterStats(),
			Opponent:   opponent.SkaterStats(),
		}
		for name := range stats.Team {
			seen[name] = struct{}{}
		}
		for name := range stats.Opponent {
			seen[name] = struct{}{}
		}
		series.Games = append(series.Games, stats)
	}

	series.Columns = make([]string, 0, len(seen))
	for name := range seen {
		series.Columns = append(series.Columns, name)
	}
	sort.Strings(series.Columns)

	for i := range series.Games {
		fill(series.Games[i].Team, series.Columns)
		fill(series.Games[i].Opponent, series.Columns)
	}

	return series, nil
}

func fill(row map[string]models.Value, columns []string) {
	for _, col := range columns {
		if _, ok := row[col]; !ok {
			row[col] = models.Null
		}
	}
}
