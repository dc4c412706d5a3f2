package timeseries

import (
	"context"

	"nhlstats/ingestion/internal/models"
)

// Transform is an optional post-processing step. Only one can be applied.
type Transform int

const (
	None Transform = iota
	// Cumulative is the running sum
	Cumulative
	// Average is the running mean: element i is the mean of the first i+1 games
	Average
)

func (t Transform) String() string {
	switch t {
	case Cumulative:
		return "cumulative"
	case Average:
		return "average"
	default:
		return "none"
	}
}

// Apply returns a new series; the input is not modified
func (t Transform) Apply(series []float64) []float64 {
	out := make([]float64, len(series))
	copy(out, series)

	if t == None {
		return out
	}

	var sum float64
	for i, v := range series {
		sum += v
		switch t {
		case Cumulative:
			out[i] = sum
		case Average:
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// Goals holds the per-game scores of a team, aligned with GameIDs
type Goals struct {
	Season  models.Season
	TeamID  int
	GameIDs []int
	For     []float64
	Against []float64
}

// Diff returns goals for minus goals against per game
func (g Goals) Diff() []float64 {
	out := make([]float64, len(g.For))
	for i := range g.For {
		out[i] = g.For[i] - g.Against[i]
	}
	return out
}

// GoalSeries returns goals for and against in every completed game of the season
func (d *Deriver) GoalSeries(ctx context.Context, teamID int, season models.Season, filter Filter) (Goals, error) {
	season, games, err := d.CompletedGames(ctx, teamID, season, filter)
	if err != nil {
		return Goals{}, err
	}

	goals := Goals{
		Season:  season,
		TeamID:  teamID,
		GameIDs: make([]int, 0, len(games)),
		For:     make([]float64, 0, len(games)),
		Against: make([]float64, 0, len(games)),
	}
	for i := range games {
		team, opponent, _, _ := games[i].Sides(teamID)
		goals.GameIDs = append(goals.GameIDs, games[i].GamePK)
		goals.For = append(goals.For, float64(team.Score))
		goals.Against = append(goals.Against, float64(opponent.Score))
	}

	return goals, nil
}

// GoalsFor returns the team's goals per game with the transform applied
func (d *Deriver) GoalsFor(ctx context.Context, teamID int, season models.Season, filter Filter, t Transform) ([]float64, error) {
	g, err := d.GoalSeries(ctx, teamID, season, filter)
	if err != nil {
		return nil, err
	}
	return t.Apply(g.For), nil
}

// GoalsAgainst returns the opponents' goals per game with the transform applied
func (d *Deriver) GoalsAgainst(ctx context.Context, teamID int, season models.Season, filter Filter, t Transform) ([]float64, error) {
	g, err := d.GoalSeries(ctx, teamID, season, filter)
	if err != nil {
		return nil, err
	}
	return t.Apply(g.Against), nil
}

// GoalDiff returns the goal differential per game with the transform applied
func (d *Deriver) GoalDiff(ctx context.Context, teamID int, season models.Season, filter Filter, t Transform) ([]float64, error) {
	g, err := d.GoalSeries(ctx, teamID, season, filter)
	if err != nil {
		return nil, err
	}
	return t.Apply(g.Diff()), nil
}
