package timeseries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"nhlstats/ingestion/internal/client"
	"nhlstats/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	schedule  []models.ScheduleGame
	boxScores map[int][2]models.BoxScoreTeam
	seasons   []models.Season
}

func (f *fakeSource) Schedule(_ context.Context, _ int, season models.Season) ([]models.ScheduleGame, error) {
	f.seasons = append(f.seasons, season)
	return f.schedule, nil
}

func (f *fakeSource) BoxScore(_ context.Context, gameID int) (models.BoxScoreTeam, models.BoxScoreTeam, error) {
	bs, ok := f.boxScores[gameID]
	if !ok {
		return models.BoxScoreTeam{}, models.BoxScoreTeam{}, fmt.Errorf("game %d: %w", gameID, client.ErrStatus)
	}
	return bs[0], bs[1], nil
}

// game builds a schedule entry; teamID 10 plays at home when home is true
func game(t *testing.T, id int, date, gameType, state string, home bool, teamScore, oppScore int) models.ScheduleGame {
	t.Helper()
	homeID, awayID, homeScore, awayScore := 10, 20, teamScore, oppScore
	if !home {
		homeID, awayID, homeScore, awayScore = 20, 10, oppScore, teamScore
	}
	raw := fmt.Sprintf(`{"gamePk":%d,"gameType":%q,"gameDate":%q,"status":{"detailedState":%q},
		"teams":{"home":{"score":%d,"team":{"id":%d}},"away":{"score":%d,"team":{"id":%d}}}}`,
		id, gameType, date, state, homeScore, homeID, awayScore, awayID)

	var g models.ScheduleGame
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	return g
}

func boxTeam(t *testing.T, teamID int, stats string) models.BoxScoreTeam {
	t.Helper()
	var b models.BoxScoreTeam
	raw := fmt.Sprintf(`{"team":{"id":%d},"teamStats":{"teamSkaterStats":%s}}`, teamID, stats)
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	return b
}

func fiveGameSchedule(t *testing.T) []models.ScheduleGame {
	return []models.ScheduleGame{
		game(t, 1, "2019-10-02T23:00:00Z", "R", "Final", true, 5, 3),
		game(t, 2, "2019-10-05T23:00:00Z", "R", "Final", false, 2, 4),
		game(t, 3, "2019-10-07T23:00:00Z", "R", "Final", true, 3, 3),
		game(t, 4, "2019-10-09T23:00:00Z", "R", "Scheduled", true, 0, 0),
		game(t, 5, "2019-10-11T23:00:00Z", "R", "Final", false, 9, 0),
	}
}

func TestGoalSeries_StopsAtFirstNonFinal(t *testing.T) {
	src := &fakeSource{schedule: fiveGameSchedule(t)}
	d := New(src, client.FixedSeason("20192020"))

	goals, err := d.GoalSeries(context.Background(), 10, "20192020", Filter{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, goals.GameIDs)
	assert.Equal(t, []float64{5, 2, 3}, goals.For)
	assert.Equal(t, []float64{3, 4, 3}, goals.Against)
	assert.Equal(t, []float64{2, -2, 0}, goals.Diff())
}

func TestGoalSeries_Filters(t *testing.T) {
	src := &fakeSource{schedule: []models.ScheduleGame{
		game(t, 1, "2019-09-20T23:00:00Z", "PR", "Final", true, 1, 0),
		game(t, 2, "2019-10-05T23:00:00Z", "R", "Final", true, 2, 0),
		game(t, 3, "2019-10-07T23:00:00Z", "A", "Final", true, 3, 0),
		game(t, 4, "2020-04-10T23:00:00Z", "P", "Final", true, 4, 0),
	}}
	d := New(src, client.FixedSeason("20192020"))
	ctx := context.Background()

	regular, err := d.GoalsFor(ctx, 10, "", Filter{}, None)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, regular)

	all, err := d.GoalsFor(ctx, 10, "", Filter{IncludePreseason: true, IncludePostseason: true}, None)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, all)

	assert.Equal(t, []models.Season{"20192020", "20192020"}, src.seasons)
}

func TestGoalSeries_ScheduleOrderChecked(t *testing.T) {
	src := &fakeSource{schedule: []models.ScheduleGame{
		game(t, 1, "2019-10-05T23:00:00Z", "R", "Final", true, 1, 0),
		game(t, 2, "2019-10-02T23:00:00Z", "R", "Final", true, 2, 0),
	}}
	d := New(src, client.FixedSeason("20192020"))

	_, err := d.GoalSeries(context.Background(), 10, "20192020", Filter{})
	assert.True(t, errors.Is(err, ErrScheduleOrder))
}

func TestTransform(t *testing.T) {
	raw := []float64{2, 0, 4}

	assert.Equal(t, []float64{2, 1, 2}, Average.Apply(raw))
	assert.Equal(t, []float64{2, 2, 6}, Cumulative.Apply(raw))
	assert.Equal(t, raw, None.Apply(raw))
	assert.Equal(t, []float64{2, 0, 4}, raw, "input is not modified")
	assert.Empty(t, Average.Apply(nil))
}

func TestTransform_Properties(t *testing.T) {
	raw := []float64{3, 1, 4, 1, 5, 9, 2, 6}

	cum := Cumulative.Apply(raw)
	var sum float64
	for _, v := range raw {
		sum += v
	}
	assert.Equal(t, sum, cum[len(cum)-1])

	avg := Average.Apply(raw)
	for i := range raw {
		var s float64
		for _, v := range raw[:i+1] {
			s += v
		}
		assert.InDelta(t, s/float64(i+1), avg[i], 1e-9)
	}
}

func TestGoalsAgainstAndDiff_Transforms(t *testing.T) {
	src := &fakeSource{schedule: fiveGameSchedule(t)}
	d := New(src, client.FixedSeason("20192020"))
	ctx := context.Background()

	against, err := d.GoalsAgainst(ctx, 10, "", Filter{}, Cumulative)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7, 10}, against)

	diff, err := d.GoalDiff(ctx, 10, "", Filter{}, Average)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, 0}, diff)
}

func TestTeamBoxScoreSeries(t *testing.T) {
	src := &fakeSource{
		schedule: fiveGameSchedule(t),
		boxScores: map[int][2]models.BoxScoreTeam{
			1: {boxTeam(t, 10, `{"goals":5,"shots":33}`), boxTeam(t, 20, `{"goals":3,"shots":29,"hits":12}`)},
			2: {boxTeam(t, 20, `{"goals":4,"shots":30}`), boxTeam(t, 10, `{"goals":2,"shots":35}`)},
		},
	}
	d := New(src, client.FixedSeason("20192020"))

	series, err := d.TeamBoxScoreSeries(context.Background(), 10, "20192020", Filter{})
	require.NoError(t, err)

	require.Len(t, series.Games, 2)
	assert.Equal(t, []int{3}, series.Skipped, "game 3 has no box score")
	assert.Equal(t, []string{"goals", "hits", "shots"}, series.Columns)

	first, second := series.Games[0], series.Games[1]
	assert.True(t, first.Home)
	assert.False(t, second.Home)
	assert.Equal(t, 20, second.OpponentID)

	team, opp, ok := series.StatFloats("shots")
	require.True(t, ok)
	assert.Equal(t, []float64{33, 35}, team)
	assert.Equal(t, []float64{29, 30}, opp)

	teamHits, _ := series.Stat("hits")
	assert.True(t, teamHits[0].IsNull(), "missing stats are filled with null")
	for _, g := range series.Games {
		assert.Len(t, g.Team, len(series.Columns))
		assert.Len(t, g.Opponent, len(series.Columns))
	}
}

func TestGoalSeries_SkipsGamesWithoutTeam(t *testing.T) {
	other := game(t, 2, "2019-10-05T23:00:00Z", "R", "Final", true, 6, 1)
	other.Teams.Home.Team.ID = 30

	src := &fakeSource{schedule: []models.ScheduleGame{
		game(t, 1, "2019-10-02T23:00:00Z", "R", "Final", true, 5, 3),
		other,
		game(t, 3, "2019-10-07T23:00:00Z", "R", "Final", false, 2, 1),
	}}
	d := New(src, client.FixedSeason("20192020"))

	goals, err := d.GoalSeries(context.Background(), 10, "20192020", Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, goals.GameIDs)
	assert.Equal(t, []float64{5, 2}, goals.For)
	assert.Equal(t, []float64{3, 1}, goals.Against)
}

func TestTeamBoxScoreSeries_SkipsBoxScoreWithoutTeam(t *testing.T) {
	src := &fakeSource{
		schedule: fiveGameSchedule(t)[:2],
		boxScores: map[int][2]models.BoxScoreTeam{
			1: {boxTeam(t, 10, `{"goals":5}`), boxTeam(t, 20, `{"goals":3}`)},
			2: {boxTeam(t, 30, `{"goals":4}`), boxTeam(t, 40, `{"goals":2}`)},
		},
	}
	d := New(src, client.FixedSeason("20192020"))

	series, err := d.TeamBoxScoreSeries(context.Background(), 10, "20192020", Filter{})
	require.NoError(t, err)
	require.Len(t, series.Games, 1)
	assert.Equal(t, 1, series.Games[0].GameID)
	assert.Equal(t, []int{2}, series.Skipped)
}
