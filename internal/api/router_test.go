package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/store"
	"nhlstats/ingestion/internal/timeseries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeriver struct {
	goals  timeseries.Goals
	err    error
	filter timeseries.Filter
	season models.Season
}

func (f *fakeDeriver) GoalSeries(_ context.Context, teamID int, season models.Season, filter timeseries.Filter) (timeseries.Goals, error) {
	f.filter, f.season = filter, season
	g := f.goals
	g.TeamID = teamID
	return g, f.err
}

func (f *fakeDeriver) TeamBoxScoreSeries(_ context.Context, teamID int, season models.Season, _ timeseries.Filter) (*timeseries.BoxScoreSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &timeseries.BoxScoreSeries{Season: season, TeamID: teamID, Columns: []string{}}, nil
}

func newTestServer(t *testing.T, health HealthFunc, deriver Deriver) (*httptest.Server, *store.MemoryStore) {
	st := store.NewMemoryStore()
	srv := httptest.NewServer(NewRouter(NewHandler(st, deriver, health)))
	t.Cleanup(srv.Close)
	return srv, st
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	resp, _ := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	unhealthy, _ := newTestServer(t, func(context.Context) error { return errors.New("down") }, nil)
	resp, _ = get(t, unhealthy.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetMap(t *testing.T) {
	srv, st := newTestServer(t, nil, nil)
	require.NoError(t, st.Put(context.Background(), "20192020", store.MapKey(store.PlayerIDs), []int{1, 3}))

	resp, body := get(t, srv.URL+"/seasons/20192020/player_ids")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[1,3]`, string(body))

	resp, _ = get(t, srv.URL+"/seasons/20182019/player_ids")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/seasons/20192020/passwords")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/seasons/2019/player_ids")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMap_Collisions(t *testing.T) {
	srv, st := newTestServer(t, nil, nil)
	maps := models.NewIdentifierMaps("20192020")
	maps.NameCollisions["Sebastian Aho"] = []int{8478427, 8480222}
	maps.PlayerTeamHistory = map[int][]int{8475166: {10, 20}}
	require.NoError(t, store.PutMaps(context.Background(), st, maps))

	resp, body := get(t, srv.URL+"/seasons/20192020/name_collisions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Sebastian Aho":[8478427,8480222]}`, string(body))

	resp, body = get(t, srv.URL+"/seasons/20192020/player_team_history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"8475166":[10,20]}`, string(body))
}

func TestGetTable(t *testing.T) {
	srv, st := newTestServer(t, nil, nil)
	table := models.NewStatTable("20192020", "statsSingleSeason", []models.StatRecord{
		{PlayerID: 1, Fields: map[string]models.Value{"goals": models.Number(47)}},
	})
	require.NoError(t, st.Put(context.Background(), "20192020", store.TableKey("statsSingleSeason", store.SkaterStats), table))

	resp, body := get(t, srv.URL+"/seasons/20192020/statsSingleSeason/skater_stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.StatTable
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []int{1}, got.PlayerIDs())

	resp, _ = get(t, srv.URL+"/seasons/20192020/statsSingleSeason/goalie_stats")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/seasons/20192020/statsSingleSeason/other")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetGoals(t *testing.T) {
	deriver := &fakeDeriver{goals: timeseries.Goals{
		Season:  "20192020",
		GameIDs: []int{1, 2, 3},
		For:     []float64{2, 0, 4},
		Against: []float64{1, 1, 1},
	}}
	srv, _ := newTestServer(t, nil, deriver)

	resp, body := get(t, srv.URL+"/teams/10/goals?season=20192020&transform=average&post=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		TeamID int       `json:"teamId"`
		For    []float64 `json:"for"`
		Diff   []float64 `json:"diff"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 10, got.TeamID)
	assert.Equal(t, []float64{2, 1, 2}, got.For)
	assert.Equal(t, []float64{1, 0, 1}, got.Diff)
	assert.True(t, deriver.filter.IncludePostseason)
	assert.False(t, deriver.filter.IncludePreseason)
	assert.Equal(t, models.Season("20192020"), deriver.season)

	resp, _ = get(t, srv.URL+"/teams/10/goals?transform=median")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/teams/abc/goals")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetGoals_ScheduleOrder(t *testing.T) {
	srv, _ := newTestServer(t, nil, &fakeDeriver{err: timeseries.ErrScheduleOrder})

	resp, _ := get(t, srv.URL+"/teams/10/goals")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/teams/10/boxscores")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSeriesRoutesNeedDeriver(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	resp, _ := get(t, srv.URL+"/teams/10/goals")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
