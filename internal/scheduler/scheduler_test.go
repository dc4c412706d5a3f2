package scheduler

import (
	"context"
	"errors"
	"testing"

	"nhlstats/ingestion/internal/batch"
	"nhlstats/ingestion/internal/client"
	"nhlstats/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	seasons [][]models.Season
	rebuild []bool
	block   chan struct{}
	started chan struct{}
	err     error
}

func (f *fakeRunner) Run(_ context.Context, seasons []models.Season, rebuildMaps bool, _ batch.StatOptions) (*batch.Report, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.seasons = append(f.seasons, seasons)
	f.rebuild = append(f.rebuild, rebuildMaps)

	report := &batch.Report{}
	for _, s := range seasons {
		report.Seasons = append(report.Seasons, batch.SeasonResult{Season: s, Err: f.err})
	}
	return report, nil
}

func TestRefreshCurrentSeason(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, client.FixedSeason("20232024"), "0 2 * * *", true, batch.StatOptions{})

	report, err := s.RefreshCurrentSeason(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, [][]models.Season{{"20232024"}}, runner.seasons)
	assert.Equal(t, []bool{true}, runner.rebuild)
}

func TestRefreshCurrentSeason_SeasonFailure(t *testing.T) {
	runner := &fakeRunner{err: client.ErrTransport}
	s := NewScheduler(runner, client.FixedSeason("20232024"), "0 2 * * *", false, batch.StatOptions{})

	report, err := s.RefreshCurrentSeason(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrTransport))
	assert.Len(t, report.Failed(), 1)
}

func TestRefreshCurrentSeason_SkipsOverlap(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{})}
	s := NewScheduler(runner, client.FixedSeason("20232024"), "0 2 * * *", false, batch.StatOptions{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RefreshCurrentSeason(context.Background())
	}()
	<-runner.started

	report, err := s.RefreshCurrentSeason(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, report, "overlapping refresh is skipped")

	close(runner.block)
	<-done
	assert.Len(t, runner.seasons, 1)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, client.FixedSeason("20232024"), "not a cron", false, batch.StatOptions{})
	assert.Error(t, s.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, client.FixedSeason("20232024"), "@every 1h", false, batch.StatOptions{})
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestRunSeasons(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, client.FixedSeason("20232024"), "0 2 * * *", true, batch.StatOptions{})

	report, err := s.RunSeasons(context.Background(), []models.Season{"20212022", "20222023"})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, [][]models.Season{{"20212022", "20222023"}}, runner.seasons)
}

func TestRefreshCurrentSeason_SkippedDuringRunSeasons(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{})}
	s := NewScheduler(runner, client.FixedSeason("20232024"), "0 2 * * *", false, batch.StatOptions{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunSeasons(context.Background(), []models.Season{"20222023", "20232024"})
	}()
	<-runner.started

	report, err := s.RefreshCurrentSeason(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, report, "refresh is skipped while a batch holds the season")

	report, err = s.RunSeasons(context.Background(), []models.Season{"20232024"})
	assert.NoError(t, err)
	assert.Nil(t, report)

	close(runner.block)
	<-done
	assert.Equal(t, [][]models.Season{{"20222023", "20232024"}}, runner.seasons)
}
