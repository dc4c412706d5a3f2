package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://statsapi.web.nhl.com/api/v1", cfg.NHLBaseURL)
	assert.Equal(t, 30*time.Second, cfg.NHLTimeout)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "statsSingleSeason", cfg.ReportType)
	assert.True(t, cfg.RebuildMaps)
	assert.Empty(t, cfg.Seasons)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SEASONS", "20172018,20182019")
	t.Setenv("REQUEST_DELAY", "2s")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"20172018", "20182019"}, cfg.Seasons)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{StoreBackend: BackendFile, StoreRoot: "data", ReportType: "statsSingleSeason", AppEnv: "development"}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.StoreBackend = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.StoreRoot = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.StoreBackend = BackendPostgres
	cfg.AppEnv = "production"
	assert.Error(t, cfg.Validate(), "production postgres needs a password")

	cfg = base()
	cfg.RequestDelay = -time.Second
	assert.Error(t, cfg.Validate())
}
