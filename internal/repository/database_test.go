//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "nhlstats_test",
		User:     "nhlstats",
		Password: "nhlstats",
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database, seasons ...models.Season) {
	for _, s := range seasons {
		_, err := db.SeasonData.DeleteSeason(context.Background(), s)
		assert.NoError(t, err)
	}
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}

func TestSeasonDataRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db, "19001901")

	key := store.MapKey(store.PlayerIDs)

	err := db.SeasonData.Put(ctx, "19001901", key, []int{1, 2, 3})
	require.NoError(t, err, "Should insert entry")

	err = db.SeasonData.Put(ctx, "19001901", key, []int{4})
	require.NoError(t, err, "Should overwrite entry")

	var ids []int
	require.NoError(t, db.SeasonData.Get(ctx, "19001901", key, &ids))
	assert.Equal(t, []int{4}, ids, "Overwrite must not merge")
}

func TestSeasonDataRepository_NotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	var ids []int
	err := db.SeasonData.Get(ctx, "18991900", store.MapKey(store.PlayerIDs), &ids)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestSeasonDataRepository_ListKeys(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db, "19011902")

	require.NoError(t, db.SeasonData.Put(ctx, "19011902", store.MapKey(store.TeamIDs), []int{10}))
	require.NoError(t, db.SeasonData.Put(ctx, "19011902", store.TableKey("statsSingleSeason", store.GoalieStats), models.StatTable{}))

	keys, err := db.SeasonData.ListKeys(ctx, "19011902")
	require.NoError(t, err)
	assert.Equal(t, []store.Key{
		store.MapKey(store.TeamIDs),
		store.TableKey("statsSingleSeason", store.GoalieStats),
	}, keys)
}
