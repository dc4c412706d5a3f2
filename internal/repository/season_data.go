package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nhlstats/ingestion/internal/metrics"
	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// SeasonDataRepository is the Postgres season store: one JSONB row per
// (season, report type, key).
type SeasonDataRepository struct {
	db *Database
}

// Upsert inserts or replaces one entry
func (r *SeasonDataRepository) Upsert(ctx context.Context, season models.Season, key store.Key, payload []byte) error {
	query := `
		INSERT INTO season_data (season, report_type, key, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (season, report_type, key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, season.String(), key.Scope, key.Name, payload); err != nil {
		return fmt.Errorf("failed to upsert %s for season %s: %w", key, season, err)
	}

	log.Debug().
		Str("season", season.String()).
		Str("key", key.Path()).
		Int("bytes", len(payload)).
		Msg("Season data upserted")

	return nil
}

// GetPayload retrieves the raw JSON of one entry
func (r *SeasonDataRepository) GetPayload(ctx context.Context, season models.Season, key store.Key) ([]byte, error) {
	query := `
		SELECT payload
		FROM season_data
		WHERE season = $1 AND report_type = $2 AND key = $3
	`

	var payload []byte
	err := r.db.Pool.QueryRow(ctx, query, season.String(), key.Scope, key.Name).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, season.Dir(), key.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s for season %s: %w", key, season, err)
	}

	return payload, nil
}

// ListKeys returns every key stored for a season, ordered by report type and key
func (r *SeasonDataRepository) ListKeys(ctx context.Context, season models.Season) ([]store.Key, error) {
	query := `
		SELECT report_type, key
		FROM season_data
		WHERE season = $1
		ORDER BY report_type, key
	`

	rows, err := r.db.Pool.Query(ctx, query, season.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list keys for season %s: %w", season, err)
	}
	defer rows.Close()

	var keys []store.Key
	for rows.Next() {
		var k store.Key
		if err := rows.Scan(&k.Scope, &k.Name); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// DeleteSeason removes every entry of a season
func (r *SeasonDataRepository) DeleteSeason(ctx context.Context, season models.Season) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM season_data WHERE season = $1`, season.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete season %s: %w", season, err)
	}
	return tag.RowsAffected(), nil
}

// Put implements store.Store
func (r *SeasonDataRepository) Put(ctx context.Context, season models.Season, key store.Key, value interface{}) (err error) {
	start := time.Now()
	defer func() { recordOp("put", start, err) }()

	if err := key.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return r.Upsert(ctx, season, key, payload)
}

// Get implements store.Store
func (r *SeasonDataRepository) Get(ctx context.Context, season models.Season, key store.Key, out interface{}) (err error) {
	start := time.Now()
	defer func() { recordOp("get", start, err) }()

	if err := key.Validate(); err != nil {
		return err
	}

	payload, err := r.GetPayload(ctx, season, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func recordOp(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordStoreOperation("postgres", op, status, time.Since(start).Seconds())
}
