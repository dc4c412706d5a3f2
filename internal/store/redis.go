package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nhlstats/ingestion/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultRedisPrefix namespaces every key written by RedisStore
const DefaultRedisPrefix = "nhlstats"

// RedisStore keeps each entry as a JSON string at <prefix>:<YYYY-YYYY>:<path>
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// DialRedis connects and pings Redis
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("addr", addr).Int("db", db).Msg("Connected to Redis")
	return client, nil
}

// Key returns the Redis key of an entry
func (s *RedisStore) Key(season models.Season, key Key) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, season.Dir(), key.Path())
}

// Put replaces the entry without expiry
func (s *RedisStore) Put(ctx context.Context, season models.Season, key Key, value interface{}) (err error) {
	start := time.Now()
	defer func() { recordOp("redis", "put", start, err) }()

	if err := key.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := s.client.Set(ctx, s.Key(season, key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Get decodes the entry into out
func (s *RedisStore) Get(ctx context.Context, season models.Season, key Key, out interface{}) (err error) {
	start := time.Now()
	defer func() { recordOp("redis", "get", start, err) }()

	if err := key.Validate(); err != nil {
		return err
	}

	data, err := s.client.Get(ctx, s.Key(season, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrNotFound, s.Key(season, key))
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Health pings Redis
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
