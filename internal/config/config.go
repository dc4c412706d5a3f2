package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store backends
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// NHL stats API
	NHLBaseURL    string        `envconfig:"NHL_BASE_URL" default:"https://statsapi.web.nhl.com/api/v1"`
	NHLTimeout    time.Duration `envconfig:"NHL_TIMEOUT" default:"30s"`
	NHLMaxRetries int           `envconfig:"NHL_MAX_RETRIES" default:"3"`

	// Request pacing. A positive REQUEST_DELAY takes precedence over the rate limit.
	RequestDelay  time.Duration `envconfig:"REQUEST_DELAY" default:"0s"`
	APIRateLimit  float64       `envconfig:"API_RATE_LIMIT" default:"5"`
	APIBurstLimit int           `envconfig:"API_BURST_LIMIT" default:"1"`

	// Season store
	StoreBackend string `envconfig:"STORE_BACKEND" default:"file"`
	StoreRoot    string `envconfig:"STORE_ROOT" default:"data"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"nhlstats"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nhlstats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nhlstats"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Batch
	Seasons          []string `envconfig:"SEASONS"`
	ReportType       string   `envconfig:"REPORT_TYPE" default:"statsSingleSeason"`
	ActiveOnly       bool     `envconfig:"ACTIVE_ONLY" default:"true"`
	RebuildMaps      bool     `envconfig:"REBUILD_MAPS" default:"true"`
	TeamChangePolicy string   `envconfig:"TEAM_CHANGE_POLICY" default:"last_roster_wins"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	NightlyRefreshCron string `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`

	// Monitoring and read API
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile:
		if c.StoreRoot == "" {
			return fmt.Errorf("STORE_ROOT is required for the file backend")
		}
	case BackendRedis:
	case BackendPostgres:
		if c.DatabasePassword == "" && c.IsProduction() {
			return fmt.Errorf("DATABASE_PASSWORD is required in production")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of file, redis, postgres, got %q", c.StoreBackend)
	}

	if c.NHLMaxRetries < 0 {
		return fmt.Errorf("NHL_MAX_RETRIES must not be negative")
	}

	if c.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY must not be negative")
	}

	if c.ReportType == "" {
		return fmt.Errorf("REPORT_TYPE is required")
	}

	return nil
}

// DatabasePortString returns the port in the form the repository config expects
func (c *Config) DatabasePortString() string {
	return strconv.Itoa(c.DatabasePort)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
