// Package app wires configuration into the client, store and pipeline components.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"nhlstats/ingestion/internal/api"
	"nhlstats/ingestion/internal/batch"
	"nhlstats/ingestion/internal/client"
	"nhlstats/ingestion/internal/config"
	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/repository"
	"nhlstats/ingestion/internal/resolver"
	"nhlstats/ingestion/internal/store"
	"nhlstats/ingestion/internal/timeseries"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App holds the wired components of one process
type App struct {
	Config   *config.Config
	Client   *client.Client
	Store    store.Store
	Resolver *resolver.Resolver
	Runner   *batch.Runner
	Deriver  *timeseries.Deriver

	health  api.HealthFunc
	closers []func()
}

// New builds every component from cfg and connects the configured store backend
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	policy, err := resolver.ParseTeamChangePolicy(cfg.TeamChangePolicy)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	a.Client = client.NewClient(
		cfg.NHLBaseURL,
		cfg.NHLTimeout,
		client.WithRetries(cfg.NHLMaxRetries, time.Second),
		client.WithPacer(client.NewPacer(cfg.RequestDelay, cfg.APIRateLimit, cfg.APIBurstLimit)),
	)
	log.Info().Str("base_url", a.Client.BaseURL()).Msg("NHL stats client initialized")

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	a.Resolver = resolver.NewResolver(a.Client, a.Client, policy)
	a.Runner = batch.NewRunner(a.Resolver, a.Client, a.Store, batch.WithReporter(batch.LogReporter{PlayerEvery: 100}))
	a.Deriver = timeseries.New(a.Client, a.Client)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config

	switch cfg.StoreBackend {
	case config.BackendFile:
		fs, err := store.NewFileStore(cfg.StoreRoot)
		if err != nil {
			return err
		}
		a.Store = fs
		a.health = func(context.Context) error {
			_, err := os.Stat(fs.Root())
			return err
		}

	case config.BackendRedis:
		rc, err := store.DialRedis(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		rs := store.NewRedisStore(rc, cfg.RedisPrefix)
		a.Store = rs
		a.health = rs.Health
		a.closers = append(a.closers, func() { _ = rs.Close() })

	case config.BackendPostgres:
		db, err := repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     cfg.DatabasePortString(),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			return err
		}
		a.Store = db.SeasonData
		a.health = db.Health
		a.closers = append(a.closers, db.Close)

	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	log.Info().Str("backend", cfg.StoreBackend).Msg("Season store ready")
	return nil
}

// Handler returns the HTTP handler for health, metrics and lookups
func (a *App) Handler() *api.Handler {
	return api.NewHandler(a.Store, a.Deriver, a.health)
}

// StatOptions returns the batch options from configuration
func (a *App) StatOptions() batch.StatOptions {
	return batch.StatOptions{
		ReportType: client.ReportType(a.Config.ReportType),
		ActiveOnly: a.Config.ActiveOnly,
	}
}

// Seasons parses the configured season list; an empty list means the current season
func (a *App) Seasons(ctx context.Context) ([]models.Season, error) {
	if len(a.Config.Seasons) == 0 {
		season, err := a.Client.CurrentSeason(ctx)
		if err != nil {
			return nil, err
		}
		return []models.Season{season}, nil
	}
	return models.ParseSeasons(a.Config.Seasons)
}

// Close releases store connections
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// SetupLogger configures the zerolog logger
func SetupLogger(appEnv, logLevel string) {
	// Pretty console logging in development
	if appEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if logLevel != "" {
		parsedLevel, err := zerolog.ParseLevel(logLevel)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}
