package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/poofware/application-service/internal/config"
	"github.com/poofware/application-service/internal/metrics"
	"github.com/poofware/application-service/internal/repositories"
	"github.com/poofware/application-service/internal/services"
	"github.com/poofware/application-service/internal/utils"
	"github.com/poofware/application-service/internal/validation"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config             *config.Config
	Store              repositories.DocumentStore
	Metrics            *metrics.PrometheusMetrics
	ApplicationRepo    repositories.ApplicationRepository
	ApplicationService services.ApplicationService
}

func NewApp(cfg *config.Config) (*App, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, store), nil
}

// newApp wires the service graph on top of an already opened store.
func newApp(cfg *config.Config, store repositories.DocumentStore) *App {
	m := metrics.NewPrometheusMetrics()
	repo := repositories.NewApplicationRepository(store, cfg.ResumeBaseURL())
	svc := services.NewApplicationService(
		repo,
		store,
		validation.NewRuleset(nil),
		services.NewRandomQuoter(),
		m,
	)
	return &App{
		Config:             cfg,
		Store:              store,
		Metrics:            m,
		ApplicationRepo:    repo,
		ApplicationService: svc,
	}
}

func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
		utils.Logger.Infof("%s document store closed.", a.Config.AppName)
	}
}

func openStore(cfg *config.Config) (repositories.DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := connectWithBackoff(cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := repositories.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure applications table: %w", err)
		}
		return repositories.NewPostgresDocumentStore(pool), nil

	case config.StoreDriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := repositories.OpenSQLiteDocumentStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %q: %w", cfg.SQLitePath, err)
		}
		utils.Logger.Infof("Using SQLite document store at %s", cfg.SQLitePath)
		return store, nil

	case config.StoreDriverMemory:
		utils.Logger.Warn("Using in-memory document store; applications are lost on restart")
		return repositories.NewMemoryDocumentStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func connectWithBackoff(databaseURL string) (*pgxpool.Pool, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, databaseURL)
		cancel()
		if err == nil {
			utils.Logger.Infof("Connected to DB on attempt %d", i)
			return dbPool, nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
