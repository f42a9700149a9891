package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harmonia-labs/artistpulse/internal/config"
	"github.com/harmonia-labs/artistpulse/internal/constants"
	"github.com/harmonia-labs/artistpulse/internal/repository"
	"github.com/harmonia-labs/artistpulse/internal/service/cache"
	"github.com/harmonia-labs/artistpulse/internal/service/chartmetric"
	"github.com/harmonia-labs/artistpulse/internal/service/ingest"
	"go.uber.org/zap"
)

// Container bundles the assembled services the commands run against.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Chartmetric *chartmetric.Service
	Artists     *repository.ArtistRepository
	Snapshots   *repository.SnapshotRepository
	Tracks      *repository.TrackRepository
	Ingestor    *ingest.Ingestor

	closers []func()
}

// Close releases held connections in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// NewBatch wires a batch runner over the container's ingestor.
func (c *Container) NewBatch() *ingest.Batch {
	return ingest.NewBatch(c.Ingestor, c.Logger,
		c.Config.Report.Weeks, c.Config.Report.IncludeTracks,
		constants.ThrottleConfig.BatchCooldown)
}

// Build assembles all infrastructure services. Heavy initialization (DB,
// cache, schema) happens here so the commands stay focused on orchestration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	postgresSvc, err := repository.NewPostgresService(repository.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	if err := postgresSvc.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	// the cache is optional; when Redis is disabled or unreachable every
	// lookup simply goes to the live API
	var responseCache chartmetric.Cache
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewService(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, running without response cache", zap.Error(cacheErr))
		} else {
			responseCache = cacheSvc
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
		}
	}

	httpClient := &http.Client{Timeout: constants.APIConfig.RequestTimeout}
	tokens := chartmetric.NewTokenSource(httpClient, cfg.Chartmetric.BaseURL,
		cfg.Chartmetric.AccessToken, cfg.Chartmetric.RefreshToken, logger)
	client := chartmetric.NewClient(httpClient, cfg.Chartmetric.BaseURL, tokens, cfg.Chartmetric.Offline, logger)
	chartmetricSvc := chartmetric.NewService(client, chartmetric.NewThrottle(), responseCache, logger,
		cfg.Chartmetric.ThrottleInterval)

	artistRepo := repository.NewArtistRepository(postgresSvc, logger)
	snapshotRepo := repository.NewSnapshotRepository(postgresSvc, logger)
	trackRepo := repository.NewTrackRepository(postgresSvc, logger)

	ingestor := ingest.NewIngestor(chartmetricSvc, artistRepo, snapshotRepo, trackRepo, logger, ingest.Options{
		MaxRetries:     cfg.Chartmetric.MaxRetries,
		BaseRetryDelay: cfg.Chartmetric.BaseRetryDelay,
		IncludeTracks:  cfg.Report.IncludeTracks,
	})

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Chartmetric: chartmetricSvc,
		Artists:     artistRepo,
		Snapshots:   snapshotRepo,
		Tracks:      trackRepo,
		Ingestor:    ingestor,
		closers:     closers,
	}, nil
}
