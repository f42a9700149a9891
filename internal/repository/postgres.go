package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresService struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func NewPostgresService(cfg PostgresConfig, logger *zap.Logger) (*PostgresService, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &PostgresService{
		db:     db,
		logger: logger,
	}, nil
}

// EnsureSchema creates the tracking tables when they do not exist yet. The
// unique keys on (artist_id, week_start_date) and (track_id,
// week_start_date) back the idempotent upsert contract.
func (ps *PostgresService) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			chartmetric_id BIGINT UNIQUE,
			spotify_artist_id TEXT,
			spotify_followers DOUBLE PRECISION,
			spotify_monthly_listeners DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS weekly_artist_snapshots (
			artist_id BIGINT NOT NULL REFERENCES artists(id),
			week_start_date DATE NOT NULL,
			spotify_followers DOUBLE PRECISION,
			spotify_monthly_listeners DOUBLE PRECISION,
			spotify_streams_total DOUBLE PRECISION,
			spotify_saves_total DOUBLE PRECISION,
			spotify_save_rate DOUBLE PRECISION,
			apple_music_followers DOUBLE PRECISION,
			apple_music_listeners DOUBLE PRECISION,
			instagram_followers DOUBLE PRECISION,
			tiktok_followers DOUBLE PRECISION,
			tiktok_likes DOUBLE PRECISION,
			twitter_followers DOUBLE PRECISION,
			facebook_followers DOUBLE PRECISION,
			youtube_subscribers DOUBLE PRECISION,
			PRIMARY KEY (artist_id, week_start_date)
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id BIGSERIAL PRIMARY KEY,
			artist_id BIGINT NOT NULL REFERENCES artists(id),
			chartmetric_track_id BIGINT NOT NULL UNIQUE,
			spotify_track_id TEXT,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS track_weekly_snapshots (
			track_id BIGINT NOT NULL REFERENCES tracks(id),
			week_start_date DATE NOT NULL,
			spotify_listeners DOUBLE PRECISION,
			spotify_saves DOUBLE PRECISION,
			spotify_save_rate DOUBLE PRECISION,
			tiktok_videos DOUBLE PRECISION,
			spotify_playlists DOUBLE PRECISION,
			spotify_editorial_playlists DOUBLE PRECISION,
			apple_music_playlists DOUBLE PRECISION,
			apple_music_editorial_playlists DOUBLE PRECISION,
			spotify_playlist_reach DOUBLE PRECISION,
			shazam_counts DOUBLE PRECISION,
			youtube_views DOUBLE PRECISION,
			PRIMARY KEY (track_id, week_start_date)
		)`,
		`CREATE TABLE IF NOT EXISTS track_playlists (
			id BIGSERIAL PRIMARY KEY,
			track_id BIGINT NOT NULL REFERENCES tracks(id),
			playlist_name TEXT NOT NULL,
			platform TEXT NOT NULL,
			followers DOUBLE PRECISION,
			added_at TIMESTAMPTZ,
			curator TEXT,
			url TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := ps.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (ps *PostgresService) GetDB() *sql.DB {
	return ps.db
}

func (ps *PostgresService) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

func (ps *PostgresService) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
