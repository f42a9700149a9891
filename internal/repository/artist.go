package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"go.uber.org/zap"
)

type ArtistRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewArtistRepository(postgres *PostgresService, logger *zap.Logger) *ArtistRepository {
	return &ArtistRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

const artistColumns = `id, name, chartmetric_id, spotify_artist_id, spotify_followers, spotify_monthly_listeners, created_at, updated_at`

func (r *ArtistRepository) scanArtist(row *sql.Row) (*domain.Artist, error) {
	var (
		artist        domain.Artist
		chartmetricID sql.NullInt64
		spotifyID     sql.NullString
		followers     sql.NullFloat64
		listeners     sql.NullFloat64
	)

	err := row.Scan(&artist.ID, &artist.Name, &chartmetricID, &spotifyID,
		&followers, &listeners, &artist.CreatedAt, &artist.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	if chartmetricID.Valid {
		artist.ChartmetricID = chartmetricID.Int64
	}
	if spotifyID.Valid {
		artist.SpotifyArtistID = spotifyID.String
	}
	if followers.Valid {
		artist.SpotifyFollowers = &followers.Float64
	}
	if listeners.Valid {
		artist.SpotifyMonthlyListeners = &listeners.Float64
	}
	return &artist, nil
}

// FindByName returns the artist with the exact name, or nil.
func (r *ArtistRepository) FindByName(ctx context.Context, name string) (*domain.Artist, error) {
	query := fmt.Sprintf(`SELECT %s FROM artists WHERE name = $1 LIMIT 1`, artistColumns)
	return r.scanArtist(r.db.QueryRowContext(ctx, query, name))
}

// FindByChartmetricID returns the artist linked to the external ID, or nil.
func (r *ArtistRepository) FindByChartmetricID(ctx context.Context, chartmetricID int64) (*domain.Artist, error) {
	query := fmt.Sprintf(`SELECT %s FROM artists WHERE chartmetric_id = $1 LIMIT 1`, artistColumns)
	return r.scanArtist(r.db.QueryRowContext(ctx, query, chartmetricID))
}

// Create inserts a new artist row and returns it with its assigned ID.
func (r *ArtistRepository) Create(ctx context.Context, artist *domain.Artist) (*domain.Artist, error) {
	query := `
		INSERT INTO artists (name, chartmetric_id, spotify_artist_id, spotify_followers, spotify_monthly_listeners)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	var chartmetricID any
	if artist.ChartmetricID != 0 {
		chartmetricID = artist.ChartmetricID
	}
	var spotifyID any
	if artist.SpotifyArtistID != "" {
		spotifyID = artist.SpotifyArtistID
	}

	created := *artist
	err := r.db.QueryRowContext(ctx, query,
		artist.Name, chartmetricID, spotifyID,
		nullableFloat(artist.SpotifyFollowers), nullableFloat(artist.SpotifyMonthlyListeners),
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create artist: %w", err)
	}

	r.logger.Info("Artist created",
		zap.String("name", created.Name),
		zap.Int64("id", created.ID),
	)
	return &created, nil
}

// FindOrCreateByChartmetricID resolves the local artist row for an external
// search result, creating it on first sight.
func (r *ArtistRepository) FindOrCreateByChartmetricID(ctx context.Context, candidate *domain.Artist) (*domain.Artist, error) {
	if candidate.ChartmetricID != 0 {
		existing, err := r.FindByChartmetricID(ctx, candidate.ChartmetricID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return r.Create(ctx, candidate)
}

// UpdateCurrentStats refreshes the artist's latest headline figures.
// Best-effort: nil values leave the stored figures untouched.
func (r *ArtistRepository) UpdateCurrentStats(ctx context.Context, artistID int64, followers, monthlyListeners *float64) error {
	query := `
		UPDATE artists
		SET spotify_followers = COALESCE($2, spotify_followers),
		    spotify_monthly_listeners = COALESCE($3, spotify_monthly_listeners),
		    updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, artistID, nullableFloat(followers), nullableFloat(monthlyListeners)); err != nil {
		return fmt.Errorf("failed to update artist stats: %w", err)
	}
	return nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
