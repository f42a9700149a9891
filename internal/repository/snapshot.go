package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"go.uber.org/zap"
)

type SnapshotRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSnapshotRepository(postgres *PostgresService, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// UpsertArtistSnapshot writes one weekly snapshot row, keyed by
// (artist_id, week_start_date). Re-ingesting the same week overwrites
// rather than duplicates.
func (r *SnapshotRepository) UpsertArtistSnapshot(ctx context.Context, snap *domain.WeeklyArtistSnapshot) error {
	query := `
		INSERT INTO weekly_artist_snapshots (
			artist_id, week_start_date,
			spotify_followers, spotify_monthly_listeners,
			spotify_streams_total, spotify_saves_total, spotify_save_rate,
			apple_music_followers, apple_music_listeners,
			instagram_followers, tiktok_followers, tiktok_likes,
			twitter_followers, facebook_followers, youtube_subscribers
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (artist_id, week_start_date) DO UPDATE SET
			spotify_followers = EXCLUDED.spotify_followers,
			spotify_monthly_listeners = EXCLUDED.spotify_monthly_listeners,
			spotify_streams_total = EXCLUDED.spotify_streams_total,
			spotify_saves_total = EXCLUDED.spotify_saves_total,
			spotify_save_rate = EXCLUDED.spotify_save_rate,
			apple_music_followers = EXCLUDED.apple_music_followers,
			apple_music_listeners = EXCLUDED.apple_music_listeners,
			instagram_followers = EXCLUDED.instagram_followers,
			tiktok_followers = EXCLUDED.tiktok_followers,
			tiktok_likes = EXCLUDED.tiktok_likes,
			twitter_followers = EXCLUDED.twitter_followers,
			facebook_followers = EXCLUDED.facebook_followers,
			youtube_subscribers = EXCLUDED.youtube_subscribers
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.ArtistID, snap.WeekStart.UTC().Format("2006-01-02"),
		nullableFloat(snap.SpotifyFollowers), nullableFloat(snap.SpotifyMonthlyListeners),
		nullableFloat(snap.SpotifyStreamsTotal), nullableFloat(snap.SpotifySavesTotal), nullableFloat(snap.SpotifySaveRate),
		nullableFloat(snap.AppleMusicFollowers), nullableFloat(snap.AppleMusicListeners),
		nullableFloat(snap.InstagramFollowers), nullableFloat(snap.TikTokFollowers), nullableFloat(snap.TikTokLikes),
		nullableFloat(snap.TwitterFollowers), nullableFloat(snap.FacebookFollowers), nullableFloat(snap.YouTubeSubscribers),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert artist snapshot: %w", err)
	}
	return nil
}

// ListByArtist returns up to limit snapshot rows for the artist, most
// recent week first.
func (r *SnapshotRepository) ListByArtist(ctx context.Context, artistID int64, limit int) ([]domain.WeeklyArtistSnapshot, error) {
	query := `
		SELECT artist_id, week_start_date,
		       spotify_followers, spotify_monthly_listeners,
		       spotify_streams_total, spotify_saves_total, spotify_save_rate,
		       apple_music_followers, apple_music_listeners,
		       instagram_followers, tiktok_followers, tiktok_likes,
		       twitter_followers, facebook_followers, youtube_subscribers
		FROM weekly_artist_snapshots
		WHERE artist_id = $1
		ORDER BY week_start_date DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, artistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.WeeklyArtistSnapshot
	for rows.Next() {
		var (
			snap      domain.WeeklyArtistSnapshot
			weekStart time.Time
			values    [13]sql.NullFloat64
		)
		if err := rows.Scan(&snap.ArtistID, &weekStart,
			&values[0], &values[1], &values[2], &values[3], &values[4],
			&values[5], &values[6], &values[7], &values[8], &values[9],
			&values[10], &values[11], &values[12],
		); err != nil {
			r.logger.Warn("Failed to scan snapshot row", zap.Error(err))
			continue
		}

		snap.WeekStart = weekStart.UTC()
		fields := []**float64{
			&snap.SpotifyFollowers, &snap.SpotifyMonthlyListeners,
			&snap.SpotifyStreamsTotal, &snap.SpotifySavesTotal, &snap.SpotifySaveRate,
			&snap.AppleMusicFollowers, &snap.AppleMusicListeners,
			&snap.InstagramFollowers, &snap.TikTokFollowers, &snap.TikTokLikes,
			&snap.TwitterFollowers, &snap.FacebookFollowers, &snap.YouTubeSubscribers,
		}
		for i, field := range fields {
			if values[i].Valid {
				v := values[i].Float64
				*field = &v
			}
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
