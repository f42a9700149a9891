package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"go.uber.org/zap"
)

type TrackRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTrackRepository(postgres *PostgresService, logger *zap.Logger) *TrackRepository {
	return &TrackRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// FindOrCreate resolves the local track row for an external track ID,
// creating it on first sight.
func (r *TrackRepository) FindOrCreate(ctx context.Context, track *domain.Track) (*domain.Track, error) {
	query := `
		SELECT id, artist_id, chartmetric_track_id, spotify_track_id, title, created_at
		FROM tracks WHERE chartmetric_track_id = $1 LIMIT 1
	`
	existing, err := r.scanTrack(r.db.QueryRowContext(ctx, query, track.ChartmetricTrackID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	insert := `
		INSERT INTO tracks (artist_id, chartmetric_track_id, spotify_track_id, title)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	var spotifyID any
	if track.SpotifyTrackID != "" {
		spotifyID = track.SpotifyTrackID
	}

	created := *track
	err = r.db.QueryRowContext(ctx, insert,
		track.ArtistID, track.ChartmetricTrackID, spotifyID, track.Title,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create track: %w", err)
	}
	return &created, nil
}

func (r *TrackRepository) scanTrack(row *sql.Row) (*domain.Track, error) {
	var (
		track     domain.Track
		spotifyID sql.NullString
	)
	err := row.Scan(&track.ID, &track.ArtistID, &track.ChartmetricTrackID,
		&spotifyID, &track.Title, &track.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	if spotifyID.Valid {
		track.SpotifyTrackID = spotifyID.String
	}
	return &track, nil
}

// ListByArtist returns the artist's tracks in insertion order.
func (r *TrackRepository) ListByArtist(ctx context.Context, artistID int64) ([]domain.Track, error) {
	query := `
		SELECT id, artist_id, chartmetric_track_id, spotify_track_id, title, created_at
		FROM tracks WHERE artist_id = $1 ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		var (
			track     domain.Track
			spotifyID sql.NullString
		)
		if err := rows.Scan(&track.ID, &track.ArtistID, &track.ChartmetricTrackID,
			&spotifyID, &track.Title, &track.CreatedAt); err != nil {
			r.logger.Warn("Failed to scan track row", zap.Error(err))
			continue
		}
		if spotifyID.Valid {
			track.SpotifyTrackID = spotifyID.String
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// UpsertTrackSnapshot writes one weekly track snapshot, keyed by
// (track_id, week_start_date).
func (r *TrackRepository) UpsertTrackSnapshot(ctx context.Context, snap *domain.TrackWeeklySnapshot) error {
	query := `
		INSERT INTO track_weekly_snapshots (
			track_id, week_start_date,
			spotify_listeners, spotify_saves, spotify_save_rate,
			tiktok_videos, spotify_playlists, spotify_editorial_playlists,
			apple_music_playlists, apple_music_editorial_playlists,
			spotify_playlist_reach, shazam_counts, youtube_views
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (track_id, week_start_date) DO UPDATE SET
			spotify_listeners = EXCLUDED.spotify_listeners,
			spotify_saves = EXCLUDED.spotify_saves,
			spotify_save_rate = EXCLUDED.spotify_save_rate,
			tiktok_videos = EXCLUDED.tiktok_videos,
			spotify_playlists = EXCLUDED.spotify_playlists,
			spotify_editorial_playlists = EXCLUDED.spotify_editorial_playlists,
			apple_music_playlists = EXCLUDED.apple_music_playlists,
			apple_music_editorial_playlists = EXCLUDED.apple_music_editorial_playlists,
			spotify_playlist_reach = EXCLUDED.spotify_playlist_reach,
			shazam_counts = EXCLUDED.shazam_counts,
			youtube_views = EXCLUDED.youtube_views
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.TrackID, snap.WeekStart.UTC().Format("2006-01-02"),
		nullableFloat(snap.SpotifyListeners), nullableFloat(snap.SpotifySaves), nullableFloat(snap.SpotifySaveRate),
		nullableFloat(snap.TikTokVideos), nullableFloat(snap.SpotifyPlaylists), nullableFloat(snap.SpotifyEditorialPlaylists),
		nullableFloat(snap.AppleMusicPlaylists), nullableFloat(snap.AppleMusicEditorialPlaylists),
		nullableFloat(snap.SpotifyPlaylistReach), nullableFloat(snap.ShazamCounts), nullableFloat(snap.YouTubeViews),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track snapshot: %w", err)
	}
	return nil
}

// ListTrackSnapshots returns up to limit snapshot rows for the track, most
// recent week first.
func (r *TrackRepository) ListTrackSnapshots(ctx context.Context, trackID int64, limit int) ([]domain.TrackWeeklySnapshot, error) {
	query := `
		SELECT track_id, week_start_date,
		       spotify_listeners, spotify_saves, spotify_save_rate,
		       tiktok_videos, spotify_playlists, spotify_editorial_playlists,
		       apple_music_playlists, apple_music_editorial_playlists,
		       spotify_playlist_reach, shazam_counts, youtube_views
		FROM track_weekly_snapshots
		WHERE track_id = $1
		ORDER BY week_start_date DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, trackID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query track snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.TrackWeeklySnapshot
	for rows.Next() {
		var (
			snap      domain.TrackWeeklySnapshot
			weekStart time.Time
			values    [11]sql.NullFloat64
		)
		if err := rows.Scan(&snap.TrackID, &weekStart,
			&values[0], &values[1], &values[2], &values[3], &values[4],
			&values[5], &values[6], &values[7], &values[8], &values[9], &values[10],
		); err != nil {
			r.logger.Warn("Failed to scan track snapshot row", zap.Error(err))
			continue
		}

		snap.WeekStart = weekStart.UTC()
		fields := []**float64{
			&snap.SpotifyListeners, &snap.SpotifySaves, &snap.SpotifySaveRate,
			&snap.TikTokVideos, &snap.SpotifyPlaylists, &snap.SpotifyEditorialPlaylists,
			&snap.AppleMusicPlaylists, &snap.AppleMusicEditorialPlaylists,
			&snap.SpotifyPlaylistReach, &snap.ShazamCounts, &snap.YouTubeViews,
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

// ReplacePlaylists swaps the stored playlist placements for a track with
// the freshly fetched set.
func (r *TrackRepository) ReplacePlaylists(ctx context.Context, trackID int64, placements []domain.PlaylistPlacement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin playlist transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM track_playlists WHERE track_id = $1`, trackID); err != nil {
		return fmt.Errorf("failed to clear playlists: %w", err)
	}

	insert := `
		INSERT INTO track_playlists (track_id, playlist_name, platform, followers, added_at, curator, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, p := range placements {
		var addedAt any
		if p.AddedAt != nil {
			addedAt = *p.AddedAt
		}
		if _, err := tx.ExecContext(ctx, insert,
			trackID, p.PlaylistName, p.Platform, nullableFloat(p.Followers),
			addedAt, p.Curator, p.URL,
		); err != nil {
			return fmt.Errorf("failed to insert playlist placement: %w", err)
		}
	}

	return tx.Commit()
}

// ListPlaylists returns up to limit placements for the track, most recently
// added first.
func (r *TrackRepository) ListPlaylists(ctx context.Context, trackID int64, limit int) ([]domain.PlaylistPlacement, error) {
	query := `
		SELECT track_id, playlist_name, platform, followers, added_at, curator, url
		FROM track_playlists
		WHERE track_id = $1
		ORDER BY added_at DESC NULLS LAST
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, trackID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var placements []domain.PlaylistPlacement
	for rows.Next() {
		var (
			p         domain.PlaylistPlacement
			followers sql.NullFloat64
			addedAt   sql.NullTime
			curator   sql.NullString
			u         sql.NullString
		)
		if err := rows.Scan(&p.TrackID, &p.PlaylistName, &p.Platform, &followers, &addedAt, &curator, &u); err != nil {
			r.logger.Warn("Failed to scan playlist row", zap.Error(err))
			continue
		}
		if followers.Valid {
			p.Followers = &followers.Float64
		}
		if addedAt.Valid {
			t := addedAt.Time.UTC()
			p.AddedAt = &t
		}
		if curator.Valid {
			p.Curator = curator.String
		}
		if u.Valid {
			p.URL = u.String
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}
