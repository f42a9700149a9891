package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpsertTrackSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &TrackRepository{db: db, logger: zap.NewNop()}

	snap := &domain.TrackWeeklySnapshot{
		TrackID:          3,
		WeekStart:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SpotifyListeners: fp(5000),
		YouTubeViews:     fp(9000),
	}

	mock.ExpectExec("INSERT INTO track_weekly_snapshots").
		WithArgs(int64(3), "2025-06-01",
			5000.0, nil, nil, nil, nil, nil, nil, nil, nil, nil, 9000.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertTrackSnapshot(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePlaylistsClearsThenInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &TrackRepository{db: db, logger: zap.NewNop()}

	added := time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	placements := []domain.PlaylistPlacement{
		{PlaylistName: "New Music Friday", Platform: "spotify", Followers: fp(100000), AddedAt: &added, Curator: "Spotify"},
		{PlaylistName: "Indie Gems", Platform: "spotify"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM track_playlists").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO track_playlists").
		WithArgs(int64(3), "New Music Friday", "spotify", 100000.0, added, "Spotify", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO track_playlists").
		WithArgs(int64(3), "Indie Gems", "spotify", nil, nil, "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplacePlaylists(context.Background(), 3, placements))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePlaylistsRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &TrackRepository{db: db, logger: zap.NewNop()}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM track_playlists").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO track_playlists").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = repo.ReplacePlaylists(context.Background(), 3, []domain.PlaylistPlacement{
		{PlaylistName: "Broken", Platform: "spotify"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTrackSnapshotsMostRecentFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &TrackRepository{db: db, logger: zap.NewNop()}

	columns := []string{
		"track_id", "week_start_date",
		"spotify_listeners", "spotify_saves", "spotify_save_rate",
		"tiktok_videos", "spotify_playlists", "spotify_editorial_playlists",
		"apple_music_playlists", "apple_music_editorial_playlists",
		"spotify_playlist_reach", "shazam_counts", "youtube_views",
	}
	rows := sqlmock.NewRows(columns).
		AddRow(int64(3), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			5000.0, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
		AddRow(int64(3), time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC),
			4000.0, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery("FROM track_weekly_snapshots").
		WithArgs(int64(3), 12).
		WillReturnRows(rows)

	snapshots, err := repo.ListTrackSnapshots(context.Background(), 3, 12)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.NotNil(t, snapshots[0].SpotifyListeners)
	assert.Equal(t, 5000.0, *snapshots[0].SpotifyListeners)
	assert.True(t, snapshots[0].WeekStart.After(snapshots[1].WeekStart))
	assert.NoError(t, mock.ExpectationsWereMet())
}
