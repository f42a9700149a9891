// Package ingest drives the sequential fetch-align-persist pipeline. All
// external-API traffic is issued one call at a time through the shared
// throttle; a failing fetch is logged and recorded as missing data, never a
// reason to abort the surrounding artist or batch.
package ingest

import (
	"context"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/constants"
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/service/chartmetric"
	"go.uber.org/zap"
)

// metricsAPI is the slice of the Chartmetric service the ingestor consumes.
type metricsAPI interface {
	FindArtistByName(ctx context.Context, name string) (*domain.ArtistSearchResult, error)
	FetchLatestSocialStat(ctx context.Context, artistID int64, platform, field string) (*float64, error)
	FetchArtistStatHistory(ctx context.Context, artistID int64, platform, field string, since, until time.Time) ([]domain.TimePoint, error)
	FetchArtistTracks(ctx context.Context, artistID int64) ([]chartmetric.TrackListing, error)
	FetchTrackMetadata(ctx context.Context, trackID int64) (*chartmetric.TrackStatistics, error)
	FetchTrackStreamHistory(ctx context.Context, trackID int64) ([]domain.TimePoint, error)
	FetchTrackPlaylists(ctx context.Context, trackID int64, platform, status string, since, until time.Time, limit int) ([]domain.PlaylistPlacement, error)
}

type artistStore interface {
	FindByName(ctx context.Context, name string) (*domain.Artist, error)
	FindOrCreateByChartmetricID(ctx context.Context, candidate *domain.Artist) (*domain.Artist, error)
	UpdateCurrentStats(ctx context.Context, artistID int64, followers, monthlyListeners *float64) error
}

type snapshotStore interface {
	UpsertArtistSnapshot(ctx context.Context, snap *domain.WeeklyArtistSnapshot) error
	ListByArtist(ctx context.Context, artistID int64, limit int) ([]domain.WeeklyArtistSnapshot, error)
}

type trackStore interface {
	FindOrCreate(ctx context.Context, track *domain.Track) (*domain.Track, error)
	ListByArtist(ctx context.Context, artistID int64) ([]domain.Track, error)
	UpsertTrackSnapshot(ctx context.Context, snap *domain.TrackWeeklySnapshot) error
	ListTrackSnapshots(ctx context.Context, trackID int64, limit int) ([]domain.TrackWeeklySnapshot, error)
	ReplacePlaylists(ctx context.Context, trackID int64, placements []domain.PlaylistPlacement) error
	ListPlaylists(ctx context.Context, trackID int64, limit int) ([]domain.PlaylistPlacement, error)
}

// Options tune retry and cadence behavior per deployment.
type Options struct {
	MaxRetries     int
	BaseRetryDelay time.Duration
	IncludeTracks  bool
}

type Ingestor struct {
	api       metricsAPI
	artists   artistStore
	snapshots snapshotStore
	tracks    trackStore
	logger    *zap.Logger
	opts      Options

	now func() time.Time
}

func NewIngestor(api metricsAPI, artists artistStore, snapshots snapshotStore, tracks trackStore, logger *zap.Logger, opts Options) *Ingestor {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = constants.RetryConfig.MaxRetries
	}
	if opts.BaseRetryDelay <= 0 {
		opts.BaseRetryDelay = constants.RetryConfig.BaseDelay
	}
	return &Ingestor{
		api:       api,
		artists:   artists,
		snapshots: snapshots,
		tracks:    tracks,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}
