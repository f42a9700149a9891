package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/constants"
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/service/align"
	"github.com/harmonia-labs/artistpulse/internal/service/chartmetric"
	"github.com/harmonia-labs/artistpulse/internal/util"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
)

// IngestTracks pulls the artist's track catalog, then per track the stream
// history, current statistics and past playlist placements. A failing track
// is logged and skipped; the method only errors when the catalog itself
// cannot be listed or persistence fails.
func (in *Ingestor) IngestTracks(ctx context.Context, artist *domain.Artist) error {
	listings, err := chartmetric.RetryWithBackoff(ctx, in.logger, in.opts.MaxRetries, in.opts.BaseRetryDelay,
		func() ([]chartmetric.TrackListing, error) {
			return in.api.FetchArtistTracks(ctx, artist.ChartmetricID)
		})
	if err != nil {
		if errors.IsConfiguration(err) || ctx.Err() != nil || errors.IsDataUnavailable(err) {
			return err
		}
		return errors.NewDataUnavailableError(fmt.Sprintf("track catalog unavailable for %s", artist.Name), err)
	}

	weekStarts := util.WeekStarts(in.now(), constants.ReportConfig.TrackHistoryWeeks)
	since := weekStarts[len(weekStarts)-1]
	until := weekStarts[0].AddDate(0, 0, 7)

	for _, listing := range listings {
		if err := in.ingestTrack(ctx, artist, listing, weekStarts, since, until); err != nil {
			if errors.IsConfiguration(err) || ctx.Err() != nil {
				return err
			}
			in.logger.Warn("Track skipped",
				zap.String("artist", artist.Name),
				zap.String("track", listing.Title),
				zap.Int64("chartmetric_track_id", listing.ChartmetricTrackID),
				zap.Error(err),
			)
		}
	}

	in.logger.Info("Tracks ingested",
		zap.String("artist", artist.Name),
		zap.Int("tracks", len(listings)),
	)
	return nil
}

func (in *Ingestor) ingestTrack(ctx context.Context, artist *domain.Artist, listing chartmetric.TrackListing, weekStarts []time.Time, since, until time.Time) error {
	track, err := in.tracks.FindOrCreate(ctx, &domain.Track{
		ArtistID:           artist.ID,
		ChartmetricTrackID: listing.ChartmetricTrackID,
		SpotifyTrackID:     listing.SpotifyTrackID,
		Title:              listing.Title,
	})
	if err != nil {
		return err
	}

	stats := listing.Statistics
	if stats == nil {
		fetched, err := chartmetric.RetryWithBackoff(ctx, in.logger, in.opts.MaxRetries, in.opts.BaseRetryDelay,
			func() (*chartmetric.TrackStatistics, error) {
				return in.api.FetchTrackMetadata(ctx, listing.ChartmetricTrackID)
			})
		if err != nil {
			if errors.IsConfiguration(err) || ctx.Err() != nil {
				return err
			}
			in.logger.Warn("Track statistics unavailable",
				zap.String("track", listing.Title), zap.Error(err))
		} else {
			stats = fetched
		}
	}

	history, err := chartmetric.RetryWithBackoff(ctx, in.logger, in.opts.MaxRetries, in.opts.BaseRetryDelay,
		func() ([]domain.TimePoint, error) {
			return in.api.FetchTrackStreamHistory(ctx, listing.ChartmetricTrackID)
		})
	if err != nil {
		if errors.IsConfiguration(err) || ctx.Err() != nil {
			return err
		}
		in.logger.Warn("Stream history unavailable",
			zap.String("track", listing.Title), zap.Error(err))
		history = nil
	}

	for i, weekStart := range weekStarts {
		snap := &domain.TrackWeeklySnapshot{
			TrackID:          track.ID,
			WeekStart:        weekStart,
			SpotifyListeners: align.ToWeek(history, weekStart),
		}
		// current-state counters have no history; they only describe the
		// most recent week
		if i == 0 && stats != nil {
			snap.TikTokVideos = stats.TikTokVideos
			snap.SpotifyPlaylists = stats.SpotifyPlaylists
			snap.SpotifyEditorialPlaylists = stats.SpotifyEditorialPlaylists
			snap.AppleMusicPlaylists = stats.AppleMusicPlaylists
			snap.AppleMusicEditorialPlaylists = stats.AppleMusicEditorialPlaylists
			snap.SpotifyPlaylistReach = stats.SpotifyPlaylistReach
			snap.ShazamCounts = stats.ShazamCounts
			snap.YouTubeViews = stats.YouTubeViews
			if snap.SpotifyListeners == nil {
				if stats.SpotifyPlaylistReach != nil {
					snap.SpotifyListeners = stats.SpotifyPlaylistReach
				} else {
					snap.SpotifyListeners = stats.SpotifyStreams
				}
			}
		}
		if err := in.tracks.UpsertTrackSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("upsert track snapshot for %s week %s: %w",
				track.Title, util.FormatDateOnly(weekStart), err)
		}
	}

	placements, err := chartmetric.RetryWithBackoff(ctx, in.logger, in.opts.MaxRetries, in.opts.BaseRetryDelay,
		func() ([]domain.PlaylistPlacement, error) {
			return in.api.FetchTrackPlaylists(ctx, listing.ChartmetricTrackID, "spotify", "past", since, until, 100)
		})
	if err != nil {
		if errors.IsConfiguration(err) || ctx.Err() != nil {
			return err
		}
		in.logger.Warn("Playlist placements unavailable",
			zap.String("track", listing.Title), zap.Error(err))
		return nil
	}

	kept := placements[:0]
	for _, p := range placements {
		if p.Followers == nil || *p.Followers >= float64(constants.ReportConfig.MinPlaylistFollowers) {
			kept = append(kept, p)
		}
	}
	return in.tracks.ReplacePlaylists(ctx, track.ID, kept)
}
