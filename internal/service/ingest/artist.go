package ingest

import (
	"context"
	"fmt"

	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/service/align"
	"github.com/harmonia-labs/artistpulse/internal/service/chartmetric"
	"github.com/harmonia-labs/artistpulse/internal/util"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
)

// platformMetric binds one platform stat endpoint to the snapshot field it
// fills.
type platformMetric struct {
	platform string
	field    string
	assign   func(*domain.WeeklyArtistSnapshot, *float64)
}

var artistMetrics = []platformMetric{
	{"spotify", "followers", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.SpotifyFollowers = v }},
	{"spotify", "listeners", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.SpotifyMonthlyListeners = v }},
	{"instagram", "", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.InstagramFollowers = v }},
	{"tiktok", "followers", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.TikTokFollowers = v }},
	{"tiktok", "likes", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.TikTokLikes = v }},
	{"twitter", "", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.TwitterFollowers = v }},
	{"facebook", "", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.FacebookFollowers = v }},
	{"youtube_channel", "", func(s *domain.WeeklyArtistSnapshot, v *float64) { s.YouTubeSubscribers = v }},
}

// IngestArtistByName resolves the named artist against the external source,
// fetches each platform history once, aligns the observations into the
// requested number of week buckets and upserts one snapshot row per week.
// Individual platform failures leave that metric nil for the affected weeks;
// only an unresolvable artist aborts.
func (in *Ingestor) IngestArtistByName(ctx context.Context, name string, weeks int) (*domain.Artist, error) {
	artist, err := in.resolveArtist(ctx, name)
	if err != nil {
		return nil, err
	}

	weekStarts := util.WeekStarts(in.now(), weeks)
	since := weekStarts[len(weekStarts)-1]
	until := weekStarts[0].AddDate(0, 0, 7)

	histories := make([][]domain.TimePoint, len(artistMetrics))
	for i, metric := range artistMetrics {
		points, err := chartmetric.RetryWithBackoff(ctx, in.logger, in.opts.MaxRetries, in.opts.BaseRetryDelay,
			func() ([]domain.TimePoint, error) {
				return in.api.FetchArtistStatHistory(ctx, artist.ChartmetricID, metric.platform, metric.field, since, until)
			})
		if err != nil {
			if errors.IsConfiguration(err) || ctx.Err() != nil {
				return nil, err
			}
			in.logger.Warn("Stat history unavailable, leaving metric empty",
				zap.String("artist", artist.Name),
				zap.String("platform", metric.platform),
				zap.String("field", metric.field),
				zap.Error(err),
			)
			points = nil
		}
		histories[i] = points
	}

	if err := in.refreshCurrentStats(ctx, artist, histories); err != nil {
		in.logger.Warn("Could not update current stats", zap.String("artist", artist.Name), zap.Error(err))
	}

	for _, weekStart := range weekStarts {
		snap := &domain.WeeklyArtistSnapshot{
			ArtistID:  artist.ID,
			WeekStart: weekStart,
		}
		for i, metric := range artistMetrics {
			metric.assign(snap, align.ToWeek(histories[i], weekStart))
		}
		if err := in.snapshots.UpsertArtistSnapshot(ctx, snap); err != nil {
			return nil, fmt.Errorf("upsert snapshot for %s week %s: %w",
				artist.Name, util.FormatDateOnly(weekStart), err)
		}
	}

	in.logger.Info("Artist ingested",
		zap.String("artist", artist.Name),
		zap.Int64("chartmetric_id", artist.ChartmetricID),
		zap.Int("weeks", len(weekStarts)),
	)
	return artist, nil
}

// resolveArtist maps a display name to a local artist row, preferring a live
// search match and falling back to a previously stored mapping when the
// search yields nothing.
func (in *Ingestor) resolveArtist(ctx context.Context, name string) (*domain.Artist, error) {
	candidate, err := in.api.FindArtistByName(ctx, name)
	if err != nil {
		if errors.IsConfiguration(err) || ctx.Err() != nil {
			return nil, err
		}
		in.logger.Warn("Artist search failed, falling back to stored mapping",
			zap.String("artist", name), zap.Error(err))
	}

	if candidate != nil {
		return in.artists.FindOrCreateByChartmetricID(ctx, &domain.Artist{
			Name:                    candidate.Name,
			ChartmetricID:           candidate.ID,
			SpotifyArtistID:         candidate.SpotifyArtistID,
			SpotifyFollowers:        candidate.SpotifyFollowers,
			SpotifyMonthlyListeners: candidate.SpotifyMonthlyListeners,
		})
	}

	stored, err := in.artists.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.ChartmetricID == 0 {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("artist %q could not be resolved to a Chartmetric ID", name),
			map[string]any{"artist": name},
		)
	}
	return stored, nil
}

// refreshCurrentStats records the latest Spotify figures on the artist row.
// The most recent observation in the already-fetched histories is used; a
// dedicated latest-stat call is only made when the history came back empty.
func (in *Ingestor) refreshCurrentStats(ctx context.Context, artist *domain.Artist, histories [][]domain.TimePoint) error {
	followers := latestValue(histories[0])
	if followers == nil {
		followers = artist.SpotifyFollowers
	}
	listeners := latestValue(histories[1])
	if listeners == nil {
		listeners = artist.SpotifyMonthlyListeners
	}

	if followers == nil {
		if v, err := in.api.FetchLatestSocialStat(ctx, artist.ChartmetricID, "spotify", "followers"); err == nil {
			followers = v
		}
	}
	if listeners == nil {
		if v, err := in.api.FetchLatestSocialStat(ctx, artist.ChartmetricID, "spotify", "listeners"); err == nil {
			listeners = v
		}
	}

	if followers == nil && listeners == nil {
		return nil
	}
	artist.SpotifyFollowers = followers
	artist.SpotifyMonthlyListeners = listeners
	return in.artists.UpdateCurrentStats(ctx, artist.ID, followers, listeners)
}

func latestValue(points []domain.TimePoint) *float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value != nil {
			return points[i].Value
		}
	}
	return nil
}
