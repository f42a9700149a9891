package ingest

import (
	"context"
	"fmt"

	"github.com/harmonia-labs/artistpulse/internal/constants"
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/report"
)

// BuildArtistReport loads persisted snapshots for the artist and assembles
// the in-memory report. weeks bounds the artist series; the per-track
// listener history always spans at least the track history window so 28-day
// growth stays computable on short reports.
func (in *Ingestor) BuildArtistReport(ctx context.Context, artist *domain.Artist, weeks int, schema report.Schema) (*domain.Report, error) {
	snapshots, err := in.snapshots.ListByArtist(ctx, artist.ID, weeks)
	if err != nil {
		return nil, fmt.Errorf("load snapshots for %s: %w", artist.Name, err)
	}

	var items []domain.TrackReportItem
	if in.opts.IncludeTracks {
		items, err = in.loadTrackItems(ctx, artist, weeks)
		if err != nil {
			return nil, err
		}
	}

	return report.Assemble(artist.Name, snapshots, items, schema)
}

func (in *Ingestor) loadTrackItems(ctx context.Context, artist *domain.Artist, weeks int) ([]domain.TrackReportItem, error) {
	tracks, err := in.tracks.ListByArtist(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("load tracks for %s: %w", artist.Name, err)
	}

	historyWeeks := constants.ReportConfig.TrackHistoryWeeks
	if weeks > historyWeeks {
		historyWeeks = weeks
	}

	items := make([]domain.TrackReportItem, 0, len(tracks))
	for _, track := range tracks {
		snaps, err := in.tracks.ListTrackSnapshots(ctx, track.ID, historyWeeks)
		if err != nil {
			return nil, fmt.Errorf("load snapshots for track %s: %w", track.Title, err)
		}
		if len(snaps) == 0 {
			continue
		}

		placements, err := in.tracks.ListPlaylists(ctx, track.ID, constants.ReportConfig.PlaylistLimit)
		if err != nil {
			return nil, fmt.Errorf("load playlists for track %s: %w", track.Title, err)
		}

		// snaps come back most recent first
		history := make([]*float64, len(snaps))
		for i, snap := range snaps {
			history[i] = snap.SpotifyListeners
		}

		latest := snaps[0]
		items = append(items, domain.TrackReportItem{
			Title:                        track.Title,
			ListenerHistory:              history,
			CurrentListeners:             latest.SpotifyListeners,
			CurrentSaves:                 domain.Unsupported(),
			SaveRate:                     domain.Unsupported(),
			TikTokVideos:                 latest.TikTokVideos,
			SpotifyPlaylists:             latest.SpotifyPlaylists,
			SpotifyEditorialPlaylists:    latest.SpotifyEditorialPlaylists,
			AppleMusicPlaylists:          latest.AppleMusicPlaylists,
			AppleMusicEditorialPlaylists: latest.AppleMusicEditorialPlaylists,
			SpotifyPlaylistReach:         latest.SpotifyPlaylistReach,
			ShazamCounts:                 latest.ShazamCounts,
			YouTubeViews:                 latest.YouTubeViews,
			PlaylistsAdded:               placements,
		})
	}
	return items, nil
}
