package ingest

import (
	"context"
	"testing"

	"github.com/harmonia-labs/artistpulse/internal/constants"
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/internal/service/chartmetric"
)

func TestIngestTracksReachStandsInForListeners(t *testing.T) {
	api := &fakeAPI{
		trackListings: []chartmetric.TrackListing{
			{ChartmetricTrackID: 9, Title: "Hit Single", Statistics: &chartmetric.TrackStatistics{
				SpotifyStreams:       fp(50000),
				SpotifyPlaylistReach: fp(120000),
			}},
		},
	}
	tracks := &fakeTrackStore{}
	in := newTestIngestor(api, &fakeArtistStore{}, &fakeSnapshotStore{}, tracks)

	artist := &domain.Artist{ID: 1, Name: "Test Artist", ChartmetricID: 4444}
	if err := in.IngestTracks(context.Background(), artist); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tracks.snapUpserts) != constants.ReportConfig.TrackHistoryWeeks {
		t.Fatalf("expected one snapshot per history week, got %d", len(tracks.snapUpserts))
	}

	current := tracks.snapUpserts[0]
	if current.SpotifyListeners == nil || *current.SpotifyListeners != 120000 {
		t.Errorf("expected playlist reach to stand in for listeners, got %v", current.SpotifyListeners)
	}
	if current.SpotifyPlaylistReach == nil || *current.SpotifyPlaylistReach != 120000 {
		t.Errorf("expected playlist reach recorded, got %v", current.SpotifyPlaylistReach)
	}
	// current-state counters describe only the most recent week
	if tracks.snapUpserts[1].SpotifyPlaylistReach != nil || tracks.snapUpserts[1].SpotifyListeners != nil {
		t.Errorf("expected older weeks untouched by current-state counters, got %+v", tracks.snapUpserts[1])
	}
}

func TestIngestTracksStreamsBackfillWithoutReach(t *testing.T) {
	api := &fakeAPI{
		trackListings: []chartmetric.TrackListing{
			{ChartmetricTrackID: 9, Title: "B-Side", Statistics: &chartmetric.TrackStatistics{
				SpotifyStreams: fp(50000),
			}},
		},
	}
	tracks := &fakeTrackStore{}
	in := newTestIngestor(api, &fakeArtistStore{}, &fakeSnapshotStore{}, tracks)

	if err := in.IngestTracks(context.Background(), &domain.Artist{ID: 1, Name: "Test Artist"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current := tracks.snapUpserts[0]
	if current.SpotifyListeners == nil || *current.SpotifyListeners != 50000 {
		t.Errorf("expected stream total as the listeners stand-in, got %v", current.SpotifyListeners)
	}
}

func TestIngestTracksFiltersSmallPlaylists(t *testing.T) {
	api := &fakeAPI{
		trackListings: []chartmetric.TrackListing{
			{ChartmetricTrackID: 9, Title: "Hit Single"},
		},
		playlists: []domain.PlaylistPlacement{
			{PlaylistName: "New Music Friday", Followers: fp(100000)},
			{PlaylistName: "Tiny Mix", Followers: fp(10)},
			{PlaylistName: "No Count"},
		},
	}
	tracks := &fakeTrackStore{}
	in := newTestIngestor(api, &fakeArtistStore{}, &fakeSnapshotStore{}, tracks)

	if err := in.IngestTracks(context.Background(), &domain.Artist{ID: 1, Name: "Test Artist"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kept := tracks.replaced[1]
	if len(kept) != 2 {
		t.Fatalf("expected the small playlist dropped, got %d placements", len(kept))
	}
	if kept[0].PlaylistName != "New Music Friday" || kept[1].PlaylistName != "No Count" {
		t.Errorf("wrong placements kept: %+v", kept)
	}
}
