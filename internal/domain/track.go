package domain

import "time"

// MetricStatus distinguishes why a metric value is absent. Most absent
// values are Unavailable (the fetch failed or the source had no data for
// that week); NotSupportedBySource marks metrics the upstream API never
// exposes at all, such as per-track saves.
type MetricStatus int

const (
	MetricAvailable MetricStatus = iota
	MetricUnavailable
	MetricNotSupportedBySource
)

// MetricValue is a nullable metric with an availability marker.
type MetricValue struct {
	Value  *float64     `json:"value,omitempty"`
	Status MetricStatus `json:"status"`
}

func Unsupported() MetricValue {
	return MetricValue{Status: MetricNotSupportedBySource}
}

type Track struct {
	ID                 int64     `json:"id"`
	ArtistID           int64     `json:"artistId"`
	ChartmetricTrackID int64     `json:"chartmetricTrackId"`
	SpotifyTrackID     string    `json:"spotifyTrackId,omitempty"`
	Title              string    `json:"title"`
	CreatedAt          time.Time `json:"createdAt"`
}

// TrackWeeklySnapshot is one row of track metric values for one week
// bucket, keyed uniquely by (TrackID, WeekStart).
type TrackWeeklySnapshot struct {
	TrackID   int64     `json:"trackId"`
	WeekStart time.Time `json:"weekStartDate"`

	SpotifyListeners *float64 `json:"spotifyListeners,omitempty"`
	SpotifySaves     *float64 `json:"spotifySaves,omitempty"`
	SpotifySaveRate  *float64 `json:"spotifySaveRate,omitempty"`

	TikTokVideos                 *float64 `json:"tiktokVideos,omitempty"`
	SpotifyPlaylists             *float64 `json:"spotifyPlaylists,omitempty"`
	SpotifyEditorialPlaylists    *float64 `json:"spotifyEditorialPlaylists,omitempty"`
	AppleMusicPlaylists          *float64 `json:"appleMusicPlaylists,omitempty"`
	AppleMusicEditorialPlaylists *float64 `json:"appleMusicEditorialPlaylists,omitempty"`
	SpotifyPlaylistReach         *float64 `json:"spotifyPlaylistReach,omitempty"`
	ShazamCounts                 *float64 `json:"shazamCounts,omitempty"`
	YouTubeViews                 *float64 `json:"youtubeViews,omitempty"`
}

// PlaylistPlacement records one playlist the track was added to. These are
// pass-through records: they carry no growth computation and flow verbatim
// into the report.
type PlaylistPlacement struct {
	TrackID      int64      `json:"trackId"`
	PlaylistName string     `json:"playlistName"`
	Platform     string     `json:"platform"`
	Followers    *float64   `json:"followers,omitempty"`
	AddedAt      *time.Time `json:"addedAt,omitempty"`
	Curator      string     `json:"curator,omitempty"`
	URL          string     `json:"url,omitempty"`
}

// TrackReportItem is the per-track input to the report assembler: an
// already-aligned weekly listener series plus current-state pass-through
// fields.
type TrackReportItem struct {
	Title            string      `json:"title"`
	ListenerHistory  []*float64  `json:"listenerHistory"`
	CurrentListeners *float64    `json:"currentListeners,omitempty"`
	CurrentSaves     MetricValue `json:"currentSaves"`
	SaveRate         MetricValue `json:"saveRate"`

	TikTokVideos                 *float64 `json:"tiktokVideos,omitempty"`
	SpotifyPlaylists             *float64 `json:"spotifyPlaylists,omitempty"`
	SpotifyEditorialPlaylists    *float64 `json:"spotifyEditorialPlaylists,omitempty"`
	AppleMusicPlaylists          *float64 `json:"appleMusicPlaylists,omitempty"`
	AppleMusicEditorialPlaylists *float64 `json:"appleMusicEditorialPlaylists,omitempty"`
	SpotifyPlaylistReach         *float64 `json:"spotifyPlaylistReach,omitempty"`
	ShazamCounts                 *float64 `json:"shazamCounts,omitempty"`
	YouTubeViews                 *float64 `json:"youtubeViews,omitempty"`

	PlaylistsAdded []PlaylistPlacement `json:"playlistsAdded,omitempty"`
}
