package domain

import "time"

// Artist is a tracked subject. ChartmetricID links it to the external
// analytics source; a zero value means the artist exists only locally.
type Artist struct {
	ID                      int64     `json:"id"`
	Name                    string    `json:"name"`
	ChartmetricID           int64     `json:"chartmetricId,omitempty"`
	SpotifyArtistID         string    `json:"spotifyArtistId,omitempty"`
	SpotifyFollowers        *float64  `json:"spotifyFollowers,omitempty"`
	SpotifyMonthlyListeners *float64  `json:"spotifyMonthlyListeners,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// ArtistSearchResult is one candidate returned by the external search
// endpoint, before it is resolved into a local Artist row.
type ArtistSearchResult struct {
	ID                      int64    `json:"id"`
	Name                    string   `json:"name"`
	Verified                bool     `json:"verified,omitempty"`
	SpotifyArtistID         string   `json:"spotify_id,omitempty"`
	SpotifyFollowers        *float64 `json:"sp_followers,omitempty"`
	SpotifyMonthlyListeners *float64 `json:"sp_monthly_listeners,omitempty"`
}

// WeeklyArtistSnapshot is one row of artist metric values for one week
// bucket, keyed uniquely by (ArtistID, WeekStart). All metric fields are
// nullable: a nil value means the metric was unavailable that week.
type WeeklyArtistSnapshot struct {
	ArtistID  int64     `json:"artistId"`
	WeekStart time.Time `json:"weekStartDate"`

	SpotifyFollowers        *float64 `json:"spotifyFollowers,omitempty"`
	SpotifyMonthlyListeners *float64 `json:"spotifyMonthlyListeners,omitempty"`
	SpotifyStreamsTotal     *float64 `json:"spotifyStreamsTotal,omitempty"`
	SpotifySavesTotal       *float64 `json:"spotifySavesTotal,omitempty"`
	SpotifySaveRate         *float64 `json:"spotifySaveRate,omitempty"`
	AppleMusicFollowers     *float64 `json:"appleMusicFollowers,omitempty"`
	AppleMusicListeners     *float64 `json:"appleMusicListeners,omitempty"`
	InstagramFollowers      *float64 `json:"instagramFollowers,omitempty"`
	TikTokFollowers         *float64 `json:"tiktokFollowers,omitempty"`
	TikTokLikes             *float64 `json:"tiktokLikes,omitempty"`
	TwitterFollowers        *float64 `json:"twitterFollowers,omitempty"`
	FacebookFollowers       *float64 `json:"facebookFollowers,omitempty"`
	YouTubeSubscribers      *float64 `json:"youtubeSubscribers,omitempty"`
}

// Field returns the named metric value, or nil with ok=false when the field
// name is not part of the snapshot contract. The names match the report
// schema's row definitions.
func (s *WeeklyArtistSnapshot) Field(name string) (*float64, bool) {
	if s == nil {
		return nil, true
	}
	switch name {
	case "spotifyFollowers":
		return s.SpotifyFollowers, true
	case "spotifyMonthlyListeners":
		return s.SpotifyMonthlyListeners, true
	case "spotifyStreamsTotal":
		return s.SpotifyStreamsTotal, true
	case "spotifySavesTotal":
		return s.SpotifySavesTotal, true
	case "spotifySaveRate":
		return s.SpotifySaveRate, true
	case "appleMusicFollowers":
		return s.AppleMusicFollowers, true
	case "appleMusicListeners":
		return s.AppleMusicListeners, true
	case "instagramFollowers":
		return s.InstagramFollowers, true
	case "tiktokFollowers":
		return s.TikTokFollowers, true
	case "tiktokLikes":
		return s.TikTokLikes, true
	case "twitterFollowers":
		return s.TwitterFollowers, true
	case "facebookFollowers":
		return s.FacebookFollowers, true
	case "youtubeSubscribers":
		return s.YouTubeSubscribers, true
	default:
		return nil, false
	}
}
