package constants

import "time"

var APIConfig = struct {
	ChartmetricBaseURL string
	RequestTimeout     time.Duration
}{
	ChartmetricBaseURL: "https://api.chartmetric.com/api",
	RequestTimeout:     20 * time.Second,
}

// ThrottleConfig holds the fallback minimum spacing between outbound
// requests per endpoint family, used when no interval is configured, plus
// the pause between artists in a batch run.
var ThrottleConfig = struct {
	Search        time.Duration
	Stats         time.Duration
	BatchCooldown time.Duration
}{
	Search:        10 * time.Second,
	Stats:         10 * time.Second,
	BatchCooldown: 3 * time.Second,
}

var RetryConfig = struct {
	MaxRetries int
	BaseDelay  time.Duration
}{
	MaxRetries: 3,
	BaseDelay:  30 * time.Second, // backoff: 30s, 60s, 120s
}

var CacheTTL = struct {
	ArtistSearch time.Duration
	StatHistory  time.Duration
	TrackStats   time.Duration
}{
	ArtistSearch: 24 * time.Hour,
	StatHistory:  6 * time.Hour,
	TrackStats:   6 * time.Hour,
}

var ReportConfig = struct {
	DefaultWeeks         int
	TrackHistoryWeeks    int
	PlaylistLimit        int
	MinPlaylistFollowers int
}{
	DefaultWeeks:         8,
	TrackHistoryWeeks:    12,
	PlaylistLimit:        20,
	MinPlaylistFollowers: 150,
}
