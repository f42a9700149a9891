package chartmetric

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/harmonia-labs/artistpulse/internal/constants"
	"github.com/harmonia-labs/artistpulse/internal/domain"
	"github.com/harmonia-labs/artistpulse/pkg/errors"
	"go.uber.org/zap"
)

// Cache is the optional response cache in front of the rate-limited API.
// Get reports whether the key was present.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service wraps the Chartmetric endpoints the pipeline consumes. Every call
// waits on the shared throttle before going out; failures come back as
// DataUnavailableError so callers can record a missing value and move on.
type Service struct {
	client   *Client
	throttle *Throttle
	cache    Cache
	logger   *zap.Logger

	statInterval   time.Duration
	searchInterval time.Duration
}

// NewService wires the endpoint layer over the transport. minInterval is the
// configured request spacing; a non-positive value falls back to the built-in
// per-family defaults.
func NewService(client *Client, throttle *Throttle, cache Cache, logger *zap.Logger, minInterval time.Duration) *Service {
	statInterval := minInterval
	if statInterval <= 0 {
		statInterval = constants.ThrottleConfig.Stats
	}
	searchInterval := minInterval
	if searchInterval <= 0 {
		searchInterval = constants.ThrottleConfig.Search
	}
	return &Service{
		client:         client,
		throttle:       throttle,
		cache:          cache,
		logger:         logger,
		statInterval:   statInterval,
		searchInterval: searchInterval,
	}
}

var searchEnvelopes = [][]string{
	{"obj", "artists"},
	{"data"},
	{"data", "artists", "data"},
	{"artists", "data"},
}

// SearchArtists queries the artist search endpoint and returns candidates in
// API order.
func (s *Service) SearchArtists(ctx context.Context, name string, limit int) ([]domain.ArtistSearchResult, error) {
	if name == "" {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("chartmetric:search:%s:%d", name, limit)
	if s.cache != nil {
		var cached []domain.ArtistSearchResult
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	if err := s.throttle.Wait(ctx, s.searchInterval); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "artists")
	params.Set("limit", strconv.Itoa(limit))

	body, err := s.client.Get(ctx, "/search", params)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("artist search failed for %q", name), err)
	}

	items := normalizeItems(body, searchEnvelopes)
	results := make([]domain.ArtistSearchResult, 0, len(items))
	for _, raw := range items {
		var result domain.ArtistSearchResult
		if err := json.Unmarshal(raw, &result); err != nil {
			continue
		}
		if result.ID != 0 {
			results = append(results, result)
		}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, results, constants.CacheTTL.ArtistSearch)
	}
	return results, nil
}

// FindArtistByName returns the first search match, or nil when the search
// produced nothing.
func (s *Service) FindArtistByName(ctx context.Context, name string) (*domain.ArtistSearchResult, error) {
	results, err := s.SearchArtists(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// defaultStatField picks the metric key a platform reports under when the
// caller did not name one. Facebook counts likes, YouTube subscribers,
// everything else followers.
func defaultStatField(platform string) string {
	switch platform {
	case "youtube_channel", "youtube":
		return "subscribers"
	case "facebook":
		return "likes"
	default:
		return "followers"
	}
}

// FetchLatestSocialStat returns the most recent value for one platform
// metric, using latest=true so the API ignores date windows.
func (s *Service) FetchLatestSocialStat(ctx context.Context, artistID int64, platform, field string) (*float64, error) {
	if artistID == 0 || platform == "" {
		return nil, nil
	}

	if err := s.throttle.Wait(ctx, s.statInterval); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latest", "true")
	if field != "" {
		params.Set("field", field)
	}

	body, err := s.client.Get(ctx, fmt.Sprintf("/artist/%d/stat/%s", artistID, platform), params)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("latest %s stat unavailable for artist %d", platform, artistID), err)
	}

	key := field
	if key == "" {
		key = defaultStatField(platform)
	}

	points := parsePoints(normalizeItems(body, [][]string{{"obj", key}}))
	if len(points) == 0 {
		return nil, nil
	}
	// stat arrays are chronological; the latest value is last
	return points[len(points)-1].Value, nil
}

// FetchArtistStatHistory returns the raw observation series for one platform
// metric inside [since, until].
func (s *Service) FetchArtistStatHistory(ctx context.Context, artistID int64, platform, field string, since, until time.Time) ([]domain.TimePoint, error) {
	if artistID == 0 || platform == "" {
		return nil, nil
	}

	key := field
	if key == "" {
		key = defaultStatField(platform)
	}

	cacheKey := fmt.Sprintf("chartmetric:stat:%d:%s:%s:%s:%s",
		artistID, platform, key, since.Format("2006-01-02"), until.Format("2006-01-02"))
	if s.cache != nil {
		var cached []domain.TimePoint
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	if err := s.throttle.Wait(ctx, s.statInterval); err != nil {
		return nil, err
	}

	params := url.Values{}
	if field != "" {
		params.Set("field", field)
	}
	if !since.IsZero() {
		params.Set("since", since.Format("2006-01-02"))
	}
	if !until.IsZero() {
		params.Set("until", until.Format("2006-01-02"))
	}

	body, err := s.client.Get(ctx, fmt.Sprintf("/artist/%d/stat/%s", artistID, platform), params)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("%s history unavailable for artist %d", platform, artistID), err)
	}

	points := parsePoints(normalizeItems(body, [][]string{{"obj", key}}))

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, points, constants.CacheTTL.StatHistory)
	}
	return points, nil
}

// TrackListing is one entry from the artist tracks endpoint.
type TrackListing struct {
	ChartmetricTrackID int64
	Title              string
	SpotifyTrackID     string
	Statistics         *TrackStatistics
}

// TrackStatistics carries the cm_statistics block of a track: current-state
// counters that flow into the report as pass-through fields.
type TrackStatistics struct {
	SpotifyStreams               *float64
	SpotifyPlaylistReach         *float64
	TikTokVideos                 *float64
	SpotifyPlaylists             *float64
	SpotifyEditorialPlaylists    *float64
	AppleMusicPlaylists          *float64
	AppleMusicEditorialPlaylists *float64
	ShazamCounts                 *float64
	YouTubeViews                 *float64
}

// FetchArtistTracks lists the artist's tracks with their embedded
// statistics.
func (s *Service) FetchArtistTracks(ctx context.Context, artistID int64) ([]TrackListing, error) {
	if artistID == 0 {
		return nil, nil
	}

	if err := s.throttle.Wait(ctx, s.statInterval); err != nil {
		return nil, err
	}

	body, err := s.client.Get(ctx, fmt.Sprintf("/artist/%d/tracks", artistID), nil)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("track list unavailable for artist %d", artistID), err)
	}

	items := normalizeItems(body, [][]string{{"obj"}, {"data"}})
	listings := make([]TrackListing, 0, len(items))
	for _, raw := range items {
		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		listing := parseTrackListing(entry)
		if listing.ChartmetricTrackID != 0 {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

func parseTrackListing(entry map[string]any) TrackListing {
	listing := TrackListing{}

	for _, key := range []string{"id", "cm_track", "cm_track_id"} {
		if id := asFloat(entry[key]); id != nil {
			listing.ChartmetricTrackID = int64(*id)
			break
		}
	}

	if name, ok := entry["name"].(string); ok && name != "" {
		listing.Title = name
	} else if title, ok := entry["title"].(string); ok && title != "" {
		listing.Title = title
	} else {
		listing.Title = "Untitled"
	}

	if ids, ok := entry["spotify_track_ids"].([]any); ok && len(ids) > 0 {
		if id, ok := ids[0].(string); ok {
			listing.SpotifyTrackID = id
		}
	} else if id, ok := entry["spotify_track_id"].(string); ok {
		listing.SpotifyTrackID = id
	}

	if stats, ok := entry["cm_statistics"].(map[string]any); ok {
		listing.Statistics = parseTrackStatistics(stats)
	}

	return listing
}

func parseTrackStatistics(stats map[string]any) *TrackStatistics {
	return &TrackStatistics{
		SpotifyStreams:               asFloat(stats["sp_streams"]),
		SpotifyPlaylistReach:         asFloat(stats["sp_playlist_total_reach"]),
		TikTokVideos:                 firstFloat(stats, "num_tt_videos", "tiktok_counts"),
		SpotifyPlaylists:             asFloat(stats["num_sp_playlists"]),
		SpotifyEditorialPlaylists:    asFloat(stats["num_sp_editorial_playlists"]),
		AppleMusicPlaylists:          asFloat(stats["num_am_playlists"]),
		AppleMusicEditorialPlaylists: asFloat(stats["num_am_editorial_playlists"]),
		ShazamCounts:                 asFloat(stats["shazam_counts"]),
		YouTubeViews:                 asFloat(stats["youtube_views"]),
	}
}

// FetchTrackMetadata returns the statistics block of one track's metadata.
func (s *Service) FetchTrackMetadata(ctx context.Context, trackID int64) (*TrackStatistics, error) {
	if trackID == 0 {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("chartmetric:track:%d:stats", trackID)
	if s.cache != nil {
		var cached TrackStatistics
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	if err := s.throttle.Wait(ctx, s.statInterval); err != nil {
		return nil, err
	}

	body, err := s.client.Get(ctx, fmt.Sprintf("/track/%d", trackID), nil)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("metadata unavailable for track %d", trackID), err)
	}

	stats := normalizeObject(body, [][]string{
		{"obj", "cm_statistics"},
		{"cm_statistics"},
		{"obj", "cm_track_statistics"},
	})
	if stats == nil {
		return nil, nil
	}

	parsed := parseTrackStatistics(stats)
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, parsed, constants.CacheTTL.TrackStats)
	}
	return parsed, nil
}

// FetchTrackStreamHistory returns the track's Spotify stream series.
func (s *Service) FetchTrackStreamHistory(ctx context.Context, trackID int64) ([]domain.TimePoint, error) {
	if trackID == 0 {
		return nil, nil
	}

	if err := s.throttle.Wait(ctx, s.statInterval); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("type", "streams")

	body, err := s.client.Get(ctx, fmt.Sprintf("/track/%d/spotify/stats/highest-playcounts", trackID), params)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("stream history unavailable for track %d", trackID), err)
	}

	// response shape: obj is a list of per-domain blocks, each with a data array
	blocks := normalizeItems(body, [][]string{{"obj"}})
	if len(blocks) == 0 {
		return nil, nil
	}
	var block struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(blocks[0], &block); err != nil {
		return nil, nil
	}
	return parsePoints(block.Data), nil
}

// FetchTrackPlaylists lists playlist placements for the track on one
// platform. status is "current" or "past".
func (s *Service) FetchTrackPlaylists(ctx context.Context, trackID int64, platform, status string, since, until time.Time, limit int) ([]domain.PlaylistPlacement, error) {
	if trackID == 0 {
		return nil, nil
	}
	if platform == "" {
		platform = "spotify"
	}
	if status == "" {
		status = "current"
	}

	if err := s.throttle.Wait(ctx, s.statInterval); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("editorial", "true")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if !since.IsZero() {
		params.Set("since", since.Format("2006-01-02"))
	}
	if !until.IsZero() {
		params.Set("until", until.Format("2006-01-02"))
	}

	body, err := s.client.Get(ctx, fmt.Sprintf("/track/%d/%s/%s/playlists", trackID, platform, status), params)
	if err != nil {
		if errors.IsRateLimit(err) || errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.NewDataUnavailableError(fmt.Sprintf("playlists unavailable for track %d", trackID), err)
	}

	items := normalizeItems(body, [][]string{{"obj"}, {"data"}})
	placements := make([]domain.PlaylistPlacement, 0, len(items))
	for _, raw := range items {
		var entry map[string]any
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if placement, ok := parsePlaylistEntry(entry, platform); ok {
			placements = append(placements, placement)
		}
	}
	return placements, nil
}

func parsePlaylistEntry(entry map[string]any, platform string) (domain.PlaylistPlacement, bool) {
	playlist, ok := entry["playlist"].(map[string]any)
	if !ok {
		playlist = entry
	}

	placement := domain.PlaylistPlacement{
		Platform:  platform,
		Followers: asFloat(playlist["followers"]),
	}

	for _, key := range []string{"name", "playlist_name"} {
		if name, ok := playlist[key].(string); ok && name != "" {
			placement.PlaylistName = name
			break
		}
	}
	if placement.PlaylistName == "" {
		return placement, false
	}

	for _, key := range []string{"added_at", "date", "created_at", "added_on"} {
		if raw, ok := playlist[key].(string); ok && raw != "" {
			for _, layout := range pointTimeLayouts {
				if t, err := time.Parse(layout, raw); err == nil {
					added := t.UTC()
					placement.AddedAt = &added
					break
				}
			}
			if placement.AddedAt != nil {
				break
			}
		}
	}

	for _, key := range []string{"owner_name", "curator_name"} {
		if curator, ok := playlist[key].(string); ok && curator != "" {
			placement.Curator = curator
			break
		}
	}
	if placement.Curator == "" {
		if owner, ok := playlist["owner"].(map[string]any); ok {
			if name, ok := owner["display_name"].(string); ok {
				placement.Curator = name
			}
		} else if owner, ok := playlist["owner"].(string); ok {
			placement.Curator = owner
		}
	}

	if urls, ok := playlist["external_urls"].(map[string]any); ok {
		if u, ok := urls["spotify"].(string); ok {
			placement.URL = u
		}
	}
	if placement.URL == "" {
		if u, ok := playlist["url"].(string); ok {
			placement.URL = u
		}
	}

	return placement, true
}

// asFloat coerces the numeric-or-string values Chartmetric emits for large
// counters.
func asFloat(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return &f
		}
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func firstFloat(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if f := asFloat(m[key]); f != nil {
			return f
		}
	}
	return nil
}
