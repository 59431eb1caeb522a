// Apple Music API client implementing [Catalog] and [PlaylistWriter].
//
// Catalog endpoints are storefront-scoped; library writes go through the
// authenticated user's music-user-token. Response types are based on
// https://developer.apple.com/documentation/applemusicapi
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-fazzari/ciderfy/internal/models"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

const (
	defaultAppleMusicBaseURL = "https://api.music.apple.com/v1"
	defaultAppleMusicPacing  = 110 * time.Millisecond
)

// AppleMusicSong represents a catalog song resource.
type AppleMusicSong struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name             string `json:"name"`
		ArtistName       string `json:"artistName"`
		AlbumName        string `json:"albumName"`
		DurationInMillis int    `json:"durationInMillis"`
		ISRC             string `json:"isrc"`
		URL              string `json:"url"`
	} `json:"attributes"`
}

// AppleMusicService talks to the Apple Music API.
//
// Every request waits on a [shared.Pacer], so concurrent callers are
// serialized to the catalog's minimum inter-call spacing.
type AppleMusicService struct {
	baseURL        string
	developerToken string
	userToken      string
	httpClient     *http.Client
	pacer          *shared.Pacer
}

// NewAppleMusicService creates a new Apple Music client. baseURL defaults to
// the public API; pacing defaults to 110ms between calls.
func NewAppleMusicService(baseURL, developerToken, userToken string, pacing time.Duration) *AppleMusicService {
	if baseURL == "" {
		baseURL = defaultAppleMusicBaseURL
	}
	if pacing <= 0 {
		pacing = defaultAppleMusicPacing
	}

	return &AppleMusicService{
		baseURL:        baseURL,
		developerToken: developerToken,
		userToken:      userToken,
		httpClient:     http.DefaultClient,
		pacer:          shared.NewPacer(pacing),
	}
}

func (a *AppleMusicService) doRequest(ctx context.Context, method, endpoint string, body []byte, result any) error {
	if err := a.pacer.Wait(ctx); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.developerToken)
	if a.userToken != "" {
		req.Header.Set("Music-User-Token", a.userToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &shared.RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var errResp struct {
			Errors []struct {
				Title  string `json:"title"`
				Detail string `json:"detail"`
			} `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && len(errResp.Errors) > 0 {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Errors[0].Title)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// parseRetryAfter reads a Retry-After header value in seconds; 0 when absent
// or malformed.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func songToCatalogTrack(s AppleMusicSong) models.CatalogTrack {
	return models.CatalogTrack{
		ID:         s.ID,
		Title:      s.Attributes.Name,
		Artist:     s.Attributes.ArtistName,
		Album:      s.Attributes.AlbumName,
		DurationMS: s.Attributes.DurationInMillis,
		ISRC:       strings.ToUpper(s.Attributes.ISRC),
		URL:        s.Attributes.URL,
	}
}

// LookupByISRC resolves up to [MaxLookupCodes] codes through a single
// filter[isrc] call.
//
// Calls GET /catalog/{storefront}/songs?filter[isrc]=...
func (a *AppleMusicService) LookupByISRC(ctx context.Context, codes []string, storefront string) (map[string]models.CatalogTrack, error) {
	if len(codes) == 0 {
		return map[string]models.CatalogTrack{}, nil
	}
	if len(codes) > MaxLookupCodes {
		return nil, fmt.Errorf("%w: %d codes exceeds lookup limit of %d", shared.ErrInvalidArgument, len(codes), MaxLookupCodes)
	}

	upper := make([]string, len(codes))
	for i, c := range codes {
		upper[i] = strings.ToUpper(strings.TrimSpace(c))
	}

	endpoint := fmt.Sprintf("/catalog/%s/songs?filter[isrc]=%s",
		url.PathEscape(storefront), url.QueryEscape(strings.Join(upper, ",")))

	var response struct {
		Data []AppleMusicSong `json:"data"`
	}
	if err := a.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	hits := make(map[string]models.CatalogTrack, len(response.Data))
	for _, song := range response.Data {
		code := strings.ToUpper(song.Attributes.ISRC)
		if code == "" {
			continue
		}
		if _, ok := hits[code]; ok {
			continue // first hit wins; the API may return several pressings
		}
		hits[code] = songToCatalogTrack(song)
	}

	return hits, nil
}

// Search performs a free-text song search against the storefront catalog.
//
// Calls GET /catalog/{storefront}/search?types=songs&term=...
func (a *AppleMusicService) Search(ctx context.Context, query, storefront string, limit int) ([]models.CatalogTrack, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("types", "songs")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("term", query)

	endpoint := fmt.Sprintf("/catalog/%s/search?%s", url.PathEscape(storefront), params.Encode())

	var response struct {
		Results struct {
			Songs struct {
				Data []AppleMusicSong `json:"data"`
			} `json:"songs"`
		} `json:"results"`
	}
	if err := a.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.CatalogTrack, 0, len(response.Results.Songs.Data))
	for _, song := range response.Results.Songs.Data {
		tracks = append(tracks, songToCatalogTrack(song))
	}
	return tracks, nil
}

// CreatePlaylist creates a library playlist and inserts the given catalog
// song IDs in order, batching by [MaxPlaylistBatch].
//
// Batches are issued sequentially: insertion order matters, and a retry
// against the same playlist must not interleave.
//
// Calls POST /me/library/playlists and POST /me/library/playlists/{id}/tracks.
func (a *AppleMusicService) CreatePlaylist(ctx context.Context, name, description string, catalogIDs []string) (string, error) {
	type songRef struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}

	firstBatch := catalogIDs
	if len(firstBatch) > MaxPlaylistBatch {
		firstBatch = firstBatch[:MaxPlaylistBatch]
	}

	refs := make([]songRef, len(firstBatch))
	for i, id := range firstBatch {
		refs[i] = songRef{ID: id, Type: "songs"}
	}

	createReq := map[string]any{
		"attributes": map[string]string{
			"name":        name,
			"description": description,
		},
		"relationships": map[string]any{
			"tracks": map[string]any{"data": refs},
		},
	}

	body, err := json.Marshal(createReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal create request: %w", err)
	}

	var createResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := a.doRequest(ctx, http.MethodPost, "/me/library/playlists", body, &createResp); err != nil {
		return "", err
	}
	if len(createResp.Data) == 0 {
		return "", fmt.Errorf("%w: create playlist returned no resource", shared.ErrAPIRequest)
	}
	playlistID := createResp.Data[0].ID

	for start := MaxPlaylistBatch; start < len(catalogIDs); start += MaxPlaylistBatch {
		end := start + MaxPlaylistBatch
		if end > len(catalogIDs) {
			end = len(catalogIDs)
		}

		refs := make([]songRef, 0, end-start)
		for _, id := range catalogIDs[start:end] {
			refs = append(refs, songRef{ID: id, Type: "songs"})
		}

		body, err := json.Marshal(map[string]any{"data": refs})
		if err != nil {
			return playlistID, fmt.Errorf("failed to marshal add tracks request: %w", err)
		}

		endpoint := fmt.Sprintf("/me/library/playlists/%s/tracks", url.PathEscape(playlistID))
		if err := a.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return playlistID, fmt.Errorf("failed to add tracks batch: %w", err)
		}
	}

	return playlistID, nil
}
