package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

const (
	defaultMusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	defaultMusicBrainzPacing  = time.Second

	// Recordings below this lookup score are too uncertain to trust.
	musicBrainzMinScore = 80

	musicBrainzUserAgent = "ciderfy/0.1.0 (https://github.com/thomas-fazzari/ciderfy)"
)

// MusicBrainzService resolves ISRCs for tracks that arrive without one,
// via the MusicBrainz recording search.
//
// MusicBrainz enforces one request per second per client; a [rate.Limiter]
// keeps concurrent resolution workers inside that budget.
type MusicBrainzService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewMusicBrainzService creates a resolver paced at one call per interval.
func NewMusicBrainzService(baseURL string, interval time.Duration) *MusicBrainzService {
	if baseURL == "" {
		baseURL = defaultMusicBrainzBaseURL
	}
	if interval <= 0 {
		interval = defaultMusicBrainzPacing
	}

	return &MusicBrainzService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

// escapeLucene backslash-escapes the characters MusicBrainz's Lucene query
// parser treats as operators.
func escapeLucene(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`+-!(){}[]^"~*?:\/&|`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveISRC searches recordings by title and artist and returns the first
// ISRC of the best-scored recording, or "" when nothing scores high enough.
func (m *MusicBrainzService) ResolveISRC(ctx context.Context, title, artist string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf(`recording:"%s"`, escapeLucene(title))
	if artist != "" {
		query += fmt.Sprintf(` AND artist:"%s"`, escapeLucene(artist))
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("inc", "isrcs")
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/recording?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", musicBrainzUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	// MusicBrainz signals over-rate clients with 503 rather than 429.
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		return "", &shared.RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result struct {
		Recordings []struct {
			Score int      `json:"score"`
			ISRCs []string `json:"isrcs"`
		} `json:"recordings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}

	for _, rec := range result.Recordings {
		if rec.Score <= musicBrainzMinScore {
			continue
		}
		for _, code := range rec.ISRCs {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code != "" {
				return code, nil
			}
		}
	}

	return "", nil
}
