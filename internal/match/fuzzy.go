package match

import (
	"context"
	"strings"

	"github.com/thomas-fazzari/ciderfy/internal/models"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

const (
	// DefaultThreshold is the minimum combined similarity required to
	// accept a fuzzy match.
	DefaultThreshold = 0.7

	// DefaultSearchLimit caps the candidates fetched per search query.
	DefaultSearchLimit = 10
)

// FuzzyResolver matches a single unmatched track through free-text catalog
// search, scoring candidates with [Similarity].
type FuzzyResolver struct {
	catalog    Catalog
	storefront string
	limit      int
	threshold  float64
}

// NewFuzzyResolver creates a FuzzyResolver. limit and threshold fall back to
// [DefaultSearchLimit] and [DefaultThreshold] when non-positive.
func NewFuzzyResolver(catalog Catalog, storefront string, limit int, threshold float64) *FuzzyResolver {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &FuzzyResolver{
		catalog:    catalog,
		storefront: storefront,
		limit:      limit,
		threshold:  threshold,
	}
}

// queryVariants builds the ordered, deduplicated query list for a track,
// most specific first: stripped title with artist, primary title with artist
// (when it differs from the stripped title), stripped title alone.
func queryVariants(t models.SourceTrack) []string {
	stripped := StripVersionSuffix(t.Title)
	if stripped == "" {
		stripped = strings.TrimSpace(t.Title)
	}
	normalized := NormalizeTitle(t.Title)
	primary := PrimaryTitle(normalized)

	var queries []string
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	add(stripped + " " + t.Artist)
	if primary != normalized {
		add(primary + " " + t.Artist)
	}
	add(stripped)

	return queries
}

// Resolve attempts to fuzzy-match one track.
//
// Queries are tried in order; the first query whose best candidate clears
// the acceptance threshold wins and later queries are not issued. Transient
// search failures skip to the next query; rate limiting, authorization
// failures, and cancellation are returned unchanged. When no query yields an
// acceptable candidate the track is reported as not found.
func (r *FuzzyResolver) Resolve(ctx context.Context, track models.SourceTrack) (models.MatchOutcome, error) {
	sawCandidate := false

	for _, query := range queryVariants(track) {
		candidates, err := r.catalog.Search(ctx, query, r.storefront, r.limit)
		if err != nil {
			if shared.IsBatchFatal(err) {
				return models.MatchOutcome{}, err
			}
			continue
		}
		if len(candidates) == 0 {
			continue
		}
		sawCandidate = true

		best := -1
		bestScore := 0.0
		for i, c := range candidates {
			if score := Similarity(track, c); score > bestScore {
				best, bestScore = i, score
			}
		}

		if best >= 0 && bestScore >= r.threshold {
			return models.Matched(track, candidates[best], models.MatchMethodFuzzy, bestScore), nil
		}
	}

	if !sawCandidate {
		return models.NotFound(track, "no search results"), nil
	}
	return models.NotFound(track, "best match below threshold"), nil
}
