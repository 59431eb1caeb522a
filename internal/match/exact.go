package match

import (
	"context"
	"strings"

	"github.com/thomas-fazzari/ciderfy/internal/models"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

const (
	// defaultWorkers bounds the code-resolution fan-out.
	defaultWorkers = 10

	// maxLookupCodes is the target catalog's hard limit on codes per
	// exact-lookup call.
	maxLookupCodes = 25
)

// CodeResolver resolves a cross-reference code (ISRC) for a track.
//
// Implementations are expected to pace themselves; the resolvers call
// concurrently. An empty string with a nil error means "unknown".
type CodeResolver interface {
	ResolveISRC(ctx context.Context, title, artist string) (string, error)
}

// Catalog is the slice of the target catalog the resolvers consume: batched
// exact lookups keyed by upper-cased ISRC, and free-text song search.
type Catalog interface {
	LookupByISRC(ctx context.Context, codes []string, storefront string) (map[string]models.CatalogTrack, error)
	Search(ctx context.Context, query, storefront string, limit int) ([]models.CatalogTrack, error)
}

// ExactResolver matches source tracks to catalog songs via their ISRC.
//
// Tracks missing a code are first run through a [CodeResolver]; tracks that
// end up with a code are looked up in the target catalog in batches of 25.
// A code present in the source catalog does not guarantee presence in the
// target one, so lookup misses fall through to fuzzy matching.
type ExactResolver struct {
	resolver   CodeResolver
	catalog    Catalog
	storefront string
	workers    int
}

// NewExactResolver creates an ExactResolver. workers bounds the concurrent
// code resolutions and defaults to 10.
func NewExactResolver(resolver CodeResolver, catalog Catalog, storefront string, workers int) *ExactResolver {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ExactResolver{
		resolver:   resolver,
		catalog:    catalog,
		storefront: storefront,
		workers:    workers,
	}
}

// Resolve runs the exact-match phase over the whole batch.
//
// Returns the input tracks enriched with any newly resolved codes, and a
// slice of outcomes parallel to the input where a nil entry means the track
// must be routed to fuzzy matching. Per-item failures are absorbed; rate
// limiting, authorization failures, and cancellation abort the phase and are
// returned unchanged, with outcomes completed so far retained.
func (r *ExactResolver) Resolve(ctx context.Context, tracks []models.SourceTrack) ([]models.SourceTrack, []*models.MatchOutcome, error) {
	enriched := make([]models.SourceTrack, len(tracks))
	copy(enriched, tracks)
	outcomes := make([]*models.MatchOutcome, len(tracks))

	// Fan out code resolution; each worker writes only its own slot.
	err := shared.ForEachIndex(ctx, r.workers, len(enriched), func(ctx context.Context, i int) error {
		if enriched[i].ISRC != "" {
			return nil
		}
		code, err := r.resolver.ResolveISRC(ctx, enriched[i].Title, enriched[i].Artist)
		if err != nil {
			if shared.IsBatchFatal(err) {
				return err
			}
			return nil // transient: the track goes to fuzzy matching
		}
		if code != "" {
			enriched[i] = enriched[i].WithISRC(code)
		}
		return nil
	})
	if err != nil {
		return enriched, outcomes, err
	}

	// Collect unique codes in first-seen order. Comparison is
	// case-insensitive throughout.
	seen := make(map[string]struct{})
	var codes []string
	for _, t := range enriched {
		if t.ISRC == "" {
			continue
		}
		code := strings.ToUpper(t.ISRC)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	// Batched lookups are issued sequentially: batch order matters for
	// idempotent retries, and the catalog is paced anyway.
	found := make(map[string]models.CatalogTrack, len(codes))
	var fatal error
	for start := 0; start < len(codes); start += maxLookupCodes {
		end := start + maxLookupCodes
		if end > len(codes) {
			end = len(codes)
		}

		hits, err := r.catalog.LookupByISRC(ctx, codes[start:end], r.storefront)
		if err != nil {
			if shared.IsBatchFatal(err) {
				fatal = err
				break
			}
			continue // transient: these tracks fall through to fuzzy
		}

		for code, track := range hits {
			key := strings.ToUpper(code)
			if _, ok := found[key]; !ok { // first hit wins on duplicates
				found[key] = track
			}
		}
	}

	for i, t := range enriched {
		if t.ISRC == "" {
			continue
		}
		if track, ok := found[strings.ToUpper(t.ISRC)]; ok {
			outcome := models.Matched(t, track, models.MatchMethodExact, 1.0)
			outcomes[i] = &outcome
		}
	}

	return enriched, outcomes, fatal
}
