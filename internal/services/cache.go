package services

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/thomas-fazzari/ciderfy/internal/match"
)

// ISRCStore persists resolved codes between runs. Keys are normalized
// title/artist pairs; an empty code is a valid entry recording a miss.
type ISRCStore interface {
	Get(ctx context.Context, title, artist string) (code string, found bool, err error)
	Put(ctx context.Context, title, artist, code string) error
}

// CachedCodeResolver decorates a [CodeResolver] with a persistent store so
// repeated runs skip the paced upstream lookup.
//
// Store failures are logged and absorbed; the cache is an optimization, not
// a correctness dependency.
type CachedCodeResolver struct {
	inner  CodeResolver
	store  ISRCStore
	logger *log.Logger
}

// NewCachedCodeResolver wraps inner with the given store.
func NewCachedCodeResolver(inner CodeResolver, store ISRCStore, logger *log.Logger) *CachedCodeResolver {
	return &CachedCodeResolver{inner: inner, store: store, logger: logger}
}

// ResolveISRC returns the cached code when one is stored, otherwise asks the
// inner resolver and records its answer. Negative results are cached too, so
// unresolvable tracks cost one upstream call ever.
func (c *CachedCodeResolver) ResolveISRC(ctx context.Context, title, artist string) (string, error) {
	key, artistKey := match.NormalizeTitle(title), match.NormalizeArtist(artist)

	code, found, err := c.store.Get(ctx, key, artistKey)
	if err != nil {
		c.logger.Warn("code cache read failed", "error", err)
	} else if found {
		return code, nil
	}

	code, err = c.inner.ResolveISRC(ctx, title, artist)
	if err != nil {
		return "", err
	}

	if err := c.store.Put(ctx, key, artistKey, code); err != nil {
		c.logger.Warn("code cache write failed", "error", err)
	}

	return code, nil
}
