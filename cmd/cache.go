package main

import (
	"context"
	"fmt"

	"github.com/thomas-fazzari/ciderfy/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats prints counts for the local ISRC cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if r.repo == nil {
		return fmt.Errorf("%w: cache database not initialized, run 'ciderfy setup database'", shared.ErrServiceUnavailable)
	}

	total, hits, err := r.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	r.writePlain("Cached resolutions: %d\n", total)
	r.writePlain("  With ISRC: %d\n", hits)
	r.writePlain("  Known misses: %d\n", total-hits)

	return nil
}

// CacheClear deletes every cached resolution.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.repo == nil {
		return fmt.Errorf("%w: cache database not initialized, run 'ciderfy setup database'", shared.ErrServiceUnavailable)
	}

	if err := r.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("cache cleared")
	r.writePlain("✓ Cache cleared\n")

	return nil
}
