package main

import (
	"context"
	"fmt"

	"github.com/thomas-fazzari/ciderfy/internal/formatter"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
	"github.com/thomas-fazzari/ciderfy/internal/tasks"
	"github.com/urfave/cli/v3"
)

// consumeProgress drains engine progress updates to the output writer.
//
// Returns a channel that closes once progressCh is closed and fully drained,
// so callers can sequence the summary after the last update.
func (r *Runner) consumeProgress(progressCh <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExactLookup:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.FuzzySearch:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()
	return done
}

func (r *Runner) writeSyncSummary(result *tasks.ReconcileRunResult, title string) {
	r.writePlain("\n")
	r.writePlainHeader(title)
	if result.SourcePlaylist != nil {
		r.writePlain("Source: %s (%d tracks)\n", result.SourcePlaylist.Playlist.Name, result.TotalTracks)
	}
	r.writePlain("Matched: %d/%d (%.1f%%): %d exact, %d fuzzy\n",
		result.MatchedCount(), result.TotalTracks, result.MatchPercentage, result.ExactCount, result.FuzzyCount)

	if result.CreatedPlaylistID != "" {
		r.writePlain("Created playlist: %s\n", result.CreatedPlaylistID)
	}

	if result.NotFoundCount > 0 {
		r.writePlain("\nUnmatched tracks (%d):\n", result.NotFoundCount)
		for _, outcome := range result.Outcomes {
			if !outcome.Found() {
				r.writePlain("  - %s - %s (%s)\n", outcome.Source.Artist, outcome.Source.Title, outcome.Reason)
			}
		}
	}
}

// reconcile runs the engine with progress streaming and returns the result.
func (r *Runner) reconcile(ctx context.Context, sourceIDOrName string, opts tasks.ReconcileOptions) (*tasks.ReconcileRunResult, error) {
	if r.engine == nil {
		return nil, fmt.Errorf("%w: reconciliation engine not initialized (check Spotify and Apple Music credentials)", shared.ErrServiceUnavailable)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.consumeProgress(progressCh)

	result, err := r.engine.Run(ctx, sourceIDOrName, opts, progressCh)
	close(progressCh)
	<-done

	return result, err
}

// SyncRun runs a full Spotify → Apple Music reconciliation.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	sourceIDOrName := cmd.String("source")
	reportPath := cmd.String("report")

	opts := tasks.ReconcileOptions{
		PlaylistName: cmd.String("name"),
		DryRun:       cmd.Bool("dry-run"),
		DisableFuzzy: cmd.Bool("no-fuzzy") || !r.config.Matching.EnableFuzzy,
	}

	r.logger.Info("starting reconciliation", "source", sourceIDOrName, "dry_run", opts.DryRun)
	r.writePlain("Starting playlist reconciliation...\n")
	r.writePlain("Source: %s\n\n", sourceIDOrName)

	result, err := r.reconcile(ctx, sourceIDOrName, opts)
	if err != nil {
		if result != nil && len(result.Outcomes) > 0 {
			r.writePlainln("Run failed with %d of %d tracks resolved", result.MatchedCount(), result.TotalTracks)
		}
		return err
	}

	title := "Reconciliation Complete!"
	if opts.DryRun {
		title = "Dry Run Complete!"
	}
	r.writeSyncSummary(result, title)

	if reportPath != "" {
		written, err := formatter.WriteReport(result, reportPath)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.writePlain("\nReport saved to %s\n", written)
	}

	return nil
}

// SyncReport matches a playlist without creating anything and saves a report.
func (r *Runner) SyncReport(ctx context.Context, cmd *cli.Command) error {
	sourceIDOrName := cmd.String("source")

	opts := tasks.ReconcileOptions{
		DryRun:       true,
		DisableFuzzy: cmd.Bool("no-fuzzy") || !r.config.Matching.EnableFuzzy,
	}

	r.logger.Info("generating match report", "source", sourceIDOrName)
	r.writePlain("Matching playlist...\n")
	r.writePlain("Source: %s\n\n", sourceIDOrName)

	result, err := r.reconcile(ctx, sourceIDOrName, opts)
	if err != nil {
		return err
	}

	written, err := formatter.WriteReport(result, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	r.writeSyncSummary(result, "Match Report")
	r.writePlain("\nReport saved to %s\n", written)

	return nil
}
