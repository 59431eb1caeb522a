package tasks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/thomas-fazzari/ciderfy/internal/models"
	"github.com/thomas-fazzari/ciderfy/internal/services"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

// ExactPhase is the code-based matching phase over a whole batch.
//
// Satisfied by match.ExactResolver.
type ExactPhase interface {
	Resolve(ctx context.Context, tracks []models.SourceTrack) ([]models.SourceTrack, []*models.MatchOutcome, error)
}

// FuzzyPhase is the per-track scored-search fallback.
//
// Satisfied by match.FuzzyResolver.
type FuzzyPhase interface {
	Resolve(ctx context.Context, track models.SourceTrack) (models.MatchOutcome, error)
}

// ReconcileOptions tunes a single reconciliation run.
type ReconcileOptions struct {
	PlaylistName string // target playlist name; source name when empty
	DryRun       bool   // compute outcomes but skip the playlist write
	DisableFuzzy bool   // stop after the exact phase
}

// ReconcileRunResult contains all data from a full reconciliation run.
type ReconcileRunResult struct {
	SourcePlaylist    *models.PlaylistExport // Source playlist with tracks
	Outcomes          []models.MatchOutcome  // One outcome per deduped source track, input order
	CreatedPlaylistID string                 // Target playlist ID ("" on dry run or failure)
	TotalTracks       int                    // Deduped source track count
	ExactCount        int                    // Tracks matched by code
	FuzzyCount        int                    // Tracks matched by scored search
	NotFoundCount     int                    // Tracks without an acceptable match
	MatchPercentage   float64                // Matched tracks as percentage of total
}

// MatchedCount returns the number of tracks that found a catalog song.
func (r *ReconcileRunResult) MatchedCount() int {
	return r.ExactCount + r.FuzzyCount
}

// ReconcileEngine orchestrates a full source → target playlist reconciliation.
type ReconcileEngine struct {
	source  services.SourceLibrary
	exact   ExactPhase
	fuzzy   FuzzyPhase
	writer  services.PlaylistWriter
	workers int
}

// NewReconcileEngine creates a ReconcileEngine. workers bounds the fuzzy
// fan-out and defaults to 10.
func NewReconcileEngine(source services.SourceLibrary, exact ExactPhase, fuzzy FuzzyPhase, writer services.PlaylistWriter, workers int) *ReconcileEngine {
	if workers <= 0 {
		workers = 10
	}
	return &ReconcileEngine{
		source:  source,
		exact:   exact,
		fuzzy:   fuzzy,
		writer:  writer,
		workers: workers,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// fetchSource exports the source playlist by ID, falling back to a name
// lookup when the ID export fails.
func (e *ReconcileEngine) fetchSource(ctx context.Context, srcIDOrName string) (*models.PlaylistExport, error) {
	export, err := e.source.ExportPlaylist(ctx, srcIDOrName)
	if err == nil {
		return export, nil
	}
	if shared.IsBatchFatal(err) {
		return nil, err
	}

	playlists, playlistsErr := e.source.GetPlaylists(ctx)
	if playlistsErr != nil {
		return nil, fmt.Errorf("%w: failed to get playlists: %v", shared.ErrAPIRequest, playlistsErr)
	}

	var matchedID string
	for _, pl := range playlists {
		if pl.Name == srcIDOrName {
			matchedID = pl.ID
			break
		}
	}
	if matchedID == "" {
		return nil, fmt.Errorf("%w: no playlist found with name '%s'", shared.ErrPlaylistNotFound, srcIDOrName)
	}

	export, err = e.source.ExportPlaylist(ctx, matchedID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export playlist: %v", shared.ErrAPIRequest, err)
	}
	return export, nil
}

// mergeOutcomes combines the two phase results into the final report.
//
// The merged slice is parallel to tracks: an exact outcome wins, then a fuzzy
// outcome, then a not-found marker for tracks neither phase settled.
func mergeOutcomes(tracks []models.SourceTrack, exact, fuzzy []*models.MatchOutcome) []models.MatchOutcome {
	merged := make([]models.MatchOutcome, len(tracks))
	for i, t := range tracks {
		switch {
		case exact != nil && exact[i] != nil:
			merged[i] = *exact[i]
		case fuzzy != nil && fuzzy[i] != nil:
			merged[i] = *fuzzy[i]
		default:
			merged[i] = models.NotFound(t, "skipped")
		}
	}
	return merged
}

// finishResult fills the aggregate counters from the merged outcomes.
func finishResult(result *ReconcileRunResult, outcomes []models.MatchOutcome) {
	result.Outcomes = outcomes
	for _, o := range outcomes {
		switch {
		case o.Found() && o.Method == models.MatchMethodExact:
			result.ExactCount++
		case o.Found():
			result.FuzzyCount++
		default:
			result.NotFoundCount++
		}
	}
	if result.TotalTracks > 0 {
		result.MatchPercentage = float64(result.MatchedCount()) / float64(result.TotalTracks) * 100
	}
}

// Run performs a full reconciliation of one source playlist.
//
// Every deduped source track yields exactly one outcome, in input order. On a
// batch-fatal failure (rate limiting, authorization, cancellation) the error
// is returned alongside the outcomes settled so far; unsettled tracks are
// reported as skipped.
func (e *ReconcileEngine) Run(ctx context.Context, srcIDOrName string, opts ReconcileOptions, progress chan<- ProgressUpdate) (*ReconcileRunResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source library not initialized", shared.ErrServiceUnavailable)
	}

	result := &ReconcileRunResult{}

	e.sendProgress(progress, fetchingSourceUpdate())

	export, err := e.fetchSource(ctx, srcIDOrName)
	if err != nil {
		return nil, err
	}
	result.SourcePlaylist = export
	e.sendProgress(progress, foundPlaylistUpdate(export))

	tracks := models.DedupBySourceID(export.Tracks)
	result.TotalTracks = len(tracks)
	if len(tracks) == 0 {
		result.Outcomes = []models.MatchOutcome{}
		return result, fmt.Errorf("%w: playlist has no tracks", shared.ErrTrackNotFound)
	}

	e.sendProgress(progress, exactLookupUpdate(len(tracks)))

	enriched, exactOutcomes, err := e.exact.Resolve(ctx, tracks)
	if err != nil {
		finishResult(result, mergeOutcomes(tracks, exactOutcomes, nil))
		return result, err
	}

	exactMatched := 0
	for _, o := range exactOutcomes {
		if o != nil {
			exactMatched++
		}
	}
	e.sendProgress(progress, exactDoneUpdate(exactMatched, len(tracks)))

	fuzzyOutcomes := make([]*models.MatchOutcome, len(tracks))
	if !opts.DisableFuzzy && e.fuzzy != nil {
		var remainder []int
		for i, o := range exactOutcomes {
			if o == nil {
				remainder = append(remainder, i)
			}
		}

		e.sendProgress(progress, fuzzySearchUpdate(0, len(remainder), nil))

		var step atomic.Int64
		err := shared.ForEachIndex(ctx, e.workers, len(remainder), func(ctx context.Context, i int) error {
			idx := remainder[i]
			e.sendProgress(progress, fuzzySearchUpdate(int(step.Add(1)), len(remainder), &enriched[idx]))

			outcome, err := e.fuzzy.Resolve(ctx, enriched[idx])
			if err != nil {
				return err
			}
			fuzzyOutcomes[idx] = &outcome
			return nil
		})
		if err != nil {
			finishResult(result, mergeOutcomes(enriched, exactOutcomes, fuzzyOutcomes))
			return result, err
		}
	}

	outcomes := mergeOutcomes(enriched, exactOutcomes, fuzzyOutcomes)
	finishResult(result, outcomes)

	if opts.DryRun {
		return result, nil
	}

	if result.MatchedCount() == 0 {
		return result, fmt.Errorf("no tracks were matched - cannot create empty playlist")
	}

	catalogIDs := make([]string, 0, result.MatchedCount())
	for _, o := range outcomes {
		if o.Found() {
			catalogIDs = append(catalogIDs, o.Track.ID)
		}
	}

	name := opts.PlaylistName
	if name == "" {
		name = export.Playlist.Name
	}
	description := fmt.Sprintf("Reconciled from %s: %s", e.source.Name(), export.Playlist.Name)

	e.sendProgress(progress, createDestinationUpdate(name))

	playlistID, err := e.writer.CreatePlaylist(ctx, name, description, catalogIDs)
	if err != nil {
		return result, fmt.Errorf("failed to create playlist: %w", err)
	}

	result.CreatedPlaylistID = playlistID
	e.sendProgress(progress, createdPlaylistUpdate(name, playlistID))
	return result, nil
}
