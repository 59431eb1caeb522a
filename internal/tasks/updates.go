package tasks

import (
	"fmt"

	"github.com/thomas-fazzari/ciderfy/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	ExactLookup
	FuzzySearch
	CreatePlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case ExactLookup:
		return "exact_lookup"
	case FuzzySearch:
		return "fuzzy_search"
	case CreatePlaylist:
		return "create_playlist"
	default:
		return ""
	}
}

func fetchingSourceUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: "Fetching source playlist from Spotify...",
	}
}

func foundPlaylistUpdate(export *models.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks)),
		Data:    export,
	}
}

func exactLookupUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExactLookup,
		Step:    0,
		Total:   total,
		Message: "Matching tracks by ISRC...",
	}
}

func exactDoneUpdate(matched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExactLookup,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("ISRC phase matched %d/%d tracks", matched, total),
	}
}

func fuzzySearchUpdate(step, total int, tr *models.SourceTrack) ProgressUpdate {
	if tr == nil {
		return ProgressUpdate{
			Phase:   FuzzySearch,
			Step:    step,
			Total:   total,
			Message: "Searching the catalog for remaining tracks...",
		}
	}
	return ProgressUpdate{
		Phase:   FuzzySearch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func createDestinationUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating Apple Music playlist: %s", name),
	}
}

func createdPlaylistUpdate(name, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id),
		Data:    id,
	}
}
