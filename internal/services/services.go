package services

import (
	"context"

	"github.com/thomas-fazzari/ciderfy/internal/models"
)

// Hard limits imposed by the Apple Music API.
const (
	// MaxLookupCodes is the maximum number of ISRCs per exact-lookup call.
	MaxLookupCodes = 25
	// MaxPlaylistBatch is the maximum number of songs per playlist-insert call.
	MaxPlaylistBatch = 100
)

// SourceLibrary exports playlists from the source service.
type SourceLibrary interface {
	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// Name returns the service name for display.
	Name() string
}

// CodeResolver resolves a cross-reference code (ISRC) for a track.
//
// Implementations are expected to pace themselves; callers may invoke
// concurrently. An empty string with a nil error means "unknown".
type CodeResolver interface {
	ResolveISRC(ctx context.Context, title, artist string) (string, error)
}

// Catalog provides lookups against the target catalog.
type Catalog interface {
	// LookupByISRC resolves up to [MaxLookupCodes] codes in a single call.
	// The returned map is keyed by upper-cased ISRC; absent keys had no hit.
	LookupByISRC(ctx context.Context, codes []string, storefront string) (map[string]models.CatalogTrack, error)

	// Search performs a free-text song search, returning at most limit
	// results. No ordering guarantee beyond "the catalog's first N".
	Search(ctx context.Context, query, storefront string, limit int) ([]models.CatalogTrack, error)
}

// PlaylistWriter creates a playlist in the target library.
type PlaylistWriter interface {
	// CreatePlaylist creates a playlist and inserts catalogIDs in order,
	// batching as the provider requires. Returns the new playlist ID.
	CreatePlaylist(ctx context.Context, name, description string, catalogIDs []string) (string, error)
}
