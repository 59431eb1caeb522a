// Package services defines the capability interfaces the reconciliation
// engine consumes and implements them for Spotify, Apple Music, and
// MusicBrainz.
//
// # Capabilities
//
//   - [SourceLibrary] : exports the source playlist ([SpotifyService]).
//   - [CodeResolver] : resolves an ISRC for a title/artist pair
//     ([MusicBrainzResolver], optionally wrapped by [CachedCodeResolver]).
//   - [Catalog] : exact ISRC lookup and free-text search against the target
//     catalog ([AppleMusicService]).
//   - [PlaylistWriter] : creates the destination playlist and inserts the
//     matched catalog songs ([AppleMusicService]).
//
// # Pacing
//
// Apple Music calls are serialized behind a [shared.Pacer]; MusicBrainz asks
// for at most one request per second, enforced with a [rate.Limiter]. Both
// gates sit inside the service, so callers can fan out freely.
//
// # Error handling
//
// Services translate provider failures into the shared taxonomy:
//
//   - HTTP 429 → [shared.RateLimitError] (wraps [shared.ErrRateLimited]),
//     with Retry-After parsed when present
//   - HTTP 401/403 → [shared.ErrUnauthorized]
//   - anything else → wrapped [shared.ErrAPIRequest], treated by resolvers
//     as a transient per-item failure
package services
