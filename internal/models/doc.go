// Package models defines the domain entities exchanged between the source
// library, the reconciliation engine, and the target catalog.
//
// # Value types
//
//   - [SourceTrack] : a track from the source playlist. Immutable; enrichment
//     (ISRC attachment) produces a new value via [SourceTrack.WithISRC].
//   - [CatalogTrack] : a song from the target catalog. Produced only by
//     catalog responses and read-only to the engine.
//   - [Playlist] / [PlaylistExport] : playlist metadata and a playlist with
//     its full track listing.
//
// # Match outcomes
//
// [MatchOutcome] is the per-track result of a reconciliation pass. It is a
// two-armed union built through the [Matched] and [NotFound] constructors:
// either a catalog track with a method and confidence, or a miss with a
// human-readable reason. [MatchOutcome.Found] discriminates the arms.
//
// The engine guarantees exactly one outcome per deduplicated input track, in
// input order. Exact matches always carry confidence 1.0; fuzzy matches carry
// the accepted similarity score.
package models
