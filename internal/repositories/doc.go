// Package repositories implements SQLite persistence for resolved
// cross-reference codes.
//
// The [ISRCRepository] caches title/artist → ISRC resolutions between runs so
// repeated reconciliations of the same library skip the paced MusicBrainz
// lookups. Negative resolutions are stored too; an empty code row records
// "asked, no answer".
//
// Keys are expected to arrive already normalized; the repository does not
// normalize on its own.
package repositories
