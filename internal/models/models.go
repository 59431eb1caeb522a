package models

// SourceTrack represents a track from the source playlist.
//
// ID is the source catalog's stable identifier. DurationMS is 0 when the
// source did not report a duration. ISRC may be empty; the exact-match phase
// attaches one when it can be resolved.
type SourceTrack struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	DurationMS int
	ISRC       string
}

// WithISRC returns a copy of the track with the given cross-reference code
// attached. The receiver is left untouched.
func (t SourceTrack) WithISRC(code string) SourceTrack {
	t.ISRC = code
	return t
}

// CatalogTrack represents a song in the target catalog.
type CatalogTrack struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	DurationMS int
	ISRC       string
	URL        string
}

// Playlist represents playlist metadata from either service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// PlaylistExport represents a playlist with all its tracks.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []SourceTrack
}

// MatchMethod identifies how a catalog track was matched to a source track.
type MatchMethod string

const (
	MatchMethodExact MatchMethod = "exact" // matched via cross-reference code
	MatchMethodFuzzy MatchMethod = "fuzzy" // matched via scored text search
)

// MatchOutcome is the result of reconciling a single source track.
//
// Construct with [Matched] or [NotFound]; Track is nil exactly when the
// track was not found, in which case Reason explains why.
type MatchOutcome struct {
	Source     SourceTrack
	Track      *CatalogTrack
	Method     MatchMethod
	Confidence float64
	Reason     string
}

// Matched builds the success arm of the outcome union.
func Matched(source SourceTrack, track CatalogTrack, method MatchMethod, confidence float64) MatchOutcome {
	return MatchOutcome{
		Source:     source,
		Track:      &track,
		Method:     method,
		Confidence: confidence,
	}
}

// NotFound builds the miss arm of the outcome union.
func NotFound(source SourceTrack, reason string) MatchOutcome {
	return MatchOutcome{
		Source: source,
		Reason: reason,
	}
}

// Found reports whether the outcome carries a catalog track.
func (o MatchOutcome) Found() bool {
	return o.Track != nil
}

// DedupBySourceID removes duplicate tracks from the list, keeping the first
// occurrence of each source ID and preserving order.
func DedupBySourceID(tracks []SourceTrack) []SourceTrack {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]SourceTrack, 0, len(tracks))

	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}

	return out
}
