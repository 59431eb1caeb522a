package match

import (
	"math"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/thomas-fazzari/ciderfy/internal/models"
)

// Weights for the combined similarity score. Titles are more discriminating
// than artist names, so they carry the larger share.
const (
	titleWeight  = 0.6
	artistWeight = 0.4
)

func editSimilarity(a, b string) float64 {
	return strutil.Similarity(a, b, metrics.NewJaroWinkler())
}

// TitleSimilarity scores two raw titles in [0, 1].
//
// Exact normalized match scores 1.0 and containment 0.9. Otherwise the
// primary segments (before any " / " or " - ") are compared: equal → 0.95,
// containment → 0.85, else the maximum Jaro-Winkler similarity over the
// primary segments and the full normalized strings.
func TitleSimilarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	pa, pb := PrimaryTitle(na), PrimaryTitle(nb)
	if pa == pb {
		return 0.95
	}
	if strings.Contains(pa, pb) || strings.Contains(pb, pa) {
		return 0.85
	}

	return math.Max(editSimilarity(pa, pb), editSimilarity(na, nb))
}

// ArtistSimilarity scores two raw artist names in [0, 1]: exact normalized
// match → 1.0, containment → 0.9, else Jaro-Winkler on the normalized keys.
func ArtistSimilarity(a, b string) float64 {
	na, nb := NormalizeArtist(a), NormalizeArtist(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}
	return editSimilarity(na, nb)
}

// DurationMultiplier maps the absolute duration difference to a multiplicative
// penalty. Unknown durations (≤ 0 ms) are optional metadata and carry no
// penalty. Monotonically non-increasing in the difference.
func DurationMultiplier(msA, msB int) float64 {
	if msA <= 0 || msB <= 0 {
		return 1.0
	}

	diff := msA - msB
	if diff < 0 {
		diff = -diff
	}
	seconds := float64(diff) / 1000.0

	switch {
	case seconds <= 5:
		return 1.0
	case seconds <= 15:
		return 0.95
	case seconds <= 30:
		return 0.90
	case seconds <= 60:
		return 0.80
	default:
		return 0.70
	}
}

// Similarity computes the combined confidence that candidate is the same
// song as source: weighted title/artist similarity scaled by the duration
// multiplier. Duration is a guard, not an additive term, so a perfect text
// match with a large duration gap is downgraded but never zeroed.
func Similarity(source models.SourceTrack, candidate models.CatalogTrack) float64 {
	text := titleWeight*TitleSimilarity(source.Title, candidate.Title) +
		artistWeight*ArtistSimilarity(source.Artist, candidate.Artist)
	return text * DurationMultiplier(source.DurationMS, candidate.DurationMS)
}
