package match

import (
	"regexp"
	"strings"
)

// qualifierWords is the closed vocabulary of version qualifiers that may be
// stripped from a title when they form a trailing clause.
const qualifierWords = `remaster(?:ed)?|stereo|mono|single version|deluxe edition|original(?: mix)?|live|bonus track|remix|re-?recorded|feat(?:\.|uring)?|ft\.?`

var (
	trailingParenRe = regexp.MustCompile(`(?i)\s*[(\[][^()\[\]]*(?:^|\b|\s)(?:` + qualifierWords + `)(?:\b|\s|$)[^()\[\]]*[)\]]\s*$`)
	trailingDashRe  = regexp.MustCompile(`(?i)(?:\s+[-/]|\s*[–—])\s*[^-/–—]*?(?:^|\b|\s)(?:` + qualifierWords + `)(?:\b|\s|$)[^/–—]*$`)

	parenFeatRe = regexp.MustCompile(`(?i)\s*[(\[]\s*(?:feat\.?|ft\.?|featuring)\s+[^)\]]*[)\]]`)
	tailFeatRe  = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)

	quoteRe      = regexp.MustCompile("['‘’\"“”`]")
	bracketRe    = regexp.MustCompile(`[()\[\]]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// diacriticFolds maps the Latin diacritics that show up in track and
	// artist metadata to their base letters. Runs after lowercasing, so only
	// lowercase forms are listed.
	diacriticFolds = strings.NewReplacer(
		"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
		"è", "e", "é", "e", "ê", "e", "ë", "e",
		"ì", "i", "í", "i", "î", "i", "ï", "i",
		"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o",
		"ù", "u", "ú", "u", "û", "u", "ü", "u",
		"ý", "y", "ÿ", "y",
		"ñ", "n", "ç", "c",
		"æ", "ae", "œ", "oe", "ß", "ss",
	)
)

// StripVersionSuffix removes trailing qualifier clauses from a title.
//
// A clause is removed when it is introduced by "-", "/", "–", or "—", or
// enclosed in parentheses/brackets at the end of the title, and contains one
// of the known qualifier words. Matching is case-insensitive. Text before the
// separator is untouched; clauses are peeled off repeatedly so stacked
// qualifiers ("Song (Remastered) - Live") collapse to the bare title.
func StripVersionSuffix(title string) string {
	s := strings.TrimSpace(title)

	for {
		next := trailingParenRe.ReplaceAllString(s, "")
		next = trailingDashRe.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)

		if next == s || next == "" {
			if next != "" {
				s = next
			}
			break
		}
		s = next
	}

	return s
}

// NormalizeTitle reduces a title to a canonical key for comparison.
//
// Applies [StripVersionSuffix], lowercases, folds Latin diacritics to their
// base letters and en/em dashes to hyphens, removes featuring clauses
// wherever they appear, strips quotes and parentheses/brackets, replaces
// " & " with " and ", and collapses whitespace. Idempotent:
// NormalizeTitle(NormalizeTitle(x)) == NormalizeTitle(x).
func NormalizeTitle(title string) string {
	s := StripVersionSuffix(title)
	s = strings.ToLower(s)
	s = diacriticFolds.Replace(s)
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)
	s = parenFeatRe.ReplaceAllString(s, " ")
	s = tailFeatRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	s = bracketRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " & ", " and ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PrimaryTitle returns the segment before the first structural separator
// (" / " or " - ") in a normalized title, or the whole string when there is
// none. Medleys and re-titled releases keep their leading segment as the
// discriminating part.
func PrimaryTitle(normalized string) string {
	idx := -1
	for _, sep := range []string{" / ", " - "} {
		if i := strings.Index(normalized, sep); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	if idx < 0 {
		return normalized
	}
	return strings.TrimSpace(normalized[:idx])
}

// NormalizeArtist reduces an artist name to a canonical key: [NormalizeTitle]
// plus stripping a leading "the " token.
func NormalizeArtist(artist string) string {
	s := NormalizeTitle(artist)
	s = strings.TrimPrefix(s, "the ")
	return strings.TrimSpace(s)
}
