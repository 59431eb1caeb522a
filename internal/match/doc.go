// Package match implements the track reconciliation core: title/artist
// normalization, weighted similarity scoring, and the two resolution stages
// that decide whether two differently-labeled tracks are the same song.
//
// # Normalization
//
// [StripVersionSuffix] removes trailing qualifier clauses ("Remastered 2014",
// "Live at ...", "Single Version") introduced by a dash, slash, or enclosed
// in parentheses/brackets. [NormalizeTitle] builds a canonical comparison key
// on top of that: lowercased, diacritics folded, quotes and brackets stripped,
// featuring clauses removed, "&" spelled out. Normalization is idempotent.
//
// # Scoring
//
// [Similarity] combines title similarity (weight 0.6) and artist similarity
// (weight 0.4), then applies a duration-based multiplier. Titles outweigh
// artists because they are more discriminating; duration acts as a guard that
// downgrades but never zeroes a strong text match. The string-edit metric is
// Jaro-Winkler from github.com/adrg/strutil.
//
// # Resolution
//
// [ExactResolver] attaches missing ISRCs through a [CodeResolver]
// and performs batched exact lookups against the target catalog; hits are
// matched with confidence 1.0. [FuzzyResolver] runs ordered query variants
// (most specific first) through catalog search and accepts the first query
// whose best-scored candidate clears the acceptance threshold.
package match
