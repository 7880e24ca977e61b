package router

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Kind selects the entity-search strategy for a routed query.
type Kind string

const (
	KindArtist Kind = "artist"
	KindTag    Kind = "tag"
)

// RoutedQuery is the routing decision for one incoming query. Value
// holds the extracted artist name or genre tag; for the fallback artist
// path it carries the original query text untouched.
type RoutedQuery struct {
	Kind   Kind   `json:"type"`
	Value  string `json:"value"`
	Forced bool   `json:"forced,omitempty"`
}

// artistPhrase captures a trailing "by <name>" or "from <name>" clause.
// The name class deliberately includes spaces so multi-word artist
// names survive; the anchor keeps mid-sentence mentions from matching.
var artistPhrase = regexp.MustCompile(`\b(?:from|by)\s+([a-z0-9 .'\-]+)$`)

// genreVocabulary is ordered most-specific-first so "death metal" wins
// over "metal" when both would match.
var genreVocabulary = []string{
	"death metal", "black metal", "thrash metal", "doom metal",
	"hip hop", "metal", "rock", "punk", "jazz", "electronic",
	"classical", "pop",
}

type genreMatcher struct {
	name    string
	pattern *regexp.Regexp
}

var genreMatchers = compileGenres()

func compileGenres() []genreMatcher {
	matchers := make([]genreMatcher, 0, len(genreVocabulary))
	for _, name := range genreVocabulary {
		matchers = append(matchers, genreMatcher{
			name:    name,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}
	return matchers
}

// Route classifies free text into an artist or tag search strategy. It
// is pure and total: unrecognized input falls through to artist mode
// with the raw text as value.
//
// Priority order:
//  1. A trailing "by <name>" / "from <name>" phrase forces artist mode
//     and overrides genre detection.
//  2. A known genre plus a covers-intent word ("covers" or "band...")
//     forces tag mode.
//  3. A known genre alone routes to tag mode, unforced.
//  4. Everything else is an artist query carrying the original text.
//
// Genres match on word boundaries so "pop" never fires inside
// "population".
func Route(text string) RoutedQuery {
	p := cases.Fold().String(strings.TrimSpace(text))

	if m := artistPhrase.FindStringSubmatch(p); m != nil {
		return RoutedQuery{Kind: KindArtist, Value: strings.TrimSpace(m[1]), Forced: true}
	}

	coversIntent := strings.Contains(p, "band") || strings.Contains(p, "covers")
	for _, g := range genreMatchers {
		if g.pattern.MatchString(p) {
			return RoutedQuery{Kind: KindTag, Value: g.name, Forced: coversIntent}
		}
	}

	return RoutedQuery{Kind: KindArtist, Value: text}
}
