package trakt

import (
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// normalizedName returns a lowercased, trimmed string for consistent comparison.
func normalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ClosestMatch picks the search result whose title is nearest to the given
// name by levenshtein distance.
func ClosestMatch(name string, results []SearchResult) mo.Option[SearchResult] {
	if len(results) == 0 {
		return mo.None[SearchResult]()
	}

	name = normalizedName(name)
	closest := lo.MinBy(results, func(a, b SearchResult) bool {
		return levenshtein.Distance(
			name,
			normalizedName(a.Title()),
		) < levenshtein.Distance(
			name,
			normalizedName(b.Title()),
		)
	})

	return mo.Some(closest)
}
