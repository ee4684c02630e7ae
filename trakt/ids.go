package trakt

import (
	"strconv"
	"strings"
)

// ContentIDs is the normalized result of bridging an addon content id into
// the identifier families Trakt understands.
type ContentIDs struct {
	IMDB  string
	TMDB  int64
	TVDB  int64
	Kitsu int64

	Season    int
	Episode   int
	IsEpisode bool
}

// HasID reports whether any identifier usable for a Trakt lookup is present.
func (c ContentIDs) HasID() bool {
	return c.IMDB != "" || c.TMDB > 0 || c.TVDB > 0 || c.Kitsu > 0
}

// ParseStremioID bridges an addon content id into ContentIDs.
//
// Supported grammars, split on ":":
//
//	tt{imdb}              movie
//	tt{imdb}:{s}:{e}      episode
//	tmdb:{n}[:{s}:{e}]    and likewise tvdb, kitsu
//
// Anything else yields empty ContentIDs, which downstream treats as
// "cannot scrobble" rather than an error.
func ParseStremioID(id string) ContentIDs {
	var result ContentIDs

	if id == "" {
		return result
	}

	var parts []string
	for _, part := range strings.Split(id, ":") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return result
	}

	first := parts[0]

	switch {
	case strings.HasPrefix(first, "tt"):
		result.IMDB = first
		if len(parts) >= 3 {
			season, seasonErr := strconv.Atoi(parts[1])
			episode, episodeErr := strconv.Atoi(parts[2])
			if seasonErr == nil && episodeErr == nil {
				result.Season = season
				result.Episode = episode
				result.IsEpisode = true
			}
		}

	case first == "tmdb" && len(parts) >= 2:
		result.TMDB = parseNumericID(parts, &result)

	case first == "tvdb" && len(parts) >= 2:
		result.TVDB = parseNumericID(parts, &result)

	case first == "kitsu" && len(parts) >= 2:
		result.Kitsu = parseNumericID(parts, &result)
	}

	return result
}

// parseNumericID reads parts[1] as the id and, for the four-part episode
// form, parts[2] and parts[3] as season and episode.
func parseNumericID(parts []string, result *ContentIDs) int64 {
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0
	}

	if len(parts) >= 4 {
		season, seasonErr := strconv.Atoi(parts[2])
		episode, episodeErr := strconv.Atoi(parts[3])
		if seasonErr == nil && episodeErr == nil {
			result.Season = season
			result.Episode = episode
			result.IsEpisode = true
		}
	}

	return id
}
