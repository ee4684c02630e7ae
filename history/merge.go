package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/trakt"
	"github.com/spf13/viper"
)

const defaultResumeLimit = 15

func resumeLimit() int {
	if limit := viper.GetInt(key.HistoryResumeLimit); limit > 0 {
		return limit
	}
	return defaultResumeLimit
}

// Merge combines the local history with the remote paused-playback list
// into one continue-watching view. Local entries win on key collisions
// since they carry exact positions; remote rows only know a percentage.
func Merge(local []*Entry, remote []trakt.PlaybackProgress) []*Entry {
	merged := make([]*Entry, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local))

	for _, entry := range local {
		tagged := *entry
		tagged.Source = SourceLocal
		merged = append(merged, &tagged)
		seen[entry.MetaID+"|"+entry.VideoID] = struct{}{}
	}

	for _, row := range remote {
		entry := fromPlayback(row)
		if entry == nil {
			continue
		}
		if _, dup := seen[entry.MetaID+"|"+entry.VideoID]; dup {
			continue
		}
		seen[entry.MetaID+"|"+entry.VideoID] = struct{}{}
		merged = append(merged, entry)
	}

	return collapseResumable(merged, resumeLimit())
}

// fromPlayback converts one remote row. Rows without an IMDB id cannot be
// keyed against addon content and are skipped.
func fromPlayback(row trakt.PlaybackProgress) *Entry {
	entry := &Entry{
		Source:     SourceRemote,
		PlaybackID: row.ID,
		Position:   row.Progress,
		Duration:   100,
	}

	switch {
	case row.Type == "movie" && row.Movie != nil:
		if row.Movie.Ids.IMDB == nil || *row.Movie.Ids.IMDB == "" {
			return nil
		}
		entry.ContentType = "movie"
		entry.MetaID = *row.Movie.Ids.IMDB
		entry.VideoID = entry.MetaID
		entry.Title = row.Movie.Title

	case row.Type == "episode" && row.Show != nil && row.Episode != nil:
		if row.Show.Ids.IMDB == nil || *row.Show.Ids.IMDB == "" {
			return nil
		}
		entry.ContentType = "series"
		entry.MetaID = *row.Show.Ids.IMDB
		entry.VideoID = fmt.Sprintf("%s:%d:%d", entry.MetaID, row.Episode.Season, row.Episode.Number)
		entry.Title = row.Show.Title
		entry.VideoTitle = row.Episode.Title
		entry.Season = row.Episode.Season
		entry.Episode = row.Episode.Number

	default:
		return nil
	}

	pausedAt, err := time.Parse(time.RFC3339, row.PausedAt)
	if err != nil {
		pausedAt = time.Now()
	}
	entry.LastWatched = pausedAt

	return entry
}

// collapseResumable filters to resumable entries and keeps the first-seen
// row per meta id in input order, so during a merge local entries shadow
// remote ones even when the remote side is newer. The survivors are sorted
// by recency and truncated.
func collapseResumable(entries []*Entry, limit int) []*Entry {
	perMeta := make(map[string]struct{}, len(entries))
	collapsed := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Resumable() {
			continue
		}
		if _, dup := perMeta[entry.MetaID]; dup {
			continue
		}
		perMeta[entry.MetaID] = struct{}{}
		collapsed = append(collapsed, entry)
	}

	sort.SliceStable(collapsed, func(i, j int) bool {
		return collapsed[i].LastWatched.After(collapsed[j].LastWatched)
	})

	if limit > 0 && len(collapsed) > limit {
		collapsed = collapsed[:limit]
	}
	return collapsed
}
