// Package history tracks playback positions per video and merges them with
// the remote continue-watching list into a single resume view.
package history

import (
	"time"

	"github.com/madari-app/madari/key"
	"github.com/spf13/viper"
)

// Source tags where an entry came from when local and remote views merge.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// resumableMinimum filters out rows where playback barely started.
const resumableMinimum = 30 * time.Second

// finishedThreshold is the watched fraction past which an item counts as
// seen, configurable through the player completion percentage.
func finishedThreshold() float64 {
	if percent := viper.GetInt(key.PlayerCompletionPercentage); percent >= 1 && percent <= 100 {
		return float64(percent) / 100
	}
	return 0.90
}

// Entry is one remembered playback position. For movies VideoID equals
// MetaID; for series it identifies the episode. Position and Duration are
// seconds, except on remote rows where only a percentage is known: those
// carry Duration 100 and Position as the percentage.
type Entry struct {
	MetaID      string    `json:"meta_id"`
	VideoID     string    `json:"video_id"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title"`
	VideoTitle  string    `json:"video_title,omitempty"`
	Poster      string    `json:"poster,omitempty"`
	Season      int       `json:"season,omitempty"`
	Episode     int       `json:"episode,omitempty"`
	Position    float64   `json:"position"`
	Duration    float64   `json:"duration"`
	LastWatched time.Time `json:"last_watched"`

	// Source is set during merge, never persisted.
	Source string `json:"-"`

	// PlaybackID references the remote row so it can be removed upstream.
	PlaybackID int64 `json:"-"`
}

// Key identifies an entry within the store.
func (e *Entry) Key() (string, string) {
	return e.MetaID, e.VideoID
}

// Progress returns the watched fraction clamped to [0, 1].
func (e *Entry) Progress() float64 {
	if e.Duration <= 0 {
		return 0
	}
	progress := e.Position / e.Duration
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Finished reports whether the entry passed the watched threshold.
func (e *Entry) Finished() bool {
	return e.Progress() >= finishedThreshold()
}

// Resumable reports whether the entry is worth offering to continue:
// meaningfully started but not finished. Remote percentage-only rows use
// the progress fraction instead of absolute seconds.
func (e *Entry) Resumable() bool {
	if e.Finished() {
		return false
	}
	if e.Source == SourceRemote {
		return e.Progress() > 0
	}
	return e.Position > resumableMinimum.Seconds()
}
