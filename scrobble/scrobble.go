// Package scrobble reports playback state transitions to the tracking
// service, debouncing the rapid start/pause churn media players produce.
package scrobble

import (
	"context"
	"sync"
	"time"

	"github.com/madari-app/madari/internal/offline"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/trakt"
)

// debounceInterval suppresses repeated start/pause reports. Seeking and
// buffering flap these events far faster than the API wants to hear about.
const debounceInterval = 5 * time.Second

// Tracker is the slice of the tracking service the scrobbler needs.
type Tracker interface {
	Config() trakt.Config
	ScrobbleStart(ctx context.Context, contentType string, ids trakt.ContentIDs, progress float64) error
	ScrobblePause(ctx context.Context, contentType string, ids trakt.ContentIDs, progress float64) error
	ScrobbleStop(ctx context.Context, contentType string, ids trakt.ContentIDs, progress float64) error
}

// Scrobbler tracks one playback session at a time.
type Scrobbler struct {
	mu      sync.Mutex
	tracker Tracker
	now     func() time.Time

	contentType string
	ids         trakt.ContentIDs
	active      bool
	lastReport  time.Time
}

// New returns a scrobbler bound to a tracking service.
func New(tracker Tracker) *Scrobbler {
	return &Scrobbler{
		tracker: tracker,
		now:     time.Now,
	}
}

// enabled reports whether scrobbles should be sent at all: the user must be
// authenticated, progress sync switched on, and the content identifiable.
func (s *Scrobbler) enabled() bool {
	cfg := s.tracker.Config()
	return cfg.IsAuthenticated() && cfg.SyncProgress && s.ids.HasID()
}

// SetContent binds the scrobbler to a new item, force-stopping any session
// still in flight.
func (s *Scrobbler) SetContent(ctx context.Context, contentType, videoID string, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active && s.enabled() {
		if err := s.tracker.ScrobbleStop(ctx, s.contentType, s.ids, progress); err != nil {
			log.Warnf("scrobble stop for previous item failed: %v", err)
			s.queueStop(progress)
		}
	}

	s.contentType = contentType
	s.ids = trakt.ParseStremioID(videoID)
	s.active = false
	s.lastReport = time.Time{}
}

// debounced reports whether a start/pause should be dropped, and records
// the report time when it goes through. Callers hold the mutex.
func (s *Scrobbler) debounced() bool {
	if !s.lastReport.IsZero() && s.now().Sub(s.lastReport) < debounceInterval {
		return true
	}
	s.lastReport = s.now()
	return false
}

// Start reports playback starting or resuming.
func (s *Scrobbler) Start(ctx context.Context, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return
	}

	s.active = true
	if s.debounced() {
		return
	}

	if err := s.tracker.ScrobbleStart(ctx, s.contentType, s.ids, progress); err != nil {
		log.Warnf("scrobble start failed: %v", err)
	}
}

// Pause reports playback pausing.
func (s *Scrobbler) Pause(ctx context.Context, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() {
		return
	}
	if s.debounced() {
		return
	}

	if err := s.tracker.ScrobblePause(ctx, s.contentType, s.ids, progress); err != nil {
		log.Warnf("scrobble pause failed: %v", err)
	}
}

// Stop finalizes the session. Stops are never debounced: losing one means
// losing the watched mark.
func (s *Scrobbler) Stop(ctx context.Context, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled() || !s.active {
		return
	}

	s.active = false
	s.lastReport = s.now()
	if err := s.tracker.ScrobbleStop(ctx, s.contentType, s.ids, progress); err != nil {
		log.Warnf("scrobble stop failed: %v", err)
		s.queueStop(progress)
	}
}

// queueStop hands a failed stop scrobble to the offline queue so the watched
// mark survives connectivity problems. Callers hold the mutex.
func (s *Scrobbler) queueStop(progress float64) {
	if err := offline.Queue(s.contentType, s.ids, progress); err != nil {
		log.Warnf("queueing scrobble for later delivery failed: %v", err)
	}
}

// EOF reports the player reaching the end of the file, which always counts
// as a full watch.
func (s *Scrobbler) EOF(ctx context.Context) {
	s.Stop(ctx, 100)
}
