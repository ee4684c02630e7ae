package history

import (
	"sync"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const defaultMaxEntries = 500

// Service owns the local watch history. Entries are kept most recent first
// and persisted through a disk-backed cache.
type Service struct {
	mu       sync.Mutex
	cacher   *gache.Cache[[]*Entry]
	onChange []func()
	now      func() time.Time
}

// NewService returns a history service persisting to the standard location.
func NewService() *Service {
	return &Service{
		cacher: gache.New[[]*Entry](
			&gache.Options{
				Path:       where.History(),
				FileSystem: &filesystem.GacheFs{},
			},
		),
		now: time.Now,
	}
}

// OnChange registers a callback invoked after every history mutation.
func (s *Service) OnChange(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, callback)
}

// load reads the persisted entries. Callers hold the mutex.
func (s *Service) load() ([]*Entry, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return nil, nil
	}
	return cached, nil
}

// store persists entries. Callers hold the mutex and notify afterwards.
func (s *Service) store(entries []*Entry) error {
	return s.cacher.Set(entries)
}

// notify runs subscribers on a snapshot outside the mutex, so a callback
// may call back into the service.
func (s *Service) notify() {
	s.mu.Lock()
	callbacks := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}

func maxEntries() int {
	if limit := viper.GetInt(key.HistoryMaxEntries); limit > 0 {
		return limit
	}
	return defaultMaxEntries
}

// UpdateProgress upserts an entry and moves it to the front. The oldest
// entries fall off once the configured cap is exceeded.
func (s *Service) UpdateProgress(entry Entry) error {
	s.mu.Lock()

	entries, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if entry.LastWatched.IsZero() {
		entry.LastWatched = s.now()
	}

	entries = lo.Reject(entries, func(existing *Entry, _ int) bool {
		return existing.MetaID == entry.MetaID && existing.VideoID == entry.VideoID
	})
	entries = append([]*Entry{&entry}, entries...)

	if limit := maxEntries(); len(entries) > limit {
		entries = entries[:limit]
	}

	err = s.store(entries)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// UpdatePosition records a new playback position for an already known or
// new entry, preserving the stored metadata when present.
func (s *Service) UpdatePosition(metaID, videoID string, position, duration float64) error {
	existing := s.Get(metaID, videoID)

	entry := Entry{MetaID: metaID, VideoID: videoID}
	if known, ok := existing.Get(); ok {
		entry = *known
	}
	entry.Position = position
	entry.Duration = duration
	entry.LastWatched = s.now()

	return s.UpdateProgress(entry)
}

// All returns every entry, most recently watched first.
func (s *Service) All() ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get looks up one entry by its key.
func (s *Service) Get(metaID, videoID string) mo.Option[*Entry] {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return mo.None[*Entry]()
	}

	entry, found := lo.Find(entries, func(e *Entry) bool {
		return e.MetaID == metaID && e.VideoID == videoID
	})
	if !found {
		return mo.None[*Entry]()
	}
	return mo.Some(entry)
}

// LatestForSeries returns the most recently watched entry under a meta id,
// whichever episode that was.
func (s *Service) LatestForSeries(metaID string) mo.Option[*Entry] {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return mo.None[*Entry]()
	}

	for _, entry := range entries {
		if entry.MetaID == metaID {
			return mo.Some(entry)
		}
	}
	return mo.None[*Entry]()
}

// Resumable returns the local continue-watching list: started, unfinished,
// one row per meta id, capped by the configured resume limit.
func (s *Service) Resumable() ([]*Entry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	return collapseResumable(entries, resumeLimit()), nil
}

// Remove deletes one entry by its key.
func (s *Service) Remove(metaID, videoID string) error {
	return s.removeMatching(func(entry *Entry) bool {
		return entry.MetaID == metaID && entry.VideoID == videoID
	})
}

// RemoveSeries deletes every entry under a meta id.
func (s *Service) RemoveSeries(metaID string) error {
	return s.removeMatching(func(entry *Entry) bool {
		return entry.MetaID == metaID
	})
}

// removeMatching drops every entry the predicate matches, notifying only
// when something was actually removed.
func (s *Service) removeMatching(match func(*Entry) bool) error {
	s.mu.Lock()

	entries, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	filtered := lo.Reject(entries, func(entry *Entry, _ int) bool {
		return match(entry)
	})
	if len(filtered) == len(entries) {
		s.mu.Unlock()
		return nil
	}

	err = s.store(filtered)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Clear wipes the whole history.
func (s *Service) Clear() error {
	s.mu.Lock()
	err := s.store(nil)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}
