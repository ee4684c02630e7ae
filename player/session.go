package player

import (
	"context"
	"fmt"

	"github.com/madari-app/madari/history"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/scrobble"
	"github.com/madari-app/madari/stremio"
	"github.com/spf13/viper"
)

// Content identifies what a playback session is showing.
type Content struct {
	Type       string
	MetaID     string
	VideoID    string
	Title      string
	VideoTitle string
	Poster     string
	Season     int
	Episode    int
}

// displayTitle builds the window title shown by the player.
func (c Content) displayTitle() string {
	if c.VideoTitle != "" {
		return fmt.Sprintf("%s - %s", c.Title, c.VideoTitle)
	}
	return c.Title
}

// Session drives one playback run: it launches the player, restores the
// saved position, records progress every second, and reports state
// transitions to the tracking service.
type Session struct {
	player    Player
	history   *history.Service
	scrobbler *scrobble.Scrobbler

	content    Content
	bingeGroup string

	lastPosition float64
	lastDuration float64
	paused       bool
}

// NewSession wires a session. The scrobbler may be nil when tracking is
// not configured.
func NewSession(p Player, hist *history.Service, scrobbler *scrobble.Scrobbler) *Session {
	return &Session{
		player:    p,
		history:   hist,
		scrobbler: scrobbler,
	}
}

// BingeGroup returns the binge-group hint of the playing stream, used to
// prefer the same release source for the next episode.
func (s *Session) BingeGroup() string {
	return s.bingeGroup
}

// Play launches the stream and blocks until the player exits.
func (s *Session) Play(ctx context.Context, stream *stremio.Stream, content Content) error {
	if !stream.Playable() {
		return fmt.Errorf("stream has no playable url")
	}

	s.content = content
	s.bingeGroup = stream.BingeGroup()

	if s.scrobbler != nil {
		s.scrobbler.SetContent(ctx, content.Type, content.VideoID, s.progress())
	}

	if err := s.player.Play(*stream.URL, content.displayTitle(), stream.Hints.ProxyHeadersRequest); err != nil {
		return err
	}

	s.restorePosition()
	s.watch(ctx)

	return nil
}

// restorePosition seeks to the saved position when the item was left
// partway through.
func (s *Session) restorePosition() {
	saved := s.history.Get(s.content.MetaID, s.content.VideoID)
	entry, ok := saved.Get()
	if !ok || !entry.Resumable() || entry.Source == history.SourceRemote {
		return
	}

	if err := s.player.Seek(entry.Position); err != nil {
		log.Warnf("resume seek to %.0fs failed: %v", entry.Position, err)
	}
}

// watch runs the progress loop until the player exits.
func (s *Session) watch(ctx context.Context) {
	if s.scrobbler != nil {
		s.scrobbler.Start(ctx, s.progress())
	}

	events := NewEventListener(s.player.Socket(), func(property string, data interface{}) {
		s.handleEvent(ctx, property, data)
	})
	if err := events.Start(); err != nil {
		log.Warnf("player event listener unavailable: %v", err)
	}
	defer events.Stop()

	s.player.StartIPCTicker(func(timePos int, duration int) {
		s.recordPosition(float64(timePos), float64(duration))
	})
	defer s.player.StopIPCTicker()

	select {
	case <-s.player.Wait():
	case <-ctx.Done():
		_ = s.player.Close()
	}

	if s.scrobbler != nil {
		s.scrobbler.Stop(ctx, s.progress())
	}
}

// handleEvent reacts to player property changes.
func (s *Session) handleEvent(ctx context.Context, property string, data interface{}) {
	switch property {
	case "pause":
		paused, ok := data.(bool)
		if !ok || paused == s.paused {
			return
		}
		s.paused = paused
		if s.scrobbler == nil {
			return
		}
		if paused {
			s.scrobbler.Pause(ctx, s.progress())
		} else {
			s.scrobbler.Start(ctx, s.progress())
		}

	case "eof-reached":
		reached, ok := data.(bool)
		if !ok || !reached {
			return
		}
		s.markFinished()
		if s.scrobbler != nil {
			s.scrobbler.EOF(ctx)
		}
	}
}

// recordPosition persists the playback position once per tick.
func (s *Session) recordPosition(position, duration float64) {
	if position <= 0 {
		return
	}
	s.lastPosition = position
	if duration > 0 {
		s.lastDuration = duration
	}

	if !viper.GetBool(key.HistorySaveOnWatch) {
		return
	}

	entry := history.Entry{
		MetaID:      s.content.MetaID,
		VideoID:     s.content.VideoID,
		ContentType: s.content.Type,
		Title:       s.content.Title,
		VideoTitle:  s.content.VideoTitle,
		Poster:      s.content.Poster,
		Season:      s.content.Season,
		Episode:     s.content.Episode,
		Position:    position,
		Duration:    s.lastDuration,
	}
	if err := s.history.UpdateProgress(entry); err != nil {
		log.Warnf("record playback position: %v", err)
	}
}

// markFinished pins the stored position to the full duration so the item
// drops out of the continue-watching list.
func (s *Session) markFinished() {
	if !viper.GetBool(key.HistorySaveOnWatch) || s.lastDuration <= 0 {
		return
	}
	if err := s.history.UpdatePosition(s.content.MetaID, s.content.VideoID, s.lastDuration, s.lastDuration); err != nil {
		log.Warnf("record playback completion: %v", err)
	}
}

// progress returns the watched percentage from the last observed tick.
func (s *Session) progress() float64 {
	if s.lastDuration <= 0 {
		return 0
	}
	percent := (s.lastPosition / s.lastDuration) * 100
	if percent > 100 {
		percent = 100
	}
	return percent
}
