package trakt

import (
	"context"
	"fmt"
	"net/http"
)

// buildScrobbleBody constructs the scrobble request payload. Episodes need
// the show ids plus a season/number pair; movies carry their ids directly.
func buildScrobbleBody(contentType string, ids ContentIDs, progress float64) map[string]any {
	idsObject := map[string]any{}
	if ids.IMDB != "" {
		idsObject["imdb"] = ids.IMDB
	}
	if ids.TMDB > 0 {
		idsObject["tmdb"] = ids.TMDB
	}
	if ids.TVDB > 0 {
		idsObject["tvdb"] = ids.TVDB
	}

	episode := (contentType == "series" || contentType == "episode") && ids.IsEpisode
	if episode {
		return map[string]any{
			"show": map[string]any{"ids": idsObject},
			"episode": map[string]any{
				"season": ids.Season,
				"number": ids.Episode,
			},
			"progress": progress,
		}
	}

	return map[string]any{
		"movie":    map[string]any{"ids": idsObject},
		"progress": progress,
	}
}

// scrobble posts one scrobble action. The API answers 201 on success.
func (s *Service) scrobble(ctx context.Context, action, contentType string, ids ContentIDs, progress float64) error {
	if !ids.HasID() {
		return fmt.Errorf("scrobble %s: no usable content id", action)
	}
	if err := s.ensureValidToken(ctx); err != nil {
		return err
	}

	body := buildScrobbleBody(contentType, ids, progress)
	_, status, err := s.makeRequest(ctx, http.MethodPost, "/scrobble/"+action, body, true)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && (status < 200 || status > 299) {
		return fmt.Errorf("scrobble %s: unexpected status %d", action, status)
	}
	return nil
}

// ScrobbleStart tells Trakt playback has started or resumed.
func (s *Service) ScrobbleStart(ctx context.Context, contentType string, ids ContentIDs, progress float64) error {
	return s.scrobble(ctx, "start", contentType, ids, progress)
}

// ScrobblePause tells Trakt playback is paused at the given progress.
func (s *Service) ScrobblePause(ctx context.Context, contentType string, ids ContentIDs, progress float64) error {
	return s.scrobble(ctx, "pause", contentType, ids, progress)
}

// ScrobbleStop finalizes the session. Past the completion threshold Trakt
// records a watch, otherwise it keeps a paused-playback row.
func (s *Service) ScrobbleStop(ctx context.Context, contentType string, ids ContentIDs, progress float64) error {
	return s.scrobble(ctx, "stop", contentType, ids, progress)
}
