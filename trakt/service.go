package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/madari-app/madari/constant"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/network"
	"github.com/madari-app/madari/stremio"
	"github.com/spf13/viper"
)

const (
	apiURL     = "https://api.trakt.tv"
	apiVersion = "2"

	defaultTimeout = 30 * time.Second
)

// ErrAuthPending is returned by PollDeviceToken while the user has not yet
// approved the device on trakt.tv.
var ErrAuthPending = errors.New("waiting for user authorization")

// ErrNotAuthenticated is returned by calls that require a valid user token.
var ErrNotAuthenticated = errors.New("not authenticated with trakt")

// Service talks to the Trakt API and owns the locally persisted config.
type Service struct {
	mu         sync.Mutex
	config     Config
	baseURL    string
	httpClient *http.Client
	onChange   []func()
	now        func() time.Time
}

// NewService returns a service backed by the shared network transport. Call
// Load before use.
func NewService() *Service {
	return &Service{
		baseURL:    apiURL,
		httpClient: network.Client,
		now:        time.Now,
	}
}

// Load reads the persisted configuration from disk and keyring.
func (s *Service) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = loadConfig()
}

// Config returns a snapshot of the current configuration.
func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetCredentials stores the user-supplied API application credentials.
func (s *Service) SetCredentials(clientID, clientSecret string) error {
	s.mu.Lock()
	s.config.ClientID = clientID
	s.config.ClientSecret = clientSecret
	err := s.persist()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetSync updates the synchronization toggles.
func (s *Service) SetSync(progress, watchlist, history bool) error {
	s.mu.Lock()
	s.config.SyncProgress = progress
	s.config.SyncWatchlist = watchlist
	s.config.SyncHistory = history
	err := s.persist()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// IsConfigured reports whether API credentials are present.
func (s *Service) IsConfigured() bool {
	cfg := s.Config()
	return cfg.IsConfigured()
}

// IsAuthenticated reports whether a user token is present.
func (s *Service) IsAuthenticated() bool {
	cfg := s.Config()
	return cfg.IsAuthenticated()
}

// OnChange registers a callback invoked after every configuration change.
func (s *Service) OnChange(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, callback)
}

// persist saves the config. Callers hold the mutex and notify afterwards.
func (s *Service) persist() error {
	return saveConfig(s.config)
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

// makeRequest performs one API call. The returned error covers transport
// failures only; callers interpret the HTTP status.
func (s *Service) makeRequest(ctx context.Context, method, endpoint string, body any, auth bool) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout())
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	cfg := s.Config()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", cfg.ClientID)
	if auth {
		req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// getJSON performs an authenticated GET (refreshing the token if needed)
// and decodes the response into out.
func (s *Service) getJSON(ctx context.Context, endpoint string, auth bool, out any) error {
	if auth {
		if err := s.ensureValidToken(ctx); err != nil {
			return err
		}
	}

	data, status, err := s.makeRequest(ctx, http.MethodGet, endpoint, nil, auth)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("GET %s: unexpected status %d", endpoint, status)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// postJSON performs an authenticated POST where 2xx (including 201) counts
// as success.
func (s *Service) postJSON(ctx context.Context, endpoint string, body any) error {
	if err := s.ensureValidToken(ctx); err != nil {
		return err
	}

	_, status, err := s.makeRequest(ctx, http.MethodPost, endpoint, body, true)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("POST %s: unexpected status %d", endpoint, status)
	}
	return nil
}

// ensureValidToken refreshes the access token transparently when expired.
func (s *Service) ensureValidToken(ctx context.Context) error {
	cfg := s.Config()
	if !cfg.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !cfg.IsTokenExpired() {
		return nil
	}
	if cfg.RefreshToken == "" {
		return ErrNotAuthenticated
	}
	return s.RefreshToken(ctx)
}

// ============ Authentication ============

// StartDeviceAuth begins the OAuth device flow and returns the code the
// user must enter at the verification URL.
func (s *Service) StartDeviceAuth(ctx context.Context) (*DeviceCode, error) {
	cfg := s.Config()
	if !cfg.IsConfigured() {
		return nil, errors.New("trakt credentials are not configured")
	}

	body := map[string]string{"client_id": cfg.ClientID}
	data, status, err := s.makeRequest(ctx, http.MethodPost, "/oauth/device/code", body, false)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("device code request: unexpected status %d", status)
	}

	var code DeviceCode
	if err := json.Unmarshal(data, &code); err != nil {
		return nil, fmt.Errorf("decode device code: %w", err)
	}
	return &code, nil
}

// PollDeviceToken exchanges the device code for a token. While the user has
// not approved yet it returns ErrAuthPending; 404/409/410/418 are terminal.
// On success tokens are persisted and the user identity is cached.
func (s *Service) PollDeviceToken(ctx context.Context, deviceCode string) error {
	cfg := s.Config()
	body := map[string]string{
		"code":          deviceCode,
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret,
	}

	data, status, err := s.makeRequest(ctx, http.MethodPost, "/oauth/device/token", body, false)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusBadRequest:
		return ErrAuthPending
	case http.StatusNotFound, http.StatusConflict, http.StatusGone, http.StatusTeapot:
		return fmt.Errorf("authorization expired or denied (status %d)", status)
	}
	if status != http.StatusOK {
		return fmt.Errorf("token poll: unexpected status %d", status)
	}

	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	s.storeToken(token)

	// Cache the user identity; failure here does not fail the login.
	if settings, err := s.UserSettings(ctx); err == nil {
		s.mu.Lock()
		s.config.Username = &settings.Username
		if settings.Avatar != nil && *settings.Avatar != "" {
			s.config.AvatarURL = settings.Avatar
		} else {
			s.config.AvatarURL = nil
		}
		if err := s.persist(); err != nil {
			log.Errorf("persist trakt config: %v", err)
		}
		s.mu.Unlock()
		s.notify()
	}

	return nil
}

// storeToken persists a token grant.
func (s *Service) storeToken(token TokenResponse) {
	s.mu.Lock()
	s.config.AccessToken = token.AccessToken
	s.config.RefreshToken = token.RefreshToken
	if token.CreatedAt > 0 {
		s.config.ExpiresAt = token.CreatedAt + token.ExpiresIn
	} else {
		s.config.ExpiresAt = s.now().Unix() + token.ExpiresIn
	}
	s.config.Enabled = true

	if err := s.persist(); err != nil {
		log.Errorf("persist trakt config: %v", err)
	}
	s.mu.Unlock()
	s.notify()
}

// RefreshToken exchanges the refresh token for a fresh access token.
func (s *Service) RefreshToken(ctx context.Context) error {
	cfg := s.Config()
	body := map[string]string{
		"refresh_token": cfg.RefreshToken,
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret,
		"redirect_uri":  "urn:ietf:wg:oauth:2.0:oob",
		"grant_type":    "refresh_token",
	}

	data, status, err := s.makeRequest(ctx, http.MethodPost, "/oauth/token", body, false)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("token refresh: unexpected status %d", status)
	}

	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	s.storeToken(token)
	return nil
}

// Logout revokes the access token. Local state is cleared regardless of the
// revocation outcome so a broken network never traps the user logged in.
func (s *Service) Logout(ctx context.Context) error {
	cfg := s.Config()
	if cfg.AccessToken != "" {
		body := map[string]string{
			"token":         cfg.AccessToken,
			"client_id":     cfg.ClientID,
			"client_secret": cfg.ClientSecret,
		}
		if _, _, err := s.makeRequest(ctx, http.MethodPost, "/oauth/revoke", body, false); err != nil {
			log.Warnf("token revocation failed: %v", err)
		}
	}

	s.mu.Lock()
	s.config.AccessToken = ""
	s.config.RefreshToken = ""
	s.config.ExpiresAt = 0
	s.config.Username = nil
	s.config.AvatarURL = nil
	err := s.persist()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// UserSettings fetches the authenticated user's profile.
func (s *Service) UserSettings(ctx context.Context) (*UserSettings, error) {
	var raw struct {
		User struct {
			Username string  `json:"username"`
			Name     *string `json:"name"`
			VIP      bool    `json:"vip"`
			Images   struct {
				Avatar struct {
					Full string `json:"full"`
				} `json:"avatar"`
			} `json:"images"`
		} `json:"user"`
	}
	if err := s.getJSON(ctx, "/users/settings", true, &raw); err != nil {
		return nil, err
	}

	settings := &UserSettings{
		Username: raw.User.Username,
		Name:     raw.User.Name,
		VIP:      raw.User.VIP,
	}
	if raw.User.Images.Avatar.Full != "" {
		settings.Avatar = &raw.User.Images.Avatar.Full
	}
	return settings, nil
}

// ============ Catalogs ============

// movieRow tolerates both wire forms for movie lists: trending and
// anticipated wrap the movie, popular rows are the bare object.
type movieRow struct {
	Movie *Movie `json:"movie"`
}

type showRow struct {
	Show *Show `json:"show"`
}

func (s *Service) movieList(ctx context.Context, endpoint string) ([]Movie, error) {
	var rows []json.RawMessage
	if err := s.getJSON(ctx, endpoint, false, &rows); err != nil {
		return nil, err
	}

	movies := make([]Movie, 0, len(rows))
	for _, row := range rows {
		var wrapped movieRow
		if err := json.Unmarshal(row, &wrapped); err == nil && wrapped.Movie != nil {
			movies = append(movies, *wrapped.Movie)
			continue
		}
		var bare Movie
		if err := json.Unmarshal(row, &bare); err == nil && bare.Title != "" {
			movies = append(movies, bare)
		}
	}
	return movies, nil
}

func (s *Service) showList(ctx context.Context, endpoint string) ([]Show, error) {
	var rows []json.RawMessage
	if err := s.getJSON(ctx, endpoint, false, &rows); err != nil {
		return nil, err
	}

	shows := make([]Show, 0, len(rows))
	for _, row := range rows {
		var wrapped showRow
		if err := json.Unmarshal(row, &wrapped); err == nil && wrapped.Show != nil {
			shows = append(shows, *wrapped.Show)
			continue
		}
		var bare Show
		if err := json.Unmarshal(row, &bare); err == nil && bare.Title != "" {
			shows = append(shows, bare)
		}
	}
	return shows, nil
}

func pageQuery(page, limit int) string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = viper.GetInt(key.TraktCatalogLimit)
		if limit < 1 {
			limit = 20
		}
	}
	return fmt.Sprintf("?page=%d&limit=%d&extended=full", page, limit)
}

// TrendingMovies lists movies currently being watched the most.
func (s *Service) TrendingMovies(ctx context.Context, page, limit int) ([]Movie, error) {
	return s.movieList(ctx, "/movies/trending"+pageQuery(page, limit))
}

// PopularMovies lists the most popular movies.
func (s *Service) PopularMovies(ctx context.Context, page, limit int) ([]Movie, error) {
	return s.movieList(ctx, "/movies/popular"+pageQuery(page, limit))
}

// AnticipatedMovies lists the most anticipated unreleased movies.
func (s *Service) AnticipatedMovies(ctx context.Context, page, limit int) ([]Movie, error) {
	return s.movieList(ctx, "/movies/anticipated"+pageQuery(page, limit))
}

// TrendingShows lists shows currently being watched the most.
func (s *Service) TrendingShows(ctx context.Context, page, limit int) ([]Show, error) {
	return s.showList(ctx, "/shows/trending"+pageQuery(page, limit))
}

// PopularShows lists the most popular shows.
func (s *Service) PopularShows(ctx context.Context, page, limit int) ([]Show, error) {
	return s.showList(ctx, "/shows/popular"+pageQuery(page, limit))
}

// AnticipatedShows lists the most anticipated upcoming shows.
func (s *Service) AnticipatedShows(ctx context.Context, page, limit int) ([]Show, error) {
	return s.showList(ctx, "/shows/anticipated"+pageQuery(page, limit))
}

// Search queries /search/{type} ("movie", "show", or "movie,show").
func (s *Service) Search(ctx context.Context, query, searchType string) ([]SearchResult, error) {
	if searchType == "" {
		searchType = "movie,show"
	}
	endpoint := fmt.Sprintf("/search/%s?query=%s&extended=full", searchType, stremio.URLEncode(query))

	var results []SearchResult
	if err := s.getJSON(ctx, endpoint, false, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ============ Sync ============

// Playback fetches the remote continue-watching list.
func (s *Service) Playback(ctx context.Context) ([]PlaybackProgress, error) {
	var rows []PlaybackProgress
	if err := s.getJSON(ctx, "/sync/playback?extended=full", true, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RemovePlayback deletes one remote playback row by its id.
func (s *Service) RemovePlayback(ctx context.Context, playbackID int64) error {
	if err := s.ensureValidToken(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/sync/playback/%d", playbackID)
	_, status, err := s.makeRequest(ctx, http.MethodDelete, endpoint, nil, true)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && (status < 200 || status > 299) {
		return fmt.Errorf("remove playback: unexpected status %d", status)
	}
	return nil
}

// Watchlist fetches the user's watchlist, optionally filtered by type
// ("movies" or "shows").
func (s *Service) Watchlist(ctx context.Context, itemType string) ([]WatchlistItem, error) {
	endpoint := "/sync/watchlist"
	if itemType != "" {
		endpoint += "/" + itemType
	}

	var items []WatchlistItem
	if err := s.getJSON(ctx, endpoint+"?extended=full", true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// syncItemsBody builds the {"movies":[...]} / {"shows":[...]} request shape.
func syncItemsBody(itemType, imdbID, watchedAt string) map[string]any {
	item := map[string]any{
		"ids": map[string]string{"imdb": imdbID},
	}
	if watchedAt != "" {
		item["watched_at"] = watchedAt
	}

	group := "movies"
	if itemType == "show" || itemType == "series" || itemType == "shows" {
		group = "shows"
	}
	return map[string]any{group: []any{item}}
}

// AddToWatchlist adds an item by IMDB id.
func (s *Service) AddToWatchlist(ctx context.Context, itemType, imdbID string) error {
	return s.postJSON(ctx, "/sync/watchlist", syncItemsBody(itemType, imdbID, ""))
}

// RemoveFromWatchlist removes an item by IMDB id.
func (s *Service) RemoveFromWatchlist(ctx context.Context, itemType, imdbID string) error {
	return s.postJSON(ctx, "/sync/watchlist/remove", syncItemsBody(itemType, imdbID, ""))
}

// History fetches the user's watch history, optionally filtered by type.
func (s *Service) History(ctx context.Context, itemType string, page, limit int) ([]HistoryItem, error) {
	endpoint := "/sync/history"
	if itemType != "" {
		endpoint += "/" + itemType
	}
	endpoint += pageQuery(page, limit)

	var items []HistoryItem
	if err := s.getJSON(ctx, endpoint, true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToHistory marks an item as watched. watchedAt may be empty for "now".
func (s *Service) AddToHistory(ctx context.Context, itemType, imdbID, watchedAt string) error {
	return s.postJSON(ctx, "/sync/history", syncItemsBody(itemType, imdbID, watchedAt))
}

func requestTimeout() time.Duration {
	if seconds := viper.GetInt(key.NetworkTimeout); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultTimeout
}
