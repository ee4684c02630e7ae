// Package trakt implements the Trakt tracking-service integration: device
// authentication, discovery catalogs, sync (playback, watchlist, history),
// scrobbling, and the bridge between addon content ids and Trakt ids.
package trakt

// Ids carries the various external identifiers Trakt knows an item by.
type Ids struct {
	Trakt *int64  `json:"trakt,omitempty"`
	Slug  *string `json:"slug,omitempty"`
	IMDB  *string `json:"imdb,omitempty"`
	TMDB  *int64  `json:"tmdb,omitempty"`
	TVDB  *int64  `json:"tvdb,omitempty"`
}

// Movie is a movie object as returned by the Trakt API.
type Movie struct {
	Title         string   `json:"title"`
	Year          *int     `json:"year,omitempty"`
	Ids           Ids      `json:"ids"`
	Tagline       *string  `json:"tagline,omitempty"`
	Overview      *string  `json:"overview,omitempty"`
	Released      *string  `json:"released,omitempty"`
	Runtime       *int     `json:"runtime,omitempty"`
	Country       *string  `json:"country,omitempty"`
	Trailer       *string  `json:"trailer,omitempty"`
	Homepage      *string  `json:"homepage,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Votes         *int64   `json:"votes,omitempty"`
	Language      *string  `json:"language,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Certification *string  `json:"certification,omitempty"`
}

// Show is a show object as returned by the Trakt API.
type Show struct {
	Title         string   `json:"title"`
	Year          *int     `json:"year,omitempty"`
	Ids           Ids      `json:"ids"`
	Overview      *string  `json:"overview,omitempty"`
	FirstAired    *string  `json:"first_aired,omitempty"`
	Runtime       *int     `json:"runtime,omitempty"`
	Certification *string  `json:"certification,omitempty"`
	Network       *string  `json:"network,omitempty"`
	Country       *string  `json:"country,omitempty"`
	Trailer       *string  `json:"trailer,omitempty"`
	Homepage      *string  `json:"homepage,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Votes         *int64   `json:"votes,omitempty"`
	Language      *string  `json:"language,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	AiredEpisodes *int     `json:"aired_episodes,omitempty"`
}

// Episode is an episode object as returned by the Trakt API.
type Episode struct {
	Season     int      `json:"season"`
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	Ids        Ids      `json:"ids"`
	Overview   *string  `json:"overview,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Votes      *int64   `json:"votes,omitempty"`
	FirstAired *string  `json:"first_aired,omitempty"`
	Runtime    *int     `json:"runtime,omitempty"`
}

// Season is a season object as returned by the Trakt API.
type Season struct {
	Number        int       `json:"number"`
	Ids           Ids       `json:"ids"`
	Rating        *float64  `json:"rating,omitempty"`
	Votes         *int64    `json:"votes,omitempty"`
	EpisodeCount  *int      `json:"episode_count,omitempty"`
	AiredEpisodes *int      `json:"aired_episodes,omitempty"`
	Title         *string   `json:"title,omitempty"`
	Overview      *string   `json:"overview,omitempty"`
	FirstAired    *string   `json:"first_aired,omitempty"`
	Episodes      []Episode `json:"episodes,omitempty"`
}

// PlaybackProgress is one paused-playback row from /sync/playback.
// Progress is a percentage (0-100).
type PlaybackProgress struct {
	ID       int64    `json:"id"`
	Progress float64  `json:"progress"`
	Movie    *Movie   `json:"movie,omitempty"`
	Show     *Show    `json:"show,omitempty"`
	Episode  *Episode `json:"episode,omitempty"`
	PausedAt string   `json:"paused_at"`
	Type     string   `json:"type"`
}

// WatchlistItem is one row of the user's watchlist.
type WatchlistItem struct {
	Rank     int64    `json:"rank"`
	ListedAt string   `json:"listed_at"`
	Type     string   `json:"type"`
	Movie    *Movie   `json:"movie,omitempty"`
	Show     *Show    `json:"show,omitempty"`
	Season   *Season  `json:"season,omitempty"`
	Episode  *Episode `json:"episode,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// HistoryItem is one row of the user's watch history.
type HistoryItem struct {
	ID        int64    `json:"id"`
	WatchedAt string   `json:"watched_at"`
	Action    string   `json:"action"`
	Type      string   `json:"type"`
	Movie     *Movie   `json:"movie,omitempty"`
	Show      *Show    `json:"show,omitempty"`
	Episode   *Episode `json:"episode,omitempty"`
}

// SearchResult is one row returned by /search/{type}.
type SearchResult struct {
	Type    string   `json:"type"`
	Score   float64  `json:"score"`
	Movie   *Movie   `json:"movie,omitempty"`
	Show    *Show    `json:"show,omitempty"`
	Episode *Episode `json:"episode,omitempty"`
}

// Title returns the display title of whichever item the result wraps.
func (r SearchResult) Title() string {
	switch {
	case r.Movie != nil:
		return r.Movie.Title
	case r.Show != nil:
		return r.Show.Title
	case r.Episode != nil:
		return r.Episode.Title
	default:
		return ""
	}
}

// DeviceCode is the response to a device authentication request.
type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// TokenResponse is the OAuth token grant response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

// UserSettings is the subset of /users/settings the application consumes.
type UserSettings struct {
	Username string
	Name     *string
	Avatar   *string
	VIP      bool
}
