package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/madari-app/madari/filesystem"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

// newTestService points a service at a stub API server with a logged-in user.
func newTestService(server *httptest.Server) *Service {
	return &Service{
		baseURL:    server.URL,
		httpClient: server.Client(),
		now:        time.Now,
		config: Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    time.Now().Add(time.Hour).Unix(),
			Enabled:      true,
		},
	}
}

func TestRequestHeaders(t *testing.T) {
	Convey("API requests", t, func() {
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			fmt.Fprint(w, `[]`)
		}))
		defer server.Close()

		s := newTestService(server)

		Convey("Carry the API headers and bearer token", func() {
			_, err := s.Playback(context.Background())
			So(err, ShouldBeNil)
			So(got.Get("trakt-api-version"), ShouldEqual, "2")
			So(got.Get("trakt-api-key"), ShouldEqual, "client-id")
			So(got.Get("Content-Type"), ShouldEqual, "application/json")
			So(got.Get("Authorization"), ShouldEqual, "Bearer access-token")
		})

		Convey("Public endpoints omit the bearer token", func() {
			_, err := s.TrendingMovies(context.Background(), 1, 10)
			So(err, ShouldBeNil)
			So(got.Get("Authorization"), ShouldBeEmpty)
		})
	})
}

func TestDeviceAuth(t *testing.T) {
	Convey("Device authentication", t, func() {
		var tokenStatus int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/oauth/device/code":
				fmt.Fprint(w, `{
					"device_code": "dev-code",
					"user_code": "ABCD1234",
					"verification_url": "https://trakt.tv/activate",
					"expires_in": 600,
					"interval": 5
				}`)
			case "/oauth/device/token":
				if tokenStatus != http.StatusOK {
					w.WriteHeader(tokenStatus)
					return
				}
				fmt.Fprintf(w, `{
					"access_token": "new-access",
					"refresh_token": "new-refresh",
					"expires_in": 7200,
					"created_at": %d
				}`, time.Now().Unix())
			case "/users/settings":
				fmt.Fprint(w, `{"user":{"username":"rose","vip":true,"images":{"avatar":{"full":"https://img.example/rose.png"}}}}`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		s := newTestService(server)
		ctx := context.Background()

		Convey("StartDeviceAuth returns the user code", func() {
			code, err := s.StartDeviceAuth(ctx)
			So(err, ShouldBeNil)
			So(code.UserCode, ShouldEqual, "ABCD1234")
			So(code.VerificationURL, ShouldEqual, "https://trakt.tv/activate")
			So(code.Interval, ShouldEqual, 5)
		})

		Convey("400 means the user has not approved yet", func() {
			tokenStatus = http.StatusBadRequest
			So(s.PollDeviceToken(ctx, "dev-code"), ShouldEqual, ErrAuthPending)
		})

		Convey("410 is terminal", func() {
			tokenStatus = http.StatusGone
			err := s.PollDeviceToken(ctx, "dev-code")
			So(err, ShouldNotBeNil)
			So(err, ShouldNotEqual, ErrAuthPending)
		})

		Convey("Approval stores the token and the user identity", func() {
			tokenStatus = http.StatusOK
			So(s.PollDeviceToken(ctx, "dev-code"), ShouldBeNil)

			cfg := s.Config()
			So(cfg.AccessToken, ShouldEqual, "new-access")
			So(cfg.RefreshToken, ShouldEqual, "new-refresh")
			So(cfg.Enabled, ShouldBeTrue)
			So(cfg.IsAuthenticated(), ShouldBeTrue)
			So(cfg.Username, ShouldNotBeNil)
			So(*cfg.Username, ShouldEqual, "rose")
			So(cfg.AvatarURL, ShouldNotBeNil)
			So(*cfg.AvatarURL, ShouldEqual, "https://img.example/rose.png")
		})

		Convey("Credentials are required before starting", func() {
			s.mu.Lock()
			s.config.ClientID = ""
			s.mu.Unlock()
			_, err := s.StartDeviceAuth(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestTokenRefresh(t *testing.T) {
	Convey("Token refresh", t, func() {
		var refreshBody map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/oauth/token":
				data, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(data, &refreshBody)
				fmt.Fprintf(w, `{
					"access_token": "refreshed-access",
					"refresh_token": "refreshed-refresh",
					"expires_in": 7200,
					"created_at": %d
				}`, time.Now().Unix())
			case "/sync/playback":
				fmt.Fprint(w, `[]`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		s := newTestService(server)

		Convey("An expired token is refreshed before authenticated calls", func() {
			s.mu.Lock()
			s.config.ExpiresAt = time.Now().Add(-time.Hour).Unix()
			s.mu.Unlock()

			_, err := s.Playback(context.Background())
			So(err, ShouldBeNil)
			So(refreshBody["grant_type"], ShouldEqual, "refresh_token")
			So(refreshBody["refresh_token"], ShouldEqual, "refresh-token")
			So(s.Config().AccessToken, ShouldEqual, "refreshed-access")
		})

		Convey("Without any token the call fails fast", func() {
			s.mu.Lock()
			s.config.AccessToken = ""
			s.config.ExpiresAt = 0
			s.mu.Unlock()

			_, err := s.Playback(context.Background())
			So(err, ShouldEqual, ErrNotAuthenticated)
		})
	})
}

func TestLogout(t *testing.T) {
	Convey("Logout", t, func() {
		Convey("Clears local state even when revocation fails", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			s := newTestService(server)
			So(s.Logout(context.Background()), ShouldBeNil)

			cfg := s.Config()
			So(cfg.AccessToken, ShouldBeEmpty)
			So(cfg.RefreshToken, ShouldBeEmpty)
			So(cfg.ExpiresAt, ShouldEqual, 0)
			So(cfg.Username, ShouldBeNil)
			So(cfg.IsAuthenticated(), ShouldBeFalse)
		})
	})
}

func TestCatalogs(t *testing.T) {
	Convey("Discovery catalogs", t, func() {
		var gotPath, gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			switch r.URL.Path {
			case "/movies/trending":
				fmt.Fprint(w, `[{"watchers": 120, "movie": {"title": "Dune", "ids": {"imdb": "tt1160419"}}}]`)
			case "/movies/popular":
				fmt.Fprint(w, `[{"title": "The Matrix", "ids": {"imdb": "tt0133093"}}]`)
			case "/shows/anticipated":
				fmt.Fprint(w, `[{"list_count": 9, "show": {"title": "Severance", "ids": {"imdb": "tt11280740"}}}]`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		s := newTestService(server)
		ctx := context.Background()

		Convey("Trending rows are wrapped", func() {
			movies, err := s.TrendingMovies(ctx, 1, 10)
			So(err, ShouldBeNil)
			So(movies, ShouldHaveLength, 1)
			So(movies[0].Title, ShouldEqual, "Dune")
			So(gotQuery, ShouldContainSubstring, "page=1")
			So(gotQuery, ShouldContainSubstring, "limit=10")
		})

		Convey("Popular rows are bare objects", func() {
			movies, err := s.PopularMovies(ctx, 2, 5)
			So(err, ShouldBeNil)
			So(movies, ShouldHaveLength, 1)
			So(movies[0].Title, ShouldEqual, "The Matrix")
			So(gotQuery, ShouldContainSubstring, "page=2")
		})

		Convey("Anticipated shows are wrapped", func() {
			shows, err := s.AnticipatedShows(ctx, 1, 10)
			So(err, ShouldBeNil)
			So(shows, ShouldHaveLength, 1)
			So(shows[0].Title, ShouldEqual, "Severance")
			So(gotPath, ShouldEqual, "/shows/anticipated")
		})
	})
}

func TestSearch(t *testing.T) {
	Convey("Search", t, func() {
		var gotURI string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotURI = r.URL.RequestURI()
			fmt.Fprint(w, `[{"type":"movie","score":100,"movie":{"title":"Blade Runner","ids":{"imdb":"tt0083658"}}}]`)
		}))
		defer server.Close()

		s := newTestService(server)

		Convey("Encodes the query and scopes the type", func() {
			results, err := s.Search(context.Background(), "blade runner", "movie")
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)
			So(results[0].Title(), ShouldEqual, "Blade Runner")
			So(gotURI, ShouldContainSubstring, "/search/movie?query=blade%20runner")
		})

		Convey("Defaults to both types", func() {
			_, err := s.Search(context.Background(), "dune", "")
			So(err, ShouldBeNil)
			So(gotURI, ShouldContainSubstring, "/search/movie,show?")
		})
	})
}

func TestScrobble(t *testing.T) {
	Convey("Scrobbling", t, func() {
		var gotPath string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			data, _ := io.ReadAll(r.Body)
			gotBody = nil
			_ = json.Unmarshal(data, &gotBody)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": 1}`)
		}))
		defer server.Close()

		s := newTestService(server)
		ctx := context.Background()

		Convey("Movies scrobble with their own ids", func() {
			ids := ParseStremioID("tt0133093")
			So(s.ScrobbleStart(ctx, "movie", ids, 12.5), ShouldBeNil)
			So(gotPath, ShouldEqual, "/scrobble/start")

			movie := gotBody["movie"].(map[string]any)
			So(movie["ids"].(map[string]any)["imdb"], ShouldEqual, "tt0133093")
			So(gotBody["progress"], ShouldEqual, 12.5)
			So(gotBody["episode"], ShouldBeNil)
		})

		Convey("Episodes scrobble against the show with season and number", func() {
			ids := ParseStremioID("tt0903747:5:14")
			So(s.ScrobblePause(ctx, "series", ids, 40), ShouldBeNil)
			So(gotPath, ShouldEqual, "/scrobble/pause")

			show := gotBody["show"].(map[string]any)
			So(show["ids"].(map[string]any)["imdb"], ShouldEqual, "tt0903747")
			episode := gotBody["episode"].(map[string]any)
			So(episode["season"], ShouldEqual, 5)
			So(episode["number"], ShouldEqual, 14)
		})

		Convey("Stop posts the final progress", func() {
			ids := ParseStremioID("tmdb:603")
			So(s.ScrobbleStop(ctx, "movie", ids, 100), ShouldBeNil)
			So(gotPath, ShouldEqual, "/scrobble/stop")
			movie := gotBody["movie"].(map[string]any)
			So(movie["ids"].(map[string]any)["tmdb"], ShouldEqual, 603)
		})

		Convey("Kitsu-only ids cannot scrobble", func() {
			ids := ParseStremioID("kitsu:1555")
			err := s.ScrobbleStart(ctx, "movie", ids, 0)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no usable content id")
		})
	})
}

func TestSyncEndpoints(t *testing.T) {
	Convey("Sync", t, func() {
		var gotMethod, gotURI string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotURI = r.URL.RequestURI()
			data, _ := io.ReadAll(r.Body)
			gotBody = nil
			_ = json.Unmarshal(data, &gotBody)

			switch {
			case r.URL.Path == "/sync/playback":
				fmt.Fprint(w, `[{"id": 7, "progress": 42.5, "type": "movie", "paused_at": "2026-08-01T10:00:00.000Z", "movie": {"title": "Dune", "ids": {"imdb": "tt1160419"}}}]`)
			case r.Method == http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{}`)
			}
		}))
		defer server.Close()

		s := newTestService(server)
		ctx := context.Background()

		Convey("Playback requests the extended view", func() {
			rows, err := s.Playback(ctx)
			So(err, ShouldBeNil)
			So(gotURI, ShouldEqual, "/sync/playback?extended=full")
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Progress, ShouldEqual, 42.5)
			So(rows[0].Movie.Title, ShouldEqual, "Dune")
		})

		Convey("RemovePlayback deletes by row id", func() {
			So(s.RemovePlayback(ctx, 7), ShouldBeNil)
			So(gotMethod, ShouldEqual, http.MethodDelete)
			So(gotURI, ShouldEqual, "/sync/playback/7")
		})

		Convey("Watchlist additions group by type", func() {
			So(s.AddToWatchlist(ctx, "show", "tt11280740"), ShouldBeNil)
			shows := gotBody["shows"].([]any)
			item := shows[0].(map[string]any)
			So(item["ids"].(map[string]any)["imdb"], ShouldEqual, "tt11280740")

			So(s.RemoveFromWatchlist(ctx, "movie", "tt1160419"), ShouldBeNil)
			So(gotURI, ShouldEqual, "/sync/watchlist/remove")
			So(gotBody["movies"], ShouldNotBeNil)
		})

		Convey("History additions carry the watched timestamp", func() {
			So(s.AddToHistory(ctx, "movie", "tt1160419", "2026-08-20T21:00:00.000Z"), ShouldBeNil)
			movies := gotBody["movies"].([]any)
			item := movies[0].(map[string]any)
			So(item["watched_at"], ShouldEqual, "2026-08-20T21:00:00.000Z")
		})
	})
}

func TestClosestMatch(t *testing.T) {
	Convey("ClosestMatch", t, func() {
		title := func(name string) SearchResult {
			return SearchResult{Type: "movie", Movie: &Movie{Title: name}}
		}

		Convey("Picks the nearest title", func() {
			results := []SearchResult{title("Blade Runner 2049"), title("Blade Runner"), title("Blades of Glory")}
			match := ClosestMatch("blade runner", results)
			So(match.IsPresent(), ShouldBeTrue)
			So(match.MustGet().Title(), ShouldEqual, "Blade Runner")
		})

		Convey("Empty input yields none", func() {
			So(ClosestMatch("anything", nil).IsPresent(), ShouldBeFalse)
		})
	})
}
