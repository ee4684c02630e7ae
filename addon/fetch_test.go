package addon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/madari-app/madari/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

// newFullAddonServer serves a manifest plus canned catalog/meta/stream
// responses. Passing empty streams simulates an addon with nothing to offer.
func newFullAddonServer(id string, streams string, status int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": %q,
			"version": "1.0.0",
			"name": "Addon %s",
			"types": ["movie", "series"],
			"resources": ["catalog", "meta", "stream", "subtitles"],
			"catalogs": [{"type":"movie","id":"top","name":"Top","extraSupported":["search"]}]
		}`, id, id)
	})
	mux.HandleFunc("/stream/", func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"streams":%s}`, streams)
	})
	mux.HandleFunc("/meta/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"meta":{"id":"tt1","type":"movie","name":"From %s"}}`, id)
	})
	mux.HandleFunc("/subtitles/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"subtitles":[{"id":"1","url":"https://subs.example/%s.srt","lang":"eng"}]}`, id)
	})
	mux.HandleFunc("/catalog/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"metas":[{"id":"tt1","type":"movie","name":"Result from %s"}]}`, id)
	})
	return httptest.NewServer(mux)
}

func TestStreamsFanOut(t *testing.T) {
	Convey("Streams fan-out", t, func() {
		filesystem.SetMemMapFs()
		s := NewService()
		ctx := context.Background()

		good := newFullAddonServer("org.good", `[{"url":"https://cdn.example/a.mp4"}]`, 0)
		empty := newFullAddonServer("org.empty", `[]`, 0)
		broken := newFullAddonServer("org.broken", ``, http.StatusInternalServerError)
		defer good.Close()
		defer empty.Close()
		defer broken.Close()

		for _, server := range []*httptest.Server{good, empty, broken} {
			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
		}

		Convey("Only non-empty successful groups are delivered", func() {
			var groups []StreamGroup
			err := s.Streams(ctx, "movie", "tt1", func(g StreamGroup) {
				groups = append(groups, g)
			})
			So(err, ShouldBeNil)
			So(groups, ShouldHaveLength, 1)
			So(groups[0].Addon.ID(), ShouldEqual, "org.good")
			So(groups[0].Streams, ShouldHaveLength, 1)
		})

		Convey("Routing that matches nothing reports the gap", func() {
			for _, a := range s.Addons() {
				s.SetEnabled(a.ID(), false)
			}

			var called bool
			err := s.Streams(ctx, "movie", "tt1", func(StreamGroup) { called = true })
			So(errors.Is(err, ErrNoCapableAddon), ShouldBeTrue)
			So(called, ShouldBeFalse)
		})

		Convey("A cancelled context reports the cancellation", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			var delivered bool
			err := s.Streams(cancelled, "movie", "tt1", func(StreamGroup) {
				delivered = true
			})
			So(err, ShouldNotBeNil)
			So(delivered, ShouldBeFalse)
		})
	})
}

func TestMetaFirstMatch(t *testing.T) {
	Convey("Meta", t, func() {
		filesystem.SetMemMapFs()
		s := NewService()
		ctx := context.Background()

		first := newFullAddonServer("org.first", `[]`, 0)
		second := newFullAddonServer("org.second", `[]`, 0)
		defer first.Close()
		defer second.Close()

		for _, server := range []*httptest.Server{first, second} {
			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
		}

		Convey("Uses only the first addon in display order", func() {
			meta, err := s.Meta(ctx, "movie", "tt1")
			So(err, ShouldBeNil)
			So(meta.Name, ShouldEqual, "From org.first")
		})

		Convey("Display order decides, not install order", func() {
			So(s.Move("org.second", -1), ShouldBeTrue)
			meta, err := s.Meta(ctx, "movie", "tt1")
			So(err, ShouldBeNil)
			So(meta.Name, ShouldEqual, "From org.second")
		})

		Convey("No capable addon is an error naming the type", func() {
			for _, a := range s.Addons() {
				s.SetEnabled(a.ID(), false)
			}
			_, err := s.Meta(ctx, "movie", "tt1")
			So(errors.Is(err, ErrNoCapableAddon), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "no addon supports meta for type: movie")
		})
	})
}

func TestSearchFanOut(t *testing.T) {
	Convey("Search fan-out", t, func() {
		filesystem.SetMemMapFs()
		s := NewService()
		ctx := context.Background()

		a := newFullAddonServer("org.a", `[]`, 0)
		b := newFullAddonServer("org.b", `[]`, 0)
		defer a.Close()
		defer b.Close()

		for _, server := range []*httptest.Server{a, b} {
			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
		}

		Convey("Collects one group per searchable catalog", func() {
			var groups []SearchGroup
			err := s.Search(ctx, "dune", func(g SearchGroup) {
				groups = append(groups, g)
			})
			So(err, ShouldBeNil)
			So(groups, ShouldHaveLength, 2)
		})

		Convey("No searchable catalogs is an error", func() {
			for _, addon := range s.Addons() {
				s.SetEnabled(addon.ID(), false)
			}
			err := s.Search(ctx, "dune", func(SearchGroup) {})
			So(errors.Is(err, ErrNoCapableAddon), ShouldBeTrue)
		})
	})
}

func TestSubtitlesFanOut(t *testing.T) {
	Convey("Subtitles fan-out", t, func() {
		filesystem.SetMemMapFs()
		s := NewService()
		ctx := context.Background()

		server := newFullAddonServer("org.subs", `[]`, 0)
		defer server.Close()
		_, err := s.Install(ctx, server.URL)
		So(err, ShouldBeNil)

		Convey("Delivers subtitle groups", func() {
			var groups []SubtitleGroup
			err := s.Subtitles(ctx, "movie", "tt1", "hash", 0, func(g SubtitleGroup) {
				groups = append(groups, g)
			})
			So(err, ShouldBeNil)
			So(groups, ShouldHaveLength, 1)
			So(groups[0].Subtitles[0].Lang, ShouldEqual, "eng")
		})
	})
}
