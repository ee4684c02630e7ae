package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

// newManifestServer serves a manifest with the given id and capabilities.
func newManifestServer(id string, body string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Write([]byte(body))
			return
		}
		fmt.Fprintf(w, `{
			"id": %q,
			"version": "1.0.0",
			"name": "Addon %s",
			"types": ["movie", "series"],
			"resources": ["catalog", "meta", "stream"],
			"catalogs": [{"type":"movie","id":"top","name":"Top","extraSupported":["search"]}],
			"idPrefixes": ["tt"]
		}`, id, id)
	})
	return httptest.NewServer(mux)
}

func newTestService() *Service {
	filesystem.SetMemMapFs()
	s := NewService()
	s.timestamp = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestInstall(t *testing.T) {
	Convey("Install", t, func() {
		s := newTestService()
		server := newManifestServer("org.first", "")
		defer server.Close()

		ctx := context.Background()

		Convey("Installs a new addon enabled at the end of the order", func() {
			installed, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
			So(installed.ID(), ShouldEqual, "org.first")
			So(installed.Enabled, ShouldBeTrue)
			So(installed.Order, ShouldEqual, 0)
			So(installed.InstalledAt, ShouldEqual, "2026-03-01T12:00:00Z")
		})

		Convey("Reinstalling the same id updates in place", func() {
			first, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
			So(s.SetEnabled("org.first", false), ShouldBeTrue)

			again, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
			So(again.Order, ShouldEqual, first.Order)
			So(again.Enabled, ShouldBeFalse)
			So(s.Addons(), ShouldHaveLength, 1)
		})

		Convey("Persists the versioned registry document", func() {
			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)

			data, err := filesystem.API().ReadFile(where.Addons())
			So(err, ShouldBeNil)

			var doc struct {
				Version int `json:"version"`
				Addons  []struct {
					TransportURL string `json:"transport_url"`
				} `json:"addons"`
			}
			So(json.Unmarshal(data, &doc), ShouldBeNil)
			So(doc.Version, ShouldEqual, 1)
			So(doc.Addons, ShouldHaveLength, 1)
			So(doc.Addons[0].TransportURL, ShouldEqual, server.URL+"/manifest.json")
		})

		Convey("Load restores what Install persisted", func() {
			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)

			restored := NewService()
			restored.Load()
			So(restored.Addons(), ShouldHaveLength, 1)
			So(restored.Addons()[0].ID(), ShouldEqual, "org.first")
		})

		Convey("Notifies change subscribers", func() {
			var notified int
			s.OnChange(func() { notified++ })

			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
			So(notified, ShouldEqual, 1)
		})

		Convey("A subscriber may call back into the service", func() {
			var seen int
			s.OnChange(func() { seen = len(s.Addons()) })

			_, err := s.Install(ctx, server.URL)
			So(err, ShouldBeNil)
			So(seen, ShouldEqual, 1)
		})
	})
}

func TestMutations(t *testing.T) {
	Convey("Registry mutations", t, func() {
		s := newTestService()
		ctx := context.Background()

		servers := make([]*httptest.Server, 3)
		for i := range servers {
			servers[i] = newManifestServer(fmt.Sprintf("org.addon%d", i), "")
			defer servers[i].Close()
			_, err := s.Install(ctx, servers[i].URL)
			So(err, ShouldBeNil)
		}

		ids := func() []string {
			var out []string
			for _, a := range s.Addons() {
				out = append(out, a.ID())
			}
			return out
		}

		Convey("Uninstall renumbers the remaining orders densely", func() {
			So(s.Uninstall("org.addon1"), ShouldBeTrue)
			So(ids(), ShouldResemble, []string{"org.addon0", "org.addon2"})
			So(s.Addons()[0].Order, ShouldEqual, 0)
			So(s.Addons()[1].Order, ShouldEqual, 1)
		})

		Convey("Uninstall of an unknown id reports false", func() {
			So(s.Uninstall("org.unknown"), ShouldBeFalse)
		})

		Convey("Move swaps with the neighbor in the given direction", func() {
			So(s.Move("org.addon2", -1), ShouldBeTrue)
			So(ids(), ShouldResemble, []string{"org.addon0", "org.addon2", "org.addon1"})
		})

		Convey("Move past the edge reports false", func() {
			So(s.Move("org.addon0", -1), ShouldBeFalse)
			So(s.Move("org.addon2", 1), ShouldBeFalse)
		})

		Convey("SetEnabled keeps order intact", func() {
			So(s.SetEnabled("org.addon1", false), ShouldBeTrue)
			So(ids(), ShouldResemble, []string{"org.addon0", "org.addon1", "org.addon2"})
			So(s.Addons()[1].Enabled, ShouldBeFalse)
		})
	})
}

func TestRouting(t *testing.T) {
	Convey("ForResource", t, func() {
		s := newTestService()

		add := func(id string, manifest string) {
			server := newManifestServer(id, manifest)
			defer server.Close()
			_, err := s.Install(context.Background(), server.URL)
			So(err, ShouldBeNil)
		}

		add("org.movies", `{
			"id": "org.movies", "version": "1.0.0", "name": "Movies",
			"types": ["movie"],
			"resources": ["stream"],
			"catalogs": [],
			"idPrefixes": ["tt"]
		}`)
		add("org.anime", `{
			"id": "org.anime", "version": "1.0.0", "name": "Anime",
			"types": ["movie", "series"],
			"resources": [{"name":"stream","types":["series"],"idPrefixes":["kitsu"]}],
			"catalogs": []
		}`)
		add("org.open", `{
			"id": "org.open", "version": "1.0.0", "name": "Open",
			"types": [],
			"resources": ["stream"],
			"catalogs": []
		}`)

		matchedIDs := func(resource, contentType, id string) []string {
			var out []string
			for _, a := range s.ForResource(resource, contentType, id) {
				out = append(out, a.ID())
			}
			return out
		}

		Convey("Filters by resource, type, and id prefix", func() {
			So(matchedIDs("stream", "movie", "tt0111161"), ShouldResemble, []string{"org.movies", "org.open"})
		})

		Convey("Resource-level restrictions override manifest-level", func() {
			So(matchedIDs("stream", "series", "kitsu:1:1"), ShouldResemble, []string{"org.anime", "org.open"})
			So(matchedIDs("stream", "series", "tt0944947:1:1"), ShouldResemble, []string{"org.open"})
		})

		Convey("An empty id passes prefix filtering", func() {
			So(matchedIDs("stream", "movie", ""), ShouldResemble, []string{"org.movies", "org.open"})
		})

		Convey("Disabled addons are excluded", func() {
			s.SetEnabled("org.open", false)
			So(matchedIDs("stream", "movie", "tt0111161"), ShouldResemble, []string{"org.movies"})
		})

		Convey("Undeclared resources never match", func() {
			So(matchedIDs("subtitles", "movie", "tt0111161"), ShouldBeEmpty)
		})
	})
}
