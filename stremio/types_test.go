package stremio

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManifestPredicates(t *testing.T) {
	Convey("Manifest capability predicates", t, func() {
		manifest := Manifest{
			ID:    "org.example.cinemeta",
			Types: []string{"movie", "series"},
			Resources: []ResourceDefinition{
				{Name: "catalog"},
				{Name: "meta"},
			},
			IDPrefixes: []string{"tt"},
		}

		Convey("HasResource matches declared resources only", func() {
			So(manifest.HasResource("meta"), ShouldBeTrue)
			So(manifest.HasResource("stream"), ShouldBeFalse)
		})

		Convey("HasType matches declared types only", func() {
			So(manifest.HasType("movie"), ShouldBeTrue)
			So(manifest.HasType("tv"), ShouldBeFalse)
		})

		Convey("MatchesIDPrefix honors the prefix list", func() {
			So(manifest.MatchesIDPrefix("tt0111161"), ShouldBeTrue)
			So(manifest.MatchesIDPrefix("kitsu:1"), ShouldBeFalse)
		})

		Convey("An empty prefix list is unrestricted", func() {
			manifest.IDPrefixes = nil
			So(manifest.MatchesIDPrefix("anything"), ShouldBeTrue)
		})
	})
}

func TestExtraArgs(t *testing.T) {
	Convey("ExtraArgs.ToPathSegment", t, func() {
		Convey("Empty args produce an empty segment", func() {
			So((&ExtraArgs{}).ToPathSegment(), ShouldBeEmpty)
			So((*ExtraArgs)(nil).ToPathSegment(), ShouldBeEmpty)
		})

		Convey("Parameters appear in protocol order", func() {
			extra := &ExtraArgs{Search: "dune", Skip: 100, Genre: "Sci-Fi"}
			So(extra.ToPathSegment(), ShouldEqual, "search=dune&skip=100&genre=Sci-Fi")
		})

		Convey("Search values are percent-encoded", func() {
			extra := &ExtraArgs{Search: "the matrix"}
			So(extra.ToPathSegment(), ShouldEqual, "search=the%20matrix")
		})

		Convey("Skip of zero is omitted", func() {
			extra := &ExtraArgs{Genre: "Drama"}
			So(extra.ToPathSegment(), ShouldEqual, "genre=Drama")
		})

		Convey("Other parameters follow the fixed ones deterministically", func() {
			extra := &ExtraArgs{Genre: "Drama", Other: map[string]string{"b": "2", "a": "1"}}
			So(extra.ToPathSegment(), ShouldEqual, "genre=Drama&a=1&b=2")
		})
	})
}

func TestURLEncode(t *testing.T) {
	Convey("URLEncode", t, func() {
		Convey("Keeps unreserved characters intact", func() {
			So(URLEncode("abc-XYZ_0.9~"), ShouldEqual, "abc-XYZ_0.9~")
		})

		Convey("Encodes everything else with uppercase hex", func() {
			So(URLEncode("a b/c:d"), ShouldEqual, "a%20b%2Fc%3Ad")
		})

		Convey("Encodes multi-byte runes per byte", func() {
			So(URLEncode("é"), ShouldEqual, "%C3%A9")
		})
	})
}

func TestVideoDisplayTitle(t *testing.T) {
	Convey("Video.DisplayTitle", t, func() {
		Convey("Prefers the explicit title", func() {
			v := Video{ID: "tt1:1:1", Title: "Pilot"}
			So(v.DisplayTitle(), ShouldEqual, "Pilot")
		})

		Convey("Synthesizes Episode N when untitled", func() {
			episode := 3
			v := Video{ID: "tt1:1:3", Episode: &episode}
			So(v.DisplayTitle(), ShouldEqual, "Episode 3")
		})

		Convey("Falls back to the id as a last resort", func() {
			v := Video{ID: "tt1:1:3"}
			So(v.DisplayTitle(), ShouldEqual, "tt1:1:3")
		})
	})
}

func TestBaseURL(t *testing.T) {
	Convey("BaseURL", t, func() {
		Convey("Strips the manifest suffix", func() {
			So(BaseURL("https://v3-cinemeta.strem.io/manifest.json"), ShouldEqual, "https://v3-cinemeta.strem.io")
		})

		Convey("Strips trailing slashes", func() {
			So(BaseURL("https://example.com/addon///"), ShouldEqual, "https://example.com/addon")
		})

		Convey("Is idempotent", func() {
			base := BaseURL("https://example.com/addon/manifest.json")
			So(BaseURL(base), ShouldEqual, base)
		})
	})
}
