package stremio

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestResourceDecoding(t *testing.T) {
	Convey("ResourceDefinition decoding", t, func() {
		Convey("Accepts the bare string form", func() {
			var res ResourceDefinition
			So(json.Unmarshal([]byte(`"catalog"`), &res), ShouldBeNil)
			So(res.Name, ShouldEqual, "catalog")
			So(res.Types, ShouldBeEmpty)
			So(res.IDPrefixes, ShouldBeEmpty)
		})

		Convey("Accepts the object form with restrictions", func() {
			var res ResourceDefinition
			raw := `{"name":"stream","types":["movie"],"idPrefixes":["tt"]}`
			So(json.Unmarshal([]byte(raw), &res), ShouldBeNil)
			So(res.Name, ShouldEqual, "stream")
			So(res.Types, ShouldResemble, []string{"movie"})
			So(res.IDPrefixes, ShouldResemble, []string{"tt"})
		})
	})
}

func TestCatalogDecoding(t *testing.T) {
	Convey("CatalogDefinition decoding", t, func() {
		Convey("Accepts the legacy flat arrays", func() {
			var cat CatalogDefinition
			raw := `{"type":"movie","id":"top","name":"Top","extraSupported":["search","skip"],"extraRequired":["search"]}`
			So(json.Unmarshal([]byte(raw), &cat), ShouldBeNil)
			So(cat.ExtraSupported, ShouldResemble, []string{"search", "skip"})
			So(cat.ExtraRequired, ShouldResemble, []string{"search"})
		})

		Convey("Accepts the structured extra objects", func() {
			var cat CatalogDefinition
			raw := `{"type":"movie","id":"top","name":"Top","extra":[{"name":"search","isRequired":true},{"name":"genre"}]}`
			So(json.Unmarshal([]byte(raw), &cat), ShouldBeNil)
			So(cat.ExtraSupported, ShouldResemble, []string{"search", "genre"})
			So(cat.ExtraRequired, ShouldResemble, []string{"search"})
		})

		Convey("Unions both schemas without duplicates", func() {
			var cat CatalogDefinition
			raw := `{"type":"movie","id":"top","name":"Top","extraSupported":["search"],"extra":[{"name":"search"},{"name":"skip"}]}`
			So(json.Unmarshal([]byte(raw), &cat), ShouldBeNil)
			So(cat.ExtraSupported, ShouldResemble, []string{"search", "skip"})
		})

		Convey("Searchable reflects the normalized union", func() {
			var cat CatalogDefinition
			raw := `{"type":"movie","id":"top","name":"Top","extra":[{"name":"search"}]}`
			So(json.Unmarshal([]byte(raw), &cat), ShouldBeNil)
			So(cat.Searchable(), ShouldBeTrue)
		})
	})
}

func TestManifestDecoding(t *testing.T) {
	Convey("Manifest decoding", t, func() {
		raw := `{
			"id": "org.example",
			"version": "1.0.0",
			"name": "Example",
			"types": ["movie"],
			"resources": ["catalog", {"name":"stream","idPrefixes":["tt"]}, 42],
			"catalogs": [{"type":"movie","id":"top","name":"Top"}, {"name":"missing-id"}],
			"idPrefixes": ["tt"],
			"behaviorHints": {"adult": false, "configurable": true}
		}`

		var manifest Manifest
		So(json.Unmarshal([]byte(raw), &manifest), ShouldBeNil)

		Convey("Mixed resource forms normalize into one shape", func() {
			So(manifest.Resources, ShouldHaveLength, 2)
			So(manifest.Resources[0].Name, ShouldEqual, "catalog")
			So(manifest.Resources[1].IDPrefixes, ShouldResemble, []string{"tt"})
		})

		Convey("Malformed list items are skipped, not fatal", func() {
			So(manifest.Catalogs, ShouldHaveLength, 1)
			So(manifest.Catalogs[0].ID, ShouldEqual, "top")
		})

		Convey("Behavior hints are lifted from the nested object", func() {
			So(manifest.Configurable, ShouldBeTrue)
			So(manifest.Adult, ShouldBeFalse)
		})
	})
}

func TestVideoDecoding(t *testing.T) {
	Convey("Video decoding", t, func() {
		Convey("Falls back to the legacy name field", func() {
			var video Video
			raw := `{"id":"tt1:1:2","name":"The One Where","season":1,"episode":2}`
			So(json.Unmarshal([]byte(raw), &video), ShouldBeNil)
			So(video.Title, ShouldEqual, "The One Where")
			So(*video.Season, ShouldEqual, 1)
			So(*video.Episode, ShouldEqual, 2)
		})

		Convey("Prefers title over name when both are present", func() {
			var video Video
			raw := `{"id":"tt1:1:2","title":"Pilot","name":"ignored"}`
			So(json.Unmarshal([]byte(raw), &video), ShouldBeNil)
			So(video.Title, ShouldEqual, "Pilot")
		})

		Convey("Absent optional fields stay nil", func() {
			var video Video
			So(json.Unmarshal([]byte(`{"id":"tt1:1:2"}`), &video), ShouldBeNil)
			So(video.Season, ShouldBeNil)
			So(video.Thumbnail, ShouldBeNil)
		})
	})
}

func TestMetaDecoding(t *testing.T) {
	Convey("Meta decoding", t, func() {
		raw := `{
			"id": "tt0944947",
			"type": "series",
			"name": "Game of Thrones",
			"videos": [
				{"id":"tt0944947:1:1","name":"Winter Is Coming"},
				{"id":""},
				{"id":"tt0944947:1:2","title":"The Kingsroad"}
			],
			"trailers": [
				{"source":"abc123","type":"Trailer"},
				{"source":"","type":"Clip"}
			]
		}`

		var meta Meta
		So(json.Unmarshal([]byte(raw), &meta), ShouldBeNil)

		Convey("Videos without ids are dropped", func() {
			So(meta.Videos, ShouldHaveLength, 2)
			So(meta.Videos[0].Title, ShouldEqual, "Winter Is Coming")
		})

		Convey("Trailers without a source are dropped", func() {
			So(meta.Trailers, ShouldHaveLength, 1)
			So(meta.Trailers[0].Source, ShouldEqual, "abc123")
		})
	})
}

func TestStreamDecoding(t *testing.T) {
	Convey("Stream decoding", t, func() {
		Convey("Reads behavior hints", func() {
			var stream Stream
			raw := `{"url":"https://cdn.example/video.mp4","name":"1080p","behaviorHints":{"bingeGroup":"grp-1080","videoSize":123456}}`
			So(json.Unmarshal([]byte(raw), &stream), ShouldBeNil)
			So(stream.Playable(), ShouldBeTrue)
			So(stream.BingeGroup(), ShouldEqual, "grp-1080")
			So(*stream.Hints.VideoSize, ShouldEqual, 123456)
		})

		Convey("A torrent stream is not directly playable", func() {
			var stream Stream
			raw := `{"infoHash":"deadbeef","fileIdx":0}`
			So(json.Unmarshal([]byte(raw), &stream), ShouldBeNil)
			So(stream.Playable(), ShouldBeFalse)
			So(stream.BingeGroup(), ShouldBeEmpty)
		})
	})
}
