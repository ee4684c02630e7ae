package trakt

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseStremioID(t *testing.T) {
	Convey("ParseStremioID", t, func() {
		Convey("IMDB movie", func() {
			ids := ParseStremioID("tt0133093")
			So(ids.IMDB, ShouldEqual, "tt0133093")
			So(ids.IsEpisode, ShouldBeFalse)
			So(ids.HasID(), ShouldBeTrue)
		})

		Convey("IMDB episode", func() {
			ids := ParseStremioID("tt0903747:5:14")
			So(ids.IMDB, ShouldEqual, "tt0903747")
			So(ids.Season, ShouldEqual, 5)
			So(ids.Episode, ShouldEqual, 14)
			So(ids.IsEpisode, ShouldBeTrue)
		})

		Convey("IMDB with a malformed season is treated as a movie", func() {
			ids := ParseStremioID("tt0903747:five:14")
			So(ids.IMDB, ShouldEqual, "tt0903747")
			So(ids.IsEpisode, ShouldBeFalse)
		})

		Convey("TMDB id", func() {
			ids := ParseStremioID("tmdb:603")
			So(ids.TMDB, ShouldEqual, 603)
			So(ids.IsEpisode, ShouldBeFalse)
		})

		Convey("TMDB episode", func() {
			ids := ParseStremioID("tmdb:1396:5:14")
			So(ids.TMDB, ShouldEqual, 1396)
			So(ids.Season, ShouldEqual, 5)
			So(ids.Episode, ShouldEqual, 14)
			So(ids.IsEpisode, ShouldBeTrue)
		})

		Convey("TVDB and Kitsu ids", func() {
			So(ParseStremioID("tvdb:81189").TVDB, ShouldEqual, 81189)
			So(ParseStremioID("kitsu:1555").Kitsu, ShouldEqual, 1555)
		})

		Convey("Kitsu episode form", func() {
			ids := ParseStremioID("kitsu:1555:1:3")
			So(ids.Kitsu, ShouldEqual, 1555)
			So(ids.Season, ShouldEqual, 1)
			So(ids.Episode, ShouldEqual, 3)
			So(ids.IsEpisode, ShouldBeTrue)
		})

		Convey("Empty segments are dropped before parsing", func() {
			ids := ParseStremioID("tt0903747::5:14")
			So(ids.IMDB, ShouldEqual, "tt0903747")
			So(ids.Season, ShouldEqual, 5)
			So(ids.Episode, ShouldEqual, 14)
		})

		Convey("Non-numeric tmdb id yields nothing usable", func() {
			ids := ParseStremioID("tmdb:abc")
			So(ids.HasID(), ShouldBeFalse)
		})

		Convey("Unknown namespaces and empty input yield empty ids", func() {
			So(ParseStremioID("local:1234").HasID(), ShouldBeFalse)
			So(ParseStremioID("").HasID(), ShouldBeFalse)
			So(ParseStremioID(":::").HasID(), ShouldBeFalse)
		})
	})
}
