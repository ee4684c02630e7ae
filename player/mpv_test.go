package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts http and https URLs", func() {
			for _, link := range []string{
				"http://cdn.example/video.mp4",
				"https://cdn.example/video.mp4?token=abc",
			} {
				got, err := sanitizeMediaTarget(link)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, link)
			}
		})

		Convey("Rejects empty input", func() {
			_, err := sanitizeMediaTarget("  ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects flag lookalikes", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects control characters", func() {
			_, err := sanitizeMediaTarget("https://cdn.example/a\nmp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects non-http schemes", func() {
			_, err := sanitizeMediaTarget("ftp://cdn.example/video.mp4")
			So(err, ShouldNotBeNil)
		})

		Convey("Cleans local file paths", func() {
			got, err := sanitizeMediaTarget("/media/./movies/dune.mkv")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "/media/movies/dune.mkv")
		})
	})
}

func TestSanitizeTitle(t *testing.T) {
	Convey("sanitizeTitle", t, func() {
		So(sanitizeTitle("Dune\nPart Two"), ShouldEqual, "Dune Part Two")
		So(sanitizeTitle("  Dune\t\x00 "), ShouldEqual, "Dune")
	})
}
