package history

import (
	"testing"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

// newTestService returns a service with a controllable clock.
func newTestService() (*Service, *time.Time) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := NewService()
	s.now = func() time.Time { return now }
	return s, &now
}

func movieEntry(id string, position, duration float64) Entry {
	return Entry{
		MetaID:      id,
		VideoID:     id,
		ContentType: "movie",
		Title:       "Movie " + id,
		Position:    position,
		Duration:    duration,
	}
}

func TestEntryPredicates(t *testing.T) {
	Convey("Entry predicates", t, func() {
		Convey("Progress clamps to the unit interval", func() {
			So((&Entry{Position: 30, Duration: 120}).Progress(), ShouldEqual, 0.25)
			So((&Entry{Position: 500, Duration: 120}).Progress(), ShouldEqual, 1)
			So((&Entry{Position: -5, Duration: 120}).Progress(), ShouldEqual, 0)
			So((&Entry{Position: 30, Duration: 0}).Progress(), ShouldEqual, 0)
		})

		Convey("Finished starts at ninety percent", func() {
			So((&Entry{Position: 108, Duration: 120}).Finished(), ShouldBeTrue)
			So((&Entry{Position: 107, Duration: 120}).Finished(), ShouldBeFalse)
		})

		Convey("Resumable needs more than thirty seconds and an unfinished run", func() {
			So((&Entry{Position: 31, Duration: 7200}).Resumable(), ShouldBeTrue)
			So((&Entry{Position: 30.5, Duration: 7200}).Resumable(), ShouldBeTrue)
			So((&Entry{Position: 30, Duration: 7200}).Resumable(), ShouldBeFalse)
			So((&Entry{Position: 7100, Duration: 7200}).Resumable(), ShouldBeFalse)
		})

		Convey("Remote rows use the percentage instead of seconds", func() {
			remote := &Entry{Source: SourceRemote, Position: 10, Duration: 100}
			So(remote.Resumable(), ShouldBeTrue)
			finished := &Entry{Source: SourceRemote, Position: 95, Duration: 100}
			So(finished.Resumable(), ShouldBeFalse)
		})
	})
}

func TestServiceMutations(t *testing.T) {
	Convey("History service", t, func() {
		filesystem.SetMemMapFs()
		s, now := newTestService()

		Convey("UpdateProgress inserts at the front", func() {
			So(s.UpdateProgress(movieEntry("tt1", 100, 7200)), ShouldBeNil)
			*now = now.Add(time.Minute)
			So(s.UpdateProgress(movieEntry("tt2", 200, 7200)), ShouldBeNil)

			entries, err := s.All()
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].MetaID, ShouldEqual, "tt2")
		})

		Convey("Rewatching moves the entry back to the front", func() {
			So(s.UpdateProgress(movieEntry("tt1", 100, 7200)), ShouldBeNil)
			So(s.UpdateProgress(movieEntry("tt2", 200, 7200)), ShouldBeNil)
			So(s.UpdateProgress(movieEntry("tt1", 300, 7200)), ShouldBeNil)

			entries, err := s.All()
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].MetaID, ShouldEqual, "tt1")
			So(entries[0].Position, ShouldEqual, 300)
		})

		Convey("The store caps at the configured size", func() {
			viper.Set(key.HistoryMaxEntries, 3)
			defer viper.Set(key.HistoryMaxEntries, nil)

			for _, id := range []string{"tt1", "tt2", "tt3", "tt4"} {
				So(s.UpdateProgress(movieEntry(id, 100, 7200)), ShouldBeNil)
			}

			entries, err := s.All()
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].MetaID, ShouldEqual, "tt4")
			So(entries[2].MetaID, ShouldEqual, "tt2")
		})

		Convey("UpdatePosition keeps the stored metadata", func() {
			entry := movieEntry("tt1", 100, 7200)
			entry.Poster = "https://img.example/tt1.jpg"
			So(s.UpdateProgress(entry), ShouldBeNil)

			So(s.UpdatePosition("tt1", "tt1", 450, 7200), ShouldBeNil)

			stored := s.Get("tt1", "tt1")
			So(stored.IsPresent(), ShouldBeTrue)
			So(stored.MustGet().Position, ShouldEqual, 450)
			So(stored.MustGet().Poster, ShouldEqual, "https://img.example/tt1.jpg")
			So(stored.MustGet().Title, ShouldEqual, "Movie tt1")
		})

		Convey("LatestForSeries returns the most recent episode", func() {
			episode := func(video string) Entry {
				return Entry{MetaID: "tt0903747", VideoID: video, ContentType: "series", Position: 100, Duration: 2700}
			}
			So(s.UpdateProgress(episode("tt0903747:1:1")), ShouldBeNil)
			So(s.UpdateProgress(episode("tt0903747:1:2")), ShouldBeNil)

			latest := s.LatestForSeries("tt0903747")
			So(latest.IsPresent(), ShouldBeTrue)
			So(latest.MustGet().VideoID, ShouldEqual, "tt0903747:1:2")

			So(s.LatestForSeries("tt404").IsPresent(), ShouldBeFalse)
		})

		Convey("Remove and RemoveSeries delete by key and by meta id", func() {
			So(s.UpdateProgress(movieEntry("tt1", 100, 7200)), ShouldBeNil)
			So(s.UpdateProgress(Entry{MetaID: "tt2", VideoID: "tt2:1:1", Position: 100, Duration: 2700}), ShouldBeNil)
			So(s.UpdateProgress(Entry{MetaID: "tt2", VideoID: "tt2:1:2", Position: 100, Duration: 2700}), ShouldBeNil)

			So(s.Remove("tt1", "tt1"), ShouldBeNil)
			So(s.Get("tt1", "tt1").IsPresent(), ShouldBeFalse)

			So(s.RemoveSeries("tt2"), ShouldBeNil)
			entries, err := s.All()
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})

		Convey("Clear wipes everything and notifies", func() {
			var notified int
			s.OnChange(func() { notified++ })

			So(s.UpdateProgress(movieEntry("tt1", 100, 7200)), ShouldBeNil)
			So(s.Clear(), ShouldBeNil)

			entries, err := s.All()
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
			So(notified, ShouldEqual, 2)
		})

		Convey("A subscriber may call back into the service", func() {
			var seen int
			s.OnChange(func() {
				entries, _ := s.All()
				seen = len(entries)
			})

			So(s.UpdateProgress(movieEntry("tt1", 100, 7200)), ShouldBeNil)
			So(seen, ShouldEqual, 1)
		})

		Convey("Resumable keeps only one row per series", func() {
			So(s.UpdateProgress(Entry{MetaID: "tt2", VideoID: "tt2:1:1", Position: 100, Duration: 2700}), ShouldBeNil)
			*now = now.Add(time.Minute)
			So(s.UpdateProgress(Entry{MetaID: "tt2", VideoID: "tt2:1:2", Position: 200, Duration: 2700}), ShouldBeNil)
			*now = now.Add(time.Minute)
			So(s.UpdateProgress(movieEntry("tt1", 29, 7200)), ShouldBeNil)

			resumable, err := s.Resumable()
			So(err, ShouldBeNil)
			So(resumable, ShouldHaveLength, 1)
			So(resumable[0].VideoID, ShouldEqual, "tt2:1:2")
		})
	})
}
