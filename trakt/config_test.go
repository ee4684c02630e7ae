package trakt

import (
	"testing"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/where"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfigPersistence(t *testing.T) {
	Convey("Config persistence", t, func() {
		filesystem.SetMemMapFs()

		username := "rose"
		cfg := Config{
			ClientID:      "client-id",
			ClientSecret:  "client-secret",
			AccessToken:   "access-token",
			RefreshToken:  "refresh-token",
			ExpiresAt:     1800000000,
			Enabled:       true,
			SyncProgress:  true,
			SyncWatchlist: true,
			Username:      &username,
		}

		Convey("Round-trips through disk and keyring", func() {
			So(saveConfig(cfg), ShouldBeNil)

			loaded := loadConfig()
			So(loaded.ClientID, ShouldEqual, "client-id")
			So(loaded.AccessToken, ShouldEqual, "access-token")
			So(loaded.RefreshToken, ShouldEqual, "refresh-token")
			So(loaded.ExpiresAt, ShouldEqual, 1800000000)
			So(loaded.SyncProgress, ShouldBeTrue)
			So(loaded.SyncHistory, ShouldBeFalse)
			So(*loaded.Username, ShouldEqual, "rose")

			exists, err := filesystem.API().Exists(where.Trakt())
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})

		Convey("Clearing tokens removes the keyring entries", func() {
			So(saveConfig(cfg), ShouldBeNil)

			cfg.AccessToken = ""
			cfg.RefreshToken = ""
			So(saveConfig(cfg), ShouldBeNil)

			loaded := loadConfig()
			So(loaded.AccessToken, ShouldBeEmpty)
			So(loaded.RefreshToken, ShouldBeEmpty)
			So(loaded.IsAuthenticated(), ShouldBeFalse)
		})

		Convey("A missing file yields a zero config", func() {
			loaded := loadConfig()
			So(loaded.IsConfigured(), ShouldBeFalse)
			So(loaded.IsAuthenticated(), ShouldBeFalse)
		})

		Convey("A malformed file is ignored", func() {
			So(filesystem.API().WriteFile(where.Trakt(), []byte("not json"), 0600), ShouldBeNil)
			loaded := loadConfig()
			So(loaded.IsConfigured(), ShouldBeFalse)
		})

		Convey("A change subscriber may call back into the service", func() {
			s := &Service{now: time.Now}
			var sawProgress bool
			s.OnChange(func() { sawProgress = s.Config().SyncProgress })

			So(s.SetSync(true, false, false), ShouldBeNil)
			So(sawProgress, ShouldBeTrue)
		})
	})
}
