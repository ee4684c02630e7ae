// Package cache maintains the on-disk response cache shared by the addon
// and tracking clients.
package cache

import (
	"os"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/where"
	"github.com/spf13/afero"
)

// TTL is how long a cached response file stays relevant. Catalog and search
// responses older than a week are stale for every caller we have.
const TTL = 7 * 24 * time.Hour

// CollectGarbage prunes expired cache files. Run it in the background at
// startup; it never blocks the command being executed.
func CollectGarbage() {
	api := filesystem.API()

	_ = afero.Walk(api, where.Cache(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if time.Since(info.ModTime()) > TTL {
			_ = api.Remove(path)
		}

		return nil
	})
}
