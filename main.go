// Package main is the entry point for the madari application.
package main

import (
	"github.com/madari-app/madari/cmd"
	"github.com/madari-app/madari/config"
	"github.com/madari-app/madari/internal/cache"
	"github.com/madari-app/madari/internal/offline"
	"github.com/madari-app/madari/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Background maintenance: prune stale cache files and flush scrobbles
	// that could not be delivered last time.
	go cache.CollectGarbage()
	go offline.ReplayScrobbles()

	cmd.Execute()
}
