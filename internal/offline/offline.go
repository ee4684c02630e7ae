// Package offline queues scrobbles that failed to reach the tracking
// service and replays them on the next startup. A stop scrobble carries the
// watched mark, so dropping one on a flaky connection loses real state.
package offline

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/trakt"
	"github.com/madari-app/madari/where"
)

const queueFile = "failed_scrobbles.json"

// Mutation is one deferred stop scrobble.
type Mutation struct {
	Timestamp   int64            `json:"timestamp"`
	ContentType string           `json:"content_type"`
	IDs         trakt.ContentIDs `json:"ids"`
	Progress    float64          `json:"progress"`
}

func queuePath() string {
	return filepath.Join(where.Config(), queueFile)
}

// Queue appends a failed stop scrobble to the local queue for deferred
// delivery.
func Queue(contentType string, ids trakt.ContentIDs, progress float64) error {
	f, err := filesystem.API().OpenFile(queuePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(Mutation{
		Timestamp:   time.Now().Unix(),
		ContentType: contentType,
		IDs:         ids,
		Progress:    progress,
	})
}

// pending reads the queued mutations. Lines that fail to decode are dropped.
func pending() []Mutation {
	content, err := filesystem.API().ReadFile(queuePath())
	if err != nil {
		return nil
	}

	var mutations []Mutation
	decoder := json.NewDecoder(strings.NewReader(string(content)))
	for decoder.More() {
		var m Mutation
		if err := decoder.Decode(&m); err != nil {
			break
		}
		mutations = append(mutations, m)
	}

	return mutations
}

// ReplayScrobbles delivers previously failed stop scrobbles. The queue is
// cleared only when every mutation went through, so a second offline run
// keeps the backlog intact.
func ReplayScrobbles() {
	mutations := pending()
	if len(mutations) == 0 {
		return
	}

	tracker := trakt.NewService()
	tracker.Load()

	cfg := tracker.Config()
	if !cfg.IsAuthenticated() || !cfg.SyncProgress {
		return
	}

	succeeded := 0
	for i, m := range mutations {
		// Incremental delay with jitter to stay under the API rate limit.
		backoff := time.Duration((1<<i)*100)*time.Millisecond + time.Duration(rand.Intn(100))*time.Millisecond
		time.Sleep(backoff)

		if err := tracker.ScrobbleStop(context.Background(), m.ContentType, m.IDs, m.Progress); err != nil {
			log.Warnf("replaying queued scrobble failed: %v", err)
			continue
		}
		succeeded++
	}

	if succeeded == len(mutations) {
		_ = filesystem.API().Remove(queuePath())
	}
}
