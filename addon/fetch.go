package addon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/query"
	"github.com/madari-app/madari/stremio"
)

// ErrNoCapableAddon is returned when routing matches zero enabled addons
// for a request. Callers use it to tell "nothing can serve this" apart
// from "every capable addon returned empty".
var ErrNoCapableAddon = errors.New("no addon")

// StreamGroup is one addon's contribution to a stream fan-out.
type StreamGroup struct {
	Addon   *InstalledAddon
	Streams []stremio.Stream
}

// SubtitleGroup is one addon's contribution to a subtitles fan-out.
type SubtitleGroup struct {
	Addon     *InstalledAddon
	Subtitles []stremio.Subtitle
}

// SearchGroup is one catalog's contribution to a search fan-out.
type SearchGroup struct {
	Addon   *InstalledAddon
	Catalog *stremio.CatalogDefinition
	Metas   []stremio.MetaPreview
}

// Catalog fetches a single catalog page from one addon.
func (s *Service) Catalog(ctx context.Context, ref CatalogRef, extra *stremio.ExtraArgs) ([]stremio.MetaPreview, error) {
	return s.client.FetchCatalog(ctx, ref.Addon.BaseURL(), ref.Catalog, extra)
}

// Meta resolves full metadata using the first addon, in display order, that
// supports the meta resource for the given type and id. Unlike streams and
// subtitles there is no fan-out: one authoritative answer is enough.
func (s *Service) Meta(ctx context.Context, contentType, id string) (*stremio.Meta, error) {
	addons := s.ForResource("meta", contentType, id)
	if len(addons) == 0 {
		return nil, fmt.Errorf("%w supports meta for type: %s", ErrNoCapableAddon, contentType)
	}
	return s.client.FetchMeta(ctx, addons[0].BaseURL(), contentType, id)
}

// Streams fans the stream request out to every capable addon concurrently.
// onResult is invoked, serialized, with each addon's non-empty result as it
// settles; failed or empty responses are logged and dropped. Streams returns
// once every addon has settled or the context is cancelled; when routing
// matches no addon at all it returns ErrNoCapableAddon.
func (s *Service) Streams(ctx context.Context, contentType, videoID string, onResult func(StreamGroup)) error {
	addons := s.ForResource("stream", contentType, videoID)
	if len(addons) == 0 {
		return fmt.Errorf("%w supports stream for type: %s", ErrNoCapableAddon, contentType)
	}

	return fanOut(ctx, addons, func(ctx context.Context, a *InstalledAddon) (StreamGroup, bool) {
		streams, err := s.client.FetchStreams(ctx, a.BaseURL(), contentType, videoID)
		if err != nil {
			log.Warnf("streams from %s failed: %v", a.ID(), err)
			return StreamGroup{}, false
		}
		if len(streams) == 0 {
			return StreamGroup{}, false
		}
		return StreamGroup{Addon: a, Streams: streams}, true
	}, onResult)
}

// Subtitles fans the subtitles request out to every capable addon, with the
// same partial-failure semantics as Streams.
func (s *Service) Subtitles(ctx context.Context, contentType, id, videoHash string, videoSize int64, onResult func(SubtitleGroup)) error {
	addons := s.ForResource("subtitles", contentType, id)
	if len(addons) == 0 {
		return fmt.Errorf("%w supports subtitles for type: %s", ErrNoCapableAddon, contentType)
	}

	return fanOut(ctx, addons, func(ctx context.Context, a *InstalledAddon) (SubtitleGroup, bool) {
		subtitles, err := s.client.FetchSubtitles(ctx, a.BaseURL(), contentType, id, videoHash, videoSize)
		if err != nil {
			log.Warnf("subtitles from %s failed: %v", a.ID(), err)
			return SubtitleGroup{}, false
		}
		if len(subtitles) == 0 {
			return SubtitleGroup{}, false
		}
		return SubtitleGroup{Addon: a, Subtitles: subtitles}, true
	}, onResult)
}

// Search queries every searchable catalog of every enabled addon
// concurrently and remembers the query for future suggestions. Each
// non-empty result group is delivered as it settles.
func (s *Service) Search(ctx context.Context, searchQuery string, onResult func(SearchGroup)) error {
	catalogs := s.SearchableCatalogs()
	if len(catalogs) == 0 {
		return fmt.Errorf("%w exposes a searchable catalog", ErrNoCapableAddon)
	}

	if err := query.Remember(searchQuery, 1); err != nil {
		log.Warnf("remember search query: %v", err)
	}

	extra := &stremio.ExtraArgs{Search: searchQuery}
	return fanOut(ctx, catalogs, func(ctx context.Context, ref CatalogRef) (SearchGroup, bool) {
		metas, err := s.client.FetchCatalog(ctx, ref.Addon.BaseURL(), ref.Catalog, extra)
		if err != nil {
			log.Warnf("search in %s/%s failed: %v", ref.Addon.ID(), ref.Catalog.ID, err)
			return SearchGroup{}, false
		}
		if len(metas) == 0 {
			return SearchGroup{}, false
		}
		return SearchGroup{Addon: ref.Addon, Catalog: ref.Catalog, Metas: metas}, true
	}, onResult)
}

// fanOut runs fetch for every target concurrently and funnels successful
// results into onResult one at a time. It returns the context error, if any,
// after all in-flight work has settled.
func fanOut[T, R any](ctx context.Context, targets []T, fetch func(context.Context, T) (R, bool), onResult func(R)) error {
	if len(targets) == 0 {
		return nil
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, target := range targets {
		wg.Add(1)
		go func(target T) {
			defer wg.Done()

			result, ok := fetch(ctx, target)
			if !ok {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() == nil && onResult != nil {
				onResult(result)
			}
		}(target)
	}

	wg.Wait()
	return ctx.Err()
}
