package mini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/history"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/player"
	"github.com/madari-app/madari/scrobble"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type state int

const (
	catalogSelectState state = iota + 1
	searchState
	metaSelectState
	videoSelectState
	watchState
	historySelectState
	quitState
)

// errCancelled marks a user-initiated abort inside a nested prompt.
var errCancelled = errors.New("cancelled")

func (m *mini) handleCatalogSelectState() error {
	catalogs := m.addons.AllCatalogs()
	if len(catalogs) == 0 {
		return fmt.Errorf("no enabled addon exposes a catalog")
	}

	items := lo.Map(catalogs, func(ref addon.CatalogRef, _ int) catalogItem {
		return catalogItem{ref}
	})

	var binds []*bind
	if len(m.addons.SearchableCatalogs()) > 0 {
		binds = append(binds, search)
	}

	title("Select Catalog")
	b, c, err := menu(items, binds...)
	if err != nil {
		return err
	}

	switch {
	case quit.eq(b):
		m.newState(quitState)
		return nil
	case search.eq(b):
		m.newState(searchState)
		return nil
	}

	erase := progress("Fetching Catalog..")
	metas, err := m.addons.Catalog(context.Background(), c.ref, nil)
	erase()
	if err != nil {
		return err
	}

	if len(metas) == 0 {
		fail("Catalog is empty")
		return nil
	}

	cacheKey := c.ref.Addon.ID() + "/" + c.ref.Catalog.ID
	m.cachedMetas[cacheKey] = metas
	m.listKey = cacheKey
	m.newState(metaSelectState)
	return nil
}

func (m *mini) handleSearchState() error {
	var searchLoop func() error
	title("Search")

	searchLoop = func() error {
		in, err := getInput(func(s string) bool {
			return s != ""
		})
		if err != nil {
			return err
		}

		searchQuery := in.value
		cacheKey := "search:" + strings.ToLower(searchQuery)

		if _, ok := m.cachedMetas[cacheKey]; !ok {
			erase := progress("Searching Query..")
			var metas []stremio.MetaPreview
			err = m.addons.Search(context.Background(), searchQuery, func(group addon.SearchGroup) {
				metas = append(metas, group.Metas...)
			})
			erase()
			if err != nil {
				return err
			}

			if limit := viper.GetInt(key.SearchResultLimit); limit > 0 && len(metas) > limit {
				metas = metas[:limit]
			}
			m.cachedMetas[cacheKey] = metas
		}

		if len(m.cachedMetas[cacheKey]) == 0 {
			fail("No search results found")
			return searchLoop()
		}

		m.listKey = cacheKey
		m.newState(metaSelectState)
		return nil
	}

	return searchLoop()
}

func (m *mini) handleMetaSelectState() error {
	title("Results >>")

	items := lo.Map(m.cachedMetas[m.listKey], func(meta stremio.MetaPreview, _ int) metaItem {
		return metaItem{meta}
	})

	b, item, err := menu(items)
	if err != nil {
		return err
	}

	if quit.eq(b) {
		m.newState(quitState)
		return nil
	}

	m.selectedMeta = item.meta
	m.newState(videoSelectState)
	return nil
}

func (m *mini) handleVideoSelectState() error {
	meta, ok := m.cachedMeta[m.selectedMeta.ID]
	if !ok {
		erase := progress("Fetching Metadata..")
		var err error
		meta, err = m.addons.Meta(context.Background(), m.selectedMeta.Type, m.selectedMeta.ID)
		erase()
		if err != nil {
			return err
		}
		m.cachedMeta[m.selectedMeta.ID] = meta
	}
	m.meta = meta

	// Items without a video list are played directly by their meta id.
	if len(meta.Videos) == 0 {
		m.queue = []stremio.Video{{ID: meta.ID, Title: meta.Name}}
		m.newState(watchState)
		return nil
	}

	videos := meta.Videos
	for i := range videos {
		fmt.Printf("%s %s\n", style.Faint(fmt.Sprintf("[%d]", i+1)), truncated(videoLabel(&videos[i])))
	}

	title(fmt.Sprintf("To specify a range, use: start_number end_number (Videos: 1-%d)", len(videos)))
	oneInput := regexp.MustCompile(`^\d+$`)
	rangeInput := regexp.MustCompile(`^\d+ \d+$`)
	in, err := getInput(func(s string) bool {
		switch {
		case rangeInput.MatchString(s):
			parts := strings.Split(s, " ")
			from, errFrom := strconv.Atoi(parts[0])
			to, errTo := strconv.Atoi(parts[1])
			return errFrom == nil && errTo == nil && 0 < from && from < to && to <= len(videos)
		case oneInput.MatchString(s):
			index, convErr := strconv.Atoi(s)
			return convErr == nil && 0 < index && index <= len(videos)
		default:
			return s == "q"
		}
	})
	if err != nil {
		return err
	}

	switch {
	case rangeInput.MatchString(in.value):
		parts := strings.Split(in.value, " ")
		from := lo.Must(strconv.Atoi(parts[0]))
		to := lo.Must(strconv.Atoi(parts[1]))
		m.queue = append([]stremio.Video{}, videos[from-1:to]...)
	case oneInput.MatchString(in.value):
		// Playback continues into the following videos.
		from := lo.Must(strconv.Atoi(in.value))
		m.queue = append([]stremio.Video{}, videos[from-1:]...)
	case in.value == "q":
		m.newState(quitState)
		return nil
	}

	m.newState(watchState)
	return nil
}

func (m *mini) handleWatchState() error {
	var i int

	for {
		video := m.queue[i]

		if err := m.playVideo(&video); err != nil {
			if errors.Is(err, errCancelled) {
				return nil
			}
			fail(err.Error())
		}

		hasNext := i+1 < len(m.queue)

		title(fmt.Sprintf("Finished %s", videoLabel(&video)))

		var options []*bind
		if hasNext {
			options = append(options, next)
		}
		options = append(options, replay, back, search)

		b, _, err := menu([]fmt.Stringer{}, options...)
		if err != nil {
			return err
		}

		switch b {
		case next:
			i++
		case replay:
		case back:
			m.previousState()
			return nil
		case search:
			m.newState(searchState)
			return nil
		case quit:
			m.newState(quitState)
			return nil
		}
	}
}

// playVideo resolves streams for one video and drives a full player session.
func (m *mini) playVideo(video *stremio.Video) error {
	content := player.Content{
		Type:    m.meta.Type,
		MetaID:  m.meta.ID,
		VideoID: video.ID,
		Title:   m.meta.Name,
		Poster:  lo.FromPtrOr(m.meta.Poster, ""),
	}
	if len(m.meta.Videos) > 0 {
		content.VideoTitle = video.DisplayTitle()
	}
	if video.Season != nil {
		content.Season = *video.Season
	}
	if video.Episode != nil {
		content.Episode = *video.Episode
	}

	erase := progress("Collecting Streams..")
	var streams []stremio.Stream
	err := m.addons.Streams(context.Background(), m.meta.Type, video.ID, func(group addon.StreamGroup) {
		streams = append(streams, group.Streams...)
	})
	erase()
	if err != nil {
		return err
	}

	streams = lo.Filter(streams, func(s stremio.Stream, _ int) bool {
		return s.Playable()
	})
	if len(streams) == 0 {
		return fmt.Errorf("no playable streams for %s", video.ID)
	}

	stream := &streams[0]
	if len(streams) > 1 {
		title("Select Stream")
		items := lo.Map(streams, func(s stremio.Stream, _ int) streamItem {
			return streamItem{s}
		})

		b, item, err := menu(items)
		if err != nil {
			return err
		}
		if quit.eq(b) {
			m.newState(quitState)
			return errCancelled
		}
		stream = &item.stream
	}

	util.ClearScreen()
	fmt.Printf("Playing %s...\n", videoLabel(video))

	session := player.NewSession(player.New(), m.hist, scrobble.New(m.tracker))
	return session.Play(context.Background(), stream, content)
}

func (m *mini) handleHistorySelectState() error {
	entries, err := m.hist.Resumable()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fail("Nothing to continue")
		m.newState(catalogSelectState)
		return nil
	}

	title("Continue Watching >>")
	items := lo.Map(entries, func(e *history.Entry, _ int) historyItem {
		return historyItem{e}
	})

	b, item, err := menu(items)
	if err != nil {
		return err
	}

	if quit.eq(b) {
		m.newState(quitState)
		return nil
	}

	entry := item.entry

	erase := progress("Fetching Metadata..")
	meta, err := m.addons.Meta(context.Background(), entry.ContentType, entry.MetaID)
	erase()
	if err != nil {
		return err
	}

	m.meta = meta
	m.cachedMeta[meta.ID] = meta
	m.selectedMeta = stremio.MetaPreview{ID: meta.ID, Type: meta.Type, Name: meta.Name}

	// Queue from the interrupted video onward so "next" keeps binging.
	m.queue = []stremio.Video{{ID: entry.VideoID, Title: entry.VideoTitle}}
	for i := range meta.Videos {
		if meta.Videos[i].ID == entry.VideoID {
			m.queue = append([]stremio.Video{}, meta.Videos[i:]...)
			break
		}
	}

	m.newState(watchState)
	return nil
}
