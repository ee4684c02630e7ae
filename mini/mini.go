// Package mini implements a lightweight, minimalist interface for browsing
// catalogs and playing videos without leaving the terminal.
package mini

import (
	"os"

	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/history"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/trakt"
	"github.com/madari-app/madari/util"
)

var (
	truncateAt = 100
)

// Options configures a mini run.
type Options struct {
	// Continue starts in the continue-watching list instead of the catalogs.
	Continue bool

	Addons  *addon.Service
	Tracker *trakt.Service
	History *history.Service
}

type mini struct {
	addons  *addon.Service
	tracker *trakt.Service
	hist    *history.Service

	state         state
	statesHistory util.Stack[state]

	cachedMetas map[string][]stremio.MetaPreview
	cachedMeta  map[string]*stremio.Meta

	// listKey selects which cachedMetas bucket the result list shows.
	listKey string

	selectedMeta stremio.MetaPreview
	meta         *stremio.Meta
	queue        []stremio.Video
}

func newMini(options *Options) *mini {
	return &mini{
		addons:        options.Addons,
		tracker:       options.Tracker,
		hist:          options.History,
		statesHistory: util.Stack[state]{},
		cachedMetas:   make(map[string][]stremio.MetaPreview),
		cachedMeta:    make(map[string]*stremio.Meta),
	}
}

func (m *mini) previousState() {
	if m.statesHistory.Len() > 0 {
		m.setState(m.statesHistory.Pop())
	}
}

func (m *mini) setState(s state) {
	m.state = s
}

func (m *mini) newState(s state) {
	if m.state == s {
		return
	}

	m.statesHistory.Push(m.state)
	m.setState(s)
}

// Run drives the state machine until the user quits or a handler fails.
func Run(options *Options) error {
	m := newMini(options)
	m.state = catalogSelectState
	if options.Continue {
		m.state = historySelectState
	}

	if w, _, err := util.TerminalSize(); err == nil {
		truncateAt = w
	}

	for {
		if err := m.handleState(); err != nil {
			return err
		}
	}
}

func (m *mini) handleState() error {
	switch m.state {
	case historySelectState:
		return m.handleHistorySelectState()
	case catalogSelectState:
		return m.handleCatalogSelectState()
	case searchState:
		return m.handleSearchState()
	case metaSelectState:
		return m.handleMetaSelectState()
	case videoSelectState:
		return m.handleVideoSelectState()
	case watchState:
		return m.handleWatchState()
	case quitState:
		os.Exit(0)
	}

	return nil
}
