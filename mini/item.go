package mini

import (
	"fmt"

	"github.com/madari-app/madari/addon"
	"github.com/madari-app/madari/history"
	"github.com/madari-app/madari/stremio"
	"github.com/samber/lo"
)

type catalogItem struct {
	ref addon.CatalogRef
}

func (c catalogItem) String() string {
	return fmt.Sprintf("%s (%s, %s)", c.ref.Catalog.Name, c.ref.Catalog.Type, c.ref.Addon.ID())
}

type metaItem struct {
	meta stremio.MetaPreview
}

func (m metaItem) String() string {
	label := m.meta.Name
	if m.meta.ReleaseInfo != nil && *m.meta.ReleaseInfo != "" {
		label += " (" + *m.meta.ReleaseInfo + ")"
	}
	return label
}

type streamItem struct {
	stream stremio.Stream
}

func (s streamItem) String() string {
	label := lo.FromPtrOr(s.stream.Name, "")
	if streamTitle := lo.FromPtrOr(s.stream.Title, ""); streamTitle != "" {
		if label != "" {
			label += " "
		}
		label += streamTitle
	}
	if label == "" {
		label = lo.FromPtrOr(s.stream.URL, "unnamed stream")
	}
	return label
}

type historyItem struct {
	entry *history.Entry
}

func (h historyItem) String() string {
	label := h.entry.Title
	if label == "" {
		label = h.entry.MetaID
	}
	if h.entry.VideoTitle != "" {
		label += " - " + h.entry.VideoTitle
	}
	return fmt.Sprintf("%s (%d%%)", label, int(h.entry.Progress()*100))
}

func videoLabel(v *stremio.Video) string {
	if v.Season != nil && v.Episode != nil {
		return fmt.Sprintf("S%02dE%02d %s", *v.Season, *v.Episode, v.DisplayTitle())
	}
	return v.DisplayTitle()
}
