// Package stremio implements the addon-protocol wire model: manifests, catalog
// entries, metadata, streams, and subtitles, together with the tolerant JSON
// decoding the protocol's legacy variants require.
package stremio

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// ResourceDefinition describes a single capability declared by an addon.
// On the wire it is either a bare string ("catalog") or an object with
// optional type and id-prefix restrictions.
type ResourceDefinition struct {
	Name       string   `json:"name"`
	Types      []string `json:"types,omitempty"`
	IDPrefixes []string `json:"idPrefixes,omitempty"`
}

// CatalogDefinition describes one catalog exposed by an addon manifest.
// ExtraSupported and ExtraRequired are the normalized union of the legacy
// flat arrays and the structured "extra" objects.
type CatalogDefinition struct {
	Type           string   `json:"type"`
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Genres         []string `json:"genres,omitempty"`
	ExtraSupported []string `json:"extraSupported,omitempty"`
	ExtraRequired  []string `json:"extraRequired,omitempty"`
}

// Searchable reports whether the catalog accepts the "search" extra parameter.
func (c *CatalogDefinition) Searchable() bool {
	for _, extra := range c.ExtraSupported {
		if extra == "search" {
			return true
		}
	}
	return false
}

// Manifest describes an addon's identity and capabilities.
type Manifest struct {
	ID          string  `json:"id"`
	Version     string  `json:"version"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	Background  *string `json:"background,omitempty"`

	Types      []string             `json:"types"`
	Resources  []ResourceDefinition `json:"resources"`
	Catalogs   []CatalogDefinition  `json:"catalogs"`
	IDPrefixes []string             `json:"idPrefixes,omitempty"`

	// Behavior hints
	Adult        bool    `json:"adult,omitempty"`
	Configurable bool    `json:"configurable,omitempty"`
	ConfigURL    *string `json:"configUrl,omitempty"`
}

// HasResource reports whether the manifest declares the named resource.
func (m *Manifest) HasResource(resource string) bool {
	for _, res := range m.Resources {
		if res.Name == resource {
			return true
		}
	}
	return false
}

// HasType reports whether the manifest declares support for the content type.
func (m *Manifest) HasType(contentType string) bool {
	for _, t := range m.Types {
		if t == contentType {
			return true
		}
	}
	return false
}

// MatchesIDPrefix reports whether the given content id falls within the
// manifest's id namespace. An empty prefix list means unrestricted.
func (m *Manifest) MatchesIDPrefix(id string) bool {
	if len(m.IDPrefixes) == 0 {
		return true
	}
	for _, prefix := range m.IDPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// MetaLink points at a related internal page (genre, cast member, ...).
type MetaLink struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// Trailer references a promotional video. Source is a YouTube video id.
type Trailer struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Video is a single playable unit inside a series or channel meta.
type Video struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Released  string  `json:"released,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Overview  *string `json:"overview,omitempty"`
	Season    *int    `json:"season,omitempty"`
	Episode   *int    `json:"episode,omitempty"`
	Available *bool   `json:"available,omitempty"`
}

// DisplayTitle returns the video title, synthesizing "Episode N" when the
// addon supplied neither a title nor a name.
func (v *Video) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	if v.Episode != nil {
		return fmt.Sprintf("Episode %d", *v.Episode)
	}
	return v.ID
}

// MetaPreview is the condensed metadata shape used in catalog rows.
type MetaPreview struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Poster      *string    `json:"poster,omitempty"`
	PosterShape *string    `json:"posterShape,omitempty"`
	Description *string    `json:"description,omitempty"`
	ReleaseInfo *string    `json:"releaseInfo,omitempty"`
	IMDBRating  *string    `json:"imdbRating,omitempty"`
	Genres      []string   `json:"genres,omitempty"`
	Director    []string   `json:"director,omitempty"`
	Cast        []string   `json:"cast,omitempty"`
	Links       []MetaLink `json:"links,omitempty"`
}

// Meta is the full metadata object for a single content item.
type Meta struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Poster      *string `json:"poster,omitempty"`
	PosterShape *string `json:"posterShape,omitempty"`
	Background  *string `json:"background,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	Description *string `json:"description,omitempty"`
	ReleaseInfo *string `json:"releaseInfo,omitempty"`
	IMDBRating  *string `json:"imdbRating,omitempty"`
	Released    *string `json:"released,omitempty"`
	Runtime     *string `json:"runtime,omitempty"`
	Language    *string `json:"language,omitempty"`
	Country     *string `json:"country,omitempty"`
	Awards      *string `json:"awards,omitempty"`
	Website     *string `json:"website,omitempty"`

	Genres   []string   `json:"genres,omitempty"`
	Director []string   `json:"director,omitempty"`
	Cast     []string   `json:"cast,omitempty"`
	Writer   []string   `json:"writer,omitempty"`
	Links    []MetaLink `json:"links,omitempty"`
	Videos   []Video    `json:"videos,omitempty"`
	Trailers []Trailer  `json:"trailers,omitempty"`

	DefaultVideoID *string `json:"defaultVideoId,omitempty"`
}

// Subtitle references a single subtitle track.
type Subtitle struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

// StreamBehaviorHints carries playback hints attached to a stream.
type StreamBehaviorHints struct {
	CountryWhitelist     []string          `json:"countryWhitelist,omitempty"`
	NotWebReady          bool              `json:"notWebReady,omitempty"`
	BingeGroup           *string           `json:"bingeGroup,omitempty"`
	VideoHash            *string           `json:"videoHash,omitempty"`
	VideoSize            *int64            `json:"videoSize,omitempty"`
	Filename             *string           `json:"filename,omitempty"`
	ProxyHeadersRequest  map[string]string `json:"-"`
	ProxyHeadersResponse map[string]string `json:"-"`
}

// Stream represents one playable source for a video. Exactly one of the
// target fields (URL, YtID, InfoHash, ExternalURL) is expected to be set.
type Stream struct {
	URL         *string `json:"url,omitempty"`
	YtID        *string `json:"ytId,omitempty"`
	InfoHash    *string `json:"infoHash,omitempty"`
	FileIdx     *int    `json:"fileIdx,omitempty"`
	ExternalURL *string `json:"externalUrl,omitempty"`

	Name        *string             `json:"name,omitempty"`
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Sources     []string            `json:"sources,omitempty"`
	Subtitles   []Subtitle          `json:"subtitles,omitempty"`
	Hints       StreamBehaviorHints `json:"behaviorHints,omitempty"`
}

// Playable reports whether the stream carries a directly playable HTTP URL.
func (s *Stream) Playable() bool {
	return s.URL != nil && *s.URL != ""
}

// BingeGroup returns the binge-group hint, or "" when absent.
func (s *Stream) BingeGroup() string {
	if s.Hints.BingeGroup == nil {
		return ""
	}
	return *s.Hints.BingeGroup
}

// ExtraArgs holds the optional parameters of a catalog request.
type ExtraArgs struct {
	Search string
	Skip   int
	Genre  string
	Other  map[string]string
}

// HasSkip distinguishes "no skip requested" from "skip=0": the zero page is
// only emitted when Skip is positive, matching what addons expect.
func (e *ExtraArgs) HasSkip() bool {
	return e.Skip > 0
}

// ToPathSegment serializes the extra arguments into the path segment form the
// protocol uses: name=value pairs joined by "&", values percent-encoded.
// Parameter order is fixed: search, skip, genre, then any other parameters.
func (e *ExtraArgs) ToPathSegment() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	appendParam := func(name, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(URLEncode(value))
	}

	if e.Search != "" {
		appendParam("search", e.Search)
	}
	if e.HasSkip() {
		appendParam("skip", fmt.Sprint(e.Skip))
	}
	if e.Genre != "" {
		appendParam("genre", e.Genre)
	}
	for _, name := range sortedKeys(e.Other) {
		appendParam(name, e.Other[name])
	}

	return b.String()
}

// URLEncode percent-encodes every byte except ALNUM and "-_.~", using
// uppercase hex digits. This is the encoding addons apply on their side, so
// it must be byte-exact rather than delegated to net/url's space handling.
func URLEncode(value string) string {
	const unreserved = "-_.~"
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			strings.IndexByte(unreserved, c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// sortedKeys keeps the serialized form deterministic for map-backed params.
func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
