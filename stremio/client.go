package stremio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/madari-app/madari/constant"
	"github.com/madari-app/madari/key"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/network"
	"github.com/spf13/viper"
)

// defaultTimeout bounds a single addon request when network.timeout is unset.
const defaultTimeout = 30 * time.Second

// Client talks to addon transports over HTTP+JSON.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client backed by the shared network transport.
func NewClient() *Client {
	return &Client{httpClient: network.Client}
}

// BaseURL derives an addon's base URL from its manifest URL by stripping the
// trailing "/manifest.json" suffix and any trailing slashes. Applying it to
// an already-derived base URL is a no-op.
func BaseURL(manifestURL string) string {
	base := strings.TrimSuffix(manifestURL, "/manifest.json")
	return strings.TrimRight(base, "/")
}

// ManifestURL is the inverse of BaseURL.
func ManifestURL(baseURL string) string {
	return BaseURL(baseURL) + "/manifest.json"
}

// FetchManifest retrieves and normalizes the manifest at the given URL.
// The URL may be either a manifest URL or a bare base URL.
func (c *Client) FetchManifest(ctx context.Context, url string) (*Manifest, error) {
	var manifest Manifest
	if err := c.getJSON(ctx, ManifestURL(url), &manifest); err != nil {
		return nil, err
	}
	if manifest.ID == "" {
		return nil, fmt.Errorf("manifest at %s has no id", url)
	}
	return &manifest, nil
}

// FetchCatalog retrieves one page of a catalog. The extra segment is only
// appended when at least one extra argument is present.
func (c *Client) FetchCatalog(ctx context.Context, baseURL string, cat *CatalogDefinition, extra *ExtraArgs) ([]MetaPreview, error) {
	url := fmt.Sprintf("%s/catalog/%s/%s", BaseURL(baseURL), URLEncode(cat.Type), URLEncode(cat.ID))
	if segment := extra.ToPathSegment(); segment != "" {
		url += "/" + segment
	}
	url += ".json"

	var response struct {
		Metas []MetaPreview `json:"metas"`
	}
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return response.Metas, nil
}

// FetchMeta retrieves the full metadata object for a content id.
func (c *Client) FetchMeta(ctx context.Context, baseURL, contentType, id string) (*Meta, error) {
	url := fmt.Sprintf("%s/meta/%s/%s.json", BaseURL(baseURL), URLEncode(contentType), URLEncode(id))

	var response struct {
		Meta *Meta `json:"meta"`
	}
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	if response.Meta == nil || response.Meta.ID == "" {
		return nil, fmt.Errorf("empty meta response from %s", baseURL)
	}
	return response.Meta, nil
}

// FetchStreams retrieves the streams an addon offers for a video id.
func (c *Client) FetchStreams(ctx context.Context, baseURL, contentType, videoID string) ([]Stream, error) {
	url := fmt.Sprintf("%s/stream/%s/%s.json", BaseURL(baseURL), URLEncode(contentType), URLEncode(videoID))

	var response struct {
		Streams []Stream `json:"streams"`
	}
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return response.Streams, nil
}

// FetchSubtitles retrieves subtitle tracks for a video. videoSize is
// optional and only appended when positive.
func (c *Client) FetchSubtitles(ctx context.Context, baseURL, contentType, id, videoHash string, videoSize int64) ([]Subtitle, error) {
	extra := fmt.Sprintf("videoID=%s", URLEncode(videoHash))
	if videoSize > 0 {
		extra += fmt.Sprintf("&videoSize=%d", videoSize)
	}
	url := fmt.Sprintf("%s/subtitles/%s/%s/%s.json",
		BaseURL(baseURL), URLEncode(contentType), URLEncode(id), extra)

	var response struct {
		Subtitles []Subtitle `json:"subtitles"`
	}
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return response.Subtitles, nil
}

// getJSON performs a GET with the protocol headers and a per-call timeout,
// decoding the body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("addon request %s returned status %d", url, resp.StatusCode)
		return fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func requestTimeout() time.Duration {
	if seconds := viper.GetInt(key.NetworkTimeout); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultTimeout
}
