// Package youtube provides identifier extraction and best-effort metadata
// and thumbnail retrieval for externally hosted videos.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

// PlaceholderTitle is used whenever a title cannot be resolved.
const PlaceholderTitle = "External Video"

// idPatterns are ordered redundant fallbacks; the first match wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID parses an external video URL into the 11-character
// platform identifier. Pure and deterministic; no network access.
func ExtractVideoID(videoURL string) (string, bool) {
	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(videoURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// thumbnailVariants are candidate image names from highest to lowest
// resolution. Providers answer 404 for sizes they never rendered, but some
// low resolutions return a tiny placeholder image with a 200 status, which
// is why callers also apply a minimum byte-size threshold.
var thumbnailVariants = []string{
	"maxresdefault.jpg",
	"sddefault.jpg",
	"hqdefault.jpg",
	"mqdefault.jpg",
	"default.jpg",
}

// Client retrieves video metadata and thumbnail images over HTTP. The
// base URLs are configurable so tests can point at local servers.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Client struct {
	httpClient   *http.Client
	oembedURL    string
	thumbnailURL string
	minBytes     int
}

// Option configures a Client.
type Option func(*Client)

// WithOEmbedURL overrides the oEmbed endpoint base.
func WithOEmbedURL(base string) Option {
	return func(c *Client) { c.oembedURL = base }
}

// WithThumbnailURL overrides the thumbnail host base.
func WithThumbnailURL(base string) Option {
	return func(c *Client) { c.thumbnailURL = base }
}

// NewClient creates a Client. Every request is bounded by the given
// timeout; minBytes is the acceptance threshold for thumbnail bodies.
func NewClient(timeout time.Duration, minBytes int, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		oembedURL:    "https://www.youtube.com/oembed",
		thumbnailURL: "https://img.youtube.com/vi",
		minBytes:     minBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTitle resolves the display title for a video through the oEmbed
// endpoint. Any failure (network, non-200, malformed body) yields the
// placeholder title; this call never fails the caller.
func (c *Client) FetchTitle(ctx context.Context, videoID string) string {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	endpoint := fmt.Sprintf("%s?url=%s&format=json", c.oembedURL, url.QueryEscape(watchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PlaceholderTitle
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.Debug("oEmbed request failed",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
		return PlaceholderTitle
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PlaceholderTitle
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Title == "" {
		return PlaceholderTitle
	}
	return payload.Title
}

// FetchThumbnail tries the candidate thumbnail sizes from highest to
// lowest resolution and returns the body of the first one that answers a
// success status with more than minBytes of content. Returns an error
// when every candidate is rejected.
func (c *Client) FetchThumbnail(ctx context.Context, videoID string) ([]byte, error) {
	for _, variant := range thumbnailVariants {
		data, err := c.fetchCandidate(ctx, videoID, variant)
		if err != nil {
			logger.Log.Debug("thumbnail candidate rejected",
				zap.String("videoId", videoID),
				zap.String("variant", variant),
				zap.Error(err),
			)
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("no usable thumbnail for video %s", videoID)
}

func (c *Client) fetchCandidate(ctx context.Context, videoID, variant string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.thumbnailURL, videoID, variant)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Providers serve a tiny "no thumbnail" placeholder with a valid
	// status at some resolutions; below the threshold it is not a real
	// thumbnail.
	if len(data) <= c.minBytes {
		return nil, fmt.Errorf("body too small (%d bytes)", len(data))
	}
	return data, nil
}
