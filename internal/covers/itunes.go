package covers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sleeve/internal/services"
)

// The search API returns 100x100 thumbnails; swapping the size token
// in the artwork URL selects a larger rendition.
const (
	smallArtworkMarker = "100x100bb"
	largeArtworkMarker = "600x600bb"
)

type iTunesResult struct {
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

type iTunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []iTunesResult `json:"results"`
}

// ITunes queries the iTunes Search API for album artwork. No API key
// is required.
type ITunes struct {
	baseURL    string
	httpClient *http.Client
}

// ITunesOption configures an ITunes client.
type ITunesOption func(*ITunes)

// WithITunesHTTPClient overrides the default HTTP client.
func WithITunesHTTPClient(client *http.Client) ITunesOption {
	return func(c *ITunes) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewITunes creates an iTunes Search API client.
func NewITunes(baseURL string, timeout time.Duration, opts ...ITunesOption) (*ITunes, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("itunes base url required")
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	client := &ITunes{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AlbumArtwork searches for "<artist> <album>" and returns the best
// match's artwork URL upsized to the large rendition. Candidates whose
// artwork URL lacks the small-size marker are rejected rather than
// returned at thumbnail resolution.
func (c *ITunes) AlbumArtwork(ctx context.Context, artist, album string) (string, error) {
	term := strings.TrimSpace(strings.TrimSpace(artist) + " " + strings.TrimSpace(album))
	if term == "" {
		return "", services.Wrap(services.ErrValidation, "itunes", "album artwork", "artist and album must not both be empty", nil)
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "album")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "itunes", "album artwork", "build request", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "itunes", "album artwork", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransport, "itunes", "album artwork", fmt.Sprintf("unexpected status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload iTunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", services.Wrap(services.ErrDecode, "itunes", "album artwork", "decode response", err)
	}
	if len(payload.Results) == 0 {
		return "", services.Wrap(services.ErrNotFound, "itunes", "album artwork", "no results for "+term, nil)
	}
	artwork := payload.Results[0].ArtworkURL100
	if artwork == "" {
		return "", services.Wrap(services.ErrNotFound, "itunes", "album artwork", "result has no artwork url", nil)
	}
	if !strings.Contains(artwork, smallArtworkMarker) {
		return "", services.Wrap(services.ErrNotFound, "itunes", "album artwork", "artwork url lacks the size marker", nil)
	}
	return strings.ReplaceAll(artwork, smallArtworkMarker, largeArtworkMarker), nil
}
