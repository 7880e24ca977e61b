package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sleeve/internal/services"
)

// Artist represents a single artist entry from the directory's search
// index. Identity is the MBID; Name is display-only and may collide
// across unrelated artists.
type Artist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SortName       string `json:"sort-name,omitempty"`
	Disambiguation string `json:"disambiguation,omitempty"`
	Type           string `json:"type,omitempty"`
	Country        string `json:"country,omitempty"`
	Score          int    `json:"score,omitempty"`
}

// ArtistCredit is one credited artist on a release group.
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist Artist `json:"artist"`
}

// ReleaseGroup models a canonical album/EP entity grouping all its
// physical and digital releases.
type ReleaseGroup struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	FirstReleaseDate string         `json:"first-release-date,omitempty"`
	PrimaryType      string         `json:"primary-type,omitempty"`
	SecondaryTypes   []string       `json:"secondary-types,omitempty"`
	ArtistCredit     []ArtistCredit `json:"artist-credit,omitempty"`
}

// Release is one concrete release inside a release group. Only the ID
// matters for cover probing; the rest is carried for debugging.
type Release struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

type artistSearchResponse struct {
	Artists []Artist `json:"artists"`
}

type releaseGroupBrowseResponse struct {
	ReleaseGroups []ReleaseGroup `json:"release-groups"`
}

type releaseBrowseResponse struct {
	Releases []Release `json:"releases"`
}

// releaseGroupTypes filters browse results server-side to albums and
// EPs. Add "single" here to include singles.
const releaseGroupTypes = "album|ep"

// Directory defines the metadata-directory operations the pipeline
// depends on.
type Directory interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)
	SearchArtistsByTag(ctx context.Context, tag string, limit int) ([]Artist, error)
	BrowseReleaseGroups(ctx context.Context, artistID string, limit int) ([]ReleaseGroup, error)
	ReleaseIDs(ctx context.Context, releaseGroupID string, limit int) ([]string, error)
	LookupReleaseGroup(ctx context.Context, releaseGroupID string) (*ReleaseGroup, error)
}

// Client provides access to the MusicBrainz web service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Directory = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a MusicBrainz client. The user agent is mandatory
// because the directory throttles anonymous clients aggressively.
func New(baseURL, userAgent string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchArtists queries the artist search index with free text.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "search artists", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(normalizeLimit(limit, 3)))

	var payload artistSearchResponse
	if err := c.getJSON(ctx, "artist", params, "search artists", &payload); err != nil {
		return nil, err
	}
	return payload.Artists, nil
}

// SearchArtistsByTag queries the artist search index by genre tag.
func (c *Client) SearchArtistsByTag(ctx context.Context, tag string, limit int) ([]Artist, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "search artists by tag", "tag must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", "tag:"+tag)
	params.Set("limit", strconv.Itoa(normalizeLimit(limit, 5)))

	var payload artistSearchResponse
	if err := c.getJSON(ctx, "artist", params, "search artists by tag", &payload); err != nil {
		return nil, err
	}
	return payload.Artists, nil
}

// BrowseReleaseGroups lists an artist's release groups, filtered to
// album and EP types.
func (c *Client) BrowseReleaseGroups(ctx context.Context, artistID string, limit int) ([]ReleaseGroup, error) {
	artistID = strings.TrimSpace(artistID)
	if artistID == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "browse release groups", "artist id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("artist", artistID)
	params.Set("type", releaseGroupTypes)
	params.Set("limit", strconv.Itoa(normalizeLimit(limit, 12)))

	var payload releaseGroupBrowseResponse
	if err := c.getJSON(ctx, "release-group", params, "browse release groups", &payload); err != nil {
		return nil, err
	}
	return payload.ReleaseGroups, nil
}

// ReleaseIDs lists the IDs of concrete releases inside a release
// group, in upstream order.
func (c *Client) ReleaseIDs(ctx context.Context, releaseGroupID string, limit int) ([]string, error) {
	releaseGroupID = strings.TrimSpace(releaseGroupID)
	if releaseGroupID == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "browse releases", "release group id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("release-group", releaseGroupID)
	params.Set("limit", strconv.Itoa(normalizeLimit(limit, 10)))

	var payload releaseBrowseResponse
	if err := c.getJSON(ctx, "release", params, "browse releases", &payload); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payload.Releases))
	for _, rel := range payload.Releases {
		if rel.ID != "" {
			ids = append(ids, rel.ID)
		}
	}
	return ids, nil
}

// LookupReleaseGroup fetches one release group by MBID, including its
// artist credits.
func (c *Client) LookupReleaseGroup(ctx context.Context, releaseGroupID string) (*ReleaseGroup, error) {
	releaseGroupID = strings.TrimSpace(releaseGroupID)
	if releaseGroupID == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "lookup release group", "release group id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("inc", "artists")

	var payload ReleaseGroup
	if err := c.getJSON(ctx, "release-group/"+releaseGroupID, params, "lookup release group", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + "/" + path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "musicbrainz", operation, "parse url", err)
	}
	params.Set("fmt", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "musicbrainz", operation, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrTransport, "musicbrainz", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "musicbrainz", operation, fmt.Sprintf("no such entity (latency=%v)", latency), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransport, "musicbrainz", operation, fmt.Sprintf("unexpected status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrDecode, "musicbrainz", operation, "decode response", err)
	}
	return nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 100 {
		return 100
	}
	return limit
}
