package covers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sleeve/internal/services"
)

// Image is one entry in the archive's release-group image list.
type Image struct {
	Front bool   `json:"front"`
	Back  bool   `json:"back"`
	Image string `json:"image"`
}

type imageListResponse struct {
	Images []Image `json:"images"`
}

// probeSuffixes are tried in order against a release-group or release
// base URL. The dashed forms address the archive's pre-rendered
// thumbnails; the query forms cover older deployments.
var probeSuffixes = []string{
	"front-500",
	"front-250",
	"front",
	"front?size=500",
	"front?size=250",
}

// Archive talks to the Cover Art Archive. Redirects are followed so
// probes resolve to final image URLs.
type Archive struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*Archive)

// WithArchiveHTTPClient overrides the default HTTP client.
func WithArchiveHTTPClient(client *http.Client) ArchiveOption {
	return func(a *Archive) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// NewArchive creates a Cover Art Archive client.
func NewArchive(baseURL, userAgent string, timeout time.Duration, opts ...ArchiveOption) (*Archive, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("cover art archive base url required")
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	archive := &Archive{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// FrontImageURL fetches the release group's image list and returns the
// first image flagged as the canonical front cover. A 200 response
// without a front-flagged image is a clean miss, returned as ("", nil).
func (a *Archive) FrontImageURL(ctx context.Context, releaseGroupID string) (string, error) {
	releaseGroupID = strings.TrimSpace(releaseGroupID)
	if releaseGroupID == "" {
		return "", services.Wrap(services.ErrValidation, "coverart", "image list", "release group id must not be empty", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/release-group/"+releaseGroupID, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "coverart", "image list", "build request", err)
	}
	a.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := a.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "coverart", "image list", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrNotFound, "coverart", "image list", fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload imageListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", services.Wrap(services.ErrDecode, "coverart", "image list", "decode response", err)
	}
	for _, img := range payload.Images {
		if img.Front && img.Image != "" {
			return img.Image, nil
		}
	}
	return "", nil
}

// ProbeReleaseGroup walks the size-suffixed front endpoints for a
// release group and reports the first working final URL.
func (a *Archive) ProbeReleaseGroup(ctx context.Context, releaseGroupID string) (string, bool) {
	releaseGroupID = strings.TrimSpace(releaseGroupID)
	if releaseGroupID == "" {
		return "", false
	}
	return a.probeFirst(ctx, a.baseURL+"/release-group/"+releaseGroupID)
}

// ProbeRelease walks the size-suffixed front endpoints for one concrete
// release.
func (a *Archive) ProbeRelease(ctx context.Context, releaseID string) (string, bool) {
	releaseID = strings.TrimSpace(releaseID)
	if releaseID == "" {
		return "", false
	}
	return a.probeFirst(ctx, a.baseURL+"/release/"+releaseID)
}

func (a *Archive) probeFirst(ctx context.Context, base string) (string, bool) {
	for _, suffix := range probeSuffixes {
		if ctx.Err() != nil {
			return "", false
		}
		if final, ok := a.probe(ctx, base+"/"+suffix); ok {
			return final, true
		}
	}
	return "", false
}

// probe issues one GET and accepts any 2xx with a non-empty body. A
// single read proves the body carries bytes without buffering the whole
// image; resp.Request.URL is the final URL after redirects.
func (a *Archive) probe(ctx context.Context, candidate string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
	if err != nil {
		return "", false
	}
	a.setHeaders(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false
	}
	var first [1]byte
	if _, err := io.ReadFull(resp.Body, first[:]); err != nil {
		return "", false
	}
	return resp.Request.URL.String(), true
}

func (a *Archive) setHeaders(req *http.Request) {
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
}
