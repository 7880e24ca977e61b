package vibe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sleeve/internal/covers"
	"sleeve/internal/kmeans"
	"sleeve/internal/logging"
	"sleeve/internal/palette"
	"sleeve/internal/services"
)

const (
	defaultMaxItems  = 12
	boardConcurrency = 6
	fetchTimeout     = 15 * time.Second

	groupClusters = 2
	groupRestarts = 8
	groupSeed     = 42
)

const (
	labelSeparator  = " · "
	mixedGroupLabel = "Mixed"

	reasonNoCover     = "no_cover"
	reasonFetchFailed = "fetch_failed"
)

// Item is one release-group candidate for a board, usually taken from
// the discovery listing. Title carries the "Artist — Title" form.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// BoardItem is a candidate that made it onto the board: its resolved
// cover plus the extracted color features.
type BoardItem struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	CoverURL    string      `json:"cover_url"`
	PaletteHex  []string    `json:"palette_hex"`
	HSVMean     palette.HSV `json:"hsv_mean"`
	MiniCaption string      `json:"mini_caption"`
}

// Group is one mood cluster with a generated label and summary.
type Group struct {
	Label   string      `json:"label"`
	Summary string      `json:"summary"`
	Items   []BoardItem `json:"items"`
}

// ItemDebug records the outcome for one candidate.
type ItemDebug struct {
	RGID   string `json:"rgid"`
	Title  string `json:"title"`
	Hit    bool   `json:"hit"`
	Reason string `json:"reason,omitempty"`
	Source string `json:"src,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Board is the clustered result. Groups is empty when no candidate
// produced features, otherwise it holds exactly two groups.
type Board struct {
	Groups []Group     `json:"groups"`
	Debug  []ItemDebug `json:"debug,omitempty"`
}

// CoverSource yields a cover URL for a release group. The covers
// resolver satisfies it.
type CoverSource interface {
	Resolve(ctx context.Context, releaseGroupID, artistName, releaseTitle string) (covers.Resolution, bool)
}

// Builder assembles vibe boards: bounded fan-out over candidates, one
// cover resolution + image fetch + feature extraction per candidate,
// then a two-way clustering over the HSV fingerprints.
type Builder struct {
	resolver    CoverSource
	userAgent   string
	httpClient  *http.Client
	concurrency int
	logger      *slog.Logger
}

// Option adjusts a Builder.
type Option func(*Builder)

// WithHTTPClient overrides the image-fetch HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Builder) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// WithConcurrency overrides the fan-out cap (default 6).
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBuilder wires a board builder. userAgent identifies us to the
// image hosts.
func NewBuilder(resolver CoverSource, userAgent string, logger *slog.Logger, opts ...Option) *Builder {
	b := &Builder{
		resolver:    resolver,
		userAgent:   userAgent,
		httpClient:  &http.Client{Timeout: fetchTimeout},
		concurrency: boardConcurrency,
		logger:      logging.NewComponentLogger(logger, "vibe"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build processes up to maxItems candidates with bounded parallelism
// and clusters the survivors into two labeled groups. Per-candidate
// failures drop that candidate, never the batch; zero survivors yield
// an empty group list.
func (b *Builder) Build(ctx context.Context, items []Item, maxItems int, includeDebug bool) (Board, error) {
	if maxItems < 1 {
		maxItems = defaultMaxItems
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	// Each task owns its own slot; no shared accumulator state.
	processed := make([]*BoardItem, len(items))
	records := make([]ItemDebug, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, item := range items {
		g.Go(func() error {
			processed[i], records[i] = b.process(gctx, item)
			return nil
		})
	}
	_ = g.Wait()

	board := Board{Groups: []Group{}}
	if includeDebug {
		board.Debug = records
	}

	survivors := make([]BoardItem, 0, len(processed))
	for _, it := range processed {
		if it != nil {
			survivors = append(survivors, *it)
		}
	}
	if len(survivors) == 0 {
		return board, nil
	}

	points := make([][]float64, len(survivors))
	for i, s := range survivors {
		points[i] = []float64{s.HSVMean.H, s.HSVMean.S, s.HSVMean.V}
	}
	clustered := kmeans.Partition(points, groupClusters, groupRestarts, groupSeed)

	members := make([][]BoardItem, groupClusters)
	for i := range members {
		members[i] = []BoardItem{}
	}
	for i, s := range survivors {
		c := clustered.Assignments[i]
		members[c] = append(members[c], s)
	}

	groups := make([]Group, 0, groupClusters)
	for _, m := range members {
		label, summary := describeGroup(m)
		groups = append(groups, Group{Label: label, Summary: summary, Items: m})
	}
	board.Groups = groups
	return board, nil
}

func (b *Builder) process(ctx context.Context, item Item) (*BoardItem, ItemDebug) {
	artist, title := splitPrettyTitle(item.Title)
	res, ok := b.resolver.Resolve(ctx, item.ID, artist, title)
	if !ok {
		return nil, ItemDebug{RGID: item.ID, Title: item.Title, Reason: reasonNoCover}
	}

	raw, err := b.fetchImage(ctx, res.URL)
	if err != nil {
		b.logger.Debug("cover fetch failed",
			logging.String("release_group", item.ID),
			logging.String("url", res.URL),
			logging.Error(err))
		return nil, ItemDebug{RGID: item.ID, Title: item.Title, Reason: reasonFetchFailed, Source: res.Source}
	}

	features, err := palette.Extract(raw)
	if err != nil {
		b.logger.Debug("cover decode failed",
			logging.String("release_group", item.ID),
			logging.String("url", res.URL),
			logging.Error(err))
		return nil, ItemDebug{RGID: item.ID, Title: item.Title, Reason: reasonFetchFailed, Source: res.Source}
	}

	return &BoardItem{
		ID:          item.ID,
		Title:       item.Title,
		URL:         item.URL,
		CoverURL:    res.URL,
		PaletteHex:  features.PaletteHex,
		HSVMean:     features.HSVMean,
		MiniCaption: features.Caption,
	}, ItemDebug{RGID: item.ID, Title: item.Title, Hit: true, Source: res.Source, URL: res.URL}
}

func (b *Builder) fetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "vibe", "fetch cover", "build request", err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "image/*")

	requestStart := time.Now()
	resp, err := b.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "vibe", "fetch cover", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrTransport, "vibe", "fetch cover", fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "vibe", "fetch cover", "read body", err)
	}
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrTransport, "vibe", "fetch cover", "empty body", nil)
	}
	return raw, nil
}

// describeGroup labels a cluster from the mean HSV of its members and
// renders the matching summary sentence. Empty clusters read "Mixed".
func describeGroup(items []BoardItem) (string, string) {
	if len(items) == 0 {
		return mixedGroupLabel, summarize(0, "neutral", "muted", "midtone")
	}

	var h, s, v float64
	for _, it := range items {
		h += it.HSVMean.H
		s += it.HSVMean.S
		v += it.HSVMean.V
	}
	n := float64(len(items))
	hueWord := palette.HueWord(h / n)
	satWord := palette.SaturationWord(s / n)
	valWord := palette.ValueWord(v / n)

	caser := cases.Title(language.Und)
	label := caser.String(hueWord) + labelSeparator + caser.String(satWord) + labelSeparator + caser.String(valWord)
	return label, summarize(len(items), hueWord, satWord, valWord)
}

func summarize(count int, hueWord, satWord, valWord string) string {
	tones := make([]string, 0, 3)
	switch hueWord {
	case "warm":
		tones = append(tones, "reds/oranges")
	case "cool":
		tones = append(tones, "blues/greens")
	default:
		tones = append(tones, "balanced hues")
	}
	if satWord == "saturated" {
		tones = append(tones, "rich color blocks")
	} else {
		tones = append(tones, "soft, desaturated tones")
	}
	switch valWord {
	case "bright":
		tones = append(tones, "high-key, airy feel")
	case "dark":
		tones = append(tones, "low-key, moody feel")
	default:
		tones = append(tones, "even midtones")
	}
	return fmt.Sprintf("%d covers leaning toward %s.", count, strings.Join(tones, ", "))
}

// splitPrettyTitle undoes the listing's "Artist — Title" form so the
// resolver's commercial-index fallback has terms to search with.
func splitPrettyTitle(pretty string) (string, string) {
	if artist, title, ok := strings.Cut(pretty, " — "); ok {
		return strings.TrimSpace(artist), strings.TrimSpace(title)
	}
	return "", strings.TrimSpace(pretty)
}
