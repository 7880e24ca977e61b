package search

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"sleeve/internal/covers"
	"sleeve/internal/logging"
	"sleeve/internal/musicbrainz"
	"sleeve/internal/router"
	"sleeve/internal/services"
)

const (
	defaultLimit        = 8
	defaultGroupCap     = 24
	defaultListingLimit = 12
)

const (
	publicReleaseGroupURL = "https://musicbrainz.org/release-group/"
	untitledRelease       = "Untitled"
	unknownReleaseGroup   = "Unknown release-group"
)

// CoverResult is one resolved cover, in release-group enumeration
// order.
type CoverResult struct {
	Artist       string `json:"artist"`
	ReleaseTitle string `json:"releaseTitle"`
	ReleaseDate  string `json:"releaseDate,omitempty"`
	CoverURL     string `json:"coverUrl"`
}

// ArtistRef identifies the single artist a response was built from.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Debug explains why a particular artist was selected, enough to audit
// a response without re-running the pipeline.
type Debug struct {
	Routed router.RoutedQuery `json:"routed"`
	Artist *ArtistRef         `json:"artist,omitempty"`
}

// Response is the orchestrator's result envelope.
type Response struct {
	Results []CoverResult `json:"results"`
	Debug   *Debug        `json:"debug,omitempty"`
}

// ListingItem is one entry of the discovery listing consumed by the
// vibe pipeline and the search tool.
type ListingItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Document is the release-group detail payload served by the fetch
// tool.
type Document struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	URL      string            `json:"url"`
	Metadata map[string]string `json:"metadata"`
}

// CoverSource resolves one release group to a cover URL. The covers
// resolver satisfies it.
type CoverSource interface {
	Resolve(ctx context.Context, releaseGroupID, artistName, releaseTitle string) (covers.Resolution, bool)
}

// Options tunes the orchestrator.
type Options struct {
	// ReleaseGroupCap bounds how many release groups are browsed per
	// query regardless of the requested limit (default 24).
	ReleaseGroupCap int
	// ListingLimit is the discovery listing size (default 12).
	ListingLimit int
}

// Service is the cover art search orchestrator.
type Service struct {
	directory    musicbrainz.Directory
	resolver     CoverSource
	groupCap     int
	listingLimit int
	logger       *slog.Logger
}

// NewService assembles the orchestrator.
func NewService(directory musicbrainz.Directory, resolver CoverSource, opts Options, logger *slog.Logger) *Service {
	if opts.ReleaseGroupCap <= 0 {
		opts.ReleaseGroupCap = defaultGroupCap
	}
	if opts.ListingLimit <= 0 {
		opts.ListingLimit = defaultListingLimit
	}
	return &Service{
		directory:    directory,
		resolver:     resolver,
		groupCap:     opts.ReleaseGroupCap,
		listingLimit: opts.ListingLimit,
		logger:       logging.NewComponentLogger(logger, "search"),
	}
}

// SearchCoverArt runs the full pipeline for one query. limit values
// below 1 fall back to the default. The response never carries results
// from more than one artist.
func (s *Service) SearchCoverArt(ctx context.Context, query string, limit int, includeDebug bool) (Response, error) {
	if strings.TrimSpace(query) == "" {
		return Response{}, services.Wrap(services.ErrValidation, "search", "cover art", "query must not be empty", nil)
	}
	if limit < 1 {
		limit = defaultLimit
	}

	routed := router.Route(query)
	resp := Response{Results: []CoverResult{}}
	if includeDebug {
		resp.Debug = &Debug{Routed: routed}
	}

	artist, ok := s.selectArtist(ctx, query, routed)
	if !ok {
		s.logger.Debug("no artist for query", logging.String("query", query))
		return resp, nil
	}
	if resp.Debug != nil {
		resp.Debug.Artist = &ArtistRef{ID: artist.ID, Name: artist.Name}
	}
	s.logger.Debug("artist selected",
		logging.String("query", query),
		logging.String("artist_id", artist.ID),
		logging.String("artist", artist.Name))

	browseCap := limit
	if browseCap > s.groupCap {
		browseCap = s.groupCap
	}
	groups, err := s.directory.BrowseReleaseGroups(ctx, artist.ID, browseCap)
	if err != nil {
		if !services.FailSoft(err) {
			return Response{}, err
		}
		s.logger.Warn("release group browse failed",
			logging.String("artist_id", artist.ID),
			logging.Error(err))
	}

	for _, rg := range groups {
		if len(resp.Results) >= limit {
			break
		}
		title := rg.Title
		if title == "" {
			title = untitledRelease
		}
		res, found := s.resolver.Resolve(ctx, rg.ID, artist.Name, title)
		if !found {
			continue
		}
		resp.Results = append(resp.Results, CoverResult{
			Artist:       artist.Name,
			ReleaseTitle: title,
			ReleaseDate:  rg.FirstReleaseDate,
			CoverURL:     res.URL,
		})
	}
	if len(resp.Results) > limit {
		resp.Results = resp.Results[:limit]
	}
	return resp, nil
}

// Listing produces the discovery listing: the top artist's release
// groups as id/title/url entries, titles prefixed with the artist name.
func (s *Service) Listing(ctx context.Context, query string) ([]ListingItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, services.Wrap(services.ErrValidation, "search", "listing", "query must not be empty", nil)
	}

	routed := router.Route(query)
	artist, ok := s.discoverArtist(ctx, query, routed)
	if !ok {
		return []ListingItem{}, nil
	}

	groups, err := s.directory.BrowseReleaseGroups(ctx, artist.ID, s.listingLimit)
	if err != nil {
		if !services.FailSoft(err) {
			return nil, err
		}
		s.logger.Warn("release group browse failed",
			logging.String("artist_id", artist.ID),
			logging.Error(err))
	}

	items := make([]ListingItem, 0, len(groups))
	for _, rg := range groups {
		if len(items) >= s.listingLimit {
			break
		}
		title := rg.Title
		if title == "" {
			title = untitledRelease
		}
		items = append(items, ListingItem{
			ID:    rg.ID,
			Title: artist.Name + " — " + title,
			URL:   publicReleaseGroupURL + rg.ID,
		})
	}
	return items, nil
}

// FetchDetail builds the release-group detail document. Directory
// misses degrade to an unknown-titled document rather than an error.
func (s *Service) FetchDetail(ctx context.Context, releaseGroupID string) (Document, error) {
	releaseGroupID = strings.TrimSpace(releaseGroupID)
	if releaseGroupID == "" {
		return Document{}, services.Wrap(services.ErrValidation, "search", "fetch detail", "release group id must not be empty", nil)
	}

	rg, err := s.directory.LookupReleaseGroup(ctx, releaseGroupID)
	if err != nil {
		if !services.FailSoft(err) {
			return Document{}, err
		}
		s.logger.Warn("release group lookup failed",
			logging.String("release_group", releaseGroupID),
			logging.Error(err))
		rg = nil
	}

	title := unknownReleaseGroup
	artistName := ""
	firstDate := ""
	primaryType := ""
	var secondaryTypes []string
	if rg != nil {
		if rg.Title != "" {
			title = rg.Title
		}
		if len(rg.ArtistCredit) > 0 {
			artistName = rg.ArtistCredit[0].Artist.Name
			if artistName == "" {
				artistName = rg.ArtistCredit[0].Name
			}
		}
		firstDate = rg.FirstReleaseDate
		primaryType = rg.PrimaryType
		secondaryTypes = rg.SecondaryTypes
	}

	prettyTitle := title
	if artistName != "" {
		prettyTitle = artistName + " — " + title
	}

	publicURL := publicReleaseGroupURL + releaseGroupID
	lines := []string{"Title: " + title}
	if artistName != "" {
		lines = append(lines, "Artist: "+artistName)
	}
	if firstDate != "" {
		lines = append(lines, "First release: "+firstDate)
	}
	if primaryType != "" {
		lines = append(lines, "Primary type: "+primaryType)
	}
	if len(secondaryTypes) > 0 {
		lines = append(lines, "Secondary types: "+strings.Join(secondaryTypes, ", "))
	}
	lines = append(lines, "MusicBrainz URL: "+publicURL)

	return Document{
		ID:       releaseGroupID,
		Title:    prettyTitle,
		Text:     strings.Join(lines, "\n"),
		URL:      publicURL,
		Metadata: map[string]string{"mb_release_group_id": releaseGroupID},
	}, nil
}

// selectArtist applies the single-artist policy. Forced artist routing
// prefers an exact name match under case folding; everything else runs
// the discovery ladder.
func (s *Service) selectArtist(ctx context.Context, rawQuery string, routed router.RoutedQuery) (musicbrainz.Artist, bool) {
	if routed.Kind == router.KindArtist && routed.Forced {
		matches := s.searchArtists(ctx, routed.Value, 5)
		if exact := firstExactMatch(matches, routed.Value); exact != nil {
			return *exact, true
		}
		if len(matches) > 0 {
			return matches[0], true
		}
		return musicbrainz.Artist{}, false
	}
	return s.discoverArtist(ctx, rawQuery, routed)
}

// discoverArtist is the unforced ladder: raw query, then the routed
// value when it differs, then the tag index. First hit wins; only its
// first candidate is kept.
func (s *Service) discoverArtist(ctx context.Context, rawQuery string, routed router.RoutedQuery) (musicbrainz.Artist, bool) {
	if matches := s.searchArtists(ctx, rawQuery, 3); len(matches) > 0 {
		return matches[0], true
	}
	if routed.Kind == router.KindArtist && routed.Value != rawQuery {
		if matches := s.searchArtists(ctx, routed.Value, 3); len(matches) > 0 {
			return matches[0], true
		}
	}
	if routed.Kind == router.KindTag {
		if matches := s.searchArtistsByTag(ctx, routed.Value, 5); len(matches) > 0 {
			return matches[0], true
		}
	}
	return musicbrainz.Artist{}, false
}

func (s *Service) searchArtists(ctx context.Context, query string, limit int) []musicbrainz.Artist {
	matches, err := s.directory.SearchArtists(ctx, query, limit)
	if err != nil {
		s.logger.Warn("artist search failed",
			logging.String("query", query),
			logging.Error(err))
		return nil
	}
	return matches
}

func (s *Service) searchArtistsByTag(ctx context.Context, tag string, limit int) []musicbrainz.Artist {
	matches, err := s.directory.SearchArtistsByTag(ctx, tag, limit)
	if err != nil {
		s.logger.Warn("artist tag search failed",
			logging.String("tag", tag),
			logging.Error(err))
		return nil
	}
	return matches
}

func firstExactMatch(artists []musicbrainz.Artist, name string) *musicbrainz.Artist {
	want := cases.Fold().String(strings.TrimSpace(name))
	for i := range artists {
		if cases.Fold().String(strings.TrimSpace(artists[i].Name)) == want {
			return &artists[i]
		}
	}
	return nil
}
