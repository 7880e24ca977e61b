package api

import (
	"context"
	"log/slog"
	"strings"

	"sleeve/internal/logging"
	"sleeve/internal/narrative"
	"sleeve/internal/router"
	"sleeve/internal/search"
	"sleeve/internal/services"
	"sleeve/internal/vibe"
)

const (
	fallbackLimit      = 8
	fallbackMaxLimit   = 50
	fallbackBoardItems = 12
	// boardItemCap mirrors the orchestrator's release-group cap; a
	// board never processes more candidates than a search would browse.
	boardItemCap = 24
)

// Searcher abstracts the cover art search orchestrator.
type Searcher interface {
	SearchCoverArt(ctx context.Context, query string, limit int, includeDebug bool) (search.Response, error)
	Listing(ctx context.Context, query string) ([]search.ListingItem, error)
	FetchDetail(ctx context.Context, releaseGroupID string) (search.Document, error)
}

// BoardBuilder abstracts the vibe board builder.
type BoardBuilder interface {
	Build(ctx context.Context, items []vibe.Item, maxItems int, includeDebug bool) (vibe.Board, error)
}

// Narrator abstracts the narrative summarizer.
type Narrator interface {
	Summarize(ctx context.Context, boardJSON, style string) (string, error)
	Configured() bool
}

var (
	_ Searcher     = (*search.Service)(nil)
	_ BoardBuilder = (*vibe.Builder)(nil)
	_ Narrator     = (*narrative.Summarizer)(nil)
)

// Limits tunes request-level clamping applied identically on every
// transport.
type Limits struct {
	// DefaultLimit substitutes for absent or non-positive limits
	// (default 8).
	DefaultLimit int
	// MaxLimit caps any requested limit (default 50).
	MaxLimit int
	// BoardItems substitutes for absent vibe board sizes (default 12).
	BoardItems int
}

// Service bundles the pipeline behind the tool operations.
type Service struct {
	searcher   Searcher
	boards     BoardBuilder
	narrator   Narrator
	limits     Limits
	boardStyle string
	logger     *slog.Logger
}

// NewService assembles the facade from its collaborators. boardStyle
// is the default narrative style hint used when a caller supplies none.
func NewService(searcher Searcher, boards BoardBuilder, narrator Narrator, limits Limits, boardStyle string, logger *slog.Logger) *Service {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = fallbackLimit
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = fallbackMaxLimit
	}
	if limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = limits.MaxLimit
	}
	if limits.BoardItems <= 0 {
		limits.BoardItems = fallbackBoardItems
	}
	return &Service{
		searcher:   searcher,
		boards:     boards,
		narrator:   narrator,
		limits:     limits,
		boardStyle: strings.TrimSpace(boardStyle),
		logger:     logging.NewComponentLogger(logger, "api"),
	}
}

// SearchCoverArt runs the cover pipeline and wraps it in the transport
// envelope. The routing decision is always included so callers can see
// how their query was interpreted; limit is clamped to [1, MaxLimit]
// with absent values falling back to DefaultLimit.
func (s *Service) SearchCoverArt(ctx context.Context, query string, limit int, includeDebug bool) (SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResponse{}, services.Wrap(services.ErrValidation, "api", "search cover art", "query must not be empty", nil)
	}
	resp, err := s.searcher.SearchCoverArt(ctx, query, s.clampLimit(limit), includeDebug)
	if err != nil {
		return SearchResponse{}, err
	}
	return SearchResponse{
		Query:   query,
		Routed:  router.Route(query),
		Results: resp.Results,
		Debug:   resp.Debug,
	}, nil
}

// Listing returns the discovery listing for the search tool.
func (s *Service) Listing(ctx context.Context, query string) (ListingResponse, error) {
	items, err := s.searcher.Listing(ctx, query)
	if err != nil {
		return ListingResponse{}, err
	}
	if items == nil {
		items = []search.ListingItem{}
	}
	return ListingResponse{Results: items}, nil
}

// FetchDetail returns the release-group detail document.
func (s *Service) FetchDetail(ctx context.Context, releaseGroupID string) (search.Document, error) {
	return s.searcher.FetchDetail(ctx, releaseGroupID)
}

// VibeBoard composes the vibe pipeline: discovery listing for the
// query, then the clustered board over those candidates. maxItems is
// clamped to [1, 24] with absent values falling back to the configured
// board size.
func (s *Service) VibeBoard(ctx context.Context, query string, maxItems int, includeDebug bool) (vibe.Board, error) {
	listing, err := s.Listing(ctx, query)
	if err != nil {
		return vibe.Board{}, err
	}
	items := make([]vibe.Item, 0, len(listing.Results))
	for _, entry := range listing.Results {
		items = append(items, vibe.Item{ID: entry.ID, Title: entry.Title, URL: entry.URL})
	}
	s.logger.Debug("building board",
		logging.String("query", query),
		logging.Int("candidates", len(items)))
	return s.boards.Build(ctx, items, s.clampBoardItems(maxItems), includeDebug)
}

// Summarize renders the narrative paragraph for a marshaled board,
// applying the configured default style when the caller supplies none.
func (s *Service) Summarize(ctx context.Context, boardJSON, style string) (NarrativeResponse, error) {
	if strings.TrimSpace(style) == "" {
		style = s.boardStyle
	}
	text, err := s.narrator.Summarize(ctx, boardJSON, style)
	if err != nil {
		return NarrativeResponse{}, err
	}
	return NarrativeResponse{Narrative: text}, nil
}

// NarratorConfigured reports whether a narrative backend is available,
// so transports can reject rag_summarize calls before marshaling work.
func (s *Service) NarratorConfigured() bool {
	return s.narrator != nil && s.narrator.Configured()
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.DefaultLimit
	}
	if limit > s.limits.MaxLimit {
		return s.limits.MaxLimit
	}
	return limit
}

func (s *Service) clampBoardItems(maxItems int) int {
	if maxItems <= 0 {
		return s.limits.BoardItems
	}
	if maxItems > boardItemCap {
		return boardItemCap
	}
	return maxItems
}
