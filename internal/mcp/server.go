package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sleeve/internal/api"
	"sleeve/internal/logging"
	"sleeve/internal/search"
	"sleeve/internal/services"
	"sleeve/internal/vibe"
)

// Server wraps the MCP SDK server around the pipeline service.
type Server struct {
	MCPServer *sdkmcp.Server

	service *api.Service
	logger  *slog.Logger
}

// NewServer creates a stdio tool server with the cover art tools
// registered.
func NewServer(svc *api.Service, logger *slog.Logger) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "sleeve", Version: api.Version},
			nil,
		),
		service: svc,
		logger:  logging.NewComponentLogger(logger, "mcp"),
	}
	s.registerTools()
	return s
}

// Run serves the MCP protocol over stdin/stdout until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving tools over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_cover_art",
		Description: "Search album cover art for a free-form query like 'by radiohead' or 'show me covers from metal bands'.",
	}, s.handleSearchCoverArt)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search",
		Description: "List release groups matching a query as id/title/url records for later fetch calls.",
	}, s.handleSearch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "fetch",
		Description: "Fetch the detail document for one release group returned by search.",
	}, s.handleFetch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "vibe_board",
		Description: "Build a palette-clustered vibe board of album covers for a query.",
	}, s.handleVibeBoard)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "rag_summarize",
		Description: "Generate a short narrative paragraph for a previously built vibe board.",
	}, s.handleRagSummarize)
}

// --- Tool input/output types ---

type searchCoverArtInput struct {
	Query string `json:"query" jsonschema:"free-form prompt naming an artist or a genre"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of covers to return (default 8, capped at 50)"`
}

type searchCoverArtOutput struct {
	Results []search.CoverResult `json:"results"`
}

type searchInput struct {
	Query string `json:"query" jsonschema:"free-form prompt naming an artist or a genre"`
}

type fetchInput struct {
	ID string `json:"id" jsonschema:"release group identifier from a search result"`
}

type vibeBoardInput struct {
	Query    string `json:"query" jsonschema:"free-form prompt naming an artist or a genre"`
	MaxItems int    `json:"max_items,omitempty" jsonschema:"maximum number of covers on the board (default 12, capped at 24)"`
	Debug    bool   `json:"debug,omitempty" jsonschema:"include per-item resolution records"`
}

type ragSummarizeInput struct {
	Board map[string]any `json:"board" jsonschema:"a board object as returned by vibe_board"`
	Style string         `json:"style,omitempty" jsonschema:"optional style hint for the narrative voice"`
}

// --- Tool handlers ---

func (s *Server) handleSearchCoverArt(ctx context.Context, _ *sdkmcp.CallToolRequest, in searchCoverArtInput) (*sdkmcp.CallToolResult, searchCoverArtOutput, error) {
	ctx = services.WithTool(ctx, "search_cover_art")
	resp, err := s.service.SearchCoverArt(ctx, in.Query, in.Limit, false)
	if err != nil {
		return nil, searchCoverArtOutput{}, err
	}
	return nil, searchCoverArtOutput{Results: resp.Results}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *sdkmcp.CallToolRequest, in searchInput) (*sdkmcp.CallToolResult, api.ListingResponse, error) {
	ctx = services.WithTool(ctx, "search")
	listing, err := s.service.Listing(ctx, in.Query)
	if err != nil {
		return nil, api.ListingResponse{}, err
	}
	return nil, listing, nil
}

func (s *Server) handleFetch(ctx context.Context, _ *sdkmcp.CallToolRequest, in fetchInput) (*sdkmcp.CallToolResult, search.Document, error) {
	ctx = services.WithTool(ctx, "fetch")
	doc, err := s.service.FetchDetail(ctx, in.ID)
	if err != nil {
		return nil, search.Document{}, err
	}
	return nil, doc, nil
}

func (s *Server) handleVibeBoard(ctx context.Context, _ *sdkmcp.CallToolRequest, in vibeBoardInput) (*sdkmcp.CallToolResult, vibe.Board, error) {
	ctx = services.WithTool(ctx, "vibe_board")
	board, err := s.service.VibeBoard(ctx, in.Query, in.MaxItems, in.Debug)
	if err != nil {
		return nil, vibe.Board{}, err
	}
	return nil, board, nil
}

func (s *Server) handleRagSummarize(ctx context.Context, _ *sdkmcp.CallToolRequest, in ragSummarizeInput) (*sdkmcp.CallToolResult, api.NarrativeResponse, error) {
	ctx = services.WithTool(ctx, "rag_summarize")
	if len(in.Board) == 0 {
		return nil, api.NarrativeResponse{}, services.Wrap(services.ErrValidation, "mcp", "rag summarize", "missing required argument: board", nil)
	}
	boardJSON, err := json.Marshal(in.Board)
	if err != nil {
		return nil, api.NarrativeResponse{}, fmt.Errorf("marshal board: %w", err)
	}
	resp, err := s.service.Summarize(ctx, string(boardJSON), in.Style)
	if err != nil {
		return nil, api.NarrativeResponse{}, err
	}
	return nil, resp, nil
}
