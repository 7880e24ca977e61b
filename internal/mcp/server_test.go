package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sleeve/internal/api"
	"sleeve/internal/logging"
	"sleeve/internal/mcp"
	"sleeve/internal/search"
	"sleeve/internal/services"
	"sleeve/internal/vibe"
)

type fixedSearcher struct{}

func (fixedSearcher) SearchCoverArt(context.Context, string, int, bool) (search.Response, error) {
	return search.Response{Results: []search.CoverResult{
		{Artist: "Metallica", ReleaseTitle: "Ride the Lightning", ReleaseDate: "1984-07-27", CoverURL: "https://covers.test/rtl.jpg"},
	}}, nil
}

func (fixedSearcher) Listing(context.Context, string) ([]search.ListingItem, error) {
	return []search.ListingItem{{ID: "rg-1", Title: "Ride the Lightning", URL: "https://musicbrainz.org/release-group/rg-1"}}, nil
}

func (fixedSearcher) FetchDetail(_ context.Context, id string) (search.Document, error) {
	if id != "rg-1" {
		return search.Document{}, services.Wrap(services.ErrNotFound, "search", "fetch detail", "unknown release group", nil)
	}
	return search.Document{ID: id, Title: "Ride the Lightning", Text: "Ride the Lightning by Metallica"}, nil
}

type fixedBoards struct{}

func (fixedBoards) Build(_ context.Context, items []vibe.Item, _ int, _ bool) (vibe.Board, error) {
	boardItems := make([]vibe.BoardItem, 0, len(items))
	for _, item := range items {
		boardItems = append(boardItems, vibe.BoardItem{ID: item.ID, Title: item.Title, URL: item.URL})
	}
	return vibe.Board{Groups: []vibe.Group{{Label: "muted teal", Summary: "one group", Items: boardItems}}}, nil
}

type fixedNarrator struct {
	fail bool
}

func (f fixedNarrator) Summarize(context.Context, string, string) (string, error) {
	if f.fail {
		return "", services.Wrap(services.ErrConfiguration, "narrative", "summarize", "no backend configured", nil)
	}
	return "A calm spread of teal covers.", nil
}

func (f fixedNarrator) Configured() bool { return !f.fail }

func newTestServer(t *testing.T) *mcp.Server {
	t.Helper()
	svc := api.NewService(fixedSearcher{}, fixedBoards{}, fixedNarrator{}, api.Limits{}, "", logging.NewNop())
	return mcp.NewServer(svc, logging.NewNop())
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcp.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	if _, err := srv.MCPServer.Connect(ctx, t1, nil); err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func callToolExpectError(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return err.Error()
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				return tc.Text
			}
		}
		return "unknown error"
	}
	t.Fatal("expected error but got success")
	return ""
}

func TestServerToolDiscovery(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	expected := map[string]bool{
		"search_cover_art": false,
		"search":           false,
		"fetch":            false,
		"vibe_board":       false,
		"rag_summarize":    false,
	}
	for _, tool := range tools.Tools {
		if _, ok := expected[tool.Name]; ok {
			expected[tool.Name] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("expected tool %q not found", name)
		}
	}
}

func TestSearchCoverArtTool(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	result := callTool(t, ctx, session, "search_cover_art", map[string]any{
		"query": "by metallica",
		"limit": 3,
	})
	results, ok := result["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one result, got %v", result["results"])
	}
	first, ok := results[0].(map[string]any)
	if !ok {
		t.Fatalf("result entry is %T", results[0])
	}
	if first["artist"] != "Metallica" || first["coverUrl"] != "https://covers.test/rtl.jpg" {
		t.Fatalf("unexpected result entry %v", first)
	}
}

func TestSearchCoverArtToolRejectsEmptyQuery(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	msg := callToolExpectError(t, ctx, session, "search_cover_art", map[string]any{"query": "   "})
	if msg == "" {
		t.Fatal("expected error message")
	}
}

func TestSearchAndFetchTools(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	listing := callTool(t, ctx, session, "search", map[string]any{"query": "metallica"})
	results, ok := listing["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one listing item, got %v", listing["results"])
	}
	item, ok := results[0].(map[string]any)
	if !ok || item["id"] != "rg-1" {
		t.Fatalf("unexpected listing item %v", results[0])
	}

	doc := callTool(t, ctx, session, "fetch", map[string]any{"id": "rg-1"})
	if doc["id"] != "rg-1" || doc["title"] != "Ride the Lightning" {
		t.Fatalf("unexpected document %v", doc)
	}

	msg := callToolExpectError(t, ctx, session, "fetch", map[string]any{"id": "rg-missing"})
	if msg == "" {
		t.Fatal("expected error for unknown release group")
	}
}

func TestVibeBoardTool(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	board := callTool(t, ctx, session, "vibe_board", map[string]any{"query": "calm ambient"})
	groups, ok := board["groups"].([]any)
	if !ok || len(groups) != 1 {
		t.Fatalf("expected one group, got %v", board["groups"])
	}
	group, ok := groups[0].(map[string]any)
	if !ok || group["label"] != "muted teal" {
		t.Fatalf("unexpected group %v", groups[0])
	}
}

func TestRagSummarizeTool(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	result := callTool(t, ctx, session, "rag_summarize", map[string]any{
		"board": map[string]any{"groups": []any{}},
		"style": "warm",
	})
	if result["narrative"] != "A calm spread of teal covers." {
		t.Fatalf("unexpected narrative %v", result["narrative"])
	}
}

func TestRagSummarizeToolUnconfiguredBackend(t *testing.T) {
	svc := api.NewService(fixedSearcher{}, fixedBoards{}, fixedNarrator{fail: true}, api.Limits{}, "", logging.NewNop())
	srv := mcp.NewServer(svc, logging.NewNop())
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	msg := callToolExpectError(t, ctx, session, "rag_summarize", map[string]any{
		"board": map[string]any{"groups": []any{}},
	})
	if msg == "" {
		t.Fatal("expected error message")
	}
}
