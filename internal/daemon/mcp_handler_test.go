package daemon

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sleeve/internal/search"
	"sleeve/internal/services"
	"sleeve/internal/vibe"
)

func postRPC(t *testing.T, srv *apiServer, body string) (*httptest.ResponseRecorder, rpcResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(t, srv, req)

	var resp rpcResponse
	decodeBody(t, rec, &resp)
	return rec, resp
}

// toolPayload digs the JSON content value out of a tools/call result
// envelope.
func toolPayload(t *testing.T, resp rpcResponse) map[string]any {
	t.Helper()
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %T", resp.Result)
	}
	content, ok := result["content"].([]any)
	if !ok || len(content) != 1 {
		t.Fatalf("expected single content entry, got %v", result["content"])
	}
	entry, ok := content[0].(map[string]any)
	if !ok {
		t.Fatalf("expected content object, got %T", content[0])
	}
	if entry["type"] != "json" {
		t.Fatalf("expected json content type, got %v", entry["type"])
	}
	payload, ok := entry["json"].(map[string]any)
	if !ok {
		t.Fatalf("expected json payload object, got %T", entry["json"])
	}
	return payload
}

func TestMCPProbeBlob(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["ok"] != true || payload["mcp"] != true || payload["path"] != "/mcp" {
		t.Fatalf("unexpected probe payload %v", payload)
	}
}

func TestMCPRejectsOtherMethods(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	rec := doRequest(t, srv, httptest.NewRequest(http.MethodDelete, "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MCP expects POST") {
		t.Fatalf("expected hint in body, got %q", rec.Body.String())
	}
}

func TestMCPParseError(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	rec, resp := postRPC(t, srv, `{"jsonrpc":"2.0", nope`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != rpcParseError {
		t.Fatalf("expected parse error, got %+v", resp.Error)
	}
}

func TestMCPInitialize(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	rec, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %T", resp.Result)
	}
	if result["protocol"] != "mcp" {
		t.Fatalf("unexpected protocol %v", result["protocol"])
	}
	info, ok := result["serverInfo"].(map[string]any)
	if !ok || info["name"] != "sleeve" {
		t.Fatalf("unexpected serverInfo %v", result["serverInfo"])
	}
}

func TestMCPUnknownMethod(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`)
	if resp.Error == nil || resp.Error.Code != rpcMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestMCPToolsList(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %T", resp.Result)
	}
	tools, ok := result["tools"].([]any)
	if !ok {
		t.Fatalf("expected tools array, got %T", result["tools"])
	}
	want := []string{toolSearchCoverArt, toolSearch, toolFetch, toolVibeBoard, toolRagSummarize}
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}
	for i, raw := range tools {
		tool, ok := raw.(map[string]any)
		if !ok {
			t.Fatalf("tool %d is %T", i, raw)
		}
		if tool["name"] != want[i] {
			t.Fatalf("tool %d: expected %q, got %v", i, want[i], tool["name"])
		}
		schema, ok := tool["inputSchema"].(map[string]any)
		if !ok {
			t.Fatalf("tool %q missing input schema", want[i])
		}
		if _, ok := schema["required"]; !ok {
			t.Fatalf("tool %q schema has no required list", want[i])
		}
	}
}

func TestMCPCallSearchCoverArtClampsLimit(t *testing.T) {
	var gotLimit int
	searcher := &stubSearcher{
		search: func(_ string, limit int, _ bool) (search.Response, error) {
			gotLimit = limit
			return search.Response{Results: []search.CoverResult{
				{Artist: "Metallica", ReleaseTitle: "Ride the Lightning", CoverURL: "https://covers.test/rtl.jpg"},
			}}, nil
		},
	}
	srv := newTestServer(t, newTestService(t, searcher, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"search_cover_art","arguments":{"query":"by metallica","limit":99}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
	if gotLimit != 50 {
		t.Fatalf("expected limit clamped to 50, got %d", gotLimit)
	}
	payload := toolPayload(t, resp)
	results, ok := payload["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one result, got %v", payload["results"])
	}
}

func TestMCPCallSearchCoverArtDefaultsLimit(t *testing.T) {
	var gotLimit int
	searcher := &stubSearcher{
		search: func(_ string, limit int, _ bool) (search.Response, error) {
			gotLimit = limit
			return search.Response{}, nil
		},
	}
	srv := newTestServer(t, newTestService(t, searcher, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"search_cover_art","arguments":{"query":"by metallica"}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
	if gotLimit != 8 {
		t.Fatalf("expected default limit 8, got %d", gotLimit)
	}
}

func TestMCPCallMissingQuery(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	rec, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"search_cover_art","arguments":{}}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != rpcInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "query") {
		t.Fatalf("expected message naming the argument, got %q", resp.Error.Message)
	}
}

func TestMCPCallUnknownTool(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"make_coffee","arguments":{}}}`)
	if resp.Error == nil || resp.Error.Code != rpcMethodNotFound {
		t.Fatalf("expected unknown tool error, got %+v", resp.Error)
	}
}

func TestMCPCallSearchListing(t *testing.T) {
	searcher := &stubSearcher{
		listing: func(string) ([]search.ListingItem, error) {
			return []search.ListingItem{{ID: "rg-1", Title: "Geogaddi", URL: "https://musicbrainz.org/release-group/rg-1"}}, nil
		},
	}
	srv := newTestServer(t, newTestService(t, searcher, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"search","arguments":{"query":"boards of canada"}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
	payload := toolPayload(t, resp)
	results, ok := payload["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one listing item, got %v", payload["results"])
	}
	item, ok := results[0].(map[string]any)
	if !ok || item["id"] != "rg-1" {
		t.Fatalf("unexpected listing item %v", results[0])
	}
}

func TestMCPCallFetch(t *testing.T) {
	searcher := &stubSearcher{
		fetch: func(id string) (search.Document, error) {
			if id != "rg-1" {
				return search.Document{}, services.Wrap(services.ErrNotFound, "search", "fetch", "unknown release group", nil)
			}
			return search.Document{ID: id, Title: "Geogaddi", Text: "Geogaddi by Boards of Canada"}, nil
		},
	}
	srv := newTestServer(t, newTestService(t, searcher, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"fetch","arguments":{"id":"rg-1"}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
	payload := toolPayload(t, resp)
	if payload["id"] != "rg-1" || payload["title"] != "Geogaddi" {
		t.Fatalf("unexpected document %v", payload)
	}

	_, resp = postRPC(t, srv, `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"fetch","arguments":{"id":"rg-missing"}}}`)
	if resp.Error == nil || resp.Error.Code != rpcInternalError {
		t.Fatalf("expected internal error for unknown id, got %+v", resp.Error)
	}
}

func TestMCPCallVibeBoard(t *testing.T) {
	var gotMax int
	searcher := &stubSearcher{
		listing: func(string) ([]search.ListingItem, error) {
			return []search.ListingItem{{ID: "rg-1", Title: "Geogaddi", URL: "https://musicbrainz.org/release-group/rg-1"}}, nil
		},
	}
	boards := &stubBoards{
		build: func(items []vibe.Item, maxItems int, _ bool) (vibe.Board, error) {
			gotMax = maxItems
			return vibe.Board{Groups: []vibe.Group{{Label: "muted teal", Summary: "one group", Items: []vibe.BoardItem{{ID: items[0].ID, Title: items[0].Title}}}}}, nil
		},
	}
	srv := newTestServer(t, newTestService(t, searcher, boards, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"vibe_board","arguments":{"query":"calm ambient"}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
	if gotMax != 12 {
		t.Fatalf("expected default board size 12, got %d", gotMax)
	}
	payload := toolPayload(t, resp)
	groups, ok := payload["groups"].([]any)
	if !ok || len(groups) != 1 {
		t.Fatalf("expected one group, got %v", payload["groups"])
	}
}

func TestMCPCallRagSummarize(t *testing.T) {
	var gotBoard string
	narrator := &stubNarrator{
		configured: true,
		summarize: func(boardJSON, style string) (string, error) {
			gotBoard = boardJSON
			return "A calm spread of teal covers.", nil
		},
	}
	srv := newTestServer(t, newTestService(t, nil, nil, narrator))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":12,"method":"tools/call","params":{"name":"rag_summarize","arguments":{"board":{"groups":[]},"style":"warm"}}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
	payload := toolPayload(t, resp)
	if payload["narrative"] != "A calm spread of teal covers." {
		t.Fatalf("unexpected narrative %v", payload["narrative"])
	}
	if !strings.Contains(gotBoard, `"groups"`) {
		t.Fatalf("expected raw board JSON passed through, got %q", gotBoard)
	}
}

func TestMCPCallRagSummarizeRequiresBoard(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":13,"method":"tools/call","params":{"name":"rag_summarize","arguments":{"style":"warm"}}}`)
	if resp.Error == nil || resp.Error.Code != rpcInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestMCPCallRagSummarizeUnconfiguredBackend(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, &stubNarrator{}))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":14,"method":"tools/call","params":{"name":"rag_summarize","arguments":{"board":{"groups":[]}}}}`)
	if resp.Error == nil || resp.Error.Code != rpcInternalError {
		t.Fatalf("expected internal error, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "backend") {
		t.Fatalf("expected backend hint, got %q", resp.Error.Message)
	}
}

func TestMCPCallMalformedArguments(t *testing.T) {
	srv := newTestServer(t, newTestService(t, nil, nil, nil))

	_, resp := postRPC(t, srv, `{"jsonrpc":"2.0","id":15,"method":"tools/call","params":{"name":"search_cover_art","arguments":{"limit":"nine"}}}`)
	if resp.Error == nil || resp.Error.Code != rpcInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}
