package daemon_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"sleeve/internal/api"
	"sleeve/internal/config"
	"sleeve/internal/daemon"
	"sleeve/internal/logging"
	"sleeve/internal/search"
	"sleeve/internal/vibe"
)

type staticSearcher struct{}

func (staticSearcher) SearchCoverArt(context.Context, string, int, bool) (search.Response, error) {
	return search.Response{Results: []search.CoverResult{
		{Artist: "Boards of Canada", ReleaseTitle: "Geogaddi", CoverURL: "https://covers.test/geogaddi.jpg"},
	}}, nil
}

func (staticSearcher) Listing(context.Context, string) ([]search.ListingItem, error) {
	return []search.ListingItem{{ID: "rg-1", Title: "Geogaddi", URL: "https://musicbrainz.org/release-group/rg-1"}}, nil
}

func (staticSearcher) FetchDetail(_ context.Context, id string) (search.Document, error) {
	return search.Document{ID: id, Title: "Geogaddi"}, nil
}

type staticBoards struct{}

func (staticBoards) Build(context.Context, []vibe.Item, int, bool) (vibe.Board, error) {
	return vibe.Board{Groups: []vibe.Group{}}, nil
}

type staticNarrator struct{}

func (staticNarrator) Summarize(context.Context, string, string) (string, error) {
	return "A calm spread.", nil
}

func (staticNarrator) Configured() bool { return true }

func newTestDaemon(t *testing.T, lockDir string) *daemon.Daemon {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Logging.Dir = lockDir

	svc := api.NewService(staticSearcher{}, staticBoards{}, staticNarrator{}, api.Limits{}, "", logging.NewNop())
	d, err := daemon.New(&cfg, svc, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestDaemonServesHTTP(t *testing.T) {
	d := newTestDaemon(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/health", d.Addr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if !payload["ok"] {
		t.Fatalf("expected ok=true, got %v", payload)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header on response")
	}

	searchResp, err := client.Get(fmt.Sprintf("http://%s/api/search?query=boards+of+canada", d.Addr()))
	if err != nil {
		t.Fatalf("GET /api/search: %v", err)
	}
	defer searchResp.Body.Close()
	if searchResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from search, got %d", searchResp.StatusCode)
	}
	var envelope api.SearchResponse
	if err := json.NewDecoder(searchResp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode search payload: %v", err)
	}
	if len(envelope.Results) != 1 || envelope.Results[0].Artist != "Boards of Canada" {
		t.Fatalf("unexpected search results %+v", envelope.Results)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	dir := t.TempDir()
	first := newTestDaemon(t, dir)
	second := newTestDaemon(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	t.Cleanup(first.Stop)

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second Start to fail while lock is held")
	}
}

func TestDaemonLifecycle(t *testing.T) {
	d := newTestDaemon(t, t.TempDir())

	if st := d.Status(); st.Running {
		t.Fatal("daemon should not report running before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected error starting a running daemon")
	}

	st := d.Status()
	if !st.Running {
		t.Fatal("daemon should report running after Start")
	}
	if st.Addr == "" || st.Addr == "127.0.0.1:0" {
		t.Fatalf("expected resolved listen address, got %q", st.Addr)
	}

	d.Stop()
	if st := d.Status(); st.Running {
		t.Fatal("daemon should not report running after Stop")
	}

	// Stop twice is safe, and Close is idempotent with Stop.
	d.Stop()
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
