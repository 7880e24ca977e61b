package covers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sleeve/internal/covers"
	"sleeve/internal/services"
)

func newTestArchive(t *testing.T, handler http.Handler) *covers.Archive {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	archive, err := covers.NewArchive(server.URL, "sleeve-test/0.1", 5*time.Second)
	if err != nil {
		t.Fatalf("NewArchive returned error: %v", err)
	}
	return archive
}

func TestFrontImageURLPicksFrontFlaggedImage(t *testing.T) {
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release-group/rg1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "sleeve-test/0.1" {
			t.Fatalf("expected custom user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images":[{"front":false,"image":"https://img/back.jpg"},{"front":true,"image":"https://img/front.jpg"}]}`))
	}))

	url, err := archive.FrontImageURL(context.Background(), "rg1")
	if err != nil {
		t.Fatalf("FrontImageURL returned error: %v", err)
	}
	if url != "https://img/front.jpg" {
		t.Fatalf("expected front-flagged image, got %q", url)
	}
}

func TestFrontImageURLNoFrontFlagIsCleanMiss(t *testing.T) {
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"images":[{"front":false,"image":"https://img/back.jpg"}]}`))
	}))

	url, err := archive.FrontImageURL(context.Background(), "rg1")
	if err != nil {
		t.Fatalf("expected clean miss, got error: %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty url, got %q", url)
	}
}

func TestFrontImageURLNotFoundClassifiedFailSoft(t *testing.T) {
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := archive.FrontImageURL(context.Background(), "rg1")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !services.FailSoft(err) {
		t.Fatalf("expected fail-soft classification, got %v", err)
	}
}

func TestProbeReleaseGroupTriesSuffixesInOrder(t *testing.T) {
	var paths []string
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		if r.URL.Path == "/release-group/rg1/front" {
			_, _ = w.Write([]byte("image-bytes"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	final, ok := archive.ProbeReleaseGroup(context.Background(), "rg1")
	if !ok {
		t.Fatal("expected probe hit")
	}
	if !strings.HasSuffix(final, "/release-group/rg1/front") {
		t.Fatalf("unexpected final url %q", final)
	}
	want := []string{
		"/release-group/rg1/front-500",
		"/release-group/rg1/front-250",
		"/release-group/rg1/front",
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d probes, got %v", len(want), paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("probe %d: expected %q, got %q", i, p, paths[i])
		}
	}
}

func TestProbeCapturesFinalURLAfterRedirect(t *testing.T) {
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/release/rel1/front-500":
			http.Redirect(w, r, "/images/rel1-front-500.jpg", http.StatusFound)
		case "/images/rel1-front-500.jpg":
			_, _ = w.Write([]byte("image-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	final, ok := archive.ProbeRelease(context.Background(), "rel1")
	if !ok {
		t.Fatal("expected probe hit")
	}
	if !strings.HasSuffix(final, "/images/rel1-front-500.jpg") {
		t.Fatalf("expected final redirected url, got %q", final)
	}
}

func TestProbeRejectsEmptyBody(t *testing.T) {
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if _, ok := archive.ProbeReleaseGroup(context.Background(), "rg1"); ok {
		t.Fatal("expected miss for 200 with empty body")
	}
}

func TestProbeStopsOnCanceledContext(t *testing.T) {
	requests := 0
	archive := newTestArchive(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := archive.ProbeReleaseGroup(ctx, "rg1"); ok {
		t.Fatal("expected miss with canceled context")
	}
	if requests != 0 {
		t.Fatalf("expected no requests after cancellation, got %d", requests)
	}
}
