package covers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sleeve/internal/covers"
)

type stubReleaseLister struct {
	ids []string
	err error
}

func (s *stubReleaseLister) ReleaseIDs(context.Context, string, int) ([]string, error) {
	return s.ids, s.err
}

func newTestResolver(t *testing.T, archiveHandler, itunesHandler http.HandlerFunc, lister covers.ReleaseLister) *covers.Resolver {
	t.Helper()
	archiveServer := httptest.NewServer(archiveHandler)
	t.Cleanup(archiveServer.Close)
	itunesServer := httptest.NewServer(itunesHandler)
	t.Cleanup(itunesServer.Close)

	archive, err := covers.NewArchive(archiveServer.URL, "sleeve-test/0.1", 5*time.Second)
	if err != nil {
		t.Fatalf("NewArchive returned error: %v", err)
	}
	itunes, err := covers.NewITunes(itunesServer.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewITunes returned error: %v", err)
	}
	return covers.NewResolver(archive, itunes, lister, 10, nil)
}

func missHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

func TestResolveImageListShortCircuits(t *testing.T) {
	archiveRequests := 0
	resolver := newTestResolver(t,
		func(w http.ResponseWriter, r *http.Request) {
			archiveRequests++
			if r.URL.Path != "/release-group/rg1" {
				t.Fatalf("unexpected archive path %q", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"images":[{"front":true,"image":"https://img/front.jpg"}]}`))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			t.Fatal("itunes must not be queried on an archive hit")
		},
		&stubReleaseLister{},
	)

	res, ok := resolver.Resolve(context.Background(), "rg1", "Metallica", "Ride the Lightning")
	if !ok {
		t.Fatal("expected resolution")
	}
	if res.Source != covers.SourceReleaseGroup || res.URL != "https://img/front.jpg" {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if archiveRequests != 1 {
		t.Fatalf("expected a single archive request, got %d", archiveRequests)
	}
}

func TestResolveFallsBackToReleaseProbes(t *testing.T) {
	resolver := newTestResolver(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/release/rel2/front-500" {
				_, _ = w.Write([]byte("image-bytes"))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		},
		func(w http.ResponseWriter, _ *http.Request) {
			t.Fatal("itunes must not be queried on a release probe hit")
		},
		&stubReleaseLister{ids: []string{"rel1", "rel2"}},
	)

	res, ok := resolver.Resolve(context.Background(), "rg1", "Metallica", "Ride the Lightning")
	if !ok {
		t.Fatal("expected resolution")
	}
	if res.Source != "release:rel2" {
		t.Fatalf("expected release source, got %q", res.Source)
	}
	if !strings.HasSuffix(res.URL, "/release/rel2/front-500") {
		t.Fatalf("unexpected url %q", res.URL)
	}
}

func TestResolveFallsThroughToITunes(t *testing.T) {
	resolver := newTestResolver(t,
		missHandler,
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"artworkUrl100":"https://img/cover/100x100bb.jpg"}]}`))
		},
		&stubReleaseLister{ids: []string{"rel1"}},
	)

	res, ok := resolver.Resolve(context.Background(), "rg1", "Metallica", "Ride the Lightning")
	if !ok {
		t.Fatal("expected itunes resolution")
	}
	if res.Source != covers.SourceITunes {
		t.Fatalf("expected itunes source, got %q", res.Source)
	}
	if !strings.Contains(res.URL, "600x600bb") {
		t.Fatalf("expected upsized url, got %q", res.URL)
	}
}

func TestResolveTotalMiss(t *testing.T) {
	resolver := newTestResolver(t,
		missHandler,
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"resultCount":0,"results":[]}`))
		},
		&stubReleaseLister{},
	)

	if _, ok := resolver.Resolve(context.Background(), "rg1", "Nobody", "Nothing"); ok {
		t.Fatal("expected miss when every source fails")
	}
}

func TestResolveEmptyReleaseGroupID(t *testing.T) {
	resolver := newTestResolver(t, missHandler, missHandler, &stubReleaseLister{})
	if _, ok := resolver.Resolve(context.Background(), "  ", "a", "b"); ok {
		t.Fatal("expected miss for blank release group id")
	}
}
