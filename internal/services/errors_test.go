package services_test

import (
	"errors"
	"strings"
	"testing"

	"sleeve/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "musicbrainz", "search artists", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"musicbrainz", "search artists", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransport(t *testing.T) {
	err := services.Wrap(nil, "covers", "probe", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport marker for nil, got %v", err)
	}
}

func TestFailSoftClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", services.Wrap(services.ErrTransport, "musicbrainz", "browse", "", errors.New("conn refused")), true},
		{"decode", services.Wrap(services.ErrDecode, "palette", "decode image", "", errors.New("bad jpeg")), true},
		{"not found", services.Wrap(services.ErrNotFound, "covers", "resolve", "", nil), true},
		{"validation", services.Wrap(services.ErrValidation, "api", "search", "missing query", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "narrative", "select backend", "no backend", nil), false},
		{"plain", errors.New("unmarked"), false},
	}
	for _, tc := range cases {
		if got := services.FailSoft(tc.err); got != tc.want {
			t.Fatalf("%s: FailSoft = %v, want %v", tc.name, got, tc.want)
		}
	}
}
