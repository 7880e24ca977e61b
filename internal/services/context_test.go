package services_test

import (
	"context"
	"testing"

	"sleeve/internal/services"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "req-123")
	id, ok := services.RequestIDFromContext(ctx)
	if !ok || id != "req-123" {
		t.Fatalf("expected req-123, got %q ok=%v", id, ok)
	}
}

func TestRequestIDEmptyIsNoOp(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "")
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id for empty value")
	}
}

func TestToolRoundTrip(t *testing.T) {
	ctx := services.WithTool(context.Background(), "search_cover_art")
	name, ok := services.ToolFromContext(ctx)
	if !ok || name != "search_cover_art" {
		t.Fatalf("expected tool name, got %q ok=%v", name, ok)
	}
	if _, ok := services.ToolFromContext(context.Background()); ok {
		t.Fatal("expected no tool on fresh context")
	}
}
