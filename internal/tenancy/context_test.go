package tenancy

import (
	"context"
	"testing"
)

func TestVenueIDRoundTrip(t *testing.T) {
	ctx := WithVenueID(context.Background(), "venue-1")
	got, ok := VenueIDFromContext(ctx)
	if !ok || got != "venue-1" {
		t.Fatalf("expected venue-1, got %q ok=%v", got, ok)
	}
}

func TestVenueIDMissing(t *testing.T) {
	if _, ok := VenueIDFromContext(context.Background()); ok {
		t.Fatal("expected no venue id in empty context")
	}
	if _, ok := VenueIDFromContext(WithVenueID(context.Background(), "")); ok {
		t.Fatal("expected empty venue id to report missing")
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess-abc")
	got, ok := SessionIDFromContext(ctx)
	if !ok || got != "sess-abc" {
		t.Fatalf("expected sess-abc, got %q ok=%v", got, ok)
	}
	if _, ok := SessionIDFromContext(context.Background()); ok {
		t.Fatal("expected no session id in empty context")
	}
}
