package tenancy

import "context"

type ctxKey string

const (
	venueKey   ctxKey = "smartserve.venue_id"
	sessionKey ctxKey = "smartserve.session_id"
)

// WithVenueID stores the venue id in context.
func WithVenueID(ctx context.Context, venueID string) context.Context {
	return context.WithValue(ctx, venueKey, venueID)
}

// VenueIDFromContext extracts the venue id if present.
func VenueIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(venueKey)
	if val == nil {
		return "", false
	}
	venueID, ok := val.(string)
	return venueID, ok && venueID != ""
}

// WithSessionID stores the visitor session id in context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionIDFromContext extracts the visitor session id if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(sessionKey)
	if val == nil {
		return "", false
	}
	sessionID, ok := val.(string)
	return sessionID, ok && sessionID != ""
}
