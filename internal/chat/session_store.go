package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SessionStore hands out and tracks visitor session identifiers. The id is
// minted lazily on first contact and reused for every send within the
// session; lifecycle is explicit state here rather than an ambient global.
type SessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionStore creates a redis-backed session store.
func NewSessionStore(rdb *redis.Client, ttl time.Duration, tracer trace.Tracer) *SessionStore {
	if rdb == nil {
		panic("chat: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("smartserve.internal.chat.session")
	}
	return &SessionStore{redis: rdb, ttl: ttl, tracer: tracer}
}

// Ensure returns the session id to use for this visitor, minting one when
// the caller has none yet. Known ids get their TTL refreshed.
func (s *SessionStore) Ensure(ctx context.Context, venueID, sessionID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "chat.ensure_session")
	defer span.End()

	if sessionID == "" {
		sessionID = newSessionID()
	}
	if err := s.redis.Set(ctx, sessionKey(venueID, sessionID), time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("chat: failed to persist session: %w", err)
	}
	return sessionID, nil
}

// Known reports whether the store has seen this session id.
func (s *SessionStore) Known(ctx context.Context, venueID, sessionID string) (bool, error) {
	n, err := s.redis.Exists(ctx, sessionKey(venueID, sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("chat: failed to look up session: %w", err)
	}
	return n > 0, nil
}

func sessionKey(venueID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", venueID, sessionID)
}

// newSessionID creates a random session identifier.
func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
