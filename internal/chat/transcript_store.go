package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TranscriptMessage is one line of a chat transcript.
type TranscriptMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore keeps per-session chat transcripts in redis lists with the
// same TTL as the session itself.
type TranscriptStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewTranscriptStore creates a redis-backed transcript store.
func NewTranscriptStore(rdb *redis.Client, ttl time.Duration, tracer trace.Tracer) *TranscriptStore {
	if rdb == nil {
		panic("chat: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("smartserve.internal.chat.transcript")
	}
	return &TranscriptStore{redis: rdb, ttl: ttl, tracer: tracer}
}

// Append adds a message to the session transcript.
func (s *TranscriptStore) Append(ctx context.Context, venueID, sessionID string, msg TranscriptMessage) error {
	ctx, span := s.tracer.Start(ctx, "chat.append_transcript")
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to marshal transcript message: %w", err)
	}
	key := transcriptKey(venueID, sessionID)
	if err := s.redis.RPush(ctx, key, data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to append transcript: %w", err)
	}
	if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to refresh transcript ttl: %w", err)
	}
	return nil
}

// List returns up to limit most recent transcript messages in order.
func (s *TranscriptStore) List(ctx context.Context, venueID, sessionID string, limit int64) ([]TranscriptMessage, error) {
	ctx, span := s.tracer.Start(ctx, "chat.list_transcript")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(venueID, sessionID), -limit, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to load transcript: %w", err)
	}

	out := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(venueID, sessionID string) string {
	return fmt.Sprintf("transcript:%s:%s", venueID, sessionID)
}
