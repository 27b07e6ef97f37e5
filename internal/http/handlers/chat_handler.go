// Package handlers holds the HTTP surface of the widget gateway: chat
// forwarding, the booking wizard endpoints, and the embeddable widget script.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartserveai/widget-gateway/internal/chat"
	"github.com/smartserveai/widget-gateway/internal/observability/metrics"
	"github.com/smartserveai/widget-gateway/internal/tenancy"
	"github.com/smartserveai/widget-gateway/internal/wizard"
	"github.com/smartserveai/widget-gateway/pkg/logging"
)

// Assistant forwards a visitor message to the assistant service.
type Assistant interface {
	Send(ctx context.Context, sessionID, message string) (*chat.Response, error)
}

// Sessions mints and tracks visitor session ids.
type Sessions interface {
	Ensure(ctx context.Context, venueID, sessionID string) (string, error)
}

// Transcripts reads and appends chat history.
type Transcripts interface {
	Append(ctx context.Context, venueID, sessionID string, msg chat.TranscriptMessage) error
	List(ctx context.Context, venueID, sessionID string, limit int64) ([]chat.TranscriptMessage, error)
}

// ChatHandler serves the widget chat endpoints.
type ChatHandler struct {
	assistant   Assistant
	sessions    Sessions
	transcripts Transcripts
	manager     *wizard.Manager
	metrics     *metrics.WidgetMetrics
	logger      *logging.Logger
}

// NewChatHandler creates the chat endpoint handler. metrics may be nil.
func NewChatHandler(assistant Assistant, sessions Sessions, transcripts Transcripts, manager *wizard.Manager, m *metrics.WidgetMetrics, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{
		assistant:   assistant,
		sessions:    sessions,
		transcripts: transcripts,
		manager:     manager,
		metrics:     m,
		logger:      logger,
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	Reply     string        `json:"reply"`
	Action    *chat.Action  `json:"action,omitempty"`
	Booking   *wizard.State `json:"booking,omitempty"`
}

// HandleMessage forwards one visitor message to the assistant, records both
// sides of the exchange, and dispatches any structured action the reply
// carries. OPEN_BOOKING_FORM opens (or restarts) the session's wizard with
// the attached prefill; the fresh wizard state rides back on the response.
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	venueID, ok := tenancy.VenueIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing venue context", http.StatusForbidden)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	sessionID, err := h.sessions.Ensure(r.Context(), venueID, req.SessionID)
	if err != nil {
		h.logger.Error("failed to ensure session", "error", err, "venue_id", venueID)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	if h.transcripts != nil {
		_ = h.transcripts.Append(r.Context(), venueID, sessionID, chat.TranscriptMessage{
			ID:        uuid.New().String(),
			Role:      "user",
			Text:      req.Text,
			Timestamp: time.Now().UTC(),
		})
	}

	start := time.Now()
	resp, err := h.assistant.Send(r.Context(), sessionID, req.Text)
	h.metrics.ObserveUpstreamLatency("chat", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObserveChatMessage("error", string(chat.ActionNone))
		h.logger.Error("assistant send failed", "error", err, "venue_id", venueID, "session_id", sessionID)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	reply := resp.AssistantText()
	if h.transcripts != nil && reply != "" {
		_ = h.transcripts.Append(r.Context(), venueID, sessionID, chat.TranscriptMessage{
			ID:        uuid.New().String(),
			Role:      "assistant",
			Text:      reply,
			Timestamp: time.Now().UTC(),
		})
	}

	out := chatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Action:    resp.Action,
	}

	actionKind := chat.ActionNone
	if resp.Action != nil {
		actionKind = resp.Action.Kind
	}
	if actionKind == chat.ActionOpenBookingForm && h.manager != nil {
		state := h.manager.Open(sessionID, resp.Action.Prefill)
		out.Booking = &state
	}
	h.metrics.ObserveChatMessage("ok", string(actionKind))

	writeJSON(w, http.StatusOK, out)
}

// HandleHistory returns the session transcript.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	venueID, ok := tenancy.VenueIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing venue context", http.StatusForbidden)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if h.transcripts == nil {
		writeJSON(w, http.StatusOK, map[string]any{"messages": []chat.TranscriptMessage{}})
		return
	}

	msgs, err := h.transcripts.List(r.Context(), venueID, sessionID, 100)
	if err != nil {
		h.logger.Error("failed to load history", "error", err, "session_id", sessionID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []chat.TranscriptMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
