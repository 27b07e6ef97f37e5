package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartserveai/widget-gateway/internal/booking"
	"github.com/smartserveai/widget-gateway/internal/wizard"
)

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) wizard.State {
	t.Helper()
	var s wizard.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func TestBookingEndToEnd(t *testing.T) {
	client := &stubBookingClient{
		slots: []booking.AvailabilitySlot{
			{Time: "18:00", Available: true},
			{Time: "19:30", Available: true},
		},
		result: &booking.CommitResult{ConfirmationCode: "ABC123", Status: "confirmed"},
	}
	manager := wizard.NewManager(client, nil, nil)
	h := NewBookingHandler(manager, nil, nil)

	// Open.
	w := postJSON(t, h.HandleOpen, "/api/booking/open", map[string]any{"session_id": "sess-1"})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.True(t, state.Open)
	assert.Equal(t, wizard.StepWhenParty, state.Step)

	// Date + party size, fetch times.
	w = postJSON(t, h.HandleTimes, "/api/booking/times", map[string]any{
		"session_id": "sess-1", "date": "2026-09-01", "party_size": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, w)
	assert.Equal(t, wizard.StepPickTime, state.Step)
	assert.Equal(t, []string{"18:00", "19:30"}, state.Availability)
	assert.Empty(t, state.LastError)

	// Pick a slot, advance.
	w = postJSON(t, h.HandleSelect, "/api/booking/select", map[string]any{
		"session_id": "sess-1", "time": "19:30",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, h.HandleNext, "/api/booking/next", map[string]any{"session_id": "sess-1"})
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, w)
	assert.Equal(t, wizard.StepDetails, state.Step)

	// Confirm.
	w = postJSON(t, h.HandleConfirm, "/api/booking/confirm", map[string]any{
		"session_id": "sess-1", "name": "Ada", "contact": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var out confirmResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotNil(t, out.Result)
	assert.Equal(t, "ABC123", out.Result.ConfirmationCode)
	assert.False(t, out.Booking.Open)

	// Flow torn down after success.
	assert.Equal(t, 0, manager.Len())
}

func TestBookingConfirmMissingFields(t *testing.T) {
	client := &stubBookingClient{slots: []booking.AvailabilitySlot{{Time: "18:00", Available: true}}}
	manager := wizard.NewManager(client, nil, nil)
	h := NewBookingHandler(manager, nil, nil)

	postJSON(t, h.HandleOpen, "/", map[string]any{"session_id": "s"})
	postJSON(t, h.HandleTimes, "/", map[string]any{"session_id": "s", "date": "2026-09-01", "party_size": 2})
	postJSON(t, h.HandleSelect, "/", map[string]any{"session_id": "s", "time": "18:00"})
	postJSON(t, h.HandleNext, "/", map[string]any{"session_id": "s"})

	w := postJSON(t, h.HandleConfirm, "/", map[string]any{"session_id": "s", "name": "  "})
	require.Equal(t, http.StatusOK, w.Code)
	var out confirmResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Nil(t, out.Result)
	assert.Equal(t, "Missing: name.", out.Booking.LastError)
	assert.True(t, out.Booking.Open, "flow stays open on validation failure")
	assert.Equal(t, 1, manager.Len())
}

func TestBookingSelectUnofferedSlot(t *testing.T) {
	client := &stubBookingClient{slots: []booking.AvailabilitySlot{{Time: "18:00", Available: true}}}
	manager := wizard.NewManager(client, nil, nil)
	h := NewBookingHandler(manager, nil, nil)

	postJSON(t, h.HandleOpen, "/", map[string]any{"session_id": "s"})
	postJSON(t, h.HandleTimes, "/", map[string]any{"session_id": "s", "date": "2026-09-01", "party_size": 2})

	w := postJSON(t, h.HandleSelect, "/", map[string]any{"session_id": "s", "time": "23:00"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingWrongStepConflicts(t *testing.T) {
	manager := wizard.NewManager(&stubBookingClient{}, nil, nil)
	h := NewBookingHandler(manager, nil, nil)

	postJSON(t, h.HandleOpen, "/", map[string]any{"session_id": "s"})

	// Select before any availability was fetched.
	w := postJSON(t, h.HandleSelect, "/", map[string]any{"session_id": "s", "time": "18:00"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Back from step 1.
	w = postJSON(t, h.HandleBack, "/", map[string]any{"session_id": "s"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingUnknownSession(t *testing.T) {
	h := NewBookingHandler(wizard.NewManager(&stubBookingClient{}, nil, nil), nil, nil)

	w := postJSON(t, h.HandleTimes, "/", map[string]any{"session_id": "ghost", "date": "2026-09-01", "party_size": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/booking/state?session=ghost", nil)
	rec := httptest.NewRecorder()
	h.HandleState(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingStateAndClose(t *testing.T) {
	manager := wizard.NewManager(&stubBookingClient{}, nil, nil)
	h := NewBookingHandler(manager, nil, nil)

	postJSON(t, h.HandleOpen, "/", map[string]any{"session_id": "s"})

	req := httptest.NewRequest(http.MethodGet, "/api/booking/state?session=s", nil)
	rec := httptest.NewRecorder()
	h.HandleState(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.True(t, state.Open)

	w := postJSON(t, h.HandleClose, "/", map[string]any{"session_id": "s"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, manager.Len())
}

func TestBookingOpenValidation(t *testing.T) {
	h := NewBookingHandler(wizard.NewManager(&stubBookingClient{}, nil, nil), nil, nil)

	w := postJSON(t, h.HandleOpen, "/", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWidgetScriptEmbedsDefaults(t *testing.T) {
	js := WidgetScript("https://widget.smartserve.example", "venue-1")
	assert.Contains(t, string(js), "https://widget.smartserve.example")
	assert.Contains(t, string(js), "venue-1")
	assert.Contains(t, string(js), "data-ss-key")
}

func TestHandleWidgetJS(t *testing.T) {
	h := NewWidgetHandler([]byte("console.log('hi');"), nil)
	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	w := httptest.NewRecorder()
	h.HandleWidgetJS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "console.log('hi');", w.Body.String())
}

func TestHandleHealth(t *testing.T) {
	h := NewWidgetHandler(nil, nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
