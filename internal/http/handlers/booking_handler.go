package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/smartserveai/widget-gateway/internal/booking"
	"github.com/smartserveai/widget-gateway/internal/observability/metrics"
	"github.com/smartserveai/widget-gateway/internal/wizard"
	"github.com/smartserveai/widget-gateway/pkg/logging"
)

// BookingHandler exposes the booking wizard over HTTP. Every endpoint is
// keyed by the visitor session id; the wizard itself enforces step and
// in-flight rules, the handler just maps its errors onto status codes.
type BookingHandler struct {
	manager *wizard.Manager
	metrics *metrics.WidgetMetrics
	logger  *logging.Logger
}

// NewBookingHandler creates the booking endpoint handler. metrics may be nil.
func NewBookingHandler(manager *wizard.Manager, m *metrics.WidgetMetrics, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{manager: manager, metrics: m, logger: logger}
}

type openRequest struct {
	SessionID string          `json:"session_id"`
	Prefill   *wizard.Prefill `json:"prefill,omitempty"`
}

// HandleOpen starts (or restarts) the wizard for a session.
func (h *BookingHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	state := h.manager.Open(req.SessionID, req.Prefill)
	writeJSON(w, http.StatusOK, state)
}

// HandleState returns the wizard snapshot for a session.
func (h *BookingHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	wiz, ok := h.manager.Get(sessionID)
	if !ok {
		http.Error(w, "no booking flow for session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, wiz.State())
}

type timesRequest struct {
	SessionID string `json:"session_id"`
	Date      string `json:"date"`
	PartySize int    `json:"party_size"`
}

// HandleTimes records date and party size, then fetches bookable times. The
// wizard reports validation problems (missing date, empty availability,
// backend errors) through its own last_error field, so those still come back
// as 200 with the state attached.
func (h *BookingHandler) HandleTimes(w http.ResponseWriter, r *http.Request) {
	var req timesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	wiz, ok := h.wizardFor(w, req.SessionID)
	if !ok {
		return
	}
	if err := wiz.SetWhenParty(req.Date, req.PartySize); err != nil {
		h.writeWizardError(w, wiz, err)
		return
	}

	start := time.Now()
	err := wiz.RequestAvailability(r.Context())
	h.metrics.ObserveUpstreamLatency("booking", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObserveAvailabilityCheck("rejected")
		h.writeWizardError(w, wiz, err)
		return
	}

	state := wiz.State()
	if state.LastError != "" {
		h.metrics.ObserveAvailabilityCheck("error")
	} else {
		h.metrics.ObserveAvailabilityCheck("ok")
	}
	writeJSON(w, http.StatusOK, state)
}

type selectRequest struct {
	SessionID string `json:"session_id"`
	Time      string `json:"time"`
}

// HandleSelect records the chosen time slot.
func (h *BookingHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	wiz, ok := h.wizardFor(w, req.SessionID)
	if !ok {
		return
	}
	if err := wiz.SelectTime(req.Time); err != nil {
		h.writeWizardError(w, wiz, err)
		return
	}
	writeJSON(w, http.StatusOK, wiz.State())
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// HandleNext advances from time selection to the details step.
func (h *BookingHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.stepChange(w, r, func(wiz *wizard.Wizard) error { return wiz.Next() })
}

// HandleBack moves one step towards the start.
func (h *BookingHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.stepChange(w, r, func(wiz *wizard.Wizard) error { return wiz.Back() })
}

func (h *BookingHandler) stepChange(w http.ResponseWriter, r *http.Request, op func(*wizard.Wizard) error) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	wiz, ok := h.wizardFor(w, req.SessionID)
	if !ok {
		return
	}
	if err := op(wiz); err != nil {
		h.writeWizardError(w, wiz, err)
		return
	}
	writeJSON(w, http.StatusOK, wiz.State())
}

type confirmRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Notes     string `json:"notes"`
}

type confirmResponse struct {
	Booking wizard.State          `json:"booking"`
	Result  *booking.CommitResult `json:"result,omitempty"`
}

// HandleConfirm records the visitor details and commits the booking. Missing
// fields and backend failures come back as 200 with last_error set and the
// draft intact; on success the result rides along and the flow is torn down.
func (h *BookingHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	wiz, ok := h.wizardFor(w, req.SessionID)
	if !ok {
		return
	}
	if err := wiz.SetDetails(req.Name, req.Contact, req.Notes); err != nil {
		h.writeWizardError(w, wiz, err)
		return
	}

	start := time.Now()
	res, err := wiz.Confirm(r.Context())
	h.metrics.ObserveUpstreamLatency("booking", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObserveBookingCommit("rejected")
		h.writeWizardError(w, wiz, err)
		return
	}

	state := wiz.State()
	if res != nil {
		status := res.Status
		if status == "" {
			status = "confirmed"
		}
		h.metrics.ObserveBookingCommit(status)
		h.manager.Close(req.SessionID)
	} else if state.LastError != "" {
		h.metrics.ObserveBookingCommit("failed")
	}
	writeJSON(w, http.StatusOK, confirmResponse{Booking: state, Result: res})
}

// HandleClose tears down the session's wizard.
func (h *BookingHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	h.manager.Close(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *BookingHandler) wizardFor(w http.ResponseWriter, sessionID string) (*wizard.Wizard, bool) {
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return nil, false
	}
	wiz, ok := h.manager.Get(sessionID)
	if !ok {
		http.Error(w, "no booking flow for session", http.StatusNotFound)
		return nil, false
	}
	return wiz, true
}

// writeWizardError maps wizard state machine errors onto HTTP status codes.
func (h *BookingHandler) writeWizardError(w http.ResponseWriter, wiz *wizard.Wizard, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, wizard.ErrClosed), errors.Is(err, wizard.ErrWrongStep):
		status = http.StatusConflict
	case errors.Is(err, wizard.ErrRequestInFlight):
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, map[string]any{
		"error":   err.Error(),
		"booking": wiz.State(),
	})
}
