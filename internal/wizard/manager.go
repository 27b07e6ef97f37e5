package wizard

import (
	"sync"

	"github.com/smartserveai/widget-gateway/internal/booking"
	"github.com/smartserveai/widget-gateway/pkg/logging"
)

// Manager owns one wizard per visitor session. A session has at most one
// active booking flow; opening again always restarts it.
type Manager struct {
	client   BookingClient
	logger   *logging.Logger
	onBooked func(sessionID string, res *booking.CommitResult)

	mu      sync.Mutex
	wizards map[string]*Wizard
}

// NewManager creates a session-keyed wizard manager. onBooked, when non-nil,
// fires once per successful commit with the owning session id.
func NewManager(client BookingClient, onBooked func(sessionID string, res *booking.CommitResult), logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		client:   client,
		logger:   logger,
		onBooked: onBooked,
		wizards:  make(map[string]*Wizard),
	}
}

// Open starts (or restarts) the booking flow for a session and returns the
// fresh state.
func (m *Manager) Open(sessionID string, prefill *Prefill) State {
	m.mu.Lock()
	w, ok := m.wizards[sessionID]
	if !ok {
		w = New(m.client, m.logger)
		if m.onBooked != nil {
			sid := sessionID
			w.OnBooked = func(res *booking.CommitResult) {
				m.onBooked(sid, res)
			}
		}
		m.wizards[sessionID] = w
	}
	m.mu.Unlock()

	m.logger.Info("booking wizard opened", "session_id", sessionID, "prefilled", prefill != nil)
	return w.Open(prefill)
}

// Get returns the session's wizard if one exists.
func (m *Manager) Get(sessionID string) (*Wizard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wizards[sessionID]
	return w, ok
}

// Close tears down the session's wizard, if any.
func (m *Manager) Close(sessionID string) {
	m.mu.Lock()
	w, ok := m.wizards[sessionID]
	if ok {
		delete(m.wizards, sessionID)
	}
	m.mu.Unlock()

	if ok {
		w.Close()
		m.logger.Info("booking wizard closed", "session_id", sessionID)
	}
}

// Len reports how many sessions currently hold a wizard.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wizards)
}
