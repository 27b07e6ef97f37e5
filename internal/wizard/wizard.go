// Package wizard implements the three-step booking flow behind the embedded
// widget: when/party, time selection, and details/confirm. One Wizard serves
// one visitor session; the Manager keys wizards by session id.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/smartserveai/widget-gateway/internal/booking"
	"github.com/smartserveai/widget-gateway/pkg/logging"
)

// Step identifies a wizard screen.
type Step int

const (
	StepWhenParty Step = 1
	StepPickTime  Step = 2
	StepDetails   Step = 3
)

var (
	// ErrClosed is returned when an operation hits a wizard that is not open.
	ErrClosed = errors.New("wizard: not open")
	// ErrRequestInFlight is returned when a second availability or commit
	// call arrives while one is still running. The wizard holds a single
	// in-flight request slot; callers retry after the first one settles.
	ErrRequestInFlight = errors.New("wizard: request already in flight")
	// ErrWrongStep is returned when an operation is not valid for the
	// current step.
	ErrWrongStep = errors.New("wizard: operation not valid for current step")
)

// Draft holds the booking fields entered so far. Name/contact/notes may be
// filled at any step and survive step changes; they are only required at
// confirm time.
type Draft struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Notes     string `json:"notes"`
}

// BookingClient is the slice of the reservations client the wizard uses.
type BookingClient interface {
	CheckAvailability(ctx context.Context, date string, partySize int, selectedTime string) ([]booking.AvailabilitySlot, error)
	CreateBooking(ctx context.Context, req booking.CreateRequest) (*booking.CommitResult, error)
}

// State is a point-in-time snapshot of the wizard, safe to serialize to the
// embedded front-end.
type State struct {
	Open         bool     `json:"open"`
	Step         Step     `json:"step"`
	Draft        Draft    `json:"draft"`
	Availability []string `json:"availability,omitempty"`
	LastError    string   `json:"last_error,omitempty"`
	InFlight     bool     `json:"in_flight"`
}

// Wizard is the booking flow state machine. All methods are safe for
// concurrent use; network calls run outside the lock and their results are
// discarded if the wizard was closed or reopened in the meantime.
type Wizard struct {
	client BookingClient
	logger *logging.Logger

	// OnBooked is invoked with the backend result after a successful commit,
	// before the wizard closes itself. May be nil.
	OnBooked func(*booking.CommitResult)

	mu           sync.Mutex
	open         bool
	generation   uint64
	step         Step
	draft        Draft
	availability []string
	lastError    string
	inFlight     bool
}

// New creates a wizard in the closed state.
func New(client BookingClient, logger *logging.Logger) *Wizard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Wizard{client: client, logger: logger}
}

// Open (re)starts the flow. State from any previous open is discarded
// unconditionally; the prefill, when present, decides the landing step.
func (w *Wizard) Open(prefill *Prefill) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.open = true
	w.inFlight = false
	w.lastError = ""
	w.availability = nil
	w.draft, w.step = normalizePrefill(prefill)
	return w.snapshotLocked()
}

// Close discards all wizard state. Any in-flight request result is dropped
// when it lands.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.open = false
	w.inFlight = false
	w.lastError = ""
	w.availability = nil
	w.draft = Draft{}
	w.step = StepWhenParty
}

// State returns the current snapshot.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wizard) snapshotLocked() State {
	s := State{
		Open:      w.open,
		Step:      w.step,
		Draft:     w.draft,
		LastError: w.lastError,
		InFlight:  w.inFlight,
	}
	if w.availability != nil {
		s.Availability = append([]string(nil), w.availability...)
	}
	return s
}

// SetWhenParty updates date and party size on step 1.
func (w *Wizard) SetWhenParty(date string, partySize int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	if w.step != StepWhenParty {
		return ErrWrongStep
	}
	if w.inFlight {
		return ErrRequestInFlight
	}
	w.lastError = ""
	w.draft.Date = date
	w.draft.PartySize = partySize
	return nil
}

// SetDetails updates the free-text fields. Valid on any step while open;
// values persist across step changes.
func (w *Wizard) SetDetails(name, contact, notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	w.draft.Name = name
	w.draft.Contact = contact
	w.draft.Notes = notes
	return nil
}

// RequestAvailability fetches bookable times for the current date and party
// size. On success with a non-empty slot set the wizard moves to step 2; a
// previously held time that the backend no longer offers is cleared. Empty
// availability and transport failures both keep the wizard on step 1 with
// lastError set.
func (w *Wizard) RequestAvailability(ctx context.Context) error {
	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.step != StepWhenParty {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.inFlight {
		w.mu.Unlock()
		return ErrRequestInFlight
	}

	w.lastError = ""
	w.availability = nil

	if w.draft.Date == "" || w.draft.PartySize < 1 {
		w.lastError = "Enter date + party size first."
		w.mu.Unlock()
		return nil
	}

	w.inFlight = true
	gen := w.generation
	date, party := w.draft.Date, w.draft.PartySize
	w.mu.Unlock()

	// Time is deliberately unselected at this point.
	slots, err := w.client.CheckAvailability(ctx, date, party, "")

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		// Wizard was closed or reopened while the request ran; drop the
		// result on the floor.
		w.logger.Debug("discarding stale availability response", "date", date)
		return nil
	}
	w.inFlight = false

	if err != nil {
		w.lastError = err.Error()
		return nil
	}

	times := booking.UniqueAvailableTimes(slots)
	if len(times) == 0 {
		w.lastError = "No availability returned for that date/party size."
		return nil
	}

	w.availability = times
	if w.draft.Time != "" && !contains(times, w.draft.Time) {
		w.draft.Time = ""
	}
	w.step = StepPickTime
	return nil
}

// SelectTime records the chosen time on step 2. The step does not change;
// the visitor continues explicitly via Next.
func (w *Wizard) SelectTime(t string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	if w.step != StepPickTime {
		return ErrWrongStep
	}
	if !contains(w.availability, t) {
		return fmt.Errorf("wizard: time %q is not an offered slot", t)
	}
	w.lastError = ""
	w.draft.Time = t
	return nil
}

// Next advances from step 2 to step 3. It requires a selected time and no
// in-flight request.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	if w.step != StepPickTime {
		return ErrWrongStep
	}
	if w.inFlight {
		return ErrRequestInFlight
	}
	if w.draft.Time == "" {
		w.lastError = "Pick a time first."
		return nil
	}
	w.lastError = ""
	w.step = StepDetails
	return nil
}

// Back moves one step towards step 1 without clearing entered values.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrClosed
	}
	if w.inFlight {
		return ErrRequestInFlight
	}
	if w.step == StepWhenParty {
		return ErrWrongStep
	}
	w.lastError = ""
	w.step--
	return nil
}

// Confirm validates the draft and commits the booking. Missing required
// fields abort locally with lastError listing them in fixed order; backend
// failures leave the draft intact for resubmission. On success the OnBooked
// callback fires and the wizard closes itself.
func (w *Wizard) Confirm(ctx context.Context) (*booking.CommitResult, error) {
	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.step != StepDetails {
		w.mu.Unlock()
		return nil, ErrWrongStep
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrRequestInFlight
	}

	w.lastError = ""

	if missing := missingForConfirm(w.draft); len(missing) > 0 {
		w.lastError = fmt.Sprintf("Missing: %s.", strings.Join(missing, ", "))
		w.mu.Unlock()
		return nil, nil
	}

	w.inFlight = true
	gen := w.generation
	req := booking.CreateRequest{
		Date:            w.draft.Date,
		Time:            w.draft.Time,
		PartySize:       w.draft.PartySize,
		Name:            strings.TrimSpace(w.draft.Name),
		Contact:         strings.TrimSpace(w.draft.Contact),
		SpecialRequests: strings.TrimSpace(w.draft.Notes),
	}
	w.mu.Unlock()

	res, err := w.client.CreateBooking(ctx, req)

	w.mu.Lock()
	if w.generation != gen {
		w.mu.Unlock()
		w.logger.Debug("discarding stale booking response", "date", req.Date, "time", req.Time)
		return nil, nil
	}
	w.inFlight = false

	if err != nil {
		w.lastError = err.Error()
		w.mu.Unlock()
		return nil, nil
	}

	// Close before releasing the lock so a concurrent observer never sees a
	// committed-but-open wizard.
	w.generation++
	w.open = false
	w.availability = nil
	w.draft = Draft{}
	w.step = StepWhenParty
	onBooked := w.OnBooked
	w.mu.Unlock()

	if onBooked != nil {
		onBooked(res)
	}
	return res, nil
}

// missingForConfirm reports absent required fields in presentation order:
// name, date, time, party size.
func missingForConfirm(d Draft) []string {
	var out []string
	if strings.TrimSpace(d.Name) == "" {
		out = append(out, "name")
	}
	if d.Date == "" {
		out = append(out, "date")
	}
	if d.Time == "" {
		out = append(out, "time")
	}
	if d.PartySize < 1 {
		out = append(out, "party size")
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
