package chat

import (
	"encoding/json"

	"github.com/smartserveai/widget-gateway/internal/wizard"
)

// ActionKind enumerates the structured actions the assistant may attach to a
// reply. The set is closed; anything unrecognized decodes to ActionNone so a
// newer assistant cannot break an older gateway.
type ActionKind string

const (
	ActionNone            ActionKind = "NONE"
	ActionOpenBookingForm ActionKind = "OPEN_BOOKING_FORM"
)

// Action is a server-driven instruction for the widget host.
type Action struct {
	Kind    ActionKind
	Prefill *wizard.Prefill
}

type actionWire struct {
	Type    string          `json:"type"`
	Prefill *wizard.Prefill `json:"prefill,omitempty"`
}

// UnmarshalJSON decodes the wire shape {type, prefill}, mapping unknown
// kinds to ActionNone.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w actionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch ActionKind(w.Type) {
	case ActionOpenBookingForm:
		a.Kind = ActionOpenBookingForm
		a.Prefill = w.Prefill
	default:
		a.Kind = ActionNone
		a.Prefill = nil
	}
	return nil
}

// MarshalJSON emits the wire shape used by the assistant service.
func (a Action) MarshalJSON() ([]byte, error) {
	kind := a.Kind
	if kind == "" {
		kind = ActionNone
	}
	return json.Marshal(actionWire{Type: string(kind), Prefill: a.Prefill})
}
