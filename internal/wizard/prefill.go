package wizard

import (
	"github.com/smartserveai/widget-gateway/internal/booking"
)

// Prefill carries partial booking fields extracted from a chat exchange.
// Every field is optional; PartySize is a pointer so "not provided" and
// "provided as zero" stay distinguishable.
type Prefill struct {
	PartySize       *int   `json:"party_size,omitempty"`
	Date            string `json:"date,omitempty"` // YYYY-MM-DD
	Time            string `json:"time,omitempty"` // "19:00" or "19:00:00"
	Name            string `json:"name,omitempty"`
	Contact         string `json:"contact,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

const defaultPartySize = 2

// normalizePrefill turns an optional prefill into the initial draft and the
// step the wizard should land on. When the prefill already carries date,
// a positive party size, and a time, the visitor goes straight to details;
// the prefilled time is trusted as-is, no availability pre-fetch.
func normalizePrefill(p *Prefill) (Draft, Step) {
	draft := Draft{PartySize: defaultPartySize}
	if p == nil {
		return draft, StepWhenParty
	}

	if p.PartySize != nil {
		draft.PartySize = *p.PartySize
	}
	draft.Date = p.Date
	if p.Time != "" {
		draft.Time = booking.NormalizeTime(p.Time)
	}
	draft.Name = p.Name
	draft.Contact = p.Contact
	draft.Notes = p.SpecialRequests

	hasDate := p.Date != ""
	hasParty := p.PartySize != nil && *p.PartySize > 0
	hasTime := p.Time != ""
	if hasDate && hasParty && hasTime {
		return draft, StepDetails
	}
	return draft, StepWhenParty
}
