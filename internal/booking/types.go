// Package booking talks to the venue's reservations backend: availability
// lookups and booking creation, plus the slot/time helpers the wizard needs.
package booking

// AvailabilitySlot is a single candidate reservation time as returned by the
// backend. Slots with Available=false are never offered to the visitor.
type AvailabilitySlot struct {
	Time      string `json:"time_24h"`
	Available bool   `json:"available"`
}

// AvailabilityRequest is the check-availability request body.
type AvailabilityRequest struct {
	VenueID   string  `json:"venue_id"`
	Date      string  `json:"date"` // YYYY-MM-DD
	PartySize int     `json:"party_size"`
	Time      *string `json:"time_24h"` // nil when time is not yet chosen
}

// AvailabilityResponse wraps the slot list. A response with zero available
// slots means the venue is closed (or fully booked) for that date.
type AvailabilityResponse struct {
	Slots []AvailabilitySlot `json:"slots"`
}

// CreateRequest is the create-booking request body.
type CreateRequest struct {
	VenueID         string `json:"venue_id"`
	Date            string `json:"date"`
	Time            string `json:"time_24h"`
	PartySize       int    `json:"party_size"`
	Name            string `json:"name"`
	Contact         string `json:"contact"`
	SpecialRequests string `json:"special_requests"`
}

// CommitResult is the create-booking outcome. Status "requires_payment"
// carries a checkout URL and is not an error; the caller decides what to do
// with it.
type CommitResult struct {
	ConfirmationCode string `json:"confirmation_code,omitempty"`
	ManageURL        string `json:"manage_url,omitempty"`
	Status           string `json:"status,omitempty"` // "confirmed" or "requires_payment"
	CheckoutURL      string `json:"checkout_url,omitempty"`
	ExpiresAt        string `json:"expires_at,omitempty"`
}
