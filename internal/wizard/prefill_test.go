package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestNormalizePrefillNil(t *testing.T) {
	draft, step := normalizePrefill(nil)
	assert.Equal(t, StepWhenParty, step)
	assert.Equal(t, Draft{PartySize: 2}, draft)
}

func TestNormalizePrefillStepSelection(t *testing.T) {
	tests := []struct {
		name string
		p    Prefill
		want Step
	}{
		{"all of date/party/time", Prefill{Date: "2024-05-01", PartySize: intPtr(4), Time: "19:00"}, StepDetails},
		{"name not required for jump", Prefill{Date: "2024-05-01", PartySize: intPtr(2), Time: "19:00", Name: "Ada"}, StepDetails},
		{"missing time", Prefill{Date: "2024-05-01", PartySize: intPtr(4)}, StepWhenParty},
		{"missing date", Prefill{PartySize: intPtr(4), Time: "19:00"}, StepWhenParty},
		{"missing party", Prefill{Date: "2024-05-01", Time: "19:00"}, StepWhenParty},
		{"zero party", Prefill{Date: "2024-05-01", PartySize: intPtr(0), Time: "19:00"}, StepWhenParty},
		{"negative party", Prefill{Date: "2024-05-01", PartySize: intPtr(-1), Time: "19:00"}, StepWhenParty},
		{"empty prefill", Prefill{}, StepWhenParty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, step := normalizePrefill(&tt.p)
			assert.Equal(t, tt.want, step)
		})
	}
}

func TestNormalizePrefillCopiesFields(t *testing.T) {
	draft, _ := normalizePrefill(&Prefill{
		Date:            "2024-05-01",
		PartySize:       intPtr(6),
		Time:            "19:00:00",
		Name:            "Ada",
		Contact:         "ada@example.com",
		SpecialRequests: "window seat",
	})
	assert.Equal(t, "2024-05-01", draft.Date)
	assert.Equal(t, 6, draft.PartySize)
	assert.Equal(t, "19:00", draft.Time, "time must be normalized")
	assert.Equal(t, "Ada", draft.Name)
	assert.Equal(t, "ada@example.com", draft.Contact)
	assert.Equal(t, "window seat", draft.Notes)
}

func TestNormalizePrefillUnparseableTimePassedThrough(t *testing.T) {
	draft, step := normalizePrefill(&Prefill{Time: " sevenish "})
	assert.Equal(t, "sevenish", draft.Time)
	assert.Equal(t, StepWhenParty, step)
}

func TestNormalizePrefillDefaultPartyKeptWhenAbsent(t *testing.T) {
	draft, _ := normalizePrefill(&Prefill{Date: "2024-05-01"})
	assert.Equal(t, 2, draft.PartySize)
}
