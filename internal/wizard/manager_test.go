package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartserveai/widget-gateway/internal/booking"
)

func TestManagerOpenCreatesPerSession(t *testing.T) {
	m := NewManager(&fakeClient{}, nil, nil)

	st := m.Open("sess-1", nil)
	assert.True(t, st.Open)
	assert.Equal(t, 1, m.Len())

	m.Open("sess-2", nil)
	assert.Equal(t, 2, m.Len())

	w1, ok := m.Get("sess-1")
	require.True(t, ok)
	assert.True(t, w1.State().Open)

	_, ok = m.Get("sess-3")
	assert.False(t, ok)
}

func TestManagerReopenResetsExistingWizard(t *testing.T) {
	fc := &fakeClient{slots: available("19:00")}
	m := NewManager(fc, nil, nil)
	m.Open("sess-1", nil)

	w, _ := m.Get("sess-1")
	require.NoError(t, w.SetWhenParty("2024-05-01", 2))
	require.NoError(t, w.RequestAvailability(context.Background()))
	require.NotEmpty(t, w.State().Availability)

	st := m.Open("sess-1", nil)
	assert.Empty(t, st.Availability)
	assert.Equal(t, 1, m.Len(), "reopen must reuse the session slot")
}

func TestManagerOnBookedCarriesSessionID(t *testing.T) {
	fc := &fakeClient{result: &booking.CommitResult{ConfirmationCode: "XYZ"}}

	var gotSession string
	var gotResult *booking.CommitResult
	m := NewManager(fc, func(sessionID string, res *booking.CommitResult) {
		gotSession = sessionID
		gotResult = res
	}, nil)

	m.Open("sess-9", &Prefill{Date: "2024-05-01", PartySize: intPtr(2), Time: "19:00", Name: "Ada"})
	w, _ := m.Get("sess-9")
	res, err := w.Confirm(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "sess-9", gotSession)
	require.NotNil(t, gotResult)
	assert.Equal(t, "XYZ", gotResult.ConfirmationCode)
}

func TestManagerClose(t *testing.T) {
	m := NewManager(&fakeClient{}, nil, nil)
	m.Open("sess-1", nil)
	w, _ := m.Get("sess-1")

	m.Close("sess-1")
	assert.Equal(t, 0, m.Len())
	assert.False(t, w.State().Open)

	// Closing an unknown session is a no-op.
	m.Close("sess-unknown")
}
