package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Not Sent")
	require.NoError(t, err)
	assert.Equal(t, StatusNotSent, s)
	assert.False(t, s.IsResponse())

	_, err = ParseStatus("Maybe")
	assert.Error(t, err)
}

func TestNewRowDefaultsStatus(t *testing.T) {
	r := NewRow(InvitationPayload{InvitationID: 1, FirstName: "Dana"})
	assert.Equal(t, StatusNotSent, r.Status)
	assert.False(t, r.Sent())
	assert.Equal(t, "Dana", r.DisplayName())
}

func TestApplyToggleRoundTrip(t *testing.T) {
	orig := Row{InvitationID: 1, FirstName: "Dana", LastName: "Levi", Status: StatusNotSent}
	r := orig

	r.ApplyToggle(Invitation{Status: StatusPending, DateInvited: "12 Jun 2024", DateInvitedISO: "2024-06-12"})
	assert.True(t, r.Sent())
	assert.Equal(t, "12 Jun 2024", r.DateInvited)

	r.ApplyStatus(Invitation{Status: StatusAttending, DateResponded: "13 Jun 2024", DateRespondedISO: "2024-06-13"})
	assert.Equal(t, "13 Jun 2024", r.DateResponded)

	r.ApplyToggle(Invitation{Status: StatusNotSent})
	assert.Equal(t, orig, r)
}

func TestGender(t *testing.T) {
	assert.Equal(t, "male", GenderUnset.Bucket())
	assert.Equal(t, "female", GenderFemale.Bucket())
	assert.Equal(t, "(M)", GenderMale.Tag())
	assert.Equal(t, "", GenderUnset.Tag())
	assert.False(t, Gender("other").IsValid())
	assert.Equal(t, "(M)", Gender("male").Tag())
	assert.Equal(t, "(F)", Gender("FEMALE").Tag())
	assert.Equal(t, "", Gender("other").Tag())
}

func TestInvitationUpdateBody(t *testing.T) {
	st := StatusDeclined
	data, err := json.Marshal(InvitationUpdate{Status: &st})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Declined"}`, string(data))

	data, err = json.Marshal(InvitationUpdate{ToggleSend: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"toggle_send":true}`, string(data))
}

func TestRowSelectionNotSerialized(t *testing.T) {
	data, err := json.Marshal(Row{InvitationID: 3, Selected: true})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Selected")
	assert.NotContains(t, string(data), "selected")
}
