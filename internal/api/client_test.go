package api_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-table/internal/api"
	"rsvp-table/internal/api/apitest"
	"rsvp-table/internal/models"
)

func newClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.CSRFToken = "csrf-123"
	srv.Token = "secret"

	c := api.NewClient(api.Config{BaseURL: srv.URL, Token: "secret", CSRFToken: "csrf-123"}, zerolog.Nop())
	return c, srv
}

func TestToggleSendRoundTrip(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	ev := srv.AddEvent("Wedding", 0)
	g := srv.AddGuest("Dana", "Levi", models.GenderFemale)
	inv := srv.Invite(ev, g, models.StatusNotSent)

	out, err := c.ToggleSend(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, out.Status)
	assert.Equal(t, "12 Jun 2024", out.DateInvited)
	assert.Equal(t, "2024-06-12", out.DateInvitedISO)
	assert.Equal(t, "Dana Levi", out.Guest.FullName)

	out, err = c.ToggleSend(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotSent, out.Status)
	assert.Empty(t, out.DateInvited)
	assert.Empty(t, out.DateResponded)
}

func TestSetStatusDates(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	ev := srv.AddEvent("Wedding", 0)
	inv := srv.Invite(ev, srv.AddGuest("Avi", "Cohen", models.GenderMale), models.StatusPending)

	out, err := c.SetStatus(ctx, inv, models.StatusAttending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, out.Status)
	assert.Equal(t, "12 Jun 2024", out.DateResponded)

	out, err = c.SetStatus(ctx, inv, models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, out.DateResponded)
}

func TestSetStatusRejectsInvalid(t *testing.T) {
	c, srv := newClient(t)
	ev := srv.AddEvent("Wedding", 0)
	inv := srv.Invite(ev, srv.AddGuest("Avi", "", models.GenderMale), models.StatusPending)

	_, err := c.SetStatus(context.Background(), inv, models.Status("Maybe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrBadRequest)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid status", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestCSRFTokenRequired(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.CSRFToken = "expected"

	ev := srv.AddEvent("Wedding", 0)
	inv := srv.Invite(ev, srv.AddGuest("Avi", "", models.GenderMale), models.StatusNotSent)

	c := api.NewClient(api.Config{BaseURL: srv.URL, CSRFToken: "wrong"}, zerolog.Nop())
	_, err := c.ToggleSend(context.Background(), inv)
	assert.ErrorIs(t, err, api.ErrBadRequest)

	// reads do not carry the token
	_, err = c.GetEvent(context.Background(), ev)
	assert.NoError(t, err)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.Token = "secret"

	c := api.NewClient(api.Config{BaseURL: srv.URL}, zerolog.Nop())
	_, err := c.GetEvent(context.Background(), 1)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestGetEventAndNotes(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	ev := srv.AddEvent("Wedding", 120)
	srv.Invite(ev, srv.AddGuest("Dana", "Levi", models.GenderFemale), models.StatusAttending)
	srv.Invite(ev, srv.AddGuest("Avi", "Cohen", models.GenderMale), models.StatusNotSent)

	got, err := c.GetEvent(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, "Wedding", got.Name)
	assert.Equal(t, 120, got.Target())
	assert.Equal(t, 2, got.InvitationCount)
	assert.Equal(t, 1, got.AttendingCount)
	require.Len(t, got.Invitations, 2)
	assert.Equal(t, "Dana", got.Invitations[0].FirstName)

	_, err = c.UpdateEventNotes(ctx, ev, "bring cake")
	require.NoError(t, err)
	assert.Equal(t, "bring cake", srv.EventNotes(ev))

	_, err = c.GetEvent(ctx, 999)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestBulkAddSkipsAlreadyInvited(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	ev := srv.AddEvent("Wedding", 0)
	a := srv.AddGuest("Avi", "Cohen", models.GenderMale)
	b := srv.AddGuest("Bat", "Sheva", models.GenderFemale)
	srv.Invite(ev, a, models.StatusNotSent)

	avail, err := c.AvailableGuests(ctx, ev)
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.True(t, avail[0].AlreadyInvited)
	assert.False(t, avail[1].AlreadyInvited)

	added, err := c.BulkAddGuests(ctx, ev, []int{a, b})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, b, added[0].GuestID)
	assert.Equal(t, models.StatusNotSent, added[0].Status)
}

func TestBulkCreateAndInvite(t *testing.T) {
	c, srv := newClient(t)
	ev := srv.AddEvent("Wedding", 0)

	added, err := c.BulkCreateAndInvite(context.Background(), ev, []models.NewGuest{
		{FirstName: "Noa", LastName: "Bar", Gender: models.GenderFemale},
		{FirstName: "  "},
		{FirstName: "Ron"},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, "Noa", added[0].FirstName)
	assert.Equal(t, models.GenderMale, added[1].Gender)
}

func TestDeleteInvitation(t *testing.T) {
	c, srv := newClient(t)
	ev := srv.AddEvent("Wedding", 0)
	inv := srv.Invite(ev, srv.AddGuest("Avi", "", models.GenderMale), models.StatusNotSent)

	require.NoError(t, c.DeleteInvitation(context.Background(), inv))
	_, ok := srv.Invitation(inv)
	assert.False(t, ok)

	err := c.DeleteInvitation(context.Background(), inv)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestUpdateGuestPartial(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	a := srv.AddGuest("Avi", "Cohen", models.GenderMale)
	b := srv.AddGuest("Bat", "Sheva", models.GenderFemale)

	yes := true
	_, err := c.UpdateGuest(ctx, a, models.GuestPatch{IsMe: &yes})
	require.NoError(t, err)

	notes := "vegetarian"
	got, err := c.UpdateGuest(ctx, b, models.GuestPatch{IsMe: &yes, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, got.IsMe)
	assert.Equal(t, "vegetarian", got.Notes)
	assert.Equal(t, "Bat", got.FirstName)

	first, _ := srv.Guest(a)
	assert.False(t, first.IsMe, "is_me is exclusive")

	bad := models.Gender("Other")
	_, err = c.UpdateGuest(ctx, a, models.GuestPatch{Gender: &bad})
	assert.ErrorIs(t, err, api.ErrBadRequest)
}

func TestGetGuestSummary(t *testing.T) {
	c, srv := newClient(t)
	ev := srv.AddEvent("Wedding", 0)
	other := srv.AddEvent("Brit", 0)
	g := srv.AddGuest("Avi", "Cohen", models.GenderMale)
	srv.Invite(ev, g, models.StatusAttending)
	srv.Invite(other, g, models.StatusNotSent)

	got, err := c.GetGuest(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, 1, got.InvitationSummary.Invited)
	assert.Equal(t, 1, got.InvitationSummary.Attending)
	require.Len(t, got.Invitations, 1)
	assert.Equal(t, "Wedding", got.Invitations[0].EventName)
	assert.Equal(t, "12/06/2024", got.Invitations[0].EventDate)
}

func TestNotesUpdateSendsOnlyNotes(t *testing.T) {
	c, srv := newClient(t)
	ev := srv.AddEvent("Wedding", 0)
	inv := srv.Invite(ev, srv.AddGuest("Avi", "", models.GenderMale), models.StatusNotSent)

	_, err := c.SetInvitationNotes(context.Background(), inv, "call after 6")
	require.NoError(t, err)

	reqs := srv.RequestsTo("PUT", "/invitations/"+strconv.Itoa(inv))
	require.Len(t, reqs, 1)
	assert.Equal(t, "call after 6", reqs[0].Body["notes"])
	assert.NotContains(t, reqs[0].Body, "toggle_send")
}

func TestListInvitationsAndAvailableGuests(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	ev := srv.AddEvent("Wedding", 0)
	dana := srv.AddGuest("Dana", "Levi", models.GenderFemale)
	srv.AddGuest("Avi", "Cohen", models.GenderMale)
	srv.Invite(ev, dana, models.StatusPending)

	invs, err := c.ListInvitations(ctx, ev)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, dana, invs[0].GuestID)

	avail, err := c.AvailableGuests(ctx, ev)
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, "Avi", avail[0].FirstName)
	assert.False(t, avail[0].AlreadyInvited)
	assert.True(t, avail[1].AlreadyInvited)
}

func TestBulkCreateGuestsDefaultsGender(t *testing.T) {
	c, _ := newClient(t)

	out, err := c.BulkCreateGuests(context.Background(), []models.NewGuest{
		{FirstName: "Noa"},
		{FirstName: "  ", LastName: "Nobody"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Noa", out[0].FirstName)
	assert.Equal(t, models.GenderMale, out[0].Gender)
}
