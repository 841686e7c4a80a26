package picker

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-table/internal/api"
	"rsvp-table/internal/api/apitest"
	"rsvp-table/internal/menu"
	"rsvp-table/internal/models"
	"rsvp-table/internal/table"
)

type fixture struct {
	srv    *apitest.Server
	table  *table.Table
	picker *Picker
	modals *menu.Set
	ids    map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	ev := srv.AddEvent("Wedding", 0)
	ids := map[string]int{
		"dana": srv.AddGuest("Dana", "Levi", models.GenderFemale),
		"avi":  srv.AddGuest("Avi", "Cohen", models.GenderMale),
		"bat":  srv.AddGuest("Bat", "Ami", models.GenderFemale),
		"ron":  srv.AddGuest("Ron", "Zur", models.GenderMale),
	}
	srv.Invite(ev, ids["avi"], models.StatusPending)

	client := api.NewClient(api.Config{BaseURL: srv.URL}, zerolog.Nop())
	tbl := table.New(client, table.Options{EventID: ev}, zerolog.Nop())
	require.NoError(t, tbl.Load(context.Background()))

	modals := &menu.Set{}
	return &fixture{
		srv:    srv,
		table:  tbl,
		picker: New(client, tbl, ev, modals, zerolog.Nop()),
		modals: modals,
		ids:    ids,
	}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name()
	}
	return out
}

func TestOpenMarksAlreadyInvited(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.picker.Open(context.Background()))
	assert.True(t, f.modals.IsOpen(ModalID))

	visible := f.picker.Visible()
	assert.Equal(t, []string{"Avi Cohen", "Bat Ami", "Dana Levi", "Ron Zur"}, names(visible))
	assert.True(t, visible[0].Checked)
	assert.True(t, visible[0].Disabled)

	err := f.picker.Toggle(f.ids["avi"])
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, f.picker.CheckedIDs())
}

func TestSearchFilterSort(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.picker.Open(context.Background()))

	f.picker.SetQuery("LE")
	assert.Equal(t, []string{"Dana Levi"}, names(f.picker.Visible()))

	f.picker.SetQuery("")
	f.picker.SetGender(models.GenderFemale)
	assert.Equal(t, []string{"Bat Ami", "Dana Levi"}, names(f.picker.Visible()))

	require.NoError(t, f.picker.SetSort("first-desc"))
	assert.Equal(t, []string{"Dana Levi", "Bat Ami"}, names(f.picker.Visible()))

	f.picker.SetGender(models.GenderUnset)
	require.NoError(t, f.picker.SetSort("last-asc"))
	assert.Equal(t, []string{"Bat Ami", "Avi Cohen", "Dana Levi", "Ron Zur"}, names(f.picker.Visible()))

	require.NoError(t, f.picker.SetSort("gender-asc"))
	visible := f.picker.Visible()
	assert.Equal(t, models.GenderFemale, visible[0].Guest.Gender)
	assert.Equal(t, models.GenderMale, visible[3].Guest.Gender)

	assert.ErrorIs(t, f.picker.SetSort("age-asc"), ErrUnknownSort)
}

func TestSelectAllVisibleSkipsDisabledAndHidden(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.picker.Open(context.Background()))

	f.picker.SetGender(models.GenderMale)
	n := f.picker.SelectAllVisible(true)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{f.ids["ron"]}, f.picker.CheckedIDs())
}

func TestConfirmInvitesChecked(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.picker.Open(context.Background()))
	f.srv.ResetRequests()

	require.NoError(t, f.picker.Toggle(f.ids["dana"]))
	require.NoError(t, f.picker.Toggle(f.ids["ron"]))

	handles, err := f.picker.Confirm(context.Background())
	require.NoError(t, err)
	assert.Len(t, handles, 2)
	assert.False(t, f.picker.IsOpen())
	assert.False(t, f.modals.IsOpen(ModalID))
	assert.Equal(t, 3, f.table.Summary().Rows)

	reqs := f.srv.RequestsTo("POST", "/invitations/bulk")
	require.Len(t, reqs, 1)
	assert.Equal(t, []any{float64(f.ids["dana"]), float64(f.ids["ron"])}, reqs[0].Body["guest_ids"])
}

func TestConfirmWithNothingChecked(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.picker.Open(context.Background()))
	f.srv.ResetRequests()

	handles, err := f.picker.Confirm(context.Background())
	require.NoError(t, err)
	assert.Empty(t, handles)
	assert.Empty(t, f.srv.Requests())
	assert.False(t, f.picker.IsOpen())

	_, err = f.picker.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
}
