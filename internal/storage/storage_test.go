package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-table/internal/models"
)

func row(invID, guestID int, status models.Status) models.Row {
	return models.Row{InvitationID: invID, GuestID: guestID, FirstName: "G", Status: status}
}

func TestAddRowKeepsOrderAndReplaces(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.AddRow(row(1, 10, models.StatusNotSent)))
	require.NoError(t, s.AddRow(row(2, 20, models.StatusPending)))
	require.NoError(t, s.SetSelected(1, true))

	updated := row(1, 10, models.StatusAttending)
	require.NoError(t, s.AddRow(updated))

	rows := s.GetAllRows()
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].InvitationID)
	assert.Equal(t, models.StatusAttending, rows[0].Status)
	assert.True(t, rows[0].Selected, "replacing a row keeps its selection")
}

func TestAddRowRejectsSecondInvitationForGuest(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.AddRow(row(1, 10, models.StatusNotSent)))

	err := s.AddRow(row(2, 10, models.StatusNotSent))
	assert.ErrorIs(t, err, ErrDuplicateGuest)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveRowReindexes(t *testing.T) {
	s := NewStorage()
	for i := 1; i <= 4; i++ {
		require.NoError(t, s.AddRow(row(i, i*10, models.StatusNotSent)))
	}

	require.NoError(t, s.RemoveRow(2))
	assert.ErrorIs(t, s.RemoveRow(2), ErrNotFound)

	got, err := s.GetRow(4)
	require.NoError(t, err)
	assert.Equal(t, 40, got.GuestID)

	_, err = s.UpdateRow(3, func(r *models.Row) { r.Notes = "late" })
	require.NoError(t, err)
	got, _ = s.GetRow(3)
	assert.Equal(t, "late", got.Notes)
}

func TestSelection(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.AddRow(row(1, 10, models.StatusNotSent)))
	require.NoError(t, s.AddRow(row(2, 20, models.StatusPending)))
	require.NoError(t, s.AddRow(row(3, 30, models.StatusPending)))

	s.SelectAll(true)
	assert.Len(t, s.GetSelectedRows(), 3)

	require.NoError(t, s.SetSelected(2, false))
	selected := s.GetSelectedRows()
	require.Len(t, selected, 2)
	assert.Equal(t, 1, selected[0].InvitationID)
	assert.Equal(t, 3, selected[1].InvitationID)

	assert.ErrorIs(t, s.SetSelected(99, true), ErrNotFound)
}

func TestGetRowsByStatusAndUpdateGuest(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Reset([]models.Row{
		row(1, 10, models.StatusNotSent),
		row(2, 20, models.StatusPending),
		row(3, 30, models.StatusPending),
	}))

	assert.Len(t, s.GetRowsByStatus(models.StatusPending), 2)
	assert.Empty(t, s.GetRowsByStatus(models.StatusDeclined))

	n := s.UpdateGuest(20, func(r *models.Row) { r.Gender = models.GenderFemale })
	assert.Equal(t, 1, n)
	got, _ := s.GetRow(2)
	assert.Equal(t, models.GenderFemale, got.Gender)
}
