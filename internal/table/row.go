package table

import (
	"context"
	"errors"
	"fmt"

	"rsvp-table/internal/models"
	"rsvp-table/internal/render"
	"rsvp-table/internal/storage"
)

// RowHandle is a rendered row with its behaviours wired to the table
type RowHandle struct {
	t  *Table
	id int
}

// RenderRow stores a backend payload as a row and returns its handle. A
// payload for an invitation already in the table replaces that row in place.
func (t *Table) RenderRow(p models.InvitationPayload) (RowHandle, error) {
	h, err := t.addRow(p)
	if err != nil {
		return RowHandle{}, err
	}
	t.refresh()
	return h, nil
}

func (t *Table) addRow(p models.InvitationPayload) (RowHandle, error) {
	if err := t.store.AddRow(models.NewRow(p)); err != nil {
		return RowHandle{}, err
	}
	return RowHandle{t: t, id: p.InvitationID}, nil
}

// Handle returns the handle of an existing row
func (t *Table) Handle(invitationID int) (RowHandle, error) {
	if _, err := t.store.GetRow(invitationID); err != nil {
		return RowHandle{}, err
	}
	return RowHandle{t: t, id: invitationID}, nil
}

// ID is the invitation ID of the row
func (h RowHandle) ID() int { return h.id }

// View projects the current row state
func (h RowHandle) View() (render.RowView, error) {
	r, err := h.t.store.GetRow(h.id)
	if err != nil {
		return render.RowView{}, err
	}
	return render.Row(r), nil
}

func (h RowHandle) ToggleSent(ctx context.Context) (models.Row, error) {
	return h.t.ToggleSent(ctx, h.id)
}

func (h RowHandle) SetStatus(ctx context.Context, s models.Status) (models.Row, error) {
	return h.t.SetStatus(ctx, h.id, s)
}

func (h RowHandle) EditNotes(text string) error {
	return h.t.EditNotes(h.id, text)
}

func (h RowHandle) EditChannel(ctx context.Context, channel string) (models.Row, error) {
	return h.t.EditChannel(ctx, h.id, channel)
}

func (h RowHandle) Remove(ctx context.Context, confirm func(n int) bool) error {
	return h.t.Remove(ctx, h.id, confirm)
}

func (h RowHandle) OpenDetail() (Detail, error) {
	return h.t.OpenDetail(h.id)
}

func (h RowHandle) OpenGuestDetail(ctx context.Context) (GuestDetail, error) {
	r, err := h.t.store.GetRow(h.id)
	if err != nil {
		return GuestDetail{}, err
	}
	return h.t.OpenGuestDetail(ctx, r.GuestID)
}

// ToggleMenu opens or closes the row's kebab menu
func (h RowHandle) ToggleMenu() bool {
	return h.t.Menus.Toggle(menuKey(h.id))
}

func (h RowHandle) Select(selected bool) error {
	return h.t.Select(h.id, selected)
}

// ToggleSent flips the sent state on the server and applies its answer
func (t *Table) ToggleSent(ctx context.Context, invitationID int) (models.Row, error) {
	r, err := t.toggle(ctx, invitationID)
	if err != nil {
		return r, err
	}
	t.refresh()
	return r, nil
}

func (t *Table) toggle(ctx context.Context, invitationID int) (models.Row, error) {
	if _, err := t.store.GetRow(invitationID); err != nil {
		return models.Row{}, err
	}

	inv, err := t.backend.ToggleSend(ctx, invitationID)
	if err != nil {
		t.log.Error().Err(err).Int("invitation_id", invitationID).Msg("Failed to toggle sent")
		return models.Row{}, fmt.Errorf("failed to toggle sent on %d: %w", invitationID, err)
	}

	r, err := t.store.UpdateRow(invitationID, func(r *models.Row) { r.ApplyToggle(*inv) })
	if err != nil {
		return models.Row{}, err
	}
	t.log.Debug().Int("invitation_id", invitationID).Str("status", string(r.Status)).Msg("Sent toggled")
	return r, nil
}

// SetStatus changes the response status of a sent invitation
func (t *Table) SetStatus(ctx context.Context, invitationID int, status models.Status) (models.Row, error) {
	r, err := t.setStatus(ctx, invitationID, status)
	if err != nil {
		return r, err
	}
	t.refresh()
	return r, nil
}

func (t *Table) setStatus(ctx context.Context, invitationID int, status models.Status) (models.Row, error) {
	if !status.IsResponse() {
		return models.Row{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	r, err := t.store.GetRow(invitationID)
	if err != nil {
		return models.Row{}, err
	}
	if !r.Sent() {
		return r, fmt.Errorf("%w: %d", ErrNotSent, invitationID)
	}

	inv, err := t.backend.SetStatus(ctx, invitationID, status)
	if err != nil {
		t.log.Error().Err(err).Int("invitation_id", invitationID).Str("status", string(status)).Msg("Failed to set status")
		return models.Row{}, fmt.Errorf("failed to set status on %d: %w", invitationID, err)
	}
	return t.store.UpdateRow(invitationID, func(r *models.Row) { r.ApplyStatus(*inv) })
}

// EditNotes records the notes text and saves it once edits have been quiet
// for the notes delay. Only the last text of a burst reaches the server.
func (t *Table) EditNotes(invitationID int, text string) error {
	if _, err := t.store.UpdateRow(invitationID, func(r *models.Row) { r.Notes = text }); err != nil {
		return err
	}
	t.notes.Schedule(notesKey(invitationID), func() {
		if _, err := t.backend.SetInvitationNotes(context.Background(), invitationID, text); err != nil {
			t.log.Error().Err(err).Int("invitation_id", invitationID).Msg("Failed to save notes")
		}
	})
	return nil
}

// EditChannel saves the dispatch channel of an invitation
func (t *Table) EditChannel(ctx context.Context, invitationID int, channel string) (models.Row, error) {
	if _, err := t.store.GetRow(invitationID); err != nil {
		return models.Row{}, err
	}
	inv, err := t.backend.SetChannel(ctx, invitationID, channel)
	if err != nil {
		t.log.Error().Err(err).Int("invitation_id", invitationID).Msg("Failed to save channel")
		return models.Row{}, fmt.Errorf("failed to save channel on %d: %w", invitationID, err)
	}
	return t.store.UpdateRow(invitationID, func(r *models.Row) { r.Channel = inv.Channel })
}

// Remove deletes an invitation after confirm agrees. A nil confirm skips
// the prompt.
func (t *Table) Remove(ctx context.Context, invitationID int, confirm func(n int) bool) error {
	if _, err := t.store.GetRow(invitationID); err != nil {
		return err
	}
	if confirm != nil && !confirm(1) {
		return ErrCancelled
	}
	if err := t.remove(ctx, invitationID); err != nil {
		return err
	}
	t.refresh()
	return nil
}

func (t *Table) remove(ctx context.Context, invitationID int) error {
	if err := t.backend.DeleteInvitation(ctx, invitationID); err != nil {
		t.log.Error().Err(err).Int("invitation_id", invitationID).Msg("Failed to remove invitation")
		return fmt.Errorf("failed to remove %d: %w", invitationID, err)
	}

	t.notes.Cancel(notesKey(invitationID))
	t.Menus.Close(menuKey(invitationID))
	t.closeDetailFor(invitationID)

	if err := t.store.RemoveRow(invitationID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	t.log.Info().Int("invitation_id", invitationID).Msg("Invitation removed")
	return nil
}

// Select marks a row for the next batch
func (t *Table) Select(invitationID int, selected bool) error {
	return t.store.SetSelected(invitationID, selected)
}

// SelectAll selects or clears every row
func (t *Table) SelectAll(selected bool) {
	t.store.SelectAll(selected)
}

// ClearSelection deselects every row
func (t *Table) ClearSelection() {
	t.store.SelectAll(false)
}

// Selected returns the invitation IDs of the selected rows
func (t *Table) Selected() []int {
	rows := t.store.GetSelectedRows()
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.InvitationID)
	}
	return ids
}
