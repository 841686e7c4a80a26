package table

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rsvp-table/internal/models"
	"rsvp-table/internal/query"
	"rsvp-table/internal/render"
)

// BulkCreate creates guests and invites them to the event. Entries with a
// blank first name are dropped; with nothing left no request is made.
func (t *Table) BulkCreate(ctx context.Context, guests []models.NewGuest) ([]RowHandle, error) {
	valid := make([]models.NewGuest, 0, len(guests))
	for _, g := range guests {
		g.FirstName = strings.TrimSpace(g.FirstName)
		g.LastName = strings.TrimSpace(g.LastName)
		if g.FirstName == "" {
			continue
		}
		if g.Gender != models.GenderUnset && !g.Gender.IsValid() {
			return nil, fmt.Errorf("%w: gender %q", ErrValidation, g.Gender)
		}
		valid = append(valid, g)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: at least one guest with a first name is required", ErrValidation)
	}

	added, err := t.backend.BulkCreateAndInvite(ctx, t.opts.EventID, valid)
	if err != nil {
		t.log.Error().Err(err).Int("guests", len(valid)).Msg("Failed to create guests")
		return nil, fmt.Errorf("failed to create guests: %w", err)
	}
	return t.renderAdded(added)
}

// AddExisting invites guests from the guest database
func (t *Table) AddExisting(ctx context.Context, guestIDs []int) ([]RowHandle, error) {
	if len(guestIDs) == 0 {
		return nil, nil
	}
	added, err := t.backend.BulkAddGuests(ctx, t.opts.EventID, guestIDs)
	if err != nil {
		t.log.Error().Err(err).Ints("guest_ids", guestIDs).Msg("Failed to add guests")
		return nil, fmt.Errorf("failed to add guests: %w", err)
	}
	return t.renderAdded(added)
}

func (t *Table) renderAdded(added []models.InvitationPayload) ([]RowHandle, error) {
	handles := make([]RowHandle, 0, len(added))
	var errs []error
	for _, p := range added {
		h, err := t.addRow(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handles = append(handles, h)
	}
	t.log.Info().Int("rows", len(handles)).Msg("Invitations added")
	t.refresh()
	return handles, errors.Join(errs...)
}

// EditEventNotes saves the event notes once edits have been quiet for the
// event notes delay
func (t *Table) EditEventNotes(text string) {
	t.mu.Lock()
	t.event.Notes = text
	t.mu.Unlock()

	t.eventNotes.Schedule("event-notes", func() {
		if _, err := t.backend.UpdateEventNotes(context.Background(), t.opts.EventID, text); err != nil {
			t.log.Error().Err(err).Msg("Failed to save event notes")
		}
	})
}

// View renders the rows that pass the search and filters of st, in the
// order of its sort
func (t *Table) View(st query.State) []render.RowView {
	return query.Apply(t.Views(), st)
}
