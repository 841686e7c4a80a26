package table

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"rsvp-table/internal/models"
)

const (
	modalDetail      = "detail"
	modalGuestDetail = "guest-detail"
)

// Detail is the edit card of one row
type Detail struct {
	InvitationID  int
	GuestID       int
	FirstName     string
	LastName      string
	Gender        models.Gender
	Sent          bool
	Status        models.Status
	StatusEnabled bool
	DateInvited   string
	DateResponded string
	Notes         string
}

func detailOf(r models.Row) Detail {
	d := Detail{
		InvitationID:  r.InvitationID,
		GuestID:       r.GuestID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Gender:        r.Gender,
		Sent:          r.Sent(),
		Status:        r.Status,
		StatusEnabled: r.Sent(),
		DateInvited:   r.DateInvited,
		DateResponded: r.DateResponded,
		Notes:         r.Notes,
	}
	if !d.Sent {
		d.Status = models.StatusPending
	}
	return d
}

// OpenDetail opens the edit card of a row
func (t *Table) OpenDetail(invitationID int) (Detail, error) {
	r, err := t.store.GetRow(invitationID)
	if err != nil {
		return Detail{}, err
	}
	d := detailOf(r)

	t.mu.Lock()
	t.detail = &d
	t.mu.Unlock()

	t.Menus.CloseAll()
	t.Modals.Open(modalDetail)
	return d, nil
}

// CurrentDetail returns the open edit card, refreshed from the row
func (t *Table) CurrentDetail() (Detail, bool) {
	t.mu.Lock()
	d := t.detail
	t.mu.Unlock()
	if d == nil {
		return Detail{}, false
	}
	r, err := t.store.GetRow(d.InvitationID)
	if err != nil {
		return Detail{}, false
	}
	return detailOf(r), true
}

// CloseDetail closes the edit card
func (t *Table) CloseDetail() {
	t.mu.Lock()
	t.detail = nil
	t.mu.Unlock()
	t.Modals.Close(modalDetail)
}

func (t *Table) closeDetailFor(invitationID int) {
	t.mu.Lock()
	open := t.detail != nil && t.detail.InvitationID == invitationID
	t.mu.Unlock()
	if open {
		t.CloseDetail()
	}
}

// SaveDetail saves the guest fields and the notes of the open card, then
// closes it. An empty first name is rejected before any request.
func (t *Table) SaveDetail(ctx context.Context, d Detail) (models.Row, error) {
	first := strings.TrimSpace(d.FirstName)
	last := strings.TrimSpace(d.LastName)
	notes := strings.TrimSpace(d.Notes)
	if first == "" {
		return models.Row{}, fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if d.Gender != models.GenderUnset && !d.Gender.IsValid() {
		return models.Row{}, fmt.Errorf("%w: gender %q", ErrValidation, d.Gender)
	}
	if _, err := t.store.GetRow(d.InvitationID); err != nil {
		return models.Row{}, err
	}

	patch := models.GuestPatch{FirstName: &first, LastName: &last}
	if d.Gender != models.GenderUnset {
		gender := d.Gender
		patch.Gender = &gender
	}

	var guest *models.Guest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		guest, err = t.backend.UpdateGuest(gctx, d.GuestID, patch)
		return err
	})
	g.Go(func() error {
		_, err := t.backend.SetInvitationNotes(gctx, d.InvitationID, notes)
		return err
	})
	if err := g.Wait(); err != nil {
		t.log.Error().Err(err).Int("invitation_id", d.InvitationID).Msg("Failed to save detail")
		return models.Row{}, fmt.Errorf("failed to save detail of %d: %w", d.InvitationID, err)
	}

	t.notes.Cancel(notesKey(d.InvitationID))
	t.applyGuest(*guest)
	r, err := t.store.UpdateRow(d.InvitationID, func(r *models.Row) { r.Notes = notes })
	if err != nil {
		return models.Row{}, err
	}

	t.refresh()
	t.CloseDetail()
	return r, nil
}

// applyGuest copies name and gender of a guest onto its rows
func (t *Table) applyGuest(g models.Guest) {
	t.store.UpdateGuest(g.ID, func(r *models.Row) {
		r.FirstName = g.FirstName
		r.LastName = g.LastName
		r.Gender = g.Gender
	})
}

// GuestDetail is the guest card: the stored guest plus its editable fields
type GuestDetail struct {
	Guest     models.Guest
	FirstName string
	LastName  string
	Gender    models.Gender
	Notes     string
	IsMe      bool
}

// OpenGuestDetail fetches a guest with its invitation summary
func (t *Table) OpenGuestDetail(ctx context.Context, guestID int) (GuestDetail, error) {
	g, err := t.backend.GetGuest(ctx, guestID)
	if err != nil {
		t.log.Error().Err(err).Int("guest_id", guestID).Msg("Failed to load guest")
		return GuestDetail{}, fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}
	gd := GuestDetail{
		Guest:     *g,
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Gender:    g.Gender,
		Notes:     g.Notes,
		IsMe:      g.IsMe,
	}

	t.mu.Lock()
	t.guestDetail = &gd
	t.mu.Unlock()

	t.Menus.CloseAll()
	t.Modals.Open(modalGuestDetail)
	return gd, nil
}

// CloseGuestDetail closes the guest card
func (t *Table) CloseGuestDetail() {
	t.mu.Lock()
	t.guestDetail = nil
	t.mu.Unlock()
	t.Modals.Close(modalGuestDetail)
}

// SaveGuestDetail saves the guest card and updates the rows of that guest
func (t *Table) SaveGuestDetail(ctx context.Context, gd GuestDetail) (models.Guest, error) {
	first := strings.TrimSpace(gd.FirstName)
	last := strings.TrimSpace(gd.LastName)
	notes := strings.TrimSpace(gd.Notes)
	if first == "" {
		return models.Guest{}, fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if gd.Gender != models.GenderUnset && !gd.Gender.IsValid() {
		return models.Guest{}, fmt.Errorf("%w: gender %q", ErrValidation, gd.Gender)
	}

	isMe := gd.IsMe
	patch := models.GuestPatch{FirstName: &first, LastName: &last, Notes: &notes, IsMe: &isMe}
	if gd.Gender != models.GenderUnset {
		gender := gd.Gender
		patch.Gender = &gender
	}

	g, err := t.backend.UpdateGuest(ctx, gd.Guest.ID, patch)
	if err != nil {
		t.log.Error().Err(err).Int("guest_id", gd.Guest.ID).Msg("Failed to save guest")
		return models.Guest{}, fmt.Errorf("failed to save guest %d: %w", gd.Guest.ID, err)
	}

	t.applyGuest(*g)
	t.refresh()
	t.CloseGuestDetail()
	return *g, nil
}
