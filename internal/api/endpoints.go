package api

import (
	"context"
	"fmt"
	"net/http"

	"rsvp-table/internal/models"
)

// GetEvent fetches an event with its brief invitation list
func (c *Client) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	var ev models.Event
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateEventNotes saves the notes of an event
func (c *Client) UpdateEventNotes(ctx context.Context, eventID int, notes string) (*models.Event, error) {
	var ev models.Event
	body := map[string]string{"notes": notes}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/events/%d", eventID), body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListInvitations returns the invitation rows of an event
func (c *Client) ListInvitations(ctx context.Context, eventID int) ([]models.InvitationPayload, error) {
	var out []models.InvitationPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d/invitations", eventID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableGuests lists the guest database flagged with already_invited for an event
func (c *Client) AvailableGuests(ctx context.Context, eventID int) ([]models.AvailableGuest, error) {
	var out []models.AvailableGuest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d/available-guests", eventID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkAddGuests invites existing guests and returns the new rows
func (c *Client) BulkAddGuests(ctx context.Context, eventID int, guestIDs []int) ([]models.InvitationPayload, error) {
	var out []models.InvitationPayload
	body := map[string][]int{"guest_ids": guestIDs}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/events/%d/invitations/bulk", eventID), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkCreateAndInvite creates guests, invites them and returns the new rows
func (c *Client) BulkCreateAndInvite(ctx context.Context, eventID int, guests []models.NewGuest) ([]models.InvitationPayload, error) {
	var out []models.InvitationPayload
	body := map[string][]models.NewGuest{"guests": guests}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/events/%d/invitations/bulk-create", eventID), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInvitation sends a raw invitation update
func (c *Client) UpdateInvitation(ctx context.Context, invitationID int, upd models.InvitationUpdate) (*models.Invitation, error) {
	var inv models.Invitation
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/invitations/%d", invitationID), upd, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ToggleSend flips the sent state of an invitation
func (c *Client) ToggleSend(ctx context.Context, invitationID int) (*models.Invitation, error) {
	return c.UpdateInvitation(ctx, invitationID, models.InvitationUpdate{ToggleSend: true})
}

// SetStatus changes the response status of a sent invitation
func (c *Client) SetStatus(ctx context.Context, invitationID int, status models.Status) (*models.Invitation, error) {
	return c.UpdateInvitation(ctx, invitationID, models.InvitationUpdate{Status: &status})
}

// SetInvitationNotes saves invitation notes
func (c *Client) SetInvitationNotes(ctx context.Context, invitationID int, notes string) (*models.Invitation, error) {
	return c.UpdateInvitation(ctx, invitationID, models.InvitationUpdate{Notes: &notes})
}

// SetChannel saves the dispatch channel
func (c *Client) SetChannel(ctx context.Context, invitationID int, channel string) (*models.Invitation, error) {
	return c.UpdateInvitation(ctx, invitationID, models.InvitationUpdate{Channel: &channel})
}

// DeleteInvitation removes an invitation
func (c *Client) DeleteInvitation(ctx context.Context, invitationID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/invitations/%d", invitationID), nil, nil)
}

// GetGuest fetches a guest with its invitation summary
func (c *Client) GetGuest(ctx context.Context, guestID int) (*models.Guest, error) {
	var g models.Guest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/guests/%d", guestID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGuest applies a partial guest update
func (c *Client) UpdateGuest(ctx context.Context, guestID int, patch models.GuestPatch) (*models.Guest, error) {
	var g models.Guest
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/guests/%d", guestID), patch, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// BulkCreateGuests adds guests to the database without inviting them
func (c *Client) BulkCreateGuests(ctx context.Context, guests []models.NewGuest) ([]models.Guest, error) {
	var out []models.Guest
	body := map[string][]models.NewGuest{"guests": guests}
	if err := c.do(ctx, http.MethodPost, "/guests/bulk", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
