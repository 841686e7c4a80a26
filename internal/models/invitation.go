package models

import "fmt"

// Status represents the state of an invitation
type Status string

const (
	StatusNotSent   Status = "Not Sent"
	StatusPending   Status = "Pending"
	StatusAttending Status = "Attending"
	StatusDeclined  Status = "Declined"
)

// ResponseStatuses are the values offered by the status selector of a sent invitation
var ResponseStatuses = []Status{StatusAttending, StatusPending, StatusDeclined}

// IsValid reports whether s is one of the four known statuses
func (s Status) IsValid() bool {
	return s == StatusNotSent || s.IsResponse()
}

// IsResponse reports whether s can be chosen on a sent invitation
func (s Status) IsResponse() bool {
	switch s {
	case StatusAttending, StatusPending, StatusDeclined:
		return true
	}
	return false
}

// ParseStatus accepts the wire value of a status
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// Date layouts used by the backend
const (
	DisplayDateLayout = "02 Jan 2006"
	ISODateLayout     = "2006-01-02"
)

// Channels the invitation can be dispatched through
var Channels = []string{"WhatsApp", "Email", "Call", "Live", "SMS", "Other"}

// InvitationPayload is the brief invitation projection returned by list and
// bulk endpoints. It carries the guest fields inline.
type InvitationPayload struct {
	InvitationID     int    `json:"invitation_id"`
	GuestID          int    `json:"guest_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Gender           Gender `json:"gender"`
	Status           Status `json:"status"`
	Channel          string `json:"channel"`
	Notes            string `json:"notes"`
	DateInvited      string `json:"date_invited"`
	DateInvitedISO   string `json:"date_invited_iso"`
	DateResponded    string `json:"date_responded"`
	DateRespondedISO string `json:"date_responded_iso"`
}

// Invitation is the full projection returned by the invitation update endpoint
type Invitation struct {
	ID               int      `json:"id"`
	EventID          int      `json:"event_id"`
	GuestID          int      `json:"guest_id"`
	Status           Status   `json:"status"`
	Channel          string   `json:"channel"`
	Notes            string   `json:"notes"`
	DateInvited      string   `json:"date_invited"`
	DateInvitedISO   string   `json:"date_invited_iso"`
	DateResponded    string   `json:"date_responded"`
	DateRespondedISO string   `json:"date_responded_iso"`
	Guest            GuestRef `json:"guest"`
}

// GuestRef is the guest embedded in an invitation
type GuestRef struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    Gender `json:"gender"`
	FullName  string `json:"full_name"`
}

// InvitationUpdate is the body of PUT /invitations/{id}
type InvitationUpdate struct {
	ToggleSend bool    `json:"toggle_send,omitempty"`
	Status     *Status `json:"status,omitempty"`
	Channel    *string `json:"channel,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// Row is the client-side state of one invitation in the table
type Row struct {
	InvitationID     int    `json:"invitation_id"`
	GuestID          int    `json:"guest_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Gender           Gender `json:"gender"`
	Status           Status `json:"status"`
	Channel          string `json:"channel"`
	Notes            string `json:"notes"`
	DateInvited      string `json:"date_invited"`
	DateInvitedISO   string `json:"date_invited_iso"`
	DateResponded    string `json:"date_responded"`
	DateRespondedISO string `json:"date_responded_iso"`

	Selected bool `json:"-"`
}

// NewRow builds a row from a backend payload
func NewRow(p InvitationPayload) Row {
	status := p.Status
	if status == "" {
		status = StatusNotSent
	}
	return Row{
		InvitationID:     p.InvitationID,
		GuestID:          p.GuestID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Gender:           p.Gender,
		Status:           status,
		Channel:          p.Channel,
		Notes:            p.Notes,
		DateInvited:      p.DateInvited,
		DateInvitedISO:   p.DateInvitedISO,
		DateResponded:    p.DateResponded,
		DateRespondedISO: p.DateRespondedISO,
	}
}

// Sent reports whether the invitation was dispatched. A row is sent exactly
// when its status is not NotSent.
func (r Row) Sent() bool {
	return r.Status != StatusNotSent
}

// DisplayName of the invited guest
func (r Row) DisplayName() string {
	return DisplayName(r.FirstName, r.LastName)
}

// ApplyToggle takes status and dates from the server answer to a toggle_send.
// Unsending clears both dates.
func (r *Row) ApplyToggle(inv Invitation) {
	r.Status = inv.Status
	if inv.Status == StatusNotSent {
		r.DateInvited, r.DateInvitedISO = "", ""
		r.DateResponded, r.DateRespondedISO = "", ""
		return
	}
	r.DateInvited, r.DateInvitedISO = inv.DateInvited, inv.DateInvitedISO
}

// ApplyStatus takes status and response date from the server answer to a
// status update.
func (r *Row) ApplyStatus(inv Invitation) {
	r.Status = inv.Status
	r.DateResponded, r.DateRespondedISO = inv.DateResponded, inv.DateRespondedISO
}
