package models

import "strings"

// Gender of a guest as stored by the backend
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderUnset  Gender = ""
)

// IsValid reports whether g is a value the backend accepts on write
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Bucket returns the summary bucket for the gender. An unset gender is
// counted as male, anything else is lower-cased as is.
func (g Gender) Bucket() string {
	if g == GenderUnset {
		return "male"
	}
	return strings.ToLower(string(g))
}

// Tag is the short marker shown next to a guest name
func (g Gender) Tag() string {
	switch {
	case strings.EqualFold(string(g), string(GenderMale)):
		return "(M)"
	case strings.EqualFold(string(g), string(GenderFemale)):
		return "(F)"
	}
	return ""
}

// Guest represents an entry of the guest database
type Guest struct {
	ID                int               `json:"id"`
	FirstName         string            `json:"first_name"`
	LastName          string            `json:"last_name"`
	Gender            Gender            `json:"gender"`
	IsMe              bool              `json:"is_me"`
	Notes             string            `json:"notes"`
	FullName          string            `json:"full_name"`
	DateCreated       *string           `json:"date_created"`
	DateEdited        *string           `json:"date_edited"`
	InvitationSummary InvitationSummary `json:"invitation_summary"`
	Invitations       []GuestInvitation `json:"invitations"`
}

// InvitationSummary is computed by the backend across all events of a guest
type InvitationSummary struct {
	Invited   int `json:"invited"`
	Attending int `json:"attending"`
	Pending   int `json:"pending"`
	Declined  int `json:"declined"`
}

// GuestInvitation is one sent invitation listed on the guest detail
type GuestInvitation struct {
	EventName string `json:"event_name"`
	EventDate string `json:"event_date"`
	Status    Status `json:"status"`
}

// GuestPatch is a partial guest update; nil fields are left untouched
type GuestPatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	IsMe      *bool   `json:"is_me,omitempty"`
}

// NewGuest is the input of the bulk create endpoints
type NewGuest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    Gender `json:"gender"`
	Notes     string `json:"notes"`
}

// AvailableGuest is a guest as listed by the database picker
type AvailableGuest struct {
	ID             int    `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Gender         Gender `json:"gender"`
	AlreadyInvited bool   `json:"already_invited"`
}

// DisplayName joins first and last name, omitting an empty last name
func DisplayName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
