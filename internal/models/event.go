package models

// Event is the event an invitation table belongs to
type Event struct {
	ID              int                 `json:"id"`
	Name            string              `json:"name"`
	EventType       string              `json:"event_type"`
	Location        string              `json:"location"`
	Date            string              `json:"date"`
	DateCreated     *string             `json:"date_created"`
	Notes           string              `json:"notes"`
	TargetAttendees *int                `json:"target_attendees"`
	InvitationCount int                 `json:"invitation_count"`
	AttendingCount  int                 `json:"attending_count"`
	Invitations     []InvitationPayload `json:"invitations,omitempty"`
}

// Target returns the attendance target or 0 when none is set
func (e Event) Target() int {
	if e.TargetAttendees == nil {
		return 0
	}
	return *e.TargetAttendees
}
