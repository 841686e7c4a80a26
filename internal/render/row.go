package render

import (
	"strconv"
	"strings"

	"rsvp-table/internal/models"
)

// Table columns, in page order
const (
	ColSelect = iota
	ColGuest
	ColSent
	ColStatus
	ColNotes
	ColActions
)

// Row attributes usable by filters and sorters
const (
	AttrInvitationID = "data-inv-id"
	AttrGuestID      = "data-guest-id"
	AttrGender       = "data-gender"
	AttrSent         = "data-sent"
	AttrDateInvited  = "data-date-invited"
	AttrResponded    = "data-date-responded"
)

// WidgetKind distinguishes the two shapes of the status cell
type WidgetKind int

const (
	WidgetLabel WidgetKind = iota
	WidgetSelector
)

// Status style classes. Exactly one applies to a selector.
const (
	ClassNotSent   = "status-not-sent"
	ClassAttending = "status-attending"
	ClassPending   = "status-pending"
	ClassDeclined  = "status-declined"
)

// StatusWidget is the status cell of a row: a static label while the
// invitation is not sent, otherwise a selector preset to the current value.
type StatusWidget struct {
	Kind    WidgetKind
	Value   models.Status
	Options []models.Status
	Class   string
}

// Editable reports whether the status can be changed from the widget
func (w StatusWidget) Editable() bool {
	return w.Kind == WidgetSelector
}

// NewStatusWidget builds the widget for a status
func NewStatusWidget(s models.Status) StatusWidget {
	if s == models.StatusNotSent || !s.IsResponse() {
		return StatusWidget{Kind: WidgetLabel, Value: models.StatusNotSent, Class: ClassNotSent}
	}
	return StatusWidget{
		Kind:    WidgetSelector,
		Value:   s,
		Options: append([]models.Status(nil), models.ResponseStatuses...),
		Class:   StatusClass(s),
	}
}

// StatusClass returns the style class for a selector value
func StatusClass(s models.Status) string {
	switch s {
	case models.StatusAttending:
		return ClassAttending
	case models.StatusPending:
		return ClassPending
	case models.StatusDeclined:
		return ClassDeclined
	}
	return ClassNotSent
}

// RowView is the projection of a row as presented in the table
type RowView struct {
	InvitationID  int
	GuestID       int
	Name          string
	Gender        models.Gender
	GenderTag     string
	Sent          bool
	Status        StatusWidget
	Channel       string
	Notes         string
	DateInvited   string
	DateResponded string
	Selected      bool
}

// Row projects a stored row. It is a pure function of the row.
func Row(r models.Row) RowView {
	return RowView{
		InvitationID:  r.InvitationID,
		GuestID:       r.GuestID,
		Name:          r.DisplayName(),
		Gender:        r.Gender,
		GenderTag:     r.Gender.Tag(),
		Sent:          r.Sent(),
		Status:        NewStatusWidget(r.Status),
		Channel:       r.Channel,
		Notes:         r.Notes,
		DateInvited:   r.DateInvited,
		DateResponded: r.DateResponded,
		Selected:      r.Selected,
	}
}

// Rows projects a slice of rows
func Rows(rows []models.Row) []RowView {
	views := make([]RowView, len(rows))
	for i, r := range rows {
		views[i] = Row(r)
	}
	return views
}

// SearchText is the visible text of the row
func (v RowView) SearchText() string {
	parts := []string{v.Name}
	if v.GenderTag != "" {
		parts = append(parts, v.GenderTag)
	}
	parts = append(parts, string(v.Status.Value))
	return strings.Join(parts, " ")
}

// Attr returns a row attribute by name
func (v RowView) Attr(name string) string {
	switch name {
	case AttrInvitationID:
		return strconv.Itoa(v.InvitationID)
	case AttrGuestID:
		return strconv.Itoa(v.GuestID)
	case AttrGender:
		return string(v.Gender)
	case AttrSent:
		return strconv.FormatBool(v.Sent)
	case AttrDateInvited:
		return v.DateInvited
	case AttrResponded:
		return v.DateResponded
	}
	return ""
}

// Column returns the text value of a cell; the status cell yields the
// selector value.
func (v RowView) Column(i int) string {
	switch i {
	case ColGuest:
		return v.Name
	case ColSent:
		if v.Sent {
			return "Yes"
		}
		return "No"
	case ColStatus:
		return string(v.Status.Value)
	case ColNotes:
		return v.Notes
	}
	return ""
}

// Checked returns the state of a checkbox cell
func (v RowView) Checked(i int) bool {
	switch i {
	case ColSelect:
		return v.Selected
	case ColSent:
		return v.Sent
	}
	return false
}
