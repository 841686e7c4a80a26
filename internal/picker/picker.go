// Package picker lets the user attach guests from the guest database to
// the current event.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"rsvp-table/internal/menu"
	"rsvp-table/internal/models"
	"rsvp-table/internal/query"
	"rsvp-table/internal/table"
)

var (
	ErrDisabled    = errors.New("guest already invited")
	ErrUnknownSort = errors.New("unknown sort")
	ErrNotOpen     = errors.New("picker is not open")
)

// ModalID is the id of the picker overlay in a menu set
const ModalID = "guest-picker"

// Picker columns
const (
	ColFirst = iota
	ColLast
)

// Source lists the guest database for an event
type Source interface {
	AvailableGuests(ctx context.Context, eventID int) ([]models.AvailableGuest, error)
}

// Adder invites existing guests
type Adder interface {
	AddExisting(ctx context.Context, guestIDs []int) ([]table.RowHandle, error)
}

// Entry is one guest of the picker list. Already invited guests are checked
// and disabled.
type Entry struct {
	Guest    models.AvailableGuest
	Checked  bool
	Disabled bool
}

// Name is the display name of the guest
func (e Entry) Name() string {
	return models.DisplayName(e.Guest.FirstName, e.Guest.LastName)
}

// item adapts an Entry to query.Item
type item struct{ Entry }

func (it item) SearchText() string { return it.Name() }

func (it item) Attr(name string) string {
	if name == "data-gender" {
		return string(it.Guest.Gender)
	}
	return ""
}

func (it item) Column(i int) string {
	switch i {
	case ColFirst:
		return it.Guest.FirstName
	case ColLast:
		return it.Guest.LastName
	}
	return ""
}

func (it item) Checked(int) bool { return it.Entry.Checked }

// Sort options offered by the picker, first-asc being the default
var sorts = map[string]query.Sort{
	"first-asc":   {Key: query.SortKey{Column: ColFirst, Type: query.SortText}, Dir: query.Asc},
	"first-desc":  {Key: query.SortKey{Column: ColFirst, Type: query.SortText}, Dir: query.Desc},
	"last-asc":    {Key: query.SortKey{Column: ColLast, Type: query.SortText}, Dir: query.Asc},
	"last-desc":   {Key: query.SortKey{Column: ColLast, Type: query.SortText}, Dir: query.Desc},
	"gender-asc":  {Key: query.SortKey{Type: query.SortGender}, Dir: query.Asc},
	"gender-desc": {Key: query.SortKey{Type: query.SortGender}, Dir: query.Desc},
}

// DefaultSort is the sort applied when the picker opens
const DefaultSort = "first-asc"

// Picker is the guest database picker of one event
type Picker struct {
	src     Source
	add     Adder
	eventID int
	modals  *menu.Set
	log     zerolog.Logger

	mu      sync.Mutex
	open    bool
	entries []Entry
	search  string
	gender  models.Gender
	sort    string
}

// New creates a picker. modals may be nil.
func New(src Source, add Adder, eventID int, modals *menu.Set, logger zerolog.Logger) *Picker {
	return &Picker{
		src:     src,
		add:     add,
		eventID: eventID,
		modals:  modals,
		log:     logger.With().Str("component", "picker").Logger(),
		sort:    DefaultSort,
	}
}

// Open fetches the guest database and resets search, filter and sort
func (p *Picker) Open(ctx context.Context) error {
	guests, err := p.src.AvailableGuests(ctx, p.eventID)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to load guests")
		return fmt.Errorf("failed to load guests: %w", err)
	}

	entries := make([]Entry, len(guests))
	for i, g := range guests {
		entries[i] = Entry{Guest: g, Checked: g.AlreadyInvited, Disabled: g.AlreadyInvited}
	}

	p.mu.Lock()
	p.entries = entries
	p.search, p.gender, p.sort = "", models.GenderUnset, DefaultSort
	p.open = true
	p.mu.Unlock()

	if p.modals != nil {
		p.modals.Open(ModalID)
	}
	p.log.Debug().Int("guests", len(entries)).Msg("Picker opened")
	return nil
}

// Close discards the picker state
func (p *Picker) Close() {
	p.mu.Lock()
	p.open = false
	p.entries = nil
	p.mu.Unlock()

	if p.modals != nil {
		p.modals.Close(ModalID)
	}
}

// IsOpen reports whether the picker is showing
func (p *Picker) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// SetQuery sets the search text
func (p *Picker) SetQuery(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.search = strings.TrimSpace(q)
}

// SetGender filters on a gender; GenderUnset shows everyone
func (p *Picker) SetGender(g models.Gender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gender = g
}

// SetSort picks one of first-asc, first-desc, last-asc, last-desc,
// gender-asc and gender-desc
func (p *Picker) SetSort(name string) error {
	if _, ok := sorts[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSort, name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sort = name
	return nil
}

func (p *Picker) state() query.State {
	st := query.State{Search: p.search}
	if p.gender != models.GenderUnset {
		st.Filters = []query.Filter{query.ByAttr("data-gender", string(p.gender))}
	}
	s := sorts[p.sort]
	st.Sort = &s
	return st
}

// Visible returns the entries that pass search and filter, sorted
func (p *Picker) Visible() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	visible := query.Apply(p.items(), p.state())
	out := make([]Entry, len(visible))
	for i, it := range visible {
		out[i] = it.Entry
	}
	return out
}

// Toggle flips the check of one guest
func (p *Picker) Toggle(guestID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.entries {
		if p.entries[i].Guest.ID != guestID {
			continue
		}
		if p.entries[i].Disabled {
			return fmt.Errorf("%w: %d", ErrDisabled, guestID)
		}
		p.entries[i].Checked = !p.entries[i].Checked
		return nil
	}
	return fmt.Errorf("guest %d not in picker", guestID)
}

// SelectAllVisible checks or clears every visible enabled entry
func (p *Picker) SelectAllVisible(checked bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	visible := make(map[int]bool)
	for _, e := range query.Apply(p.items(), p.state()) {
		visible[e.Guest.ID] = true
	}
	n := 0
	for i := range p.entries {
		if p.entries[i].Disabled || !visible[p.entries[i].Guest.ID] {
			continue
		}
		p.entries[i].Checked = checked
		n++
	}
	return n
}

// CheckedIDs returns the guests to invite: checked and not disabled
func (p *Picker) CheckedIDs() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ids []int
	for _, e := range p.entries {
		if e.Checked && !e.Disabled {
			ids = append(ids, e.Guest.ID)
		}
	}
	return ids
}

// Confirm invites the checked guests and closes the picker. With nothing
// checked it only closes.
func (p *Picker) Confirm(ctx context.Context) ([]table.RowHandle, error) {
	if !p.IsOpen() {
		return nil, ErrNotOpen
	}
	ids := p.CheckedIDs()
	if len(ids) == 0 {
		p.Close()
		return nil, nil
	}

	handles, err := p.add.AddExisting(ctx, ids)
	if err != nil {
		return handles, err
	}
	p.log.Info().Int("guests", len(ids)).Msg("Guests invited from database")
	p.Close()
	return handles, nil
}

func (p *Picker) items() []item {
	out := make([]item, len(p.entries))
	for i, e := range p.entries {
		out[i] = item{e}
	}
	return out
}
