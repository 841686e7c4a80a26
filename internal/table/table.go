// Package table is the invitation table of one event. It keeps the rows in a
// store, talks to the backend for every mutation and recomputes the summary
// after each round trip.
package table

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rsvp-table/internal/debounce"
	"rsvp-table/internal/menu"
	"rsvp-table/internal/models"
	"rsvp-table/internal/render"
	"rsvp-table/internal/storage"
	"rsvp-table/internal/summary"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotSent       = errors.New("invitation not sent")
	ErrInvalidStatus = errors.New("invalid status")
	ErrCancelled     = errors.New("cancelled")
)

// Default quiet periods of the autosaved fields
const (
	DefaultNotesDelay      = 400 * time.Millisecond
	DefaultEventNotesDelay = 500 * time.Millisecond
)

// Backend is the part of the REST surface the table uses
type Backend interface {
	GetEvent(ctx context.Context, eventID int) (*models.Event, error)
	UpdateEventNotes(ctx context.Context, eventID int, notes string) (*models.Event, error)
	ToggleSend(ctx context.Context, invitationID int) (*models.Invitation, error)
	SetStatus(ctx context.Context, invitationID int, status models.Status) (*models.Invitation, error)
	SetInvitationNotes(ctx context.Context, invitationID int, notes string) (*models.Invitation, error)
	SetChannel(ctx context.Context, invitationID int, channel string) (*models.Invitation, error)
	DeleteInvitation(ctx context.Context, invitationID int) error
	GetGuest(ctx context.Context, guestID int) (*models.Guest, error)
	UpdateGuest(ctx context.Context, guestID int, patch models.GuestPatch) (*models.Guest, error)
	BulkAddGuests(ctx context.Context, eventID int, guestIDs []int) ([]models.InvitationPayload, error)
	BulkCreateAndInvite(ctx context.Context, eventID int, guests []models.NewGuest) ([]models.InvitationPayload, error)
}

// Notifier is told about every finished batch
type Notifier interface {
	BatchDone(ctx context.Context, res BatchResult, s summary.Summary) error
}

// Options configure a Table
type Options struct {
	EventID int
	// Target overrides the event's attendance target when > 0
	Target          int
	NotesDelay      time.Duration
	EventNotesDelay time.Duration
	// BatchLimit caps concurrent row chains of a batch; 0 means no cap
	BatchLimit int
	Notifier   Notifier
	// OnRefresh is called with every recomputed summary
	OnRefresh func(summary.Summary)
}

// Table is the view-model of one event's invitation table
type Table struct {
	backend Backend
	store   *storage.Storage
	log     zerolog.Logger
	opts    Options

	notes      *debounce.Debouncer
	eventNotes *debounce.Debouncer

	// Menus holds the per-row kebab menus and the page menus
	Menus menu.Set
	// Modals holds the row detail, guest detail and picker overlays
	Modals menu.Set

	mu          sync.Mutex
	event       models.Event
	summary     summary.Summary
	detail      *Detail
	guestDetail *GuestDetail
	batchAction Action
}

// New creates an empty table for opts.EventID
func New(backend Backend, opts Options, logger zerolog.Logger) *Table {
	if opts.NotesDelay <= 0 {
		opts.NotesDelay = DefaultNotesDelay
	}
	if opts.EventNotesDelay <= 0 {
		opts.EventNotesDelay = DefaultEventNotesDelay
	}
	t := &Table{
		backend:    backend,
		store:      storage.NewStorage(),
		log:        logger.With().Str("component", "table").Int("event_id", opts.EventID).Logger(),
		opts:       opts,
		notes:      debounce.New(opts.NotesDelay),
		eventNotes: debounce.New(opts.EventNotesDelay),
	}
	t.summary = summary.Compute(nil, opts.Target)
	return t
}

// Load fetches the event and replaces the rows with its invitations
func (t *Table) Load(ctx context.Context) error {
	ev, err := t.backend.GetEvent(ctx, t.opts.EventID)
	if err != nil {
		t.log.Error().Err(err).Msg("Failed to load event")
		return fmt.Errorf("failed to load event %d: %w", t.opts.EventID, err)
	}

	rows := make([]models.Row, 0, len(ev.Invitations))
	for _, p := range ev.Invitations {
		rows = append(rows, models.NewRow(p))
	}

	t.mu.Lock()
	t.event = *ev
	t.event.Invitations = nil
	t.mu.Unlock()

	if err := t.store.Reset(rows); err != nil {
		t.log.Warn().Err(err).Msg("Dropped invalid rows")
	}
	t.log.Info().Int("rows", len(rows)).Msg("Table loaded")
	t.refresh()
	return nil
}

// Event returns the loaded event
func (t *Table) Event() models.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.event
}

// Target returns the attendance target in use
func (t *Table) Target() int {
	if t.opts.Target > 0 {
		return t.opts.Target
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.event.Target()
}

// Rows returns the rows in display order
func (t *Table) Rows() []models.Row {
	return t.store.GetAllRows()
}

// RowsByStatus returns the rows with one status in display order
func (t *Table) RowsByStatus(status models.Status) []models.Row {
	return t.store.GetRowsByStatus(status)
}

// Row returns one row
func (t *Table) Row(invitationID int) (models.Row, error) {
	return t.store.GetRow(invitationID)
}

// Summary returns the last computed summary
func (t *Table) Summary() summary.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

// refresh recomputes the summary from the full row set
func (t *Table) refresh() summary.Summary {
	s := summary.Compute(t.store.GetAllRows(), t.Target())

	t.mu.Lock()
	t.summary = s
	t.mu.Unlock()

	if t.opts.OnRefresh != nil {
		t.opts.OnRefresh(s)
	}
	return s
}

// SetNotifier replaces the notifier told about finished batches
func (t *Table) SetNotifier(n Notifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts.Notifier = n
}

// Views renders every row
func (t *Table) Views() []render.RowView {
	return render.Rows(t.store.GetAllRows())
}

// FlushPending persists every debounced edit now
func (t *Table) FlushPending() {
	t.notes.Flush()
	t.eventNotes.Flush()
}

// PendingEdits returns the number of debounced edits waiting to be saved
func (t *Table) PendingEdits() int {
	return t.notes.Pending() + t.eventNotes.Pending()
}

func notesKey(invitationID int) string {
	return "notes:" + strconv.Itoa(invitationID)
}

func menuKey(invitationID int) string {
	return "row:" + strconv.Itoa(invitationID)
}
