package storage

import (
	"errors"
	"fmt"
	"sync"

	"rsvp-table/internal/models"
)

var (
	ErrNotFound       = errors.New("invitation not found")
	ErrDuplicateGuest = errors.New("guest already invited to this event")
)

// Storage holds the invitation rows of one table in display insertion order
type Storage struct {
	mu    sync.RWMutex
	rows  []models.Row
	index map[int]int
}

// NewStorage creates an empty row store
func NewStorage() *Storage {
	return &Storage{
		rows:  make([]models.Row, 0),
		index: make(map[int]int),
	}
}

// AddRow adds a new row or replaces an existing one with the same invitation ID.
// A replaced row keeps its position and selection.
func (s *Storage) AddRow(row models.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[row.InvitationID]; ok {
		row.Selected = s.rows[i].Selected
		s.rows[i] = row
		return nil
	}

	for _, r := range s.rows {
		if r.GuestID == row.GuestID {
			return fmt.Errorf("%w: guest %d (invitation %d)", ErrDuplicateGuest, row.GuestID, r.InvitationID)
		}
	}

	s.index[row.InvitationID] = len(s.rows)
	s.rows = append(s.rows, row)
	return nil
}

// GetRow retrieves a row by invitation ID
func (s *Storage) GetRow(invitationID int) (models.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[invitationID]
	if !ok {
		return models.Row{}, fmt.Errorf("%w: %d", ErrNotFound, invitationID)
	}
	return s.rows[i], nil
}

// UpdateRow applies fn to the stored row and returns the updated copy
func (s *Storage) UpdateRow(invitationID int, fn func(*models.Row)) (models.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[invitationID]
	if !ok {
		return models.Row{}, fmt.Errorf("%w: %d", ErrNotFound, invitationID)
	}
	fn(&s.rows[i])
	s.rows[i].InvitationID = invitationID
	return s.rows[i], nil
}

// UpdateGuest applies fn to every row of the given guest and returns how many changed
func (s *Storage) UpdateGuest(guestID int, fn func(*models.Row)) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.rows {
		if s.rows[i].GuestID == guestID {
			fn(&s.rows[i])
			n++
		}
	}
	return n
}

// RemoveRow deletes a row
func (s *Storage) RemoveRow(invitationID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[invitationID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, invitationID)
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	delete(s.index, invitationID)
	for j := i; j < len(s.rows); j++ {
		s.index[s.rows[j].InvitationID] = j
	}
	return nil
}

// Reset replaces all rows
func (s *Storage) Reset(rows []models.Row) error {
	s.mu.Lock()
	s.rows = make([]models.Row, 0, len(rows))
	s.index = make(map[int]int, len(rows))
	s.mu.Unlock()

	var errs []error
	for _, r := range rows {
		if err := s.AddRow(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetAllRows returns a copy of all rows
func (s *Storage) GetAllRows() []models.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.Row, len(s.rows))
	copy(rows, s.rows)
	return rows
}

// GetRowsByStatus returns rows filtered by status
func (s *Storage) GetRowsByStatus(status models.Status) []models.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Row
	for _, r := range s.rows {
		if r.Status == status {
			result = append(result, r)
		}
	}
	return result
}

// GetSelectedRows returns the rows currently selected for a batch
func (s *Storage) GetSelectedRows() []models.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Row
	for _, r := range s.rows {
		if r.Selected {
			result = append(result, r)
		}
	}
	return result
}

// SetSelected marks one row as selected or not
func (s *Storage) SetSelected(invitationID int, selected bool) error {
	_, err := s.UpdateRow(invitationID, func(r *models.Row) {
		r.Selected = selected
	})
	return err
}

// SelectAll sets the selection of every row
func (s *Storage) SelectAll(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		s.rows[i].Selected = selected
	}
}

// Len returns the number of rows
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
