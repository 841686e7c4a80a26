// Package menu tracks which overflow menu or overlay is open. At most one
// member of a Set is open at a time.
package menu

import "sync"

// Set of mutually exclusive menus
type Set struct {
	mu   sync.Mutex
	open string
}

// Open opens id and closes every other menu
func (s *Set) Open(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = id
}

// Toggle flips id and returns its new state. Opening closes the others.
func (s *Set) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open == id {
		s.open = ""
		return false
	}
	s.open = id
	return true
}

// Close closes id if it is open
func (s *Set) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == id {
		s.open = ""
	}
}

// CloseAll closes whatever is open, like a click outside any menu
func (s *Set) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = ""
}

// IsOpen reports whether id is open
func (s *Set) IsOpen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id != "" && s.open == id
}

// Current returns the open menu or ""
func (s *Set) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
