// Package state holds the per-row checked flags of a session. Rows are addressed by their
// index in the fetched snapshot, never by their position in a search result.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var ErrRowRange = errors.New("row index out of range")

type Store struct {
	mu      sync.RWMutex
	checked []bool
}

// New returns a store of n unchecked rows.
func New(n int) *Store {
	if n < 0 {
		n = 0
	}

	return &Store{
		checked: make([]bool, n),
	}
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.checked)
}

// Checked returns the flag for a row. Unknown rows read as unchecked.
func (s *Store) Checked(row int) bool {
	if s == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if row < 0 || row >= len(s.checked) {
		return false
	}

	return s.checked[row]
}

func (s *Store) Set(row int, checked bool) error {
	if s == nil {
		return fmt.Errorf("%w (%v of 0)", ErrRowRange, row)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= len(s.checked) {
		return fmt.Errorf("%w (%v of %v)", ErrRowRange, row, len(s.checked))
	}

	s.checked[row] = checked

	return nil
}

// Reset resizes the store to n rows and clears every flag.
func (s *Store) Reset(n int) {
	if n < 0 {
		n = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checked = make([]bool, n)
}

func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return json.Marshal(s.checked)
}

func (s *Store) UnmarshalJSON(b []byte) error {
	checked := []bool{}
	if err := json.Unmarshal(b, &checked); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checked = checked

	return nil
}
