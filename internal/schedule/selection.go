package schedule

import (
	"sync"

	"github.com/spec-kit/care-client/internal/domain"
)

// Selection tracks which windows the user has tentatively chosen. It is
// display state, kept apart from booked state, and is dropped wholesale
// whenever the grid context (provider, date) changes or a booking succeeds.
type Selection struct {
	mu         sync.Mutex
	providerID string
	date       string
	chosen     map[windowKey]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{chosen: make(map[windowKey]struct{})}
}

// SetContext switches to a (provider, date) pair, clearing the selection if
// the context actually changed.
func (s *Selection) SetContext(providerID, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.providerID == providerID && s.date == date {
		return
	}
	s.providerID = providerID
	s.date = date
	s.chosen = make(map[windowKey]struct{})
}

// Toggle flips whether a window is chosen. Booked windows are not selectable.
func (s *Selection) Toggle(w domain.TimeWindow) bool {
	if w.Booked {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := windowKey{start: w.Start, end: w.End}
	if _, ok := s.chosen[key]; ok {
		delete(s.chosen, key)
		return false
	}
	s.chosen[key] = struct{}{}
	return true
}

// Chosen reports whether the window is currently selected.
func (s *Selection) Chosen(w domain.TimeWindow) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chosen[windowKey{start: w.Start, end: w.End}]
	return ok
}

// Windows returns the selected windows in the order they appear on the grid.
func (s *Selection) Windows(grid []domain.TimeWindow) []domain.TimeWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TimeWindow, 0, len(s.chosen))
	for _, w := range grid {
		if _, ok := s.chosen[windowKey{start: w.Start, end: w.End}]; ok {
			out = append(out, w)
		}
	}
	return out
}

// Clear drops all chosen windows.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chosen = make(map[windowKey]struct{})
}
