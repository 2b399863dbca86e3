package schedule

import "github.com/spec-kit/care-client/internal/domain"

// windowKey identifies a slot by its bounds only.
type windowKey struct {
	start domain.ClockTime
	end   domain.ClockTime
}

// Reconcile merges server-reported booked windows into the canonical grid.
// The grid's order and shape are preserved exactly; a window is marked booked
// iff its (start, end) pair appears in booked. Server windows that match no
// canonical slot boundary are ignored rather than inserted. The function is
// pure and idempotent.
func Reconcile(grid []domain.TimeWindow, booked []domain.TimeWindow) []domain.TimeWindow {
	bookedSet := make(map[windowKey]bool, len(booked))
	for _, w := range booked {
		if w.Booked {
			bookedSet[windowKey{start: w.Start, end: w.End}] = true
		}
	}

	out := make([]domain.TimeWindow, len(grid))
	for i, w := range grid {
		out[i] = domain.TimeWindow{
			Start:  w.Start,
			End:    w.End,
			Booked: bookedSet[windowKey{start: w.Start, end: w.End}],
		}
	}
	return out
}
