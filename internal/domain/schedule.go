package domain

// TimeWindow is one bookable slot of the day. Identity is (Start, End) only;
// Booked is display state.
type TimeWindow struct {
	Start  ClockTime
	End    ClockTime
	Booked bool
}

// SameWindow reports whether two windows cover the same interval,
// ignoring booked state.
func (w TimeWindow) SameWindow(other TimeWindow) bool {
	return w.Start == other.Start && w.End == other.End
}

// DaySchedule is the chronological slot grid for one provider and date.
type DaySchedule struct {
	ProviderID string
	Date       string
	Windows    []TimeWindow
}

// Window returns the window with the given bounds, if it is on the grid.
func (d DaySchedule) Window(start, end ClockTime) (TimeWindow, bool) {
	for _, w := range d.Windows {
		if w.Start == start && w.End == end {
			return w, true
		}
	}
	return TimeWindow{}, false
}
