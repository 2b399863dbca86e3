package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const clockTimeLayout = "15:04"

// ClockTime is a wall-clock time of day without a date, serialized as "HH:MM".
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockTimeLayout, s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Add returns the clock time shifted forward by the given number of minutes.
func (c ClockTime) Add(minutes int) ClockTime {
	total := c.Hour*60 + c.Minute + minutes
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}
	return ClockTime{Hour: total / 60, Minute: total % 60}
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.Hour*60+c.Minute < other.Hour*60+other.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
