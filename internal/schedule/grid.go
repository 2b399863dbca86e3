// Package schedule generates the canonical slot grid and reconciles it with
// server-reported occupancy. The client owns the grid's shape, the server
// owns which windows are booked.
package schedule

import (
	"fmt"

	"github.com/spec-kit/care-client/internal/config"
	"github.com/spec-kit/care-client/internal/domain"
)

// Grid produces the canonical day grid: a fixed count of consecutive
// fixed-duration windows from the configured day start. Generation is pure;
// every call yields an identical sequence.
type Grid struct {
	dayStart    domain.ClockTime
	slotMinutes int
	slotCount   int
}

// NewGrid validates and builds a grid generator.
func NewGrid(cfg config.ScheduleConfig) (*Grid, error) {
	start, err := domain.ParseClockTime(cfg.DayStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day start: %w", err)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("slot minutes must be positive, got %d", cfg.SlotMinutes)
	}
	if cfg.SlotCount <= 0 {
		return nil, fmt.Errorf("slot count must be positive, got %d", cfg.SlotCount)
	}
	return &Grid{dayStart: start, slotMinutes: cfg.SlotMinutes, slotCount: cfg.SlotCount}, nil
}

// Windows returns the canonical sequence, chronological, all unbooked.
func (g *Grid) Windows() []domain.TimeWindow {
	windows := make([]domain.TimeWindow, 0, g.slotCount)
	start := g.dayStart
	for i := 0; i < g.slotCount; i++ {
		end := start.Add(g.slotMinutes)
		windows = append(windows, domain.TimeWindow{Start: start, End: end})
		start = end
	}
	return windows
}
