// Package events provides the scheduled event calendar and the daily
// random event table. Calendar windows are rolled once at world creation
// and never re-rolled: a restored world keeps the windows it was born
// with. See design doc Section 4.7.
package events

import "github.com/talgya/steading/internal/entropy"

// Calendar holds the scheduled window parameters for one world.
type Calendar struct {
	SurgeStart   int `json:"surge_start"`
	DeclineStart int `json:"decline_start"`
	Duration     int `json:"duration"`
}

// NewCalendar rolls the window parameters from the world's roll stream.
func NewCalendar(src *entropy.Source) Calendar {
	return Calendar{
		SurgeStart:   src.IntBetween(20, 60),
		DeclineStart: src.IntBetween(120, 180),
		Duration:     src.IntBetween(20, 60),
	}
}

// HostilityModifier scales all extraction and crafting while a scheduled
// window is active. The surge doubles output; the decline eras that
// follow crush it in deepening steps.
func (c Calendar) HostilityModifier(day int) float64 {
	switch {
	case day >= c.SurgeStart && day <= c.SurgeStart+c.Duration:
		return 2.0
	case day >= c.DeclineStart && day <= c.DeclineStart+2*c.Duration:
		return 0.1
	case day >= 2*c.DeclineStart && day <= 2*c.DeclineStart+3*c.Duration:
		return 0.01
	case day >= 5*c.DeclineStart && day <= 5*c.DeclineStart+5*c.Duration:
		return 0.001
	}
	return 1.0
}

// MarketModifier inflates prices while the surge window is active.
func (c Calendar) MarketModifier(day int) float64 {
	if c.InSurge(day) {
		return 1.25
	}
	return 1.0
}

// InSurge reports whether day falls inside the surge window.
func (c Calendar) InSurge(day int) bool {
	return day >= c.SurgeStart && day <= c.SurgeStart+c.Duration
}
