package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsedLabel(t *testing.T) {
	day := NewDate(2024, 3, 15)
	tests := []struct {
		name     string
		start    TimeOfDay
		stop     TimeOfDay
		expected string
	}{
		{"two and a half hours", NewTimeOfDay(9, 0, 0), NewTimeOfDay(11, 30, 0), "02:30"},
		{"zero length", NewTimeOfDay(9, 0, 0), NewTimeOfDay(9, 0, 0), "00:00"},
		{"seconds are dropped", NewTimeOfDay(9, 0, 0), NewTimeOfDay(9, 5, 59), "00:05"},
		{"whole day", NewTimeOfDay(0, 0, 0), NewTimeOfDay(23, 59, 0), "23:59"},
		{"double digit hours", NewTimeOfDay(7, 15, 0), NewTimeOfDay(19, 20, 0), "12:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElapsedLabel(day, tt.start, tt.stop))
		})
	}
}

func TestElapsedLabel_NegativeIsDeterministic(t *testing.T) {
	day := NewDate(2024, 3, 15)
	// 30 minutes backwards floors to -1h +30m.
	assert.Equal(t, "-1:30", ElapsedLabel(day, NewTimeOfDay(10, 0, 0), NewTimeOfDay(9, 30, 0)))
}

func TestDurationHours(t *testing.T) {
	day := NewDate(2024, 3, 15)
	tests := []struct {
		name     string
		start    TimeOfDay
		stop     TimeOfDay
		expected int
	}{
		{"29 minutes rounds down", NewTimeOfDay(9, 0, 0), NewTimeOfDay(9, 29, 0), 0},
		{"29 minutes 59 seconds rounds down", NewTimeOfDay(9, 0, 0), NewTimeOfDay(9, 29, 59), 0},
		{"30 minutes rounds up", NewTimeOfDay(9, 0, 0), NewTimeOfDay(9, 30, 0), 1},
		{"2h45m rounds up", NewTimeOfDay(9, 0, 0), NewTimeOfDay(11, 45, 0), 3},
		{"exact hours", NewTimeOfDay(9, 0, 0), NewTimeOfDay(17, 0, 0), 8},
		{"2h10m rounds down", NewTimeOfDay(8, 50, 0), NewTimeOfDay(11, 0, 0), 2},
		{"end of day sentinel", NewTimeOfDay(14, 0, 0), EndOfDay, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DurationHours(day, tt.start, tt.stop))
		})
	}
}

func TestFloorDivMod(t *testing.T) {
	q, r := floorDivMod(7, 3)
	assert.Equal(t, 2, q)
	assert.Equal(t, 1, r)

	q, r = floorDivMod(-1800, 3600)
	assert.Equal(t, -1, q)
	assert.Equal(t, 1800, r)
}
