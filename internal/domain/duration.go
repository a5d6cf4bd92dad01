package domain

import (
	"fmt"
	"time"
)

// elapsedSeconds combines start and stop with the same day and returns the
// difference in whole seconds. Entries never cross midnight.
func elapsedSeconds(day Date, start, stop TimeOfDay) int {
	diff := day.At(stop, time.UTC).Sub(day.At(start, time.UTC))
	return int(diff / time.Second)
}

// floorDivMod is integer division rounding towards negative infinity.
func floorDivMod(a, b int) (int, int) {
	q, r := a/b, a%b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}

// ElapsedLabel formats the time between start and stop on day as HH:MM.
func ElapsedLabel(day Date, start, stop TimeOfDay) string {
	hours, rem := floorDivMod(elapsedSeconds(day, start, stop), 3600)
	minutes, _ := floorDivMod(rem, 60)
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// DurationHours returns the billable length in whole hours. A remainder of
// 30 minutes or more rounds up, 0-29 minutes round down.
func DurationHours(day Date, start, stop TimeOfDay) int {
	hours, rem := floorDivMod(elapsedSeconds(day, start, stop), 3600)
	minutes, _ := floorDivMod(rem, 60)
	if minutes > 29 {
		return hours + 1
	}
	return hours
}
