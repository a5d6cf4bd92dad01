package domain

// Direction moves a day view backward or forward.
type Direction string

const (
	Backward Direction = "backward"
	Forward  Direction = "forward"
)

// NavigateDay returns the day reached from day in the given direction.
// Moving forward never goes past today.
func NavigateDay(day Date, dir Direction, today Date) Date {
	switch dir {
	case Backward:
		return day.AddDays(-1)
	case Forward:
		if day == today || day.After(today) {
			return day
		}
		return day.AddDays(1)
	default:
		return day
	}
}
