package availability

import "time"

const DefaultHorizonWeeks = 6

// Horizon is the closed window [Start, End] scanned for free slots.
type Horizon struct {
	Start time.Time
	End   time.Time
}

// HorizonFor returns the window from the most recent Sunday 00:00 (today if
// now is a Sunday) to Saturday 23:59:59.999999 of the week containing now+weeks.
// Both bounds are wall-clock times in loc.
func HorizonFor(now time.Time, loc *time.Location, weeks int) Horizon {
	if loc == nil {
		loc = time.UTC
	}
	if weeks <= 0 {
		weeks = DefaultHorizonWeeks
	}
	local := now.In(loc)

	y, m, d := local.Date()
	start := time.Date(y, m, d-WeekdayIndex(local), 0, 0, 0, 0, loc)

	later := local.AddDate(0, 0, 7*weeks)
	y, m, d = later.Date()
	end := time.Date(y, m, d+int(time.Saturday)-WeekdayIndex(later), 23, 59, 59, 999999000, loc)

	return Horizon{Start: start, End: end}
}
