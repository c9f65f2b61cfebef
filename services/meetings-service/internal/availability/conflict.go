package availability

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) shares an instant with any busy interval.
// Touching boundaries do not overlap.
func Overlaps(busy []Interval, start, end time.Time) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
