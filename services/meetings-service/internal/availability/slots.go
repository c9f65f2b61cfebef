package availability

import "time"

const (
	DateLayout         = "2006-01-02"
	DefaultGranularity = 15 * time.Minute
)

// Slot is a free start time. Users is reserved for assigned attendees and is always empty.
type Slot struct {
	Time  time.Time
	Users []string
}

// FreeSlotsByDate groups slot starts by calendar date (YYYY-MM-DD) in the horizon's location.
type FreeSlotsByDate map[string][]Slot

// Count returns the number of slots across all dates.
func (f FreeSlotsByDate) Count() int {
	n := 0
	for _, slots := range f {
		n += len(slots)
	}
	return n
}

// Enumerate walks each day of the horizon from local midnight in step
// increments and keeps every slot of the given length that fits the day's
// working hours and misses all busy intervals. Restarting at midnight keeps
// slot starts on the same clock grid every day whatever the step.
func Enumerate(week WeeklyAvailability, busy []Interval, h Horizon, length, step time.Duration) FreeSlotsByDate {
	out := FreeSlotsByDate{}
	if length <= 0 || step <= 0 {
		return out
	}

	loc := h.Start.Location()
	y, m, d := h.Start.Date()
	for day := time.Date(y, m, d, 0, 0, 0, 0, loc); !day.After(h.End); {
		next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
		for cursor := day; cursor.Before(next); cursor = cursor.Add(step) {
			if cursor.Before(h.Start) {
				continue
			}
			end := cursor.Add(length)
			if end.After(h.End) {
				break
			}
			if !WithinWorkingHours(week.Ranges(cursor), cursor, end) || Overlaps(busy, cursor, end) {
				continue
			}
			date := cursor.Format(DateLayout)
			out[date] = append(out[date], Slot{Time: cursor, Users: []string{}})
		}
		day = next
	}
	return out
}
