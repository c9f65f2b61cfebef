package availability

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time as seconds since midnight.
type TimeOfDay int

const timeOfDayLayout = "15:04:05"

// ParseTimeOfDay accepts "HH:MM:SS" and "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// ClockOf returns the wall-clock time of t in t's own location, truncated to the second.
func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(h*3600 + m*60 + s)
}

func (t TimeOfDay) String() string {
	secs := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type TimeOfDayRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// WeekdayIndex is the single mapping from an instant to a WeeklyAvailability
// index: 0 = Sunday ... 6 = Saturday, evaluated in t's location.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday())
}

// WithinWorkingHours reports whether [start, end] sits inside a single range.
// Both ends are compared as naive wall-clock values in their own location, so
// a slot running past midnight never matches.
func WithinWorkingHours(ranges []TimeOfDayRange, start, end time.Time) bool {
	s := ClockOf(start)
	e := ClockOf(end)
	for _, r := range ranges {
		if r.Start <= s && s < r.End && r.Start <= e && e <= r.End {
			return true
		}
	}
	return false
}
