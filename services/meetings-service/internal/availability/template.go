package availability

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DaysPerWeek     = 7
	DefaultTimezone = "America/New_York"
)

// WeeklyAvailability holds one set of ranges per weekday, indexed by WeekdayIndex.
type WeeklyAvailability [][]TimeOfDayRange

// Template is a parsed, validated availability template.
type Template struct {
	OwnerID  string
	ID       string
	Name     string
	Week     WeeklyAvailability
	Location *time.Location
}

func (w WeeklyAvailability) Validate() error {
	if len(w) != DaysPerWeek {
		return fmt.Errorf("%w: expected %d weekdays, got %d", ErrInvalidTemplate, DaysPerWeek, len(w))
	}
	for day, ranges := range w {
		for _, r := range ranges {
			if r.Start >= r.End {
				return fmt.Errorf("%w: weekday %d range %s-%s must start before it ends", ErrInvalidTemplate, day, r.Start, r.End)
			}
		}
	}
	return nil
}

// Ranges returns the working hours for t's weekday.
func (w WeeklyAvailability) Ranges(t time.Time) []TimeOfDayRange {
	idx := WeekdayIndex(t)
	if idx < 0 || idx >= len(w) {
		return nil
	}
	return w[idx]
}

// ParseWeekly decodes the stored JSON form and validates it.
func ParseWeekly(data []byte) (WeeklyAvailability, error) {
	var w WeeklyAvailability
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadLocation resolves a template timezone; an empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidTemplate, name)
	}
	return loc, nil
}

// ParseTemplate turns a stored record into a Template or a tagged ErrInvalidTemplate failure.
func ParseTemplate(ownerID, id, name string, data []byte, timezone string) (Template, error) {
	week, err := ParseWeekly(data)
	if err != nil {
		return Template{}, fmt.Errorf("availability %s: %w", id, err)
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Template{}, fmt.Errorf("availability %s: %w", id, err)
	}
	return Template{OwnerID: ownerID, ID: id, Name: name, Week: week, Location: loc}, nil
}

// DefaultWeekly is Monday to Friday 09:00-17:00, weekends closed.
func DefaultWeekly() WeeklyAvailability {
	w := make(WeeklyAvailability, DaysPerWeek)
	for day := time.Sunday; day <= time.Saturday; day++ {
		w[int(day)] = []TimeOfDayRange{}
		if day == time.Sunday || day == time.Saturday {
			continue
		}
		w[int(day)] = []TimeOfDayRange{{Start: 9 * 3600, End: 17 * 3600}}
	}
	return w
}
