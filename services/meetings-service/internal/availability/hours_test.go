package availability

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustTOD(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return v
}

func TestParseTimeOfDay(t *testing.T) {
	if got := mustTOD(t, "09:30:15"); got != 9*3600+30*60+15 {
		t.Fatalf("unexpected value %d", got)
	}
	if got := mustTOD(t, "17:00"); got.String() != "17:00:00" {
		t.Fatalf("unexpected string %s", got)
	}
	for _, bad := range []string{"", "24:00:00", "9am", "12:61:00"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	sunday := time.Date(2026, 1, 25, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayIndex(sunday.AddDate(0, 0, i)); got != i {
			t.Fatalf("day %d: got index %d", i, got)
		}
	}
}

func TestDefaultWeeklyAlignsWithWeekdayIndex(t *testing.T) {
	week := DefaultWeekly()
	monday := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)

	if len(week.Ranges(monday)) != 1 {
		t.Fatal("expected Monday to be a working day")
	}
	if len(week.Ranges(saturday)) != 0 || len(week.Ranges(sunday)) != 0 {
		t.Fatal("expected weekends to be closed")
	}
	if err := week.Validate(); err != nil {
		t.Fatalf("default template invalid: %v", err)
	}
}

func TestWithinWorkingHours(t *testing.T) {
	day := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	ranges := []TimeOfDayRange{
		{Start: mustTOD(t, "09:00:00"), End: mustTOD(t, "12:00:00")},
		{Start: mustTOD(t, "13:00:00"), End: mustTOD(t, "17:00:00")},
	}
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside first", at(9, 0), at(9, 15), true},
		{"ends at range end", at(11, 45), at(12, 0), true},
		{"starts at range end", at(12, 0), at(12, 15), false},
		{"crosses gap", at(11, 45), at(13, 15), false},
		{"before hours", at(8, 45), at(9, 0), false},
		{"second range", at(16, 45), at(17, 0), true},
		{"straddles midnight", at(23, 45), at(24, 0), false},
	}
	for _, tc := range cases {
		if got := WithinWorkingHours(ranges, tc.start, tc.end); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	allDay := []TimeOfDayRange{{Start: 0, End: mustTOD(t, "23:59:59")}}
	if WithinWorkingHours(allDay, at(23, 45), at(24, 0)) {
		t.Error("slot ending at midnight must not match")
	}
	if WithinWorkingHours(nil, at(10, 0), at(10, 15)) {
		t.Error("empty day must never match")
	}
}

func TestParseWeekly(t *testing.T) {
	raw, err := json.Marshal(DefaultWeekly())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	week, err := ParseWeekly(raw)
	if err != nil {
		t.Fatalf("ParseWeekly: %v", err)
	}
	if week[1][0].Start.String() != "09:00:00" || week[1][0].End.String() != "17:00:00" {
		t.Fatalf("unexpected Monday range %+v", week[1])
	}

	bad := map[string]string{
		"six days":     `[[],[],[],[],[],[]]`,
		"eight days":   `[[],[],[],[],[],[],[],[]]`,
		"reversed":     `[[],[{"start":"17:00:00","end":"09:00:00"}],[],[],[],[],[]]`,
		"empty range":  `[[],[{"start":"09:00:00","end":"09:00:00"}],[],[],[],[],[]]`,
		"bad clock":    `[[],[{"start":"nine","end":"17:00:00"}],[],[],[],[],[]]`,
		"not an array": `{"monday":[]}`,
	}
	for name, data := range bad {
		if _, err := ParseWeekly([]byte(data)); !errors.Is(err, ErrInvalidTemplate) {
			t.Errorf("%s: expected ErrInvalidTemplate, got %v", name, err)
		}
	}
}

func TestParseTemplateTimezone(t *testing.T) {
	raw, _ := json.Marshal(DefaultWeekly())
	tmpl, err := ParseTemplate("owner-1", "a1", "Work", raw, DefaultTimezone)
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if tmpl.Location.String() != DefaultTimezone {
		t.Fatalf("unexpected location %s", tmpl.Location)
	}
	if _, err := ParseTemplate("owner-1", "a1", "Work", raw, "Mars/Olympus"); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for unknown zone, got %v", err)
	}
}
