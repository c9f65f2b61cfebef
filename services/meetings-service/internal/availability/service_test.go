package availability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeTemplates struct {
	tmpl Template
	err  error
}

func (f *fakeTemplates) GetTemplate(_ context.Context, ownerID, templateID string) (Template, error) {
	if f.err != nil {
		return Template{}, f.err
	}
	if ownerID != f.tmpl.OwnerID || templateID != f.tmpl.ID {
		return Template{}, fmt.Errorf("availability %s: %w", templateID, ErrNotFound)
	}
	return f.tmpl, nil
}

type fakeBusy struct {
	intervals  []Interval
	err        error
	calls      int
	start, end time.Time
	ownerID    string
}

func (f *fakeBusy) BusyIntervals(_ context.Context, ownerID string, start, end time.Time) ([]Interval, error) {
	f.calls++
	f.ownerID, f.start, f.end = ownerID, start, end
	return f.intervals, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
}

func utcTemplate() Template {
	return Template{OwnerID: "alice", ID: "a1", Week: DefaultWeekly(), Location: time.UTC}
}

func TestService_GetAvailabilities(t *testing.T) {
	busy := &fakeBusy{intervals: []Interval{{
		Start: time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 26, 9, 30, 0, 0, time.UTC),
	}}}
	svc := NewService(&fakeTemplates{tmpl: utcTemplate()}, busy, discardLogger(), Config{Now: fixedNow, LegacyFixedGranularity: true})

	free, err := svc.GetAvailabilities(context.Background(), Request{OwnerID: "alice", TemplateID: "a1", Duration: time.Hour})
	if err != nil {
		t.Fatalf("GetAvailabilities: %v", err)
	}

	if busy.calls != 1 || busy.ownerID != "alice" {
		t.Fatalf("unexpected provider call: %d %q", busy.calls, busy.ownerID)
	}
	if !busy.start.Equal(time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)) || busy.start.Location() != time.UTC {
		t.Fatalf("unexpected provider start %s", busy.start)
	}
	if !busy.end.Equal(time.Date(2026, 3, 14, 23, 59, 59, 999999000, time.UTC)) {
		t.Fatalf("unexpected provider end %s", busy.end)
	}

	monday := free["2026-01-26"]
	if len(monday) != 30 {
		t.Fatalf("expected 30 slots on Monday, got %d", len(monday))
	}
	if monday[0].Time.Hour() != 9 || monday[0].Time.Minute() != 30 {
		t.Fatalf("expected first slot 09:30, got %s", monday[0].Time.Format("15:04"))
	}
	if _, ok := free["2026-01-25"]; ok {
		t.Fatal("Sunday must have no slots")
	}
}

func TestService_SlotLengthFollowsEventDuration(t *testing.T) {
	svc := NewService(&fakeTemplates{tmpl: utcTemplate()}, &fakeBusy{}, discardLogger(), Config{Now: fixedNow})

	free, err := svc.GetAvailabilities(context.Background(), Request{OwnerID: "alice", TemplateID: "a1", Duration: time.Hour})
	if err != nil {
		t.Fatalf("GetAvailabilities: %v", err)
	}
	if got := len(free["2026-01-26"]); got != 29 {
		t.Fatalf("expected 29 one-hour slots, got %d", got)
	}

	if got := svc.SlotLength(0); got != DefaultGranularity {
		t.Fatalf("expected fallback length, got %s", got)
	}
	legacy := NewService(nil, nil, discardLogger(), Config{LegacyFixedGranularity: true})
	if got := legacy.SlotLength(time.Hour); got != DefaultGranularity {
		t.Fatalf("expected legacy length 15m, got %s", got)
	}
}

func TestService_NormalizesToTemplateTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	tmpl := utcTemplate()
	tmpl.Location = ny
	busy := &fakeBusy{}
	svc := NewService(&fakeTemplates{tmpl: tmpl}, busy, discardLogger(), Config{Now: fixedNow})

	free, err := svc.GetAvailabilities(context.Background(), Request{OwnerID: "alice", TemplateID: "a1", Duration: 15 * time.Minute})
	if err != nil {
		t.Fatalf("GetAvailabilities: %v", err)
	}
	if !busy.start.Equal(time.Date(2026, 1, 25, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected provider window to start at New York midnight, got %s", busy.start)
	}
	first := free["2026-01-26"][0].Time
	if !first.Equal(time.Date(2026, 1, 26, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 09:00 New York (14:00 UTC), got %s", first.UTC())
	}
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&fakeTemplates{tmpl: utcTemplate()}, &fakeBusy{}, discardLogger(), Config{Now: fixedNow})
	if _, err := svc.GetAvailabilities(ctx, Request{OwnerID: "alice", TemplateID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	invalid := &fakeTemplates{err: fmt.Errorf("availability a1: %w", ErrInvalidTemplate)}
	busy := &fakeBusy{}
	svc = NewService(invalid, busy, discardLogger(), Config{Now: fixedNow})
	if _, err := svc.GetAvailabilities(ctx, Request{OwnerID: "alice", TemplateID: "a1"}); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if busy.calls != 0 {
		t.Fatal("provider must not be called when the template fails")
	}

	svc = NewService(&fakeTemplates{tmpl: utcTemplate()}, &fakeBusy{err: errors.New("connection refused")}, discardLogger(), Config{Now: fixedNow})
	free, err := svc.GetAvailabilities(ctx, Request{OwnerID: "alice", TemplateID: "a1"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if free != nil {
		t.Fatal("expected no partial result on failure")
	}
}
