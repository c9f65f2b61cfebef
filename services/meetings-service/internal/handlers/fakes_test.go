package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/storage"
)

type memStore struct {
	mu             sync.Mutex
	seq            int
	availabilities map[string]model.AvailabilityTemplate
	eventTypes     map[string]model.EventType
	bookings       map[string]model.Booking
	failWith       error
}

func newMemStore() *memStore {
	return &memStore{
		availabilities: map[string]model.AvailabilityTemplate{},
		eventTypes:     map[string]model.EventType{},
		bookings:       map[string]model.Booking{},
	}
}

func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
}

func (m *memStore) ListAvailabilities(_ context.Context, ownerID string) ([]model.AvailabilityTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.AvailabilityTemplate{}
	for _, a := range m.availabilities {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetAvailability(_ context.Context, ownerID, id string) (model.AvailabilityTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.availabilities[id]
	if !ok || a.OwnerID != ownerID {
		return model.AvailabilityTemplate{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memStore) CreateAvailability(_ context.Context, ownerID, name string) (model.AvailabilityTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := model.AvailabilityTemplate{
		OwnerID:  ownerID,
		ID:       m.nextID(),
		Name:     name,
		Data:     []byte(`[[],[{"start":"09:00:00","end":"17:00:00"}],[{"start":"09:00:00","end":"17:00:00"}],[{"start":"09:00:00","end":"17:00:00"}],[{"start":"09:00:00","end":"17:00:00"}],[{"start":"09:00:00","end":"17:00:00"}],[]]`),
		Timezone: availability.DefaultTimezone,
	}
	m.availabilities[a.ID] = a
	return a, nil
}

func (m *memStore) UpdateAvailability(_ context.Context, ownerID, id, name string, data []byte, timezone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.availabilities[id]
	if !ok || a.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	a.Name, a.Data = name, data
	if timezone != "" {
		a.Timezone = timezone
	}
	m.availabilities[id] = a
	return nil
}

func (m *memStore) DeleteAvailability(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.availabilities[id]
	if !ok || a.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(m.availabilities, id)
	return nil
}

func (m *memStore) ListEventTypes(_ context.Context, ownerID string) ([]model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.EventType{}
	for _, e := range m.eventTypes {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) urlTaken(e model.EventType) bool {
	for _, other := range m.eventTypes {
		if other.ID != e.ID && other.Username == e.Username && other.URL == e.URL {
			return true
		}
	}
	return false
}

func (m *memStore) CreateEventType(_ context.Context, e model.EventType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.urlTaken(e) {
		return "", storage.ErrConflict
	}
	e.ID = m.nextID()
	m.eventTypes[e.ID] = e
	return e.ID, nil
}

func (m *memStore) UpdateEventType(_ context.Context, e model.EventType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.eventTypes[e.ID]
	if !ok || cur.OwnerID != e.OwnerID {
		return storage.ErrNotFound
	}
	if m.urlTaken(e) {
		return storage.ErrConflict
	}
	m.eventTypes[e.ID] = e
	return nil
}

func (m *memStore) DeleteEventType(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.eventTypes[id]
	if !ok || cur.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(m.eventTypes, id)
	return nil
}

func (m *memStore) ListEventTypesByUsername(_ context.Context, username string) ([]model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EventType
	for _, e := range m.eventTypes {
		if e.Username == username {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

func (m *memStore) GetEventTypeByUsernameAndURL(_ context.Context, username, url string) (model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if url == model.ReservedURL {
		return model.EventType{}, storage.ErrNotFound
	}
	for _, e := range m.eventTypes {
		if e.Username == username && e.URL == url {
			return e, nil
		}
	}
	return model.EventType{}, storage.ErrNotFound
}

func (m *memStore) ListBookings(_ context.Context, ownerID string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Booking{}
	for _, b := range m.bookings {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) CreateBooking(_ context.Context, b model.Booking) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID()
	m.bookings[b.ID] = b
	return b.ID, nil
}

func (m *memStore) UpdateBooking(_ context.Context, b model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok || cur.OwnerID != b.OwnerID {
		return storage.ErrNotFound
	}
	m.bookings[b.ID] = b
	return nil
}

type fakeSlots struct {
	got  availability.Request
	free availability.FreeSlotsByDate
	err  error
}

func (f *fakeSlots) GetAvailabilities(_ context.Context, req availability.Request) (availability.FreeSlotsByDate, error) {
	f.got = req
	return f.free, f.err
}

func newTestServer(store *memStore, slots *fakeSlots) http.Handler {
	h := New(Deps{
		Availabilities: store,
		EventTypes:     store,
		Bookings:       store,
		Slots:          slots,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	passthrough := func(next http.Handler) http.Handler { return next }
	h.Register(mux, passthrough, passthrough)
	return mux
}

var mondayNine = time.Date(2026, 1, 26, 14, 0, 0, 0, time.UTC)
