package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/outbox"
)

func (r *Repository) ListBookings(ctx context.Context, ownerID string) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT owner_id, id::text, name, date, host, guests, created_at
		FROM bookings
		WHERE owner_id = $1
		ORDER BY date
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.OwnerID, &b.ID, &b.Name, &b.Date, &b.Host, &b.Guests, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// CreateBooking writes the booking and its created event atomically.
func (r *Repository) CreateBooking(ctx context.Context, b model.Booking) (string, error) {
	b.ID = uuid.NewString()
	if b.Guests == nil {
		b.Guests = []string{}
	}
	err := r.pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bookings (id, owner_id, name, date, host, guests)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, b.ID, b.OwnerID, b.Name, b.Date, b.Host, b.Guests); err != nil {
			return err
		}
		return r.insertBookingEvent(ctx, tx, outbox.TopicBookingCreated, b)
	})
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

func (r *Repository) UpdateBooking(ctx context.Context, b model.Booking) error {
	if !validID(b.ID) {
		return ErrNotFound
	}
	if b.Guests == nil {
		b.Guests = []string{}
	}
	return r.pool.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bookings
			SET name = $3, date = $4, host = $5, guests = $6, updated_at = now()
			WHERE owner_id = $1 AND id = $2
		`, b.OwnerID, b.ID, b.Name, b.Date, b.Host, b.Guests)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return r.insertBookingEvent(ctx, tx, outbox.TopicBookingUpdated, b)
	})
}

func (r *Repository) insertBookingEvent(ctx context.Context, tx pgx.Tx, topic string, b model.Booking) error {
	evt, err := outbox.NewBookingEvent(topic, outbox.BookingPayload{
		OwnerID:    b.OwnerID,
		BookingID:  b.ID,
		Name:       b.Name,
		Date:       b.Date,
		Host:       b.Host,
		Guests:     b.Guests,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return r.outbox.Insert(ctx, tx, evt)
}
