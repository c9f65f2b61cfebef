package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
)

const eventTypeColumns = `owner_id, id::text, username, name, description, url, duration_minutes, availability_id::text, hidden, created_at`

func scanEventType(row pgx.Row) (model.EventType, error) {
	var e model.EventType
	err := row.Scan(&e.OwnerID, &e.ID, &e.Username, &e.Name, &e.Description, &e.URL, &e.DurationMins, &e.AvailabilityID, &e.Hidden, &e.CreatedAt)
	return e, err
}

func (r *Repository) queryEventTypes(ctx context.Context, sql string, args ...any) ([]model.EventType, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.EventType{}
	for rows.Next() {
		e, err := scanEventType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListEventTypes(ctx context.Context, ownerID string) ([]model.EventType, error) {
	return r.queryEventTypes(ctx, `
		SELECT `+eventTypeColumns+`
		FROM event_types
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
}

func (r *Repository) CreateEventType(ctx context.Context, e model.EventType) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_types (id, owner_id, username, name, description, url, duration_minutes, availability_id, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, e.OwnerID, e.Username, e.Name, e.Description, e.URL, e.DurationMins, e.AvailabilityID, e.Hidden)
	if err != nil {
		return "", conflict(err)
	}
	return id, nil
}

func (r *Repository) UpdateEventType(ctx context.Context, e model.EventType) error {
	if !validID(e.ID) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE event_types
		SET name = $3,
			description = $4,
			url = $5,
			duration_minutes = $6,
			availability_id = $7,
			hidden = $8
		WHERE owner_id = $1 AND id = $2
	`, e.OwnerID, e.ID, e.Name, e.Description, e.URL, e.DurationMins, e.AvailabilityID, e.Hidden)
	if err != nil {
		return conflict(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEventType(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM event_types
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEventTypesByUsername returns every row for username, hidden ones included.
// A username without rows is ErrNotFound.
func (r *Repository) ListEventTypesByUsername(ctx context.Context, username string) ([]model.EventType, error) {
	out, err := r.queryEventTypes(ctx, `
		SELECT `+eventTypeColumns+`
		FROM event_types
		WHERE username = $1
		ORDER BY created_at
	`, username)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *Repository) GetEventTypeByUsernameAndURL(ctx context.Context, username, url string) (model.EventType, error) {
	if url == model.ReservedURL {
		return model.EventType{}, ErrNotFound
	}
	e, err := scanEventType(r.pool.QueryRow(ctx, `
		SELECT `+eventTypeColumns+`
		FROM event_types
		WHERE username = $1 AND url = $2
	`, username, url))
	return e, notFound(err)
}
