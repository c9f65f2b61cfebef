package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/model"
)

const availabilityColumns = `owner_id, id::text, name, data, timezone, created_at, updated_at`

func (r *Repository) ListAvailabilities(ctx context.Context, ownerID string) ([]model.AvailabilityTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+availabilityColumns+`
		FROM availabilities
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AvailabilityTemplate{}
	for rows.Next() {
		var a model.AvailabilityTemplate
		if err := rows.Scan(&a.OwnerID, &a.ID, &a.Name, &a.Data, &a.Timezone, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) GetAvailability(ctx context.Context, ownerID, id string) (model.AvailabilityTemplate, error) {
	if !validID(id) {
		return model.AvailabilityTemplate{}, ErrNotFound
	}
	var a model.AvailabilityTemplate
	err := r.pool.QueryRow(ctx, `
		SELECT `+availabilityColumns+`
		FROM availabilities
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id).Scan(&a.OwnerID, &a.ID, &a.Name, &a.Data, &a.Timezone, &a.CreatedAt, &a.UpdatedAt)
	return a, notFound(err)
}

// CreateAvailability stores a new template holding the default working week.
func (r *Repository) CreateAvailability(ctx context.Context, ownerID, name string) (model.AvailabilityTemplate, error) {
	data, err := json.Marshal(availability.DefaultWeekly())
	if err != nil {
		return model.AvailabilityTemplate{}, err
	}
	a := model.AvailabilityTemplate{
		OwnerID:  ownerID,
		ID:       uuid.NewString(),
		Name:     name,
		Data:     data,
		Timezone: availability.DefaultTimezone,
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO availabilities (id, owner_id, name, data, timezone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, a.ID, a.OwnerID, a.Name, a.Data, a.Timezone).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.AvailabilityTemplate{}, err
	}
	return a, nil
}

// UpdateAvailability replaces name, data and timezone. An empty timezone keeps the stored one.
func (r *Repository) UpdateAvailability(ctx context.Context, ownerID, id, name string, data []byte, timezone string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE availabilities
		SET name = $3,
			data = $4,
			timezone = COALESCE(NULLIF($5, ''), timezone),
			updated_at = now()
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id, name, data, timezone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAvailability(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availabilities
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

// GetTemplate implements availability.TemplateStore.
func (r *Repository) GetTemplate(ctx context.Context, ownerID, templateID string) (availability.Template, error) {
	rec, err := r.GetAvailability(ctx, ownerID, templateID)
	if err != nil {
		if IsNotFound(err) {
			return availability.Template{}, fmt.Errorf("availability %s: %w", templateID, ErrNotFound)
		}
		return availability.Template{}, err
	}
	return TemplateFromRecord(rec)
}

func TemplateFromRecord(rec model.AvailabilityTemplate) (availability.Template, error) {
	return availability.ParseTemplate(rec.OwnerID, rec.ID, rec.Name, rec.Data, rec.Timezone)
}

var _ availability.TemplateStore = (*Repository)(nil)
