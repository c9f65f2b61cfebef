package storage

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
)

var (
	ErrNotFound = availability.ErrNotFound
	ErrConflict = errors.New("already exists")
)

const pgUniqueViolation = "23505"

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

func IsConflict(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func conflict(err error) error {
	if err != nil && IsConflict(err) {
		return ErrConflict
	}
	return err
}

// validID reports whether id can be a primary key; malformed ids can never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
