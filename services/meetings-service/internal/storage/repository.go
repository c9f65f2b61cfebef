package storage

import (
	"github.com/md-rashed-zaman/meetings/libs/db"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/outbox"
)

type Repository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewRepository(pool *db.Pool, ob *outbox.Repository) *Repository {
	return &Repository{pool: pool, outbox: ob}
}
