// Package postgres stores flows in PostgreSQL through a pgx connection pool.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/flow"
)

// PGStore implements flow.Store using PostgreSQL via pgx.
type PGStore struct {
	db *pgxpool.Pool
}

var _ flow.Store = (*PGStore)(nil)

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}
