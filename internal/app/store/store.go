/*
Package store is the persistence gateway for users, messages, and the
community feed.

It runs hand-written SQL against a pgx connection pool. Every method takes a
context and returns explicit errors; callers translate ErrNotFound and
unique-violation conditions at the response boundary.
*/
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("store: not found")

// Store executes all persistence operations against a shared pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
