// Package store persists to-do items for the local backend and the server.
package store

import (
	"context"
	"errors"
	"strings"

	"todont/internal/service"
)

// MemoryDSN selects the in-memory store in Open.
const MemoryDSN = "memory"

// ErrNotFound is returned when an item ID does not exist.
var ErrNotFound = errors.New("item not found")

// Store is the persistence interface. Items are returned in creation order.
type Store interface {
	List(ctx context.Context) ([]service.Item, error)
	Create(ctx context.Context, desc string) (service.Item, error)
	Update(ctx context.Context, item service.Item) error
	Delete(ctx context.Context, id int) error
	Close() error
}

// Open opens the store named by dsn: MemoryDSN (or empty) for an in-memory
// store, otherwise the path of a sqlite database file.
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || dsn == MemoryDSN {
		return NewMemory(), nil
	}
	return OpenSQLite(ctx, dsn)
}
