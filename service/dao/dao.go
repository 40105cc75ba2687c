// Package dao declares the grammar cache's storage contract: a Store keyed
// by the content hash of the spec binary a grammar was compiled from, so
// re-uploading an identical grammar is a cache hit instead of a reparse.
// Grounded on server/dao.go's Store-interface-plus-sentinel-errors shape.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Store methods when no record matches the
	// given id or hash.
	ErrNotFound = errors.New("the requested grammar was not found")

	// ErrAlreadyExists is returned by Put when a record with rec.Hash (or
	// with rec.ID) is already stored.
	ErrAlreadyExists = errors.New("a grammar with identical content is already cached")
)

// Record is one cached grammar: Data is the §6.3 serialized form
// (loader.Serialize's output, a rezi-wrapped spec binary), Hash is its
// content hash (hex-encoded sha256 of the original uploaded spec binary,
// before serialization), and ID is the opaque identifier clients address it
// by.
type Record struct {
	ID        uuid.UUID
	Hash      string
	Data      []byte
	CreatedAt time.Time
}

// Store persists and retrieves Records. Implementations must treat Hash as
// unique: Put on a hash that is already stored returns ErrAlreadyExists,
// whatever the ID.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	GetByHash(ctx context.Context, hash string) (Record, error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
