// Package store persists balades and exposes the query primitives the
// services are built on. MongoStore is the production backend; MemoryStore
// evaluates the same filters in process.
package store

import (
	"context"
	"errors"

	"balades-api/models"
)

var (
	ErrNotFound       = errors.New("store: document not found")
	ErrNameRequired   = errors.New("store: nom_poi is required")
	ErrAlreadyPresent = errors.New("store: value already present")
	ErrInvalidID      = errors.New("store: malformed object id")
)

// Fields is a partial document keyed by stored field name.
type Fields map[string]any

// FindOptions controls the ordering of Find results.
type FindOptions struct {
	// SortAsc sorts results ascending on this field when set.
	SortAsc string
}

// Store is implemented by every balade backend.
type Store interface {
	Insert(ctx context.Context, b *models.Balade) (*models.Balade, error)
	FindByID(ctx context.Context, id string) (*models.Balade, error)
	Find(ctx context.Context, f Filter, opts FindOptions) ([]models.Balade, error)
	Count(ctx context.Context, f Filter) (int64, error)
	UpdateByID(ctx context.Context, id string, fields Fields) (*models.Balade, error)
	// UpdateMany sets fields on every match and returns the matched count.
	UpdateMany(ctx context.Context, f Filter, fields Fields) (int64, error)
	// PushUnique appends value to the array field unless it is already there.
	PushUnique(ctx context.Context, id, field, value string) (*models.Balade, error)
	DeleteByID(ctx context.Context, id string) (*models.Balade, error)
	Distinct(ctx context.Context, field string) ([]string, error)
	// CountBySubstring groups documents on field[start:start+length] (byte
	// offsets) and returns the group sizes sorted by key.
	CountBySubstring(ctx context.Context, field string, start, length int) ([]models.ArrondissementCount, error)
	Ping(ctx context.Context) error
}

// Seeder loads an initial data set into an empty store.
type Seeder interface {
	Seed(ctx context.Context, balades []models.Balade) (int, error)
}
