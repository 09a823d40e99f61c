// Package store defines the CRUD contracts the HTTP layer depends on. The
// Postgres implementation lives in internal/database and an in-memory one in
// internal/store/memory.
package store

import (
	"context"
	"errors"

	"github.com/yourusername/ministry-site/internal/models"
)

// ErrNotFound is returned when the addressed entity does not exist. Any other
// error from a store is an infrastructure failure.
var ErrNotFound = errors.New("not found")

// Resource is the uniform CRUD contract for one entity kind. Replace is a
// full replace of the mutable fields.
type Resource[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Replace(ctx context.Context, id string, entity T) (T, error)
	Delete(ctx context.Context, id string) error
}

type Singers interface {
	Resource[models.Singer]
}

type Songs interface {
	Resource[models.Song]
	Search(ctx context.Context, query string) ([]models.Song, error)
}

type PrayerRequests interface {
	Resource[models.PrayerRequest]
	// IncrementPrayerCount adds exactly one to the count and returns the new value.
	IncrementPrayerCount(ctx context.Context, id string) (int, error)
}

type Content interface {
	ListSections(ctx context.Context) ([]string, error)
	GetSection(ctx context.Context, section string) (models.AdminContent, error)
	PutSection(ctx context.Context, section string, content map[string]any) (models.AdminContent, error)
}

// Stores bundles every store the server needs.
type Stores struct {
	Singers        Singers
	Songs          Songs
	PrayerRequests PrayerRequests
	Content        Content
}
