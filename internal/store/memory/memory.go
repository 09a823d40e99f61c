// Package memory is a mutex-guarded in-process implementation of the store
// contracts. It backs tests and STORE_BACKEND=memory demos; nothing is
// persisted across restarts.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/store"
)

// Clock lets tests pin timestamps.
type Clock func() time.Time

// collection keeps entities in insertion order.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	now   Clock
	// stamp sets id and timestamps on an entity about to be stored. prev is
	// nil on create.
	stamp func(entity *T, id string, now time.Time, prev *T)
}

func newCollection[T any](now Clock, stamp func(*T, string, time.Time, *T)) *collection[T] {
	return &collection[T]{
		items: make(map[string]T),
		now:   now,
		stamp: stamp,
	}
}

func (c *collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

func (c *collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	return item, nil
}

func (c *collection[T]) Create(_ context.Context, entity T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.stamp(&entity, id, c.now(), nil)
	c.items[id] = entity
	c.order = append(c.order, id)
	return entity, nil
}

func (c *collection[T]) Replace(_ context.Context, id string, entity T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.items[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	c.stamp(&entity, id, c.now(), &prev)
	c.items[id] = entity
	return entity, nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}

// update applies fn to the stored entity under the write lock.
func (c *collection[T]) update(id string, fn func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	fn(&item)
	c.items[id] = item
	return item, nil
}

type singers struct{ *collection[models.Singer] }

type songs struct{ *collection[models.Song] }

func (s songs) List(ctx context.Context) ([]models.Song, error) {
	all, err := s.collection.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].DateTime.Before(all[j].DateTime) })
	return all, nil
}

func (s songs) Search(ctx context.Context, query string) ([]models.Song, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || q == "*" {
		return all, nil
	}

	matches := make([]models.Song, 0)
	for _, song := range all {
		fields := []string{song.SongName, song.Artist, deref(song.Album), deref(song.Genre)}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				matches = append(matches, song)
				break
			}
		}
	}
	return matches, nil
}

type prayerRequests struct{ *collection[models.PrayerRequest] }

func (p prayerRequests) List(ctx context.Context) ([]models.PrayerRequest, error) {
	all, err := p.collection.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(all)
	return all, nil
}

func (p prayerRequests) IncrementPrayerCount(_ context.Context, id string) (int, error) {
	item, err := p.update(id, func(pr *models.PrayerRequest) { pr.PrayerCount++ })
	if err != nil {
		return 0, err
	}
	return item.PrayerCount, nil
}

type content struct {
	mu       sync.RWMutex
	sections map[string]models.AdminContent
	now      Clock
}

func (c *content) ListSections(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.sections)), nil
}

func (c *content) GetSection(_ context.Context, section string) (models.AdminContent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.sections[section]
	if !ok {
		return models.AdminContent{}, store.ErrNotFound
	}
	item.Content = maps.Clone(item.Content)
	return item, nil
}

func (c *content) PutSection(_ context.Context, section string, blob map[string]any) (models.AdminContent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := models.AdminContent{
		Section:   section,
		Content:   maps.Clone(blob),
		UpdatedAt: c.now(),
	}
	c.sections[section] = item
	return item, nil
}

// New returns an empty set of in-memory stores.
func New() store.Stores {
	return NewWithClock(func() time.Time { return time.Now().UTC() })
}

// NewWithClock is New with a custom time source.
func NewWithClock(now Clock) store.Stores {
	return store.Stores{
		Singers: singers{newCollection(now, func(s *models.Singer, id string, ts time.Time, prev *models.Singer) {
			s.ID = id
			s.CreatedAt = ts
			if prev != nil {
				s.CreatedAt = prev.CreatedAt
			}
			s.UpdatedAt = ts
		})},
		Songs: songs{newCollection(now, func(s *models.Song, id string, ts time.Time, prev *models.Song) {
			s.ID = id
			s.CreatedAt = ts
			if prev != nil {
				s.CreatedAt = prev.CreatedAt
			}
			s.UpdatedAt = ts
		})},
		PrayerRequests: prayerRequests{newCollection(now, func(p *models.PrayerRequest, id string, ts time.Time, prev *models.PrayerRequest) {
			p.ID = id
			p.CreatedAt = ts
			p.PrayerCount = 0
			if prev != nil {
				p.CreatedAt = prev.CreatedAt
				p.PrayerCount = prev.PrayerCount
			}
		})},
		Content: &content{
			sections: make(map[string]models.AdminContent),
			now:      now,
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
