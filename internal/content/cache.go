// Package content serves admin-managed section content through one shared
// pull-through cache, so every page section reading the same blob costs a
// single store fetch per TTL.
package content

import (
	"context"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/metrics"
	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/store"
)

const sectionsKey = "sections"

func sectionKey(section string) string {
	return "section:" + section
}

// Cache implements store.Content on top of another store.Content.
type Cache struct {
	store   store.Content
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	// mu guards gens; a load only stores its result if the key's
	// generation did not move while it was fetching.
	mu      sync.Mutex
	gens    map[string]uint64
	metrics metrics.Recorder
	log     zerolog.Logger
}

var _ store.Content = (*Cache)(nil)

func New(s store.Content, backend Backend, ttl time.Duration, rec metrics.Recorder) *Cache {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Cache{
		store:   s,
		backend: backend,
		ttl:     ttl,
		gens:    make(map[string]uint64),
		metrics: rec,
		log:     logging.For("content"),
	}
}

// GetSection returns the cached blob or loads it once for all concurrent
// callers. Missing sections are not cached.
func (c *Cache) GetSection(ctx context.Context, section string) (models.AdminContent, error) {
	var out models.AdminContent
	err := c.load(ctx, sectionKey(section), &out, func(ctx context.Context) (any, error) {
		return c.store.GetSection(ctx, section)
	})
	return out, err
}

func (c *Cache) ListSections(ctx context.Context) ([]string, error) {
	var out []string
	err := c.load(ctx, sectionsKey, &out, func(ctx context.Context) (any, error) {
		return c.store.ListSections(ctx)
	})
	return out, err
}

// PutSection writes through and drops the affected entries.
func (c *Cache) PutSection(ctx context.Context, section string, content map[string]any) (models.AdminContent, error) {
	saved, err := c.store.PutSection(ctx, section, content)
	if err != nil {
		return models.AdminContent{}, err
	}
	c.Invalidate(ctx, section)
	return saved, nil
}

// Invalidate drops one section and the section list. Loads already in
// flight for those keys will not repopulate them.
func (c *Cache) Invalidate(ctx context.Context, section string) {
	keys := []string{sectionKey(section), sectionsKey}
	c.mu.Lock()
	for _, key := range keys {
		c.gens[key]++
	}
	c.mu.Unlock()
	for _, key := range keys {
		if err := c.backend.Delete(ctx, key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate content cache entry")
		}
	}
}

func (c *Cache) load(ctx context.Context, key string, dst any, fetch func(context.Context) (any, error)) error {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Content cache read failed")
	}
	if ok {
		if err := json.Unmarshal(raw, dst); err == nil {
			c.metrics.IncCacheHits()
			return nil
		}
	}
	c.metrics.IncCacheMisses()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not abort it.
		bg := context.WithoutCancel(ctx)
		gen := c.generation(key)
		value, err := fetch(bg)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s: %w", key, err)
		}
		c.storeIfCurrent(bg, key, gen, encoded)
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dst)
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// storeIfCurrent caches encoded unless key was invalidated since gen was read.
func (c *Cache) storeIfCurrent(ctx context.Context, key string, gen uint64, encoded []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		c.log.Debug().Str("key", key).Msg("Skipping cache fill invalidated mid-load")
		return
	}
	if err := c.backend.Set(ctx, key, encoded, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Content cache write failed")
	}
}
