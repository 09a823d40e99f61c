package content

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"
)

// Backend stores encoded entries with an expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Freecache keeps entries in process memory.
type Freecache struct {
	c *freecache.Cache
}

// NewFreecache allocates sizeMB megabytes up front.
func NewFreecache(sizeMB int) *Freecache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &Freecache{c: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (f *Freecache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := f.c.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (f *Freecache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return f.c.Set([]byte(key), value, seconds)
}

func (f *Freecache) Delete(_ context.Context, key string) error {
	f.c.Del([]byte(key))
	return nil
}

// Redis shares entries between server instances.
type Redis struct {
	c      *redis.Client
	prefix string
}

func NewRedis(c *redis.Client, prefix string) *Redis {
	return &Redis{c: c, prefix: prefix}
}

// NewRedisClient returns nil when the server cannot be reached, so callers
// fall back to the in-process backend.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.c.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, r.prefix+key).Err()
}
