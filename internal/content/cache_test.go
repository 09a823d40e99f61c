package content

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ministry-site/internal/metrics"
	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/store"
	"github.com/yourusername/ministry-site/internal/store/memory"
)

// countingStore counts reads and can hold them until released.
type countingStore struct {
	store.Content
	gets    atomic.Int32
	lists   atomic.Int32
	release chan struct{}
	// fetched, when set, is signalled after the read and before release.
	fetched chan struct{}
}

func (s *countingStore) GetSection(ctx context.Context, section string) (models.AdminContent, error) {
	s.gets.Add(1)
	got, err := s.Content.GetSection(ctx, section)
	if s.release != nil {
		if s.fetched != nil {
			s.fetched <- struct{}{}
		}
		<-s.release
	}
	return got, err
}

func (s *countingStore) ListSections(ctx context.Context) ([]string, error) {
	s.lists.Add(1)
	return s.Content.ListSections(ctx)
}

func seededStore(t *testing.T) *countingStore {
	t.Helper()
	mem := memory.New()
	_, err := mem.Content.PutSection(context.Background(), models.SectionHomepage, map[string]any{
		"heroTitle": "Welcome home",
	})
	require.NoError(t, err)
	return &countingStore{Content: mem.Content}
}

func TestCache_FetchOncePerTTL(t *testing.T) {
	backing := seededStore(t)
	c := New(backing, NewFreecache(1), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		got, err := c.GetSection(ctx, models.SectionHomepage)
		require.NoError(t, err)
		assert.Equal(t, "Welcome home", got.Content["heroTitle"])
	}
	assert.Equal(t, int32(1), backing.gets.Load())
}

func TestCache_ConcurrentMissesCollapse(t *testing.T) {
	backing := seededStore(t)
	backing.release = make(chan struct{})
	c := New(backing, NewFreecache(1), time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetSection(context.Background(), models.SectionHomepage)
			assert.NoError(t, err)
		}()
	}
	// Let the goroutines pile up behind the first fetch.
	time.Sleep(50 * time.Millisecond)
	close(backing.release)
	wg.Wait()

	assert.Equal(t, int32(1), backing.gets.Load())
}

func TestCache_PutInvalidates(t *testing.T) {
	backing := seededStore(t)
	c := New(backing, NewFreecache(1), time.Minute, nil)
	ctx := context.Background()

	_, err := c.GetSection(ctx, models.SectionHomepage)
	require.NoError(t, err)
	sections, err := c.ListSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.SectionHomepage}, sections)

	_, err = c.PutSection(ctx, models.SectionHomepage, map[string]any{"heroTitle": "Updated"})
	require.NoError(t, err)
	_, err = c.PutSection(ctx, models.SectionEvents, map[string]any{"items": []any{}})
	require.NoError(t, err)

	got, err := c.GetSection(ctx, models.SectionHomepage)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Content["heroTitle"])
	assert.Equal(t, int32(2), backing.gets.Load())

	sections, err = c.ListSections(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.SectionHomepage, models.SectionEvents}, sections)
	assert.Equal(t, int32(2), backing.lists.Load())
}

func TestCache_PutDuringLoadIsNotOverwritten(t *testing.T) {
	backing := seededStore(t)
	backing.release = make(chan struct{})
	backing.fetched = make(chan struct{}, 1)
	c := New(backing, NewFreecache(1), time.Minute, nil)
	ctx := context.Background()

	done := make(chan models.AdminContent)
	go func() {
		got, err := c.GetSection(ctx, models.SectionHomepage)
		assert.NoError(t, err)
		done <- got
	}()
	<-backing.fetched
	_, err := c.PutSection(ctx, models.SectionHomepage, map[string]any{"heroTitle": "Updated"})
	require.NoError(t, err)
	close(backing.release)
	assert.Equal(t, "Welcome home", (<-done).Content["heroTitle"])

	got, err := c.GetSection(ctx, models.SectionHomepage)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Content["heroTitle"])
	assert.Equal(t, int32(2), backing.gets.Load())
}

func TestCache_NotFoundIsNotCached(t *testing.T) {
	backing := seededStore(t)
	c := New(backing, NewFreecache(1), time.Minute, nil)
	ctx := context.Background()

	_, err := c.GetSection(ctx, models.SectionShop)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = c.GetSection(ctx, models.SectionShop)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, int32(2), backing.gets.Load())
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	backing := seededStore(t)
	c := New(backing, NewFreecache(1), time.Second, nil)
	ctx := context.Background()

	_, err := c.GetSection(ctx, models.SectionHomepage)
	require.NoError(t, err)
	time.Sleep(2100 * time.Millisecond)
	_, err = c.GetSection(ctx, models.SectionHomepage)
	require.NoError(t, err)
	assert.Equal(t, int32(2), backing.gets.Load())
}

func TestCache_RecordsHitsAndMisses(t *testing.T) {
	backing := seededStore(t)
	reg := prometheus.NewRegistry()
	c := New(backing, NewFreecache(1), time.Minute, metrics.New(true, reg))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.GetSection(ctx, models.SectionHomepage)
		require.NoError(t, err)
	}

	counts := map[string]float64{}
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			counts[fam.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["content_cache_misses_total"])
	assert.Equal(t, 2.0, counts["content_cache_hits_total"])
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient("", ""))
}
