package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/store"
)

func ptr(s string) *string { return &s }

func TestSingers_CreateGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := New().Singers

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		created, err := s.Create(ctx, models.Singer{Fname: "Mary", Lname: ptr("Magdalene")})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	}
}

func TestSingers_MissingIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New().Singers

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Replace(ctx, "missing", models.Singer{Fname: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "missing"), store.ErrNotFound)
}

func TestSingers_ReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return fixed }).Singers

	created, err := s.Create(ctx, models.Singer{Fname: "Ruth"})
	require.NoError(t, err)

	update := models.Singer{Fname: "Naomi", Mname: ptr("B"), Lname: ptr("Moab")}
	first, err := s.Replace(ctx, created.ID, update)
	require.NoError(t, err)
	second, err := s.Replace(ctx, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, created.ID, second.ID)
	assert.Equal(t, created.CreatedAt, second.CreatedAt)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Naomi", list[0].Fname)
}

func TestSingers_DeleteRemoves(t *testing.T) {
	ctx := context.Background()
	s := New().Singers

	a, _ := s.Create(ctx, models.Singer{Fname: "A"})
	b, _ := s.Create(ctx, models.Singer{Fname: "B"})
	require.NoError(t, s.Delete(ctx, a.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestSongs_ListOrderedByDateAndSearch(t *testing.T) {
	ctx := context.Background()
	s := New().Songs

	late := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	early := late.Add(-48 * time.Hour)
	_, err := s.Create(ctx, models.Song{SongName: "How Great Thou Art", Artist: "Carl Boberg", DateTime: late})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.Song{SongName: "Oceans", Artist: "Hillsong United", Genre: ptr("Worship"), DateTime: early})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Oceans", list[0].SongName)

	found, err := s.Search(ctx, "worship")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Oceans", found[0].SongName)

	all, err := s.Search(ctx, "*")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPrayerRequests_ConcurrentIncrementsAreNotLost(t *testing.T) {
	ctx := context.Background()
	p := New().PrayerRequests

	created, err := p.Create(ctx, models.PrayerRequest{Name: "Anna", Request: "healing"})
	require.NoError(t, err)
	require.Equal(t, 0, created.PrayerCount)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.IncrementPrayerCount(ctx, created.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := p.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PrayerCount)
}

func TestPrayerRequests_ReplaceKeepsCount(t *testing.T) {
	ctx := context.Background()
	p := New().PrayerRequests

	created, _ := p.Create(ctx, models.PrayerRequest{Name: "Anna", Request: "healing", PrayerCount: 99})
	assert.Equal(t, 0, created.PrayerCount)

	_, err := p.IncrementPrayerCount(ctx, created.ID)
	require.NoError(t, err)

	replaced, err := p.Replace(ctx, created.ID, models.PrayerRequest{Name: "Anna", Request: "strength"})
	require.NoError(t, err)
	assert.Equal(t, 1, replaced.PrayerCount)

	_, err = p.IncrementPrayerCount(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContent_PutGetList(t *testing.T) {
	ctx := context.Background()
	c := New().Content

	_, err := c.GetSection(ctx, models.SectionHomepage)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = c.PutSection(ctx, models.SectionShop, map[string]any{"title": "Shop"})
	require.NoError(t, err)
	saved, err := c.PutSection(ctx, models.SectionHomepage, map[string]any{"heroTitle": "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, models.SectionHomepage, saved.Section)

	got, err := c.GetSection(ctx, models.SectionHomepage)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", got.Content["heroTitle"])

	got.Content["heroTitle"] = "mutated"
	again, _ := c.GetSection(ctx, models.SectionHomepage)
	assert.Equal(t, "Welcome", again.Content["heroTitle"])

	sections, err := c.ListSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.SectionHomepage, models.SectionShop}, sections)
}
