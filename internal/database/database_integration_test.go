package database_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ministry-site/internal/database"
	"github.com/yourusername/ministry-site/internal/models"
	"github.com/yourusername/ministry-site/internal/store"
)

// openTestDB connects to TEST_DATABASE_URL and wipes the tables. The tests
// are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE singers, songs, prayer_requests, admin_content`)
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func TestSingerStore_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	singers := db.Stores().Singers

	created, err := singers.Create(ctx, models.Singer{Fname: "Mary", Lname: strPtr("Jones")})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := singers.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mary", got.Fname)

	updated, err := singers.Replace(ctx, created.ID, models.Singer{Fname: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.Fname)
	assert.Nil(t, updated.Lname)

	require.NoError(t, singers.Delete(ctx, created.ID))
	_, err = singers.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, singers.Delete(ctx, created.ID), store.ErrNotFound)
}

func TestSongStore_SearchAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	songs := db.Stores().Songs

	later := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	earlier := later.Add(-48 * time.Hour)
	_, err := songs.Create(ctx, models.Song{SongName: "How Great Thou Art", Artist: "Hine", DateTime: later})
	require.NoError(t, err)
	_, err = songs.Create(ctx, models.Song{SongName: "Amazing Grace", Artist: "Newton", Genre: strPtr("Hymn"), DateTime: earlier})
	require.NoError(t, err)

	all, err := songs.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amazing Grace", all[0].SongName)

	hits, err := songs.Search(ctx, "hymn")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Newton", hits[0].Artist)

	everything, err := songs.Search(ctx, "*")
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}

func TestPrayerRequestStore_ConcurrentIncrements(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	prayers := db.Stores().PrayerRequests

	p, err := prayers.Create(ctx, models.PrayerRequest{Name: "Ann", Request: "healing", PrayerCount: 40})
	require.NoError(t, err)
	assert.Equal(t, 0, p.PrayerCount)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := prayers.IncrementPrayerCount(ctx, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := prayers.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.PrayerCount)

	_, err = prayers.IncrementPrayerCount(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContentStore_Upsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	content := db.Stores().Content

	_, err := content.GetSection(ctx, models.SectionAbout)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = content.PutSection(ctx, models.SectionAbout, map[string]any{"title": "About us"})
	require.NoError(t, err)
	_, err = content.PutSection(ctx, models.SectionAbout, map[string]any{"title": "Who we are"})
	require.NoError(t, err)

	got, err := content.GetSection(ctx, models.SectionAbout)
	require.NoError(t, err)
	assert.Equal(t, "Who we are", got.Content["title"])

	sections, err := content.ListSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.SectionAbout}, sections)
}
