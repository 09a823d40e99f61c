package bible

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const john316 = `{
  "reference": "John 3:16",
  "verses": [{"book_id": "JHN", "book_name": "John", "chapter": 3, "verse": 16,
    "text": "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.\n"}],
  "text": "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.\n",
  "translation_id": "kjv",
  "translation_name": "King James Version",
  "translation_note": "Public Domain"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(srv.URL + "/")
	t.Cleanup(func() {
		c.httpClient.CloseIdleConnections()
		srv.Close()
	})
	return c
}

func TestVerse_JohnKJV(t *testing.T) {
	var gotPath, gotTranslation string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTranslation = r.URL.Query().Get("translation")
		_, _ = io.WriteString(w, john316)
	})

	p, err := c.Verse(context.Background(), "John 3:16", "kjv")
	require.NoError(t, err)
	assert.Equal(t, "/John 3:16", gotPath)
	assert.Equal(t, "kjv", gotTranslation)
	assert.Equal(t, "John 3:16", p.Reference)
	assert.NotEmpty(t, p.Text)
	assert.Equal(t, "King James Version (KJV)", p.Translation)
	require.Len(t, p.Verses, 1)
	assert.Equal(t, 16, p.Verses[0].Verse)
}

func TestVerse_DefaultsToKJV(t *testing.T) {
	var gotTranslation string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotTranslation = r.URL.Query().Get("translation")
		_, _ = io.WriteString(w, john316)
	})

	_, err := c.Verse(context.Background(), "John 3:16", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTranslation, gotTranslation)
}

func TestVerse_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Hezekiah 1:1":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"not found"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	ctx := context.Background()

	_, err := c.Verse(ctx, "  ", "kjv")
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = c.Verse(ctx, "John 3:16", "../../etc")
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = c.Verse(ctx, "Hezekiah 1:1", "kjv")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Verse(ctx, "John 1:1", "kjv")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "502")
}

func TestVerseOfTheDay_StablePerDay(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, john316)
	})
	morning := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 2, 1, 21, 0, 0, 0, time.UTC)

	_, err := c.VerseOfTheDay(context.Background(), morning)
	require.NoError(t, err)
	_, err = c.VerseOfTheDay(context.Background(), evening)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, paths[0], paths[1])
	assert.Equal(t, "/"+DailyReferences[32%len(DailyReferences)], paths[0])
}

func TestRandom_UsesPicker(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, john316)
	})
	c.pick = func(n int) int { return n - 1 }

	_, err := c.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/"+DailyReferences[len(DailyReferences)-1], path)
}
