package typesense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ministry-site/internal/models"
)

func TestDocumentRoundTrip(t *testing.T) {
	album := "Live at Home"
	singer := "Anna"
	song := models.Song{
		ID:       "s1",
		SongName: "Way Maker",
		Artist:   "Sinach",
		Album:    &album,
		Singer:   &singer,
		DateTime: time.Date(2025, 3, 9, 10, 30, 0, 0, time.UTC),
	}

	doc := document(&song)
	assert.NotContains(t, doc, "genre")
	assert.Equal(t, song.DateTime.Unix(), doc["date_time"])

	// search hits come back decoded from JSON, so numbers are float64
	doc["date_time"] = float64(song.DateTime.Unix())
	got := fromDocument(doc)
	assert.Equal(t, song.ID, got.ID)
	assert.Equal(t, song.SongName, got.SongName)
	assert.Equal(t, "Live at Home", *got.Album)
	assert.Nil(t, got.Genre)
	assert.True(t, song.DateTime.Equal(got.DateTime))
}
