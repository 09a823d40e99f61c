package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongRequest_ToSong_ParsesLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2025-03-09T10:30:00Z":      time.Date(2025, 3, 9, 10, 30, 0, 0, time.UTC),
		"2025-03-09T10:30:00-05:00": time.Date(2025, 3, 9, 15, 30, 0, 0, time.UTC),
		"2025-03-09T10:30":          time.Date(2025, 3, 9, 10, 30, 0, 0, time.UTC),
		"2025-03-09":                time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		req := SongRequest{SongName: "Amazing Grace", Artist: "John Newton", DateTime: in}
		song, err := req.ToSong()
		require.NoError(t, err, in)
		assert.True(t, want.Equal(song.DateTime), "%s parsed as %s", in, song.DateTime)
		assert.Equal(t, "Amazing Grace", song.SongName)
	}
}

func TestSongRequest_ToSong_RejectsGarbage(t *testing.T) {
	req := SongRequest{SongName: "x", Artist: "y", DateTime: "next sunday"}
	_, err := req.ToSong()
	assert.Error(t, err)
}

func TestMusicRow_Validate(t *testing.T) {
	assert.NoError(t, MusicRow{"a", "b", "c", "d", "e", "f", "g"}.Validate())
	assert.Error(t, MusicRow{"a", "b"}.Validate())
	assert.Error(t, MusicRow{"a", "b", "c", "d", "e", "f", "g", "h"}.Validate())
}

func TestMusicRow_Normalize(t *testing.T) {
	short := MusicRow{"Song", "Artist"}.Normalize()
	assert.Len(t, short, MusicRowWidth)
	assert.Equal(t, "Artist", short[ColArtist])
	assert.Equal(t, "", short[ColNotes])

	long := MusicRow{"1", "2", "3", "4", "5", "6", "7", "8"}.Normalize()
	assert.Equal(t, MusicRow{"1", "2", "3", "4", "5", "6", "7"}, long)
}

func TestValidSection(t *testing.T) {
	assert.True(t, ValidSection(SectionHomepage))
	assert.True(t, ValidSection("youth-camp_2025"))
	assert.False(t, ValidSection(""))
	assert.False(t, ValidSection("../etc"))
	assert.False(t, ValidSection("Homepage"))
}
