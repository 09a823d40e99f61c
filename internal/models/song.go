package models

import (
	"fmt"
	"time"
)

// Song is a composition scheduled in the music line-up. Singer holds the
// singer's first name as plain text; it is not a reference.
type Song struct {
	ID        string    `json:"id" db:"id"`
	SongName  string    `json:"songName" db:"song_name"`
	Artist    string    `json:"artist" db:"artist"`
	Album     *string   `json:"album,omitempty" db:"album"`
	Genre     *string   `json:"genre,omitempty" db:"genre"`
	URL       *string   `json:"url,omitempty" db:"url"`
	Lyrics    *string   `json:"lyrics,omitempty" db:"lyrics"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	DateTime  time.Time `json:"dateTime" db:"date_time"`
	Singer    *string   `json:"singer,omitempty" db:"singer"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type SongRequest struct {
	SongName string  `json:"songName" validate:"required"`
	Artist   string  `json:"artist" validate:"required"`
	Album    *string `json:"album,omitempty"`
	Genre    *string `json:"genre,omitempty"`
	URL      *string `json:"url,omitempty"`
	Lyrics   *string `json:"lyrics,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	DateTime string  `json:"dateTime" validate:"required"`
	Singer   *string `json:"singer,omitempty"`
}

// dateLayouts are tried in order when parsing SongRequest.DateTime.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ToSong parses the scheduled date-time and returns the Song it describes.
func (r *SongRequest) ToSong() (Song, error) {
	var (
		when time.Time
		err  error
	)
	for _, layout := range dateLayouts {
		when, err = time.Parse(layout, r.DateTime)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Song{}, fmt.Errorf("invalid dateTime %q", r.DateTime)
	}

	return Song{
		SongName: r.SongName,
		Artist:   r.Artist,
		Album:    r.Album,
		Genre:    r.Genre,
		URL:      r.URL,
		Lyrics:   r.Lyrics,
		Notes:    r.Notes,
		DateTime: when.UTC(),
		Singer:   r.Singer,
	}, nil
}

type SearchResult struct {
	Songs      []Song `json:"songs"`
	TotalFound int    `json:"total_found"`
	SearchTime int    `json:"search_time_ms"`
}
