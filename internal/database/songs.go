package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yourusername/ministry-site/internal/models"
)

const songColumns = `id, song_name, artist, album, genre, url, lyrics, notes, date_time, singer, created_at, updated_at`

type SongStore struct {
	db *DB
}

func scanSong(row rowScanner) (models.Song, error) {
	var s models.Song
	err := row.Scan(&s.ID, &s.SongName, &s.Artist, &s.Album, &s.Genre, &s.URL, &s.Lyrics, &s.Notes,
		&s.DateTime, &s.Singer, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (s *SongStore) query(ctx context.Context, query string, args ...any) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error getting songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// List retrieves all songs ordered by their scheduled date
func (s *SongStore) List(ctx context.Context) ([]models.Song, error) {
	return s.query(ctx, `SELECT `+songColumns+` FROM songs ORDER BY date_time, created_at`)
}

// Search matches the query against name, artist, album and genre.
// An empty query or "*" returns every song.
func (s *SongStore) Search(ctx context.Context, query string) ([]models.Song, error) {
	q := strings.TrimSpace(query)
	if q == "" || q == "*" {
		return s.List(ctx)
	}
	return s.query(ctx, `
		SELECT `+songColumns+` FROM songs
		WHERE song_name ILIKE $1 OR artist ILIKE $1 OR album ILIKE $1 OR genre ILIKE $1
		ORDER BY date_time, created_at`, "%"+q+"%")
}

// Get retrieves a song by ID
func (s *SongStore) Get(ctx context.Context, id string) (models.Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, notFound("song", id)
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("error getting song: %w", err)
	}
	return song, nil
}

// Create inserts a new song into the database
func (s *SongStore) Create(ctx context.Context, in models.Song) (models.Song, error) {
	query := `
		INSERT INTO songs (id, song_name, artist, album, genre, url, lyrics, notes, date_time, singer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + songColumns

	song, err := scanSong(s.db.QueryRowContext(ctx, query, uuid.NewString(), in.SongName, in.Artist, in.Album,
		in.Genre, in.URL, in.Lyrics, in.Notes, in.DateTime, in.Singer))
	if err != nil {
		return models.Song{}, fmt.Errorf("error creating song: %w", err)
	}
	return song, nil
}

// Replace overwrites every mutable field of a song
func (s *SongStore) Replace(ctx context.Context, id string, in models.Song) (models.Song, error) {
	query := `
		UPDATE songs SET song_name = $1, artist = $2, album = $3, genre = $4, url = $5, lyrics = $6,
			notes = $7, date_time = $8, singer = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING ` + songColumns

	song, err := scanSong(s.db.QueryRowContext(ctx, query, in.SongName, in.Artist, in.Album, in.Genre, in.URL,
		in.Lyrics, in.Notes, in.DateTime, in.Singer, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, notFound("song", id)
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("error updating song: %w", err)
	}
	return song, nil
}

// Delete deletes a song by ID
func (s *SongStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting song: %w", err)
	}
	return checkAffected(result, "song", id)
}
