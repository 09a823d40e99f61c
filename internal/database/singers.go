package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/ministry-site/internal/models"
)

const singerColumns = `id, fname, mname, lname, created_at, updated_at`

type SingerStore struct {
	db *DB
}

func scanSinger(row rowScanner) (models.Singer, error) {
	var s models.Singer
	err := row.Scan(&s.ID, &s.Fname, &s.Mname, &s.Lname, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List retrieves all singers in creation order
func (s *SingerStore) List(ctx context.Context) ([]models.Singer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+singerColumns+` FROM singers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("error getting singers: %w", err)
	}
	defer rows.Close()

	singers := make([]models.Singer, 0)
	for rows.Next() {
		singer, err := scanSinger(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning singer: %w", err)
		}
		singers = append(singers, singer)
	}
	return singers, rows.Err()
}

// Get retrieves a singer by ID
func (s *SingerStore) Get(ctx context.Context, id string) (models.Singer, error) {
	singer, err := scanSinger(s.db.QueryRowContext(ctx, `SELECT `+singerColumns+` FROM singers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Singer{}, notFound("singer", id)
	}
	if err != nil {
		return models.Singer{}, fmt.Errorf("error getting singer: %w", err)
	}
	return singer, nil
}

// Create inserts a new singer with a generated ID
func (s *SingerStore) Create(ctx context.Context, in models.Singer) (models.Singer, error) {
	query := `
		INSERT INTO singers (id, fname, mname, lname, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + singerColumns

	singer, err := scanSinger(s.db.QueryRowContext(ctx, query, uuid.NewString(), in.Fname, in.Mname, in.Lname))
	if err != nil {
		return models.Singer{}, fmt.Errorf("error creating singer: %w", err)
	}
	return singer, nil
}

// Replace overwrites the three name fields
func (s *SingerStore) Replace(ctx context.Context, id string, in models.Singer) (models.Singer, error) {
	query := `
		UPDATE singers SET fname = $1, mname = $2, lname = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + singerColumns

	singer, err := scanSinger(s.db.QueryRowContext(ctx, query, in.Fname, in.Mname, in.Lname, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Singer{}, notFound("singer", id)
	}
	if err != nil {
		return models.Singer{}, fmt.Errorf("error updating singer: %w", err)
	}
	return singer, nil
}

// Delete deletes a singer by ID
func (s *SingerStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM singers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting singer: %w", err)
	}
	return checkAffected(result, "singer", id)
}
