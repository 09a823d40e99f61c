package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/ministry-site/internal/models"
)

const prayerColumns = `id, name, email, request, is_public, prayer_count, created_at`

type PrayerRequestStore struct {
	db *DB
}

func scanPrayerRequest(row rowScanner) (models.PrayerRequest, error) {
	var p models.PrayerRequest
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Request, &p.IsPublic, &p.PrayerCount, &p.CreatedAt)
	return p, err
}

// List returns every request, newest first
func (s *PrayerRequestStore) List(ctx context.Context) ([]models.PrayerRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+prayerColumns+` FROM prayer_requests ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("error getting prayer requests: %w", err)
	}
	defer rows.Close()

	out := make([]models.PrayerRequest, 0)
	for rows.Next() {
		p, err := scanPrayerRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning prayer request: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PrayerRequestStore) Get(ctx context.Context, id string) (models.PrayerRequest, error) {
	p, err := scanPrayerRequest(s.db.QueryRowContext(ctx, `SELECT `+prayerColumns+` FROM prayer_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PrayerRequest{}, notFound("prayer request", id)
	}
	if err != nil {
		return models.PrayerRequest{}, fmt.Errorf("error getting prayer request: %w", err)
	}
	return p, nil
}

// Create stores a new request with a zero prayer count
func (s *PrayerRequestStore) Create(ctx context.Context, in models.PrayerRequest) (models.PrayerRequest, error) {
	query := `
		INSERT INTO prayer_requests (id, name, email, request, is_public, prayer_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW())
		RETURNING ` + prayerColumns

	p, err := scanPrayerRequest(s.db.QueryRowContext(ctx, query, uuid.NewString(), in.Name, in.Email, in.Request, in.IsPublic))
	if err != nil {
		return models.PrayerRequest{}, fmt.Errorf("error creating prayer request: %w", err)
	}
	return p, nil
}

// Replace overwrites the submitted fields; the prayer count is left alone
func (s *PrayerRequestStore) Replace(ctx context.Context, id string, in models.PrayerRequest) (models.PrayerRequest, error) {
	query := `
		UPDATE prayer_requests SET name = $1, email = $2, request = $3, is_public = $4
		WHERE id = $5
		RETURNING ` + prayerColumns

	p, err := scanPrayerRequest(s.db.QueryRowContext(ctx, query, in.Name, in.Email, in.Request, in.IsPublic, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PrayerRequest{}, notFound("prayer request", id)
	}
	if err != nil {
		return models.PrayerRequest{}, fmt.Errorf("error updating prayer request: %w", err)
	}
	return p, nil
}

func (s *PrayerRequestStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prayer_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting prayer request: %w", err)
	}
	return checkAffected(result, "prayer request", id)
}

// IncrementPrayerCount relies on the row lock taken by UPDATE so concurrent
// increments are never lost.
func (s *PrayerRequestStore) IncrementPrayerCount(ctx context.Context, id string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`UPDATE prayer_requests SET prayer_count = prayer_count + 1 WHERE id = $1 RETURNING prayer_count`, id).
		Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("prayer request", id)
	}
	if err != nil {
		return 0, fmt.Errorf("error incrementing prayer count: %w", err)
	}
	return count, nil
}
