package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/yourusername/ministry-site/internal/models"
)

type ContentStore struct {
	db *DB
}

func (s *ContentStore) ListSections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT section FROM admin_content ORDER BY section`)
	if err != nil {
		return nil, fmt.Errorf("error listing sections: %w", err)
	}
	defer rows.Close()

	sections := make([]string, 0)
	for rows.Next() {
		var section string
		if err := rows.Scan(&section); err != nil {
			return nil, fmt.Errorf("error scanning section: %w", err)
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

func (s *ContentStore) GetSection(ctx context.Context, section string) (models.AdminContent, error) {
	var (
		out models.AdminContent
		raw []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT section, content, updated_at FROM admin_content WHERE section = $1`, section).
		Scan(&out.Section, &raw, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminContent{}, notFound("section", section)
	}
	if err != nil {
		return models.AdminContent{}, fmt.Errorf("error getting section: %w", err)
	}
	if err := json.Unmarshal(raw, &out.Content); err != nil {
		return models.AdminContent{}, fmt.Errorf("error decoding section %s: %w", section, err)
	}
	return out, nil
}

// PutSection upserts the whole blob of a section.
func (s *ContentStore) PutSection(ctx context.Context, section string, content map[string]any) (models.AdminContent, error) {
	if content == nil {
		content = map[string]any{}
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return models.AdminContent{}, fmt.Errorf("error encoding section %s: %w", section, err)
	}

	out := models.AdminContent{Section: section, Content: content}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO admin_content (section, content, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (section) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
		RETURNING updated_at`, section, raw).Scan(&out.UpdatedAt)
	if err != nil {
		return models.AdminContent{}, fmt.Errorf("error saving section: %w", err)
	}
	return out, nil
}
