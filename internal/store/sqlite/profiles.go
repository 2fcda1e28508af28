package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lu-zhengda/assist/internal/domain"
	"github.com/lu-zhengda/assist/internal/store"
)

// EnsureProfile returns the profile for baseURL, creating it on first use.
// last_used is bumped either way.
func (s *DB) EnsureProfile(ctx context.Context, baseURL string) (*domain.Profile, error) {
	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, base_url, created_at, last_used)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			last_used = excluded.last_used`,
		uuid.NewString(), baseURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile for %s: %w", baseURL, err)
	}
	return s.GetProfile(ctx, baseURL)
}

func (s *DB) GetProfile(ctx context.Context, baseURL string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, base_url, created_at, last_used FROM profiles WHERE base_url = ?`, baseURL,
	).Scan(&p.ID, &p.BaseURL, &p.CreatedAt, &p.LastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", baseURL, err)
	}
	return &p, nil
}

func (s *DB) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base_url, created_at, last_used FROM profiles ORDER BY last_used DESC, base_url`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.BaseURL, &p.CreatedAt, &p.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *DB) DeleteProfile(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return nil
}
