package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lu-zhengda/assist/internal/domain"
)

// GetMailSession retrieves the saved paging session for a profile.
// If none exists, it returns a first-page session.
func (s *DB) GetMailSession(ctx context.Context, profileID string) (*domain.MailSession, error) {
	var (
		sess   domain.MailSession
		filter string
		tokens string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT integration_id, filter, search, base_query, tokens, page_index, next_token, updated_at
		FROM mail_sessions WHERE profile_id = ?`,
		profileID,
	).Scan(&sess.IntegrationID, &filter, &sess.Search, &sess.BaseQuery, &tokens, &sess.PageIndex, &sess.NextToken, &sess.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return &domain.MailSession{Filter: domain.FilterAll, Tokens: []string{""}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mail session for %s: %w", profileID, err)
	}

	sess.Filter = domain.EmailFilter(filter)
	if err := json.Unmarshal([]byte(tokens), &sess.Tokens); err != nil {
		return nil, fmt.Errorf("failed to decode page tokens for %s: %w", profileID, err)
	}
	return &sess, nil
}

// SaveMailSession inserts or updates the paging session for a profile.
func (s *DB) SaveMailSession(ctx context.Context, profileID string, sess domain.MailSession) error {
	tokens := sess.Tokens
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode page tokens: %w", err)
	}
	filter := sess.Filter
	if filter == "" {
		filter = domain.FilterAll
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mail_sessions (profile_id, integration_id, filter, search, base_query, tokens, page_index, next_token, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			integration_id = excluded.integration_id,
			filter         = excluded.filter,
			search         = excluded.search,
			base_query     = excluded.base_query,
			tokens         = excluded.tokens,
			page_index     = excluded.page_index,
			next_token     = excluded.next_token,
			updated_at     = excluded.updated_at`,
		profileID, sess.IntegrationID, string(filter), sess.Search, sess.BaseQuery,
		string(data), sess.PageIndex, sess.NextToken, s.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save mail session for %s: %w", profileID, err)
	}
	return nil
}

func (s *DB) ClearMailSession(ctx context.Context, profileID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mail_sessions WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("failed to clear mail session for %s: %w", profileID, err)
	}
	return nil
}
