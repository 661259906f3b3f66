package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"smolpaste/internal/models"
)

// CountToken returns the number of token rows whose value equals value.
func (s *Store) CountToken(ctx context.Context, value string) (int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tokens WHERE value = ?", value).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// InsertToken provisions one token. Tokens are created by operators only.
func (s *Store) InsertToken(ctx context.Context, value string, now time.Time) (*models.Token, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("token value is required")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (value, created_at)
		VALUES (?, ?)
	`, value, now.Unix())
	if err != nil {
		return nil, err
	}
	return &models.Token{Value: value, CreatedAt: now.Unix()}, nil
}

// ListTokens returns all provisioned tokens, oldest first.
func (s *Store) ListTokens(ctx context.Context) ([]models.Token, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, created_at
		FROM tokens
		ORDER BY created_at ASC, value ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]models.Token, 0)
	for rows.Next() {
		var value sql.NullString
		var createdAt sql.NullInt64
		if err := rows.Scan(&value, &createdAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, models.Token{Value: value.String, CreatedAt: createdAt.Int64})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken revokes a token by value.
func (s *Store) DeleteToken(ctx context.Context, value string) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, "DELETE FROM tokens WHERE value = ?", value)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
