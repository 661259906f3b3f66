package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"smolpaste/internal/models"
)

// InsertPaste records one paste row.
func (s *Store) InsertPaste(ctx context.Context, paste models.Paste) error {
	if strings.TrimSpace(paste.ID) == "" {
		return fmt.Errorf("paste id is required")
	}
	if strings.TrimSpace(paste.Filename) == "" {
		return fmt.Errorf("paste filename is required")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var digest any
	if paste.Digest != "" {
		digest = paste.Digest
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pastes (id, size, filename, timestamp, digest)
		VALUES (?, ?, ?, ?, ?)
	`, paste.ID, int64(paste.Size), paste.Filename, paste.Timestamp, digest)
	return err
}

// PopPasteFilename deletes the paste row for id and returns its filename in
// one statement, so concurrent deletes of the same id see one success.
func (s *Store) PopPasteFilename(ctx context.Context, id string) (string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var filename sql.NullString
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM pastes
		WHERE id = ?
		RETURNING filename
	`, id).Scan(&filename)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return filename.String, nil
}

// GetPaste returns one paste row by id.
func (s *Store) GetPaste(ctx context.Context, id string) (*models.Paste, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, size, filename, timestamp, digest
		FROM pastes
		WHERE id = ?
	`, id)
	paste, err := scanPaste(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &paste, nil
}

// ListPastes returns every paste row ordered by filename. It backs the
// reconciliation sweep and is not exposed over HTTP.
func (s *Store) ListPastes(ctx context.Context) ([]models.Paste, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, size, filename, timestamp, digest
		FROM pastes
		ORDER BY filename ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pastes := make([]models.Paste, 0)
	for rows.Next() {
		paste, err := scanPaste(rows)
		if err != nil {
			return nil, err
		}
		pastes = append(pastes, paste)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pastes, nil
}

// DeletePaste removes a paste row without touching the blob store.
func (s *Store) DeletePaste(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, "DELETE FROM pastes WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanPaste(scanner interface {
	Scan(dest ...any) error
}) (models.Paste, error) {
	var paste models.Paste
	var size sql.NullInt64
	var filename sql.NullString
	var timestamp sql.NullInt64
	var digest sql.NullString
	if err := scanner.Scan(&paste.ID, &size, &filename, &timestamp, &digest); err != nil {
		return models.Paste{}, err
	}
	if size.Int64 < 0 || size.Int64 > models.MaxPasteSize {
		return models.Paste{}, fmt.Errorf("paste %s: size %d out of range", paste.ID, size.Int64)
	}
	paste.Size = uint32(size.Int64)
	paste.Filename = filename.String
	paste.Timestamp = timestamp.Int64
	paste.Digest = digest.String
	return paste, nil
}
