package store

import (
	"context"
	"time"

	"smolpaste/internal/models"
)

// PasteStore is the narrow set of queries the HTTP surface needs.
type PasteStore interface {
	CountToken(ctx context.Context, value string) (int, error)
	InsertPaste(ctx context.Context, paste models.Paste) error
	PopPasteFilename(ctx context.Context, id string) (string, error)
	Ping(ctx context.Context) error
}

// TokenStore abstracts operator token management.
type TokenStore interface {
	InsertToken(ctx context.Context, value string, now time.Time) (*models.Token, error)
	ListTokens(ctx context.Context) ([]models.Token, error)
	DeleteToken(ctx context.Context, value string) (bool, error)
}

// ReconcileStore is what the reconciliation sweep reads and repairs.
type ReconcileStore interface {
	ListPastes(ctx context.Context) ([]models.Paste, error)
	DeletePaste(ctx context.Context, id string) (bool, error)
}

var (
	_ PasteStore     = (*Store)(nil)
	_ TokenStore     = (*Store)(nil)
	_ ReconcileStore = (*Store)(nil)
)
