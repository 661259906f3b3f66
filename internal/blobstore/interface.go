package blobstore

import (
	"context"
	"io"
	"net/http"

	"smolpaste/internal/ingest"
)

// BlobStore is the byte-storage abstraction behind the paste routes.
type BlobStore interface {
	Create(ctx context.Context, filename string, r io.Reader, limit int64) (ingest.Result, error)
	Remove(ctx context.Context, filename string) error
	Handler() http.Handler
}

var _ BlobStore = (*LocalDir)(nil)
