// Package ingest streams request bodies of unknown length to disk without
// holding the payload in memory.
package ingest

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"

	"smolpaste/internal/models"
)

const writeBufferSize = 64 << 10

// ErrTooLarge is returned when the source yields more bytes than allowed.
var ErrTooLarge = errors.New("payload exceeds upload limit")

// Result describes one completed copy.
type Result struct {
	Size   uint32
	Digest string
}

// ToFile creates path with create-new semantics and copies src into it.
// A partially written file is left in place on error; the caller owns cleanup.
func ToFile(ctx context.Context, path string, src io.Reader, limit int64) (Result, error) {
	var zero Result
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return zero, err
	}

	res, err := Copy(ctx, f, src, limit)
	if err != nil {
		_ = f.Close()
		return zero, err
	}
	if err := f.Close(); err != nil {
		return zero, fmt.Errorf("close %s: %w", path, err)
	}
	return res, nil
}

// Copy pipes src through a buffered writer into dst and reports the byte
// count and BLAKE2b-256 digest. limit is clamped to the 32-bit size range.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, limit int64) (Result, error) {
	var zero Result
	if src == nil {
		return zero, fmt.Errorf("source is required")
	}
	if limit <= 0 || limit > models.MaxPasteSize {
		limit = models.MaxPasteSize
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return zero, err
	}
	bw := bufio.NewWriterSize(dst, writeBufferSize)
	lr := &io.LimitedReader{R: contextReader{ctx: ctx, r: src}, N: limit + 1}

	n, err := io.Copy(io.MultiWriter(bw, h), lr)
	if err != nil {
		return zero, err
	}
	if n > limit {
		return zero, ErrTooLarge
	}
	if err := bw.Flush(); err != nil {
		return zero, err
	}

	return Result{Size: uint32(n), Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

// Digest computes the hex BLAKE2b-256 digest of r.
func Digest(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// contextReader stops a copy at the next chunk once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if c.ctx != nil {
		if err := c.ctx.Err(); err != nil {
			return 0, err
		}
	}
	return c.r.Read(p)
}
