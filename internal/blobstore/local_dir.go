package blobstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"smolpaste/internal/ingest"
)

// LocalDir stores one file per paste in a single flat directory.
type LocalDir struct {
	root string
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name string
	Size int64
}

// NewLocalDir creates a blob store rooted at root and ensures the directory exists.
func NewLocalDir(root string) (*LocalDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	d := &LocalDir{root: abs}
	if err := d.EnsureDir(); err != nil {
		return nil, err
	}
	return d, nil
}

// Root returns the absolute storage directory.
func (d *LocalDir) Root() string {
	return d.root
}

// EnsureDir creates the storage directory and its parents. Idempotent.
func (d *LocalDir) EnsureDir() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("create storage dir %s: %w", d.root, err)
	}
	return nil
}

// Create streams r into a new file named filename. It fails if the file
// already exists.
func (d *LocalDir) Create(ctx context.Context, filename string, r io.Reader, limit int64) (ingest.Result, error) {
	var zero ingest.Result
	if d == nil {
		return zero, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	path, err := d.pathFor(filename)
	if err != nil {
		return zero, err
	}
	return ingest.ToFile(ctx, path, r, limit)
}

// Remove unlinks filename. A missing file is an error.
func (d *LocalDir) Remove(ctx context.Context, filename string) error {
	if d == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.pathFor(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

// Open returns a reader for a stored file.
func (d *LocalDir) Open(filename string) (*os.File, error) {
	path, err := d.pathFor(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// List returns the regular files in the storage directory, sorted by name.
func (d *LocalDir) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	out := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		out = append(out, FileInfo{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *LocalDir) pathFor(filename string) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}
	return filepath.Join(d.root, filename), nil
}

func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename is required")
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("invalid filename %q", filename)
	}
	if strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename must be a single path element")
	}
	if !fs.ValidPath(filename) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	return nil
}
