// Package reconcile compares paste rows with the files in the storage
// directory and optionally repairs drift between them.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"smolpaste/internal/blobstore"
	"smolpaste/internal/ingest"
	"smolpaste/internal/store"
)

// IssueKind classifies one inconsistency.
type IssueKind string

const (
	OrphanedFile   IssueKind = "orphaned_file"
	MissingFile    IssueKind = "missing_file"
	SizeMismatch   IssueKind = "size_mismatch"
	DigestMismatch IssueKind = "digest_mismatch"
)

// Issue is one inconsistency between the metadata and the directory.
type Issue struct {
	Kind     IssueKind `json:"kind" yaml:"kind"`
	Filename string    `json:"filename" yaml:"filename"`
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Detail   string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	Repaired bool      `json:"repaired" yaml:"repaired"`
}

// Report summarizes one sweep.
type Report struct {
	Rows     int     `json:"rows" yaml:"rows"`
	Files    int     `json:"files" yaml:"files"`
	Verified bool    `json:"verified" yaml:"verified"`
	Applied  bool    `json:"applied" yaml:"applied"`
	Issues   []Issue `json:"issues" yaml:"issues"`
}

// Clean reports whether the sweep found nothing to fix.
func (r Report) Clean() bool {
	return len(r.Issues) == 0
}

// Options controls a sweep.
type Options struct {
	// Apply removes orphaned files and rows whose file is missing.
	Apply bool
	// Verify rehashes every file with a recorded digest.
	Verify bool
	Logger *slog.Logger
}

// Run walks every row and every file once. Size and digest mismatches are
// only reported; they are never repaired automatically.
func Run(ctx context.Context, rows store.ReconcileStore, dir *blobstore.LocalDir, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := Report{Verified: opts.Verify, Applied: opts.Apply, Issues: []Issue{}}

	pastes, err := rows.ListPastes(ctx)
	if err != nil {
		return report, fmt.Errorf("list pastes: %w", err)
	}
	files, err := dir.List()
	if err != nil {
		return report, fmt.Errorf("list storage dir: %w", err)
	}
	report.Rows = len(pastes)
	report.Files = len(files)

	sizes := make(map[string]int64, len(files))
	for _, f := range files {
		sizes[f.Name] = f.Size
	}
	known := make(map[string]struct{}, len(pastes))

	for _, paste := range pastes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		known[paste.Filename] = struct{}{}

		size, ok := sizes[paste.Filename]
		if !ok {
			issue := Issue{Kind: MissingFile, Filename: paste.Filename, ID: paste.ID}
			if opts.Apply {
				deleted, err := rows.DeletePaste(ctx, paste.ID)
				if err != nil {
					return report, fmt.Errorf("delete paste %s: %w", paste.ID, err)
				}
				issue.Repaired = deleted
				logger.Info("removed paste row without file", "id", paste.ID, "filename", paste.Filename)
			}
			report.Issues = append(report.Issues, issue)
			continue
		}

		if size != int64(paste.Size) {
			report.Issues = append(report.Issues, Issue{
				Kind:     SizeMismatch,
				Filename: paste.Filename,
				ID:       paste.ID,
				Detail:   fmt.Sprintf("row says %d bytes, file has %d", paste.Size, size),
			})
			continue
		}

		if opts.Verify && paste.Digest != "" {
			digest, err := digestOf(dir, paste.Filename)
			if err != nil {
				return report, err
			}
			if digest != paste.Digest {
				report.Issues = append(report.Issues, Issue{
					Kind:     DigestMismatch,
					Filename: paste.Filename,
					ID:       paste.ID,
					Detail:   fmt.Sprintf("row says %s, file hashes to %s", paste.Digest, digest),
				})
			}
		}
	}

	for _, f := range files {
		if _, ok := known[f.Name]; ok {
			continue
		}
		issue := Issue{Kind: OrphanedFile, Filename: f.Name}
		if opts.Apply {
			err := dir.Remove(ctx, f.Name)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return report, fmt.Errorf("remove orphaned file: %w", err)
			}
			issue.Repaired = true
			logger.Info("removed orphaned file", "filename", f.Name)
		}
		report.Issues = append(report.Issues, issue)
	}

	return report, nil
}

func digestOf(dir *blobstore.LocalDir, filename string) (string, error) {
	f, err := dir.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	digest, err := ingest.Digest(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", filename, err)
	}
	return digest, nil
}
