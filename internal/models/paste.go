package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxPasteSize is the largest payload a paste row can describe.
const MaxPasteSize int64 = 1<<32 - 1

// Paste is the metadata row for one stored blob.
type Paste struct {
	ID        string `json:"id" yaml:"id"`
	Size      uint32 `json:"size" yaml:"size"`
	Filename  string `json:"filename" yaml:"filename"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	Digest    string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// CreatedAt returns the creation time in UTC.
func (p Paste) CreatedAt() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// Token is a pre-provisioned bearer credential.
type Token struct {
	Value     string `json:"value" yaml:"value"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
}

// StoredFilename builds the on-disk name for a paste id and an optional extension.
func StoredFilename(id, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return id
	}
	return fmt.Sprintf("%s.%s", id, ext)
}
