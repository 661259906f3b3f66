package store

import "github.com/google/uuid"

// NewPasteID returns a fresh version 4 UUID in canonical lowercase form.
func NewPasteID() string {
	return uuid.New().String()
}

// NewTokenValue returns a fresh random token value.
func NewTokenValue() string {
	return uuid.New().String()
}

// IsCanonicalID reports whether id is a canonical lowercase hyphenated UUID.
func IsCanonicalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.String() == id
}
