package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a time-ordered identifier. UUIDv7 strings sort lexicographically
// in creation order, which keeps cursor pagination stable across stores.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsValidID reports whether s is a syntactically valid identifier.
func IsValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NormalizeID lowercases a valid identifier so that string comparison matches
// the store ordering. Invalid input is returned unchanged.
func NormalizeID(s string) string {
	if !IsValidID(s) {
		return s
	}
	return strings.ToLower(s)
}
