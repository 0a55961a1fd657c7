package utils

import "github.com/google/uuid"

// NewID returns a fresh unique identifier with a readable prefix,
// e.g. "msg-8f14e45f-...". Prefix may be empty.
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
