// Package uuid generates record identifiers.
//
// Identifiers are UUIDv7 strings: a 48-bit millisecond timestamp followed by
// random bits, so they sort by creation time and collide with negligible
// probability.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a new time-ordered record id.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Entropy failure; a random v4 id is still unique enough.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
