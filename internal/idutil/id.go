// Package idutil centralizes identifier generation so every entity in
// Tessera is keyed the same way: a random UUID v4 string.
package idutil

import "github.com/google/uuid"

// New returns a new random UUID v4 as its canonical string form.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID in any RFC 4122 variant.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
