// Package idgen mints opaque session identifiers.
package idgen

import "github.com/google/uuid"

// Generator produces a fresh identifier on every call.
type Generator interface {
	Generate() string
}

// UUID generates canonical random (version 4) UUID strings.
type UUID struct{}

// Generate returns a new UUID such as "8f14e45f-ceea-4e7a-9c1b-1d2f0a3b4c5d".
func (UUID) Generate() string {
	return uuid.NewString()
}

// Func adapts an ordinary function to a Generator.
type Func func() string

// Generate calls f.
func (f Func) Generate() string {
	return f()
}
