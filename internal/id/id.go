package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out identifiers for new ledger entities.
type Generator interface {
	NewID() string
}

// UUID generates random version 4 UUIDs.
type UUID struct{}

// NewID implements Generator.
func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates "<prefix>-1", "<prefix>-2", ... and is meant for tests
// and fixtures that need stable identifiers.
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}

// Valid reports whether s is a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
