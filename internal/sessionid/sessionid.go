// Package sessionid generates the random version 4 UUIDs used as session identifiers.
package sessionid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ErrInvalidSeed is returned when seed data is not exactly 16 bytes.
var ErrInvalidSeed = errors.New("session id seed must be exactly 16 bytes")

// Default reads from crypto/rand.
var Default = &Generator{}

// Generator produces session identifiers from a source of random bytes.
type Generator struct {
	// Reader supplies the random bytes, crypto/rand when nil.
	Reader io.Reader
}

// New returns a new random version 4 UUID rendered in canonical lowercase form.
func (g *Generator) New() (string, error) {
	r := g.Reader
	if r == nil {
		r = rand.Reader
	}

	seed := make([]byte, 16)
	if _, err := io.ReadFull(r, seed); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return FromSeed(seed)
}

// FromSeed renders the 16 bytes of seed as a version 4, RFC 4122 variant UUID.
// The caller's slice is not modified.
func FromSeed(seed []byte) (string, error) {
	if len(seed) != 16 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidSeed, len(seed))
	}

	var b uuid.UUID
	copy(b[:], seed)

	b[6] = (b[6] & 0x0F) | 0x40 // version 4
	b[8] = (b[8] & 0x3F) | 0x80 // variant 10

	return b.String(), nil
}

// Valid reports whether s is a canonical lowercase version 4 UUID.
func Valid(s string) bool {
	if len(s) != 36 {
		return false
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}

	return id.Version() == 4 && id.Variant() == uuid.RFC4122 && id.String() == s
}
