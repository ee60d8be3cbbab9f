// Package dice provides the randomness abstraction and d6 pool types consumed
// by the Titan check engine.
package dice

import (
	"errors"
	"fmt"
)

// Sides is the number of faces on every die in a Titan pool.
const Sides = 6

var (
	// ErrExhausted is returned by FixedRoller when no predetermined faces remain.
	ErrExhausted = errors.New("dice: no predetermined faces remaining")
	// ErrInvalidFace is returned when a face falls outside [1, Sides].
	ErrInvalidFace = errors.New("dice: face out of range")
)

// Pool holds the audit trail of a single pool roll.
//
// Invariant: every element of Faces is in [1, Sides].
type Pool struct {
	Faces []int
}

// Count returns the number of dice in the pool.
func (p Pool) Count() int { return len(p.Faces) }

// String returns a human-readable audit string in the format:
//
//	"3d6 → [5 3 2]"
func (p Pool) String() string {
	return fmt.Sprintf("%dd%d → %v", len(p.Faces), Sides, p.Faces)
}

// ValidFace reports whether f is a legal d6 face.
func ValidFace(f int) bool { return f >= 1 && f <= Sides }

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
