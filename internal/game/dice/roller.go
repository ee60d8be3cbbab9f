package dice

import (
	"context"
	"fmt"
)

// PoolRoller produces the raw faces for a check. Implementations may block
// (e.g. a network-synchronized roll), so the call takes a context.
//
// Postcondition: on success len(faces) == n and every face is in [1, Sides].
type PoolRoller interface {
	RollPool(ctx context.Context, n int) ([]int, error)
}

// RollerFunc adapts a plain function to PoolRoller.
type RollerFunc func(ctx context.Context, n int) ([]int, error)

// RollPool calls f.
func (f RollerFunc) RollPool(ctx context.Context, n int) ([]int, error) {
	return f(ctx, n)
}

// RollPool rolls n d6 from src in source order.
//
// Precondition: n >= 0; src must be non-nil.
// Postcondition: len(result.Faces) == n; every face is in [1, Sides].
func RollPool(n int, src Source) (Pool, error) {
	if n < 0 {
		return Pool{}, fmt.Errorf("dice: invalid pool size %d: must be >= 0", n)
	}
	faces := make([]int, n)
	for i := range faces {
		faces[i] = src.Intn(Sides) + 1
	}
	return Pool{Faces: faces}, nil
}
