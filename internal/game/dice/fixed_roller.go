package dice

import (
	"context"
	"fmt"
	"sync"
)

// FixedRoller implements PoolRoller with predetermined faces, consumed in order
// across calls. It is the fixture seam for tests and replays.
type FixedRoller struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixedRoller returns a FixedRoller that will hand out faces in order.
func NewFixedRoller(faces ...int) *FixedRoller {
	cp := make([]int, len(faces))
	copy(cp, faces)
	return &FixedRoller{faces: cp}
}

// Push appends faces to the queue.
func (f *FixedRoller) Push(faces ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faces = append(f.faces, faces...)
}

// Remaining returns the number of faces not yet handed out.
func (f *FixedRoller) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.faces) - f.next
}

// RollPool returns the next n predetermined faces.
//
// Postcondition: on error no faces are consumed.
func (f *FixedRoller) RollPool(ctx context.Context, n int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if n < 0 {
		return nil, fmt.Errorf("dice: invalid pool size %d: must be >= 0", n)
	}
	if f.next+n > len(f.faces) {
		return nil, fmt.Errorf("%w (wanted %d, have %d)", ErrExhausted, n, len(f.faces)-f.next)
	}
	out := make([]int, n)
	copy(out, f.faces[f.next:f.next+n])
	for _, face := range out {
		if !ValidFace(face) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidFace, face)
		}
	}
	f.next += n
	return out, nil
}
