package dice

import (
	"context"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged pool rolling.
// All pools are logged at debug level with size, faces and audit form.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each pool to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// RollPool rolls n d6 and logs the pool at debug level.
//
// Postcondition: returns n faces in [1, Sides] or an error; ctx cancellation
// is honored before any die is rolled.
func (r *Roller) RollPool(ctx context.Context, n int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pool, err := RollPool(n, r.src)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("dice pool",
		zap.Int("count", pool.Count()),
		zap.Ints("faces", pool.Faces),
		zap.Stringer("pool", pool),
	)
	return pool.Faces, nil
}
