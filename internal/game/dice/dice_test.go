package dice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/titan/internal/game/dice"
)

// fixedSrc always returns min(v, n-1), enabling deterministic test rolls.
type fixedSrc struct{ v int }

func (f fixedSrc) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func TestPool_String(t *testing.T) {
	p := dice.Pool{Faces: []int{5, 3, 2}}
	assert.Equal(t, "3d6 → [5 3 2]", p.String())
	assert.Equal(t, 3, p.Count())
}

func TestValidFace(t *testing.T) {
	for f := 1; f <= 6; f++ {
		assert.True(t, dice.ValidFace(f), "face %d", f)
	}
	assert.False(t, dice.ValidFace(0))
	assert.False(t, dice.ValidFace(7))
}

func TestRollPool_UsesSource(t *testing.T) {
	pool, err := dice.RollPool(4, fixedSrc{v: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3, 3}, pool.Faces)
}

func TestRollPool_ZeroDice(t *testing.T) {
	pool, err := dice.RollPool(0, fixedSrc{})
	require.NoError(t, err)
	assert.Empty(t, pool.Faces)
}

func TestRollPool_NegativeCount(t *testing.T) {
	_, err := dice.RollPool(-1, fixedSrc{})
	assert.Error(t, err)
}

// TestRollPool_Property verifies every face of a crypto-backed pool is in [1, 6].
func TestRollPool_Property(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		pool, err := dice.RollPool(n, src)
		require.NoError(rt, err)
		require.Len(rt, pool.Faces, n)
		for _, f := range pool.Faces {
			assert.True(rt, dice.ValidFace(f), "face %d out of range", f)
		}
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(6), b.Intn(6), "draw %d", i)
	}
}

func TestSeededSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestLoggedRoller_LogsPool(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(fixedSrc{v: 5}, zap.New(core))

	faces, err := r.RollPool(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 6, 6}, faces)

	entries := logs.FilterMessage("dice pool").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 3, entries[0].ContextMap()["count"])
	assert.Equal(t, "3d6 → [6 6 6]", entries[0].ContextMap()["pool"])
}

func TestLoggedRoller_CancelledContext(t *testing.T) {
	r := dice.NewLoggedRoller(fixedSrc{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RollPool(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedRoller_HandsOutInOrder(t *testing.T) {
	r := dice.NewFixedRoller(6, 4, 3, 1)
	ctx := context.Background()

	first, err := r.RollPool(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 4, 3}, first)
	assert.Equal(t, 1, r.Remaining())

	r.Push(2)
	second, err := r.RollPool(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, second)
}

func TestFixedRoller_Exhausted(t *testing.T) {
	r := dice.NewFixedRoller(5)
	_, err := r.RollPool(context.Background(), 2)
	assert.True(t, errors.Is(err, dice.ErrExhausted))
	assert.Equal(t, 1, r.Remaining(), "failed roll must not consume faces")
}

func TestFixedRoller_InvalidFace(t *testing.T) {
	r := dice.NewFixedRoller(7)
	_, err := r.RollPool(context.Background(), 1)
	assert.ErrorIs(t, err, dice.ErrInvalidFace)
}

func TestRollerFunc_Adapts(t *testing.T) {
	var got int
	fn := dice.RollerFunc(func(_ context.Context, n int) ([]int, error) {
		got = n
		return []int{1, 2}, nil
	})
	faces, err := fn.RollPool(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []int{1, 2}, faces)
}
