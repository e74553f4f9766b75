package fullmath

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

func TestMulDiv(t *testing.T) {
	t.Run("zero denominator", func(t *testing.T) {
		_, err := MulDiv(q128, uint256.NewInt(5), new(uint256.Int))
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("quotient overflow", func(t *testing.T) {
		_, err := MulDiv(q128, q128, uint256.NewInt(1))
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("max inputs cancel", func(t *testing.T) {
		max := MaxUint256()
		got, err := MulDiv(max, max, max)
		require.NoError(t, err)
		assert.True(t, got.Eq(max))
	})

	t.Run("product above 256 bits", func(t *testing.T) {
		// (2^128 * 2^128 * 50/100) / (2^128 * 3/2) = 2^128 / 3
		x := q128
		y := new(uint256.Int).Div(new(uint256.Int).Mul(q128, uint256.NewInt(50)), uint256.NewInt(100))
		d := new(uint256.Int).Div(new(uint256.Int).Mul(q128, uint256.NewInt(150)), uint256.NewInt(100))
		got, err := MulDiv(x, y, d)
		require.NoError(t, err)
		want := new(uint256.Int).Div(q128, uint256.NewInt(3))
		assert.True(t, got.Eq(want), "got %s want %s", got.ToBig(), want.ToBig())
	})

	t.Run("floors", func(t *testing.T) {
		got, err := MulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
		require.NoError(t, err)
		assert.Equal(t, uint64(10), got.Uint64())
	})
}

func TestMulDivRoundingUp(t *testing.T) {
	got, err := MulDivRoundingUp(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got.Uint64())

	got, err = MulDivRoundingUp(uint256.NewInt(6), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.Uint64())

	// quotient one past the uint256 range
	max := MaxUint256()
	_, err = MulDivRoundingUp(max, uint256.NewInt(2), uint256.NewInt(2))
	require.NoError(t, err)
	_, err = MulDivRoundingUp(max, max, new(uint256.Int).SubUint64(max, 1))
	assert.ErrorIs(t, err, ErrOverflow)
}
