package price

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turadex/internal/tickmath"
)

var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

func TestSqrtRatioToPrice(t *testing.T) {
	assert.Equal(t, "1", SqrtRatioToPrice(q96, 18, 18).String())
	assert.Equal(t, "4", SqrtRatioToPrice(new(big.Int).Lsh(big.NewInt(1), 97), 18, 18).String())
	assert.Equal(t, "0.000000000001", SqrtRatioToPrice(q96, 6, 18).String())
	assert.Equal(t, "1000000000000", SqrtRatioToPrice(q96, 18, 6).String())
	assert.True(t, SqrtRatioToPrice(nil, 18, 18).IsZero())
	assert.True(t, SqrtRatioToPrice(big.NewInt(0), 18, 18).IsZero())
}

func TestTickToPrice(t *testing.T) {
	got, err := TickToPrice(0, 6, 18)
	require.NoError(t, err)
	assert.Equal(t, "0.000000000001", got.String())

	got, err = TickToPrice(13863, 18, 18)
	require.NoError(t, err)
	assert.Equal(t, "3.999745322111", got.Round(12).String())

	got, err = TickToPrice(-276325, 18, 6)
	require.NoError(t, err)
	assert.Equal(t, "0.99990265", got.Round(8).String())

	_, err = TickToPrice(tickmath.MaxTick+1, 18, 18)
	assert.ErrorIs(t, err, tickmath.ErrTickOutOfRange)
}

func TestPriceToSqrtRatio(t *testing.T) {
	got, err := PriceToSqrtRatio(decimal.NewFromInt(1), 18, 18)
	require.NoError(t, err)
	assert.Zero(t, q96.Cmp(got))

	got, err = PriceToSqrtRatio(decimal.NewFromInt(4), 18, 18)
	require.NoError(t, err)
	assert.Zero(t, new(big.Int).Lsh(big.NewInt(1), 97).Cmp(got))

	got, err = PriceToSqrtRatio(decimal.RequireFromString("2.5"), 18, 18)
	require.NoError(t, err)
	assert.Equal(t, "125270724187523965593206900784", got.String())

	// 2000 USDC per WETH with WETH as token0.
	got, err = PriceToSqrtRatio(decimal.NewFromInt(2000), 18, 6)
	require.NoError(t, err)
	assert.Equal(t, "3543191142285914205922034", got.String())

	for _, p := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-3)} {
		_, err := PriceToSqrtRatio(p, 18, 18)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	}
}

func TestPriceToClosestTick(t *testing.T) {
	cases := []struct {
		name      string
		price     string
		decimals0 uint8
		decimals1 uint8
		want      int32
	}{
		{"one", "1", 18, 18, 0},
		{"four", "4", 18, 18, 13863},
		{"two and a half", "2.5", 18, 18, 9163},
		{"weth priced in usdc", "2000", 18, 6, -200312},
		{"usdc priced in weth", "0.0005", 6, 18, 200311},
		{"above max clamps", "1e50", 18, 18, tickmath.MaxTick},
		{"below min clamps", "1e-50", 18, 18, tickmath.MinTick},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PriceToClosestTick(decimal.RequireFromString(tc.price), tc.decimals0, tc.decimals1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := PriceToClosestTick(decimal.Zero, 18, 18)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestTickPriceRoundTrip(t *testing.T) {
	for _, tick := range []int32{-887000, -200312, -60, -1, 1, 60, 13863, 200311, 887000} {
		p, err := TickToPrice(tick, 18, 6)
		require.NoError(t, err)
		got, err := PriceToClosestTick(p, 18, 6)
		require.NoError(t, err)
		// The decimal price is rounded, so it may land one below the tick edge.
		assert.True(t, got == tick || got == tick-1, "tick %d -> %s -> %d", tick, p, got)
	}
}
