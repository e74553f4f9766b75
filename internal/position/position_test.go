package position

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turadex/internal/model"
	"turadex/internal/tickmath"
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func poolAtTick(t *testing.T, tick, spacing int32) Pool {
	t.Helper()
	ratio, err := tickmath.GetSqrtRatioAtTick(tick)
	require.NoError(t, err)
	return Pool{SqrtPriceX96: ratio, Tick: tick, TickSpacing: spacing}
}

func TestNewRange(t *testing.T) {
	rng, err := NewRange(60, -60, 60)
	require.NoError(t, err)
	assert.Equal(t, Range{TickLower: -60, TickUpper: 60}, rng)

	_, err = NewRange(60, 60, 60)
	assert.ErrorIs(t, err, tickmath.ErrEmptyTickRange)

	_, err = NewRange(-30, 60, 60)
	assert.ErrorIs(t, err, tickmath.ErrUnalignedTick)

	_, err = NewRange(-887280, 60, 60)
	assert.ErrorIs(t, err, tickmath.ErrTickOutOfRange)
}

func TestRangeFromPrices(t *testing.T) {
	lower := decimal.RequireFromString("0.99")
	upper := decimal.RequireFromString("1.01")

	rng, err := RangeFromPrices(lower, upper, 18, 18, 60)
	require.NoError(t, err)
	assert.Equal(t, Range{TickLower: -120, TickUpper: 120}, rng)

	swapped, err := RangeFromPrices(upper, lower, 18, 18, 60)
	require.NoError(t, err)
	assert.Equal(t, rng, swapped)

	_, err = RangeFromPrices(decimal.NewFromInt(1), decimal.RequireFromString("1.0001"), 18, 18, 60)
	assert.ErrorIs(t, err, tickmath.ErrEmptyTickRange)
}

func TestQuoteMintMediumTier(t *testing.T) {
	pool := Pool{SqrtPriceX96: mustBig("79228162514264337593543950336"), Tick: 0, TickSpacing: 60}
	rng, err := NewRange(-60, 60, 60)
	require.NoError(t, err)
	desired := mustBig("10000000000000000000")

	q, err := QuoteMint(pool, rng, desired, desired, 50)
	require.NoError(t, err)
	assert.Equal(t, StatusInRange, q.Status)
	assert.Equal(t, "3338502497096994491347", q.Liquidity.String())
	assert.Equal(t, "9999999999999999999", q.Amount0.String())
	assert.Equal(t, "9999999999999999999", q.Amount1.String())
	assert.Equal(t, "9949999999999999999", q.Amount0Min.String())
	assert.Equal(t, "9949999999999999999", q.Amount1Min.String())
	assert.Equal(t, "10000000000000000000", q.Amount0Charged.String())
	assert.Equal(t, "10000000000000000000", q.Amount1Charged.String())

	rec := q.Record(nil, nil)
	assert.Equal(t, "in_range", rec.Status)
	assert.Equal(t, "3338502497096994491347", rec.Liquidity)
	assert.Empty(t, rec.PriceCurrent)
}

func TestQuoteMintUnevenAmounts(t *testing.T) {
	pool := poolAtTick(t, 0, 60)
	rng := Range{TickLower: -120, TickUpper: 120}

	q, err := QuoteMint(pool, rng, mustBig("1000000000000000000"), mustBig("500000000000000000"), 0)
	require.NoError(t, err)
	assert.Equal(t, "83587749917909883454", q.Liquidity.String())
	assert.Equal(t, "499999999999999999", q.Amount0.String())
	assert.Equal(t, "499999999999999999", q.Amount1.String())
	assert.Equal(t, "500000000000000000", q.Amount0Charged.String())
	assert.Equal(t, "500000000000000000", q.Amount1Charged.String())
	// Zero slippage keeps the minimums equal to the amounts.
	assert.Zero(t, q.Amount0.Cmp(q.Amount0Min))
	assert.Zero(t, q.Amount1.Cmp(q.Amount1Min))

	var d uint8 = 18
	rec := q.Record(&d, &d)
	assert.Equal(t, "1", rec.PriceCurrent)
}

func TestQuoteMintOutOfRange(t *testing.T) {
	rng := Range{TickLower: -600, TickUpper: 600}
	amount := mustBig("1000000000000000000")

	below, err := QuoteMint(poolAtTick(t, -1000, 60), rng, amount, amount, 100)
	require.NoError(t, err)
	assert.Equal(t, StatusBelowRange, below.Status)
	assert.Zero(t, below.Amount1.Sign())
	assert.True(t, below.Amount0.Cmp(amount) <= 0)
	assert.Positive(t, below.Amount0.Sign())

	above, err := QuoteMint(poolAtTick(t, 1000, 60), rng, amount, amount, 100)
	require.NoError(t, err)
	assert.Equal(t, StatusAboveRange, above.Status)
	assert.Zero(t, above.Amount0.Sign())
	assert.True(t, above.Amount1.Cmp(amount) <= 0)

	// The lower bound itself counts as below the range.
	edge, err := QuoteMint(poolAtTick(t, -600, 60), rng, amount, amount, 100)
	require.NoError(t, err)
	assert.Equal(t, StatusBelowRange, edge.Status)
}

func TestQuoteMintRejects(t *testing.T) {
	pool := poolAtTick(t, 0, 60)
	rng := Range{TickLower: -60, TickUpper: 60}
	one := big.NewInt(1)

	_, err := QuoteMint(pool, rng, one, one, 10001)
	assert.ErrorIs(t, err, ErrInvalidSlippage)

	_, err = QuoteMint(pool, Range{TickLower: -50, TickUpper: 60}, one, one, 0)
	assert.ErrorIs(t, err, tickmath.ErrUnalignedTick)

	_, err = QuoteMint(Pool{TickSpacing: 60}, rng, one, one, 0)
	assert.ErrorIs(t, err, ErrInvalidPool)

	_, err = QuoteMint(pool, rng, big.NewInt(-1), one, 0)
	assert.Error(t, err)

	q, err := QuoteMint(pool, rng, one, one, MaxSlippageBps)
	require.NoError(t, err)
	assert.Zero(t, q.Amount0Min.Sign())
}

func TestAmounts(t *testing.T) {
	pool := Pool{SqrtPriceX96: mustBig("79228162514264337593543950336"), TickSpacing: 60}
	pos := Position{Range: Range{TickLower: -60, TickUpper: 60}, Liquidity: mustBig("3338502497096994491347")}

	amount0, amount1, err := Amounts(pool, pos)
	require.NoError(t, err)
	assert.Equal(t, "9999999999999999999", amount0.String())
	assert.Equal(t, "9999999999999999999", amount1.String())

	status, err := StatusOf(pool, pos.Range)
	require.NoError(t, err)
	assert.Equal(t, StatusInRange, status)
}

func TestPoolFromState(t *testing.T) {
	pool, err := PoolFromState(model.PoolState{
		SqrtPriceX96: "79228162514264337593543950336",
		Tick:         0,
		TickSpacing:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(10), pool.TickSpacing)
	assert.Equal(t, "79228162514264337593543950336", pool.SqrtPriceX96.String())

	_, err = PoolFromState(model.PoolState{SqrtPriceX96: "not a number", TickSpacing: 10})
	assert.ErrorIs(t, err, ErrInvalidPool)

	_, err = PoolFromState(model.PoolState{SqrtPriceX96: "1", TickSpacing: 10})
	assert.ErrorIs(t, err, ErrInvalidPool)

	_, err = PoolFromState(model.PoolState{SqrtPriceX96: "79228162514264337593543950336"})
	assert.ErrorIs(t, err, ErrInvalidPool)
}
