// Package price converts between Q64.96 sqrt prices, ticks and decimal
// prices in human token units. A price is always token0 quoted in token1.
package price

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"turadex/internal/tickmath"
)

// Precision is the number of decimal places kept when dividing a sqrt price
// down to a price.
const Precision int32 = 64

var ErrInvalidPrice = errors.New("invalid price")

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// SqrtRatioToPrice returns (sqrtPriceX96 / 2^96)^2 scaled by the token
// decimals. A nil or non-positive ratio yields zero.
func SqrtRatioToPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) decimal.Decimal {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return decimal.Zero
	}
	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	num.Mul(num, pow10(decimals0))
	den := new(big.Int).Mul(q192, pow10(decimals1))
	return decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(den, 0), Precision)
}

// TickToPrice returns the price at the lower edge of tick.
func TickToPrice(tick int32, decimals0, decimals1 uint8) (decimal.Decimal, error) {
	ratio, err := tickmath.GetSqrtRatioAtTick(tick)
	if err != nil {
		return decimal.Zero, err
	}
	return SqrtRatioToPrice(ratio, decimals0, decimals1), nil
}

// PriceToSqrtRatio returns floor(sqrt(price * 10^decimals1 / 10^decimals0) * 2^96).
// The result is not clamped to the tick domain.
func PriceToSqrtRatio(p decimal.Decimal, decimals0, decimals1 uint8) (*big.Int, error) {
	if p.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, p)
	}

	// raw * 2^192 = coefficient * 10^exp * 2^192; floor before the sqrt
	// does not change floor(sqrt(x)).
	n := new(big.Int).Lsh(p.Coefficient(), 192)
	exp := int64(p.Exponent()) + int64(decimals1) - int64(decimals0)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(abs64(exp)), nil)
	if exp >= 0 {
		n.Mul(n, scale)
	} else {
		n.Quo(n, scale)
	}
	return n.Sqrt(n), nil
}

// PriceToClosestTick returns the largest tick whose price is at or below p.
// Prices outside the tick domain clamp to MinTick or MaxTick.
func PriceToClosestTick(p decimal.Decimal, decimals0, decimals1 uint8) (int32, error) {
	ratio, err := PriceToSqrtRatio(p, decimals0, decimals1)
	if err != nil {
		return 0, err
	}
	if ratio.Cmp(tickmath.MinSqrtRatio) < 0 {
		return tickmath.MinTick, nil
	}
	if ratio.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		return tickmath.MaxTick, nil
	}
	return tickmath.GetTickAtSqrtRatio(ratio)
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
