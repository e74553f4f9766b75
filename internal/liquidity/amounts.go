// Package liquidity converts between token amounts and position liquidity
// for a price range, matching the periphery LiquidityAmounts library.
//
// Sqrt prices are Q64.96 values (see package tickmath). Every division
// rounds down, so amounts derived from a liquidity value never exceed the
// amounts the liquidity was computed from.
package liquidity

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"turadex/internal/fullmath"
)

var (
	ErrEmptyPriceRange  = errors.New("empty price range")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrInvalidSqrtRatio = errors.New("invalid sqrt ratio")
	ErrOverflow         = errors.New("liquidity overflow")
)

// GetLiquidityForAmounts returns the largest liquidity that amount0 and
// amount1 can back for the range [sqrtRatioAX96, sqrtRatioBX96] at the
// current price. The bounds may be passed in either order.
func GetLiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int) (*big.Int, error) {
	current, err := toSqrtRatio("current", sqrtRatioX96)
	if err != nil {
		return nil, err
	}
	a, b, err := toRange(sqrtRatioAX96, sqrtRatioBX96)
	if err != nil {
		return nil, err
	}
	amt0, err := toAmount("amount0", amount0)
	if err != nil {
		return nil, err
	}
	amt1, err := toAmount("amount1", amount1)
	if err != nil {
		return nil, err
	}

	var liquidity *uint256.Int
	switch {
	case !current.Gt(a):
		liquidity, err = getLiquidityForAmount0(a, b, amt0)
	case current.Lt(b):
		var liquidity0, liquidity1 *uint256.Int
		liquidity0, err = getLiquidityForAmount0(current, b, amt0)
		if err != nil {
			return nil, err
		}
		liquidity1, err = getLiquidityForAmount1(a, current, amt1)
		if err != nil {
			return nil, err
		}
		liquidity = liquidity0
		if liquidity1.Lt(liquidity0) {
			liquidity = liquidity1
		}
	default:
		liquidity, err = getLiquidityForAmount1(a, b, amt1)
	}
	if err != nil {
		return nil, err
	}
	return liquidity.ToBig(), nil
}

// GetAmountsForLiquidity returns the token amounts liquidity is worth for
// the range at the current price.
func GetAmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, *big.Int, error) {
	current, err := toSqrtRatio("current", sqrtRatioX96)
	if err != nil {
		return nil, nil, err
	}
	a, b, err := toRange(sqrtRatioAX96, sqrtRatioBX96)
	if err != nil {
		return nil, nil, err
	}
	liq, err := toLiquidity(liquidity)
	if err != nil {
		return nil, nil, err
	}

	amount0, amount1 := new(uint256.Int), new(uint256.Int)
	switch {
	case !current.Gt(a):
		amount0, err = getAmount0ForLiquidity(a, b, liq)
	case current.Lt(b):
		amount0, err = getAmount0ForLiquidity(current, b, liq)
		if err != nil {
			return nil, nil, err
		}
		amount1, err = getAmount1ForLiquidity(a, current, liq)
	default:
		amount1, err = getAmount1ForLiquidity(a, b, liq)
	}
	if err != nil {
		return nil, nil, err
	}
	return amount0.ToBig(), amount1.ToBig(), nil
}

// GetAmount0ForLiquidity returns the token0 amount liquidity is worth
// across the whole range, i.e. with the price at or below the lower bound.
func GetAmount0ForLiquidity(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, error) {
	a, b, err := toRange(sqrtRatioAX96, sqrtRatioBX96)
	if err != nil {
		return nil, err
	}
	liq, err := toLiquidity(liquidity)
	if err != nil {
		return nil, err
	}
	amount, err := getAmount0ForLiquidity(a, b, liq)
	if err != nil {
		return nil, err
	}
	return amount.ToBig(), nil
}

// GetAmount1ForLiquidity returns the token1 amount liquidity is worth
// across the whole range, i.e. with the price at or above the upper bound.
func GetAmount1ForLiquidity(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, error) {
	a, b, err := toRange(sqrtRatioAX96, sqrtRatioBX96)
	if err != nil {
		return nil, err
	}
	liq, err := toLiquidity(liquidity)
	if err != nil {
		return nil, err
	}
	amount, err := getAmount1ForLiquidity(a, b, liq)
	if err != nil {
		return nil, err
	}
	return amount.ToBig(), nil
}

// getLiquidityForAmount0 computes amount0 * (a*b/Q96) / (b - a).
func getLiquidityForAmount0(a, b, amount0 *uint256.Int) (*uint256.Int, error) {
	a, b = ordered(a, b)
	intermediate, err := fullmath.MulDiv(a, b, fullmath.Q96)
	if err != nil {
		return nil, fmt.Errorf("amount0 intermediate: %w", err)
	}
	liquidity, err := fullmath.MulDiv(amount0, intermediate, new(uint256.Int).Sub(b, a))
	if err != nil {
		return nil, fmt.Errorf("liquidity for amount0: %w", wrapMath(err))
	}
	return toUint128(liquidity)
}

// getLiquidityForAmount1 computes amount1 * Q96 / (b - a).
func getLiquidityForAmount1(a, b, amount1 *uint256.Int) (*uint256.Int, error) {
	a, b = ordered(a, b)
	liquidity, err := fullmath.MulDiv(amount1, fullmath.Q96, new(uint256.Int).Sub(b, a))
	if err != nil {
		return nil, fmt.Errorf("liquidity for amount1: %w", wrapMath(err))
	}
	return toUint128(liquidity)
}

// getAmount0ForLiquidity computes (liquidity << 96) * (b - a) / b / a.
func getAmount0ForLiquidity(a, b, liquidity *uint256.Int) (*uint256.Int, error) {
	a, b = ordered(a, b)
	numerator := new(uint256.Int).Lsh(liquidity, 96)
	amount, err := fullmath.MulDiv(numerator, new(uint256.Int).Sub(b, a), b)
	if err != nil {
		return nil, fmt.Errorf("amount0 for liquidity: %w", wrapMath(err))
	}
	return amount.Div(amount, a), nil
}

// getAmount1ForLiquidity computes liquidity * (b - a) / Q96.
func getAmount1ForLiquidity(a, b, liquidity *uint256.Int) (*uint256.Int, error) {
	a, b = ordered(a, b)
	amount, err := fullmath.MulDiv(liquidity, new(uint256.Int).Sub(b, a), fullmath.Q96)
	if err != nil {
		return nil, fmt.Errorf("amount1 for liquidity: %w", wrapMath(err))
	}
	return amount, nil
}

func ordered(a, b *uint256.Int) (*uint256.Int, *uint256.Int) {
	if a.Gt(b) {
		return b, a
	}
	return a, b
}

func wrapMath(err error) error {
	if errors.Is(err, fullmath.ErrDivisionByZero) {
		return ErrEmptyPriceRange
	}
	if errors.Is(err, fullmath.ErrOverflow) {
		return ErrOverflow
	}
	return err
}

var maxUint128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// toUint128 mirrors the contracts' checked downcast: liquidity is stored
// as uint128 on-chain.
func toUint128(v *uint256.Int) (*uint256.Int, error) {
	if v.Gt(maxUint128) {
		return nil, ErrOverflow
	}
	return v, nil
}

func toRange(sqrtRatioAX96, sqrtRatioBX96 *big.Int) (*uint256.Int, *uint256.Int, error) {
	a, err := toSqrtRatio("lower", sqrtRatioAX96)
	if err != nil {
		return nil, nil, err
	}
	b, err := toSqrtRatio("upper", sqrtRatioBX96)
	if err != nil {
		return nil, nil, err
	}
	if a.Eq(b) {
		return nil, nil, ErrEmptyPriceRange
	}
	a, b = ordered(a, b)
	return a, b, nil
}

// toSqrtRatio accepts any non-zero uint160.
func toSqrtRatio(name string, v *big.Int) (*uint256.Int, error) {
	if v == nil || v.Sign() <= 0 || v.BitLen() > 160 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSqrtRatio, name)
	}
	out, _ := uint256.FromBig(v)
	return out, nil
}

func toAmount(name string, v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, name)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds uint256", ErrOverflow, name)
	}
	return out, nil
}

func toLiquidity(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: liquidity", ErrNegativeAmount)
	}
	if v.BitLen() > 128 {
		return nil, fmt.Errorf("%w: liquidity exceeds uint128", ErrOverflow)
	}
	out, _ := uint256.FromBig(v)
	return out, nil
}
