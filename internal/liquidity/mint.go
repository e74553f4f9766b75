package liquidity

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"turadex/internal/fullmath"
)

// GetMintAmounts returns the token amounts a pool charges to mint liquidity
// over the range at the current price. Unlike GetAmountsForLiquidity every
// division rounds up, so the result can exceed the rounded-down amounts by
// one unit per token.
func GetMintAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, *big.Int, error) {
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
	case current.Lt(a):
		amount0, err = amount0RoundingUp(a, b, liq)
	case current.Lt(b):
		amount0, err = amount0RoundingUp(current, b, liq)
		if err != nil {
			return nil, nil, err
		}
		amount1, err = amount1RoundingUp(a, current, liq)
	default:
		amount1, err = amount1RoundingUp(a, b, liq)
	}
	if err != nil {
		return nil, nil, err
	}
	return amount0.ToBig(), amount1.ToBig(), nil
}

// amount0RoundingUp computes ceil(ceil((liquidity << 96) * (b - a) / b) / a).
func amount0RoundingUp(a, b, liquidity *uint256.Int) (*uint256.Int, error) {
	numerator := new(uint256.Int).Lsh(liquidity, 96)
	intermediate, err := fullmath.MulDivRoundingUp(numerator, new(uint256.Int).Sub(b, a), b)
	if err != nil {
		return nil, fmt.Errorf("mint amount0: %w", wrapMath(err))
	}
	amount, err := fullmath.MulDivRoundingUp(intermediate, uint256.NewInt(1), a)
	if err != nil {
		return nil, fmt.Errorf("mint amount0: %w", wrapMath(err))
	}
	return amount, nil
}

// amount1RoundingUp computes ceil(liquidity * (b - a) / Q96).
func amount1RoundingUp(a, b, liquidity *uint256.Int) (*uint256.Int, error) {
	amount, err := fullmath.MulDivRoundingUp(liquidity, new(uint256.Int).Sub(b, a), fullmath.Q96)
	if err != nil {
		return nil, fmt.Errorf("mint amount1: %w", wrapMath(err))
	}
	return amount, nil
}
