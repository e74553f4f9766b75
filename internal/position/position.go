// Package position quotes mints and values positions for a pool price
// using tickmath and liquidity.
package position

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"turadex/internal/liquidity"
	"turadex/internal/model"
	"turadex/internal/price"
	"turadex/internal/tickmath"
)

// MaxSlippageBps is 100%.
const MaxSlippageBps uint32 = 10000

var (
	ErrInvalidPool     = errors.New("invalid pool state")
	ErrInvalidSlippage = errors.New("slippage above 10000 bps")
)

// Status is where the current price sits relative to a range.
type Status string

const (
	StatusBelowRange Status = "below_range"
	StatusInRange    Status = "in_range"
	StatusAboveRange Status = "above_range"
)

// Pool is the part of pool state the math needs.
type Pool struct {
	SqrtPriceX96 *big.Int
	Tick         int32
	TickSpacing  int32
}

// PoolFromState parses a stored pool state.
func PoolFromState(s model.PoolState) (Pool, error) {
	sqrtPrice, ok := new(big.Int).SetString(s.SqrtPriceX96, 10)
	if !ok {
		return Pool{}, fmt.Errorf("%w: sqrt price %q", ErrInvalidPool, s.SqrtPriceX96)
	}
	p := Pool{SqrtPriceX96: sqrtPrice, Tick: s.Tick, TickSpacing: s.TickSpacing}
	if err := p.validate(); err != nil {
		return Pool{}, err
	}
	return p, nil
}

func (p Pool) validate() error {
	if p.SqrtPriceX96 == nil {
		return fmt.Errorf("%w: missing sqrt price", ErrInvalidPool)
	}
	if p.SqrtPriceX96.Cmp(tickmath.MinSqrtRatio) < 0 || p.SqrtPriceX96.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		return fmt.Errorf("%w: sqrt price %s", ErrInvalidPool, p.SqrtPriceX96)
	}
	if p.TickSpacing <= 0 {
		return fmt.Errorf("%w: tick spacing %d", ErrInvalidPool, p.TickSpacing)
	}
	return nil
}

// Range is a tick range with TickLower < TickUpper.
type Range struct {
	TickLower int32
	TickUpper int32
}

// NewRange orders the bounds and checks them against spacing.
func NewRange(lower, upper, spacing int32) (Range, error) {
	if lower > upper {
		lower, upper = upper, lower
	}
	if err := tickmath.ValidateTickRange(lower, upper, spacing); err != nil {
		return Range{}, err
	}
	return Range{TickLower: lower, TickUpper: upper}, nil
}

// RangeFromPrices maps two prices to the nearest usable ticks.
func RangeFromPrices(lower, upper decimal.Decimal, decimals0, decimals1 uint8, spacing int32) (Range, error) {
	tickLower, err := usableTickForPrice(lower, decimals0, decimals1, spacing)
	if err != nil {
		return Range{}, fmt.Errorf("lower price: %w", err)
	}
	tickUpper, err := usableTickForPrice(upper, decimals0, decimals1, spacing)
	if err != nil {
		return Range{}, fmt.Errorf("upper price: %w", err)
	}
	return NewRange(tickLower, tickUpper, spacing)
}

func usableTickForPrice(p decimal.Decimal, decimals0, decimals1 uint8, spacing int32) (int32, error) {
	tick, err := price.PriceToClosestTick(p, decimals0, decimals1)
	if err != nil {
		return 0, err
	}
	return tickmath.NearestUsableTick(tick, spacing)
}

// SqrtRatios returns the sqrt prices at both bounds.
func (r Range) SqrtRatios() (*big.Int, *big.Int, error) {
	lower, err := tickmath.GetSqrtRatioAtTick(r.TickLower)
	if err != nil {
		return nil, nil, fmt.Errorf("tick lower %d: %w", r.TickLower, err)
	}
	upper, err := tickmath.GetSqrtRatioAtTick(r.TickUpper)
	if err != nil {
		return nil, nil, fmt.Errorf("tick upper %d: %w", r.TickUpper, err)
	}
	return lower, upper, nil
}

func statusAt(sqrtPriceX96, lower, upper *big.Int) Status {
	switch {
	case sqrtPriceX96.Cmp(lower) <= 0:
		return StatusBelowRange
	case sqrtPriceX96.Cmp(upper) < 0:
		return StatusInRange
	default:
		return StatusAboveRange
	}
}

// Position is liquidity held over a range.
type Position struct {
	Range
	Liquidity *big.Int
}

// Quote is the outcome of QuoteMint.
type Quote struct {
	Pool              Pool
	Range             Range
	SqrtRatioLowerX96 *big.Int
	SqrtRatioUpperX96 *big.Int
	Status            Status
	Liquidity         *big.Int
	Amount0Desired    *big.Int
	Amount1Desired    *big.Int
	Amount0           *big.Int
	Amount1           *big.Int
	Amount0Min        *big.Int
	Amount1Min        *big.Int
	// Amount0Charged and Amount1Charged are what the pool takes when the
	// liquidity is minted; its rounding favours the pool.
	Amount0Charged    *big.Int
	Amount1Charged    *big.Int
	SlippageBps       uint32
}

// QuoteMint computes the liquidity the desired amounts buy over rng at the
// pool price, the amounts that liquidity actually takes, and the minimums
// after slippage.
func QuoteMint(pool Pool, rng Range, amount0Desired, amount1Desired *big.Int, slippageBps uint32) (Quote, error) {
	if slippageBps > MaxSlippageBps {
		return Quote{}, fmt.Errorf("%w: %d", ErrInvalidSlippage, slippageBps)
	}
	if err := pool.validate(); err != nil {
		return Quote{}, err
	}
	if err := tickmath.ValidateTickRange(rng.TickLower, rng.TickUpper, pool.TickSpacing); err != nil {
		return Quote{}, err
	}
	if amount0Desired == nil {
		amount0Desired = new(big.Int)
	}
	if amount1Desired == nil {
		amount1Desired = new(big.Int)
	}

	lower, upper, err := rng.SqrtRatios()
	if err != nil {
		return Quote{}, err
	}
	liq, err := liquidity.GetLiquidityForAmounts(pool.SqrtPriceX96, lower, upper, amount0Desired, amount1Desired)
	if err != nil {
		return Quote{}, fmt.Errorf("liquidity for amounts: %w", err)
	}
	amount0, amount1, err := liquidity.GetAmountsForLiquidity(pool.SqrtPriceX96, lower, upper, liq)
	if err != nil {
		return Quote{}, fmt.Errorf("amounts for liquidity: %w", err)
	}
	charged0, charged1, err := liquidity.GetMintAmounts(pool.SqrtPriceX96, lower, upper, liq)
	if err != nil {
		return Quote{}, fmt.Errorf("mint amounts: %w", err)
	}

	return Quote{
		Pool:              pool,
		Range:             rng,
		SqrtRatioLowerX96: lower,
		SqrtRatioUpperX96: upper,
		Status:            statusAt(pool.SqrtPriceX96, lower, upper),
		Liquidity:         liq,
		Amount0Desired:    new(big.Int).Set(amount0Desired),
		Amount1Desired:    new(big.Int).Set(amount1Desired),
		Amount0:           amount0,
		Amount1:           amount1,
		Amount0Min:        applySlippage(amount0, slippageBps),
		Amount1Min:        applySlippage(amount1, slippageBps),
		Amount0Charged:    charged0,
		Amount1Charged:    charged1,
		SlippageBps:       slippageBps,
	}, nil
}

// applySlippage returns amount * (10000 - bps) / 10000, rounded down.
func applySlippage(amount *big.Int, bps uint32) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(int64(MaxSlippageBps-bps)))
	return out.Quo(out, big.NewInt(int64(MaxSlippageBps)))
}

// Amounts returns the token amounts pos is worth at the pool price.
func Amounts(pool Pool, pos Position) (*big.Int, *big.Int, error) {
	if pool.SqrtPriceX96 == nil {
		return nil, nil, fmt.Errorf("%w: missing sqrt price", ErrInvalidPool)
	}
	lower, upper, err := pos.SqrtRatios()
	if err != nil {
		return nil, nil, err
	}
	return liquidity.GetAmountsForLiquidity(pool.SqrtPriceX96, lower, upper, pos.Liquidity)
}

// StatusOf reports where the pool price sits relative to rng.
func StatusOf(pool Pool, rng Range) (Status, error) {
	if pool.SqrtPriceX96 == nil {
		return "", fmt.Errorf("%w: missing sqrt price", ErrInvalidPool)
	}
	lower, upper, err := rng.SqrtRatios()
	if err != nil {
		return "", err
	}
	return statusAt(pool.SqrtPriceX96, lower, upper), nil
}

// Record converts the quote into its stored form. Prices are left empty
// when the token decimals are unknown.
func (q Quote) Record(decimals0, decimals1 *uint8) model.MintQuote {
	rec := model.MintQuote{
		SqrtPriceX96:      q.Pool.SqrtPriceX96.String(),
		Tick:              q.Pool.Tick,
		TickSpacing:       q.Pool.TickSpacing,
		TickLower:         q.Range.TickLower,
		TickUpper:         q.Range.TickUpper,
		SqrtRatioLowerX96: q.SqrtRatioLowerX96.String(),
		SqrtRatioUpperX96: q.SqrtRatioUpperX96.String(),
		Status:            string(q.Status),
		Liquidity:         q.Liquidity.String(),
		Amount0Desired:    q.Amount0Desired.String(),
		Amount1Desired:    q.Amount1Desired.String(),
		Amount0:           q.Amount0.String(),
		Amount1:           q.Amount1.String(),
		Amount0Min:        q.Amount0Min.String(),
		Amount1Min:        q.Amount1Min.String(),
		Amount0Charged:    q.Amount0Charged.String(),
		Amount1Charged:    q.Amount1Charged.String(),
		SlippageBps:       q.SlippageBps,
	}
	if decimals0 != nil && decimals1 != nil {
		rec.PriceLower = price.SqrtRatioToPrice(q.SqrtRatioLowerX96, *decimals0, *decimals1).String()
		rec.PriceUpper = price.SqrtRatioToPrice(q.SqrtRatioUpperX96, *decimals0, *decimals1).String()
		rec.PriceCurrent = price.SqrtRatioToPrice(q.Pool.SqrtPriceX96, *decimals0, *decimals1).String()
	}
	return rec
}
