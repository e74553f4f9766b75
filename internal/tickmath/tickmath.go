// Package tickmath converts between tick indexes and Q64.96 sqrt prices
// with the same fixed-point arithmetic the pool contracts use. Results are
// bit-for-bit identical to TickMath.sol, including its rounding.
package tickmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the lowest tick usable on any pool, log base 1.0001 of 2^-128.
	MinTick int32 = -887272
	// MaxTick is the highest tick usable on any pool.
	MaxTick int32 = -MinTick
)

var (
	ErrTickOutOfRange      = errors.New("tick out of range")
	ErrSqrtRatioOutOfRange = errors.New("sqrt ratio out of range")
)

var (
	minSqrtRatio = uint256.NewInt(4295128739)
	maxSqrtRatio = mustDec("1461446703485210103287273052203988822378723970342")

	// MinSqrtRatio is GetSqrtRatioAtTick(MinTick).
	MinSqrtRatio = minSqrtRatio.ToBig()
	// MaxSqrtRatio is GetSqrtRatioAtTick(MaxTick).
	MaxSqrtRatio = maxSqrtRatio.ToBig()
)

// tickFactors[i] is 1.0001^(-2^i / 2) in Q128.128 for bits 1..19 of |tick|.
// Bit 0 seeds the accumulator instead of multiplying it.
var (
	bit0Factor  = mustHex("0xfffcb933bd6fad37aa2d162d1a594001")
	tickFactors = [...]*uint256.Int{
		mustHex("0xfff97272373d413259a46990580e213a"),
		mustHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		mustHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		mustHex("0xffcb9843d60f6159c9db58835c926644"),
		mustHex("0xff973b41fa98c081472e6896dfb254c0"),
		mustHex("0xff2ea16466c96a3843ec78b326b52861"),
		mustHex("0xfe5dee046a99a2a811c461f1969c3053"),
		mustHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		mustHex("0xf987a7253ac413176f2b074cf7815e54"),
		mustHex("0xf3392b0822b70005940c7a398e4b70f3"),
		mustHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		mustHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		mustHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		mustHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		mustHex("0x31be135f97d08fd981231505542fcfa6"),
		mustHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		mustHex("0x5d6af8dedb81196699c329225ee604"),
		mustHex("0x2216e584f5fa1ea926041bedfe98"),
		mustHex("0x48a170391f7dc42444e8fa2"),
	}

	q128       = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	maxUint256 = new(uint256.Int).SetAllOne()
	low32Mask  = uint256.NewInt(0xffffffff)
)

// Constants of the base-sqrt(1.0001) logarithm step in getTickAtSqrtRatio.
var (
	logSqrt10001Factor = mustBigDec("255738958999603826347141")
	tickLowOffset      = mustBigDec("3402992956809132418596140100660247210")
	tickHighOffset     = mustBigDec("291339464771989622907027621153398088495")
)

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96.
func GetSqrtRatioAtTick(tick int32) (*big.Int, error) {
	ratio, err := SqrtRatioAtTick(tick)
	if err != nil {
		return nil, err
	}
	return ratio.ToBig(), nil
}

// SqrtRatioAtTick is GetSqrtRatioAtTick on uint256 values, for callers
// already working in fixed 256-bit arithmetic.
func SqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfRange
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(bit0Factor)
	} else {
		ratio.Set(q128)
	}
	for i, factor := range tickFactors {
		if absTick&(1<<(i+1)) != 0 {
			ratio.Mul(ratio, factor)
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 to Q64.96, rounding up so GetTickAtSqrtRatio of the result
	// is consistent.
	rem := new(uint256.Int).And(ratio, low32Mask)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}
	return ratio, nil
}

// GetTickAtSqrtRatio returns the greatest tick whose sqrt ratio is less than
// or equal to sqrtPriceX96. The input must lie in [MinSqrtRatio, MaxSqrtRatio).
func GetTickAtSqrtRatio(sqrtPriceX96 *big.Int) (int32, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() < 0 {
		return 0, ErrSqrtRatioOutOfRange
	}
	value, overflow := uint256.FromBig(sqrtPriceX96)
	if overflow {
		return 0, ErrSqrtRatioOutOfRange
	}
	return TickAtSqrtRatio(value)
}

// TickAtSqrtRatio is GetTickAtSqrtRatio on a uint256 value.
func TickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Lt(minSqrtRatio) || !sqrtPriceX96.Lt(maxSqrtRatio) {
		return 0, ErrSqrtRatioOutOfRange
	}

	ratio := new(uint256.Int).Lsh(sqrtPriceX96, 32)
	msb := ratio.BitLen() - 1

	r := new(uint256.Int)
	if msb >= 128 {
		r.Rsh(ratio, uint(msb-127))
	} else {
		r.Lsh(ratio, uint(127-msb))
	}

	// log2 in Q64.64, integer part from the msb, 14 fractional bits by
	// repeated squaring.
	var frac uint64
	for i := 0; i < 14; i++ {
		r.Mul(r, r)
		r.Rsh(r, 127)
		if r.BitLen() > 128 {
			frac |= 1 << (63 - i)
			r.Rsh(r, 1)
		}
	}

	log2 := new(big.Int).Lsh(big.NewInt(int64(msb-128)), 64)
	log2.Add(log2, new(big.Int).SetUint64(frac))

	logSqrt10001 := new(big.Int).Mul(log2, logSqrt10001Factor)

	// Rsh on a negative big.Int floors, like the arithmetic shift on-chain.
	tickLow := int32(new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, tickLowOffset), 128).Int64())
	tickHigh := int32(new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, tickHighOffset), 128).Int64())

	if tickLow == tickHigh {
		return tickLow, nil
	}

	highRatio, err := SqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if !highRatio.Gt(sqrtPriceX96) {
		return tickHigh, nil
	}
	return tickLow, nil
}

func mustHex(s string) *uint256.Int {
	v, err := uint256.FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

func mustDec(s string) *uint256.Int {
	v, overflow := uint256.FromBig(mustBigDec(s))
	if overflow {
		panic("uint256 overflow: " + s)
	}
	return v
}

func mustBigDec(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid decimal: " + s)
	}
	return v
}
