// Package fullmath implements 256-bit fixed-point multiply-divide with a
// 512-bit intermediate product, matching the protocol's FullMath library.
package fullmath

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("uint256 overflow")
)

// Q96 is 2^96, the scale of sqrt prices.
var Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)

// MulDiv returns floor(x*y/d). The product is kept at full precision; the
// call fails when d is zero or the quotient does not fit in 256 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDivRoundingUp returns ceil(x*y/d).
func MulDivRoundingUp(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := MulDiv(x, y, d)
	if err != nil {
		return nil, err
	}
	rem := new(uint256.Int).MulMod(x, y, d)
	if rem.IsZero() {
		return z, nil
	}
	if z.Eq(maxUint256) {
		return nil, ErrOverflow
	}
	return z.AddUint64(z, 1), nil
}

// MaxUint256 returns a copy of 2^256-1.
func MaxUint256() *uint256.Int {
	return new(uint256.Int).Set(maxUint256)
}

var maxUint256 = new(uint256.Int).SetAllOne()
