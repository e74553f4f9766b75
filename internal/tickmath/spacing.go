package tickmath

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFeeTier     = errors.New("unknown fee tier")
	ErrInvalidTickSpacing = errors.New("invalid tick spacing")
	ErrEmptyTickRange     = errors.New("empty price range")
	ErrUnalignedTick      = errors.New("tick not aligned to spacing")
)

// Fee tiers in hundredths of a bip, as passed to the factory.
const (
	FeeLowest uint32 = 100
	FeeLow    uint32 = 500
	FeeMedium uint32 = 3000
	FeeHigh   uint32 = 10000

	// FeeLowMedium is the 0.25% tier PancakeSwap-derived deployments enable.
	FeeLowMedium uint32 = 2500
)

var feeTickSpacings = map[uint32]int32{
	FeeLowest:    1,
	FeeLow:       10,
	FeeLowMedium: 50,
	FeeMedium:    60,
	FeeHigh:      200,
}

// TickSpacingForFee returns the tick spacing the factory enables for a fee tier.
func TickSpacingForFee(fee uint32) (int32, error) {
	spacing, ok := feeTickSpacings[fee]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFeeTier, fee)
	}
	return spacing, nil
}

// MinUsableTick is the lowest multiple of spacing not below MinTick.
func MinUsableTick(spacing int32) int32 {
	return -(-MinTick / spacing * spacing)
}

// MaxUsableTick is the highest multiple of spacing not above MaxTick.
func MaxUsableTick(spacing int32) int32 {
	return MaxTick / spacing * spacing
}

// NearestUsableTick rounds tick to the closest multiple of spacing, halves
// away from zero, and clamps the result into the usable range.
func NearestUsableTick(tick, spacing int32) (int32, error) {
	if spacing <= 0 {
		return 0, ErrInvalidTickSpacing
	}
	if tick < MinTick || tick > MaxTick {
		return 0, ErrTickOutOfRange
	}

	rem := tick % spacing
	rounded := tick - rem
	switch {
	case rem > 0 && 2*rem >= spacing:
		rounded += spacing
	case rem < 0 && -2*rem >= spacing:
		rounded -= spacing
	}

	if rounded < MinUsableTick(spacing) {
		return rounded + spacing, nil
	}
	if rounded > MaxUsableTick(spacing) {
		return rounded - spacing, nil
	}
	return rounded, nil
}

// ValidateTickRange checks that lower < upper, both are in bounds and both
// are multiples of spacing.
func ValidateTickRange(lower, upper, spacing int32) error {
	if spacing <= 0 {
		return ErrInvalidTickSpacing
	}
	if lower < MinTick || upper > MaxTick {
		return ErrTickOutOfRange
	}
	if lower >= upper {
		return ErrEmptyTickRange
	}
	if lower%spacing != 0 {
		return fmt.Errorf("%w: lower %d spacing %d", ErrUnalignedTick, lower, spacing)
	}
	if upper%spacing != 0 {
		return fmt.Errorf("%w: upper %d spacing %d", ErrUnalignedTick, upper, spacing)
	}
	return nil
}
