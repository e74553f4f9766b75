package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"turadex/internal/price"
	"turadex/internal/tickmath"
)

type tickInfo struct {
	Tick              int32  `json:"tick"`
	SqrtPriceX96      string `json:"sqrt_price_x96"`
	Price             string `json:"price"`
	NearestUsableTick *int32 `json:"nearest_usable_tick,omitempty"`
}

func newTickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert between a tick and its sqrt price",
		RunE:  runTick,
	}
	cmd.Flags().Int32("tick", 0, "tick to convert")
	cmd.Flags().String("sqrt-price", "", "Q64.96 sqrt price to convert")
	cmd.Flags().Uint8("decimals0", 18, "token0 decimals")
	cmd.Flags().Uint8("decimals1", 18, "token1 decimals")
	cmd.Flags().Int32("tick-spacing", 0, "also report the nearest usable tick for this spacing")
	return cmd
}

func runTick(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	decimals0, _ := flags.GetUint8("decimals0")
	decimals1, _ := flags.GetUint8("decimals1")
	spacing, _ := flags.GetInt32("tick-spacing")
	rawSqrt, _ := flags.GetString("sqrt-price")

	var tick *int32
	if flags.Changed("tick") {
		v, _ := flags.GetInt32("tick")
		tick = &v
	}

	info, err := describeTick(tick, rawSqrt, decimals0, decimals1, spacing)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), info)
}

// describeTick converts either tick or rawSqrt, whichever is given.
func describeTick(tick *int32, rawSqrt string, decimals0, decimals1 uint8, spacing int32) (tickInfo, error) {
	if (tick != nil) == (rawSqrt != "") {
		return tickInfo{}, fmt.Errorf("exactly one of --tick or --sqrt-price is required")
	}

	var info tickInfo
	var ratio *big.Int
	if tick != nil {
		var err error
		if ratio, err = tickmath.GetSqrtRatioAtTick(*tick); err != nil {
			return tickInfo{}, fmt.Errorf("tick %d: %w", *tick, err)
		}
		info.Tick = *tick
	} else {
		var ok bool
		if ratio, ok = new(big.Int).SetString(rawSqrt, 10); !ok {
			return tickInfo{}, fmt.Errorf("invalid sqrt price %q", rawSqrt)
		}
		t, err := tickmath.GetTickAtSqrtRatio(ratio)
		if err != nil {
			return tickInfo{}, fmt.Errorf("sqrt price %s: %w", ratio, err)
		}
		info.Tick = t
	}
	info.SqrtPriceX96 = ratio.String()
	info.Price = price.SqrtRatioToPrice(ratio, decimals0, decimals1).String()

	if spacing > 0 {
		usable, err := tickmath.NearestUsableTick(info.Tick, spacing)
		if err != nil {
			return tickInfo{}, err
		}
		info.NearestUsableTick = &usable
	}
	return info, nil
}
