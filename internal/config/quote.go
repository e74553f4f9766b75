package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command. The pool comes
// either from RPC (RPC.URL and Pool) or from SqrtPriceX96 and TickSpacing.
// The range comes either from ticks or from prices.
type QuoteConfig struct {
	RPC          RPC
	Pool         string
	SqrtPriceX96 *big.Int
	TickSpacing  int32

	TickLower    int32
	TickUpper    int32
	HasTickRange bool
	PriceLower   decimal.Decimal
	PriceUpper   decimal.Decimal
	Decimals0    uint8
	Decimals1    uint8

	Amount0     *big.Int
	Amount1     *big.Int
	SlippageBps uint32
	Out         string
	LogLevel    string
}

// Offline reports whether the quote needs no RPC.
func (c QuoteConfig) Offline() bool {
	return c.SqrtPriceX96 != nil
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"slippage-bps": 50,
		"decimals0":    18,
		"decimals1":    18,
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		RPC:         loadRPC(v),
		Pool:        strings.TrimSpace(v.GetString("pool")),
		TickSpacing: v.GetInt32("tick-spacing"),
		TickLower:   v.GetInt32("tick-lower"),
		TickUpper:   v.GetInt32("tick-upper"),
		Decimals0:   uint8(v.GetUint("decimals0")),
		Decimals1:   uint8(v.GetUint("decimals1")),
		SlippageBps: v.GetUint32("slippage-bps"),
		Out:         v.GetString("out"),
		LogLevel:    v.GetString("log-level"),
	}

	if raw := strings.TrimSpace(v.GetString("sqrt-price")); raw != "" {
		if cfg.SqrtPriceX96, err = ParseAmount(raw); err != nil {
			return QuoteConfig{}, fmt.Errorf("sqrt-price: %w", err)
		}
	}

	hasLower, hasUpper := v.IsSet("tick-lower"), v.IsSet("tick-upper")
	priceLower, priceUpper := strings.TrimSpace(v.GetString("price-lower")), strings.TrimSpace(v.GetString("price-upper"))
	switch {
	case hasLower && hasUpper:
		cfg.HasTickRange = true
	case hasLower || hasUpper:
		return QuoteConfig{}, fmt.Errorf("%w: both tick-lower and tick-upper are required", ErrInvalidConfig)
	case priceLower != "" && priceUpper != "":
		if cfg.PriceLower, err = decimal.NewFromString(priceLower); err != nil {
			return QuoteConfig{}, fmt.Errorf("%w: price-lower: %v", ErrInvalidConfig, err)
		}
		if cfg.PriceUpper, err = decimal.NewFromString(priceUpper); err != nil {
			return QuoteConfig{}, fmt.Errorf("%w: price-upper: %v", ErrInvalidConfig, err)
		}
	default:
		return QuoteConfig{}, fmt.Errorf("%w: tick-lower/tick-upper or price-lower/price-upper is required", ErrInvalidConfig)
	}

	if cfg.Amount0, err = ParseAmount(v.GetString("amount0")); err != nil {
		return QuoteConfig{}, fmt.Errorf("amount0: %w", err)
	}
	if cfg.Amount1, err = ParseAmount(v.GetString("amount1")); err != nil {
		return QuoteConfig{}, fmt.Errorf("amount1: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return QuoteConfig{}, err
	}
	return cfg, nil
}

func (c QuoteConfig) validate() error {
	if c.Offline() {
		if c.TickSpacing <= 0 {
			return fmt.Errorf("%w: tick-spacing is required with sqrt-price", ErrInvalidConfig)
		}
	} else {
		if c.RPC.URL == "" || c.Pool == "" {
			return fmt.Errorf("%w: rpc and pool are required unless sqrt-price is given", ErrInvalidConfig)
		}
		if !common.IsHexAddress(c.Pool) {
			return fmt.Errorf("%w: pool %q is not an address", ErrInvalidConfig, c.Pool)
		}
	}
	if c.SlippageBps > 10000 {
		return fmt.Errorf("%w: slippage-bps %d above 10000", ErrInvalidConfig, c.SlippageBps)
	}
	if c.Amount0.Sign() == 0 && c.Amount1.Sign() == 0 {
		return fmt.Errorf("%w: amount0 or amount1 is required", ErrInvalidConfig)
	}
	return nil
}
