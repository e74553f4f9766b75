package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func quoteFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("quote", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.Uint64("block", 0, "")
	flags.String("pool", "", "")
	flags.String("sqrt-price", "", "")
	flags.Int32("tick-spacing", 0, "")
	flags.Int32("tick-lower", 0, "")
	flags.Int32("tick-upper", 0, "")
	flags.String("price-lower", "", "")
	flags.String("price-upper", "", "")
	flags.Uint8("decimals0", 18, "")
	flags.Uint8("decimals1", 18, "")
	flags.String("amount0", "", "")
	flags.String("amount1", "", "")
	flags.Uint32("slippage-bps", 50, "")
	flags.String("out", "", "")
	flags.String("log-level", "info", "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func TestLoadQuoteOffline(t *testing.T) {
	flags := quoteFlags(t,
		"--sqrt-price", "79228162514264337593543950336",
		"--tick-spacing", "60",
		"--tick-lower", "-60",
		"--tick-upper", "60",
		"--amount0", "10000000000000000000",
		"--amount1", "10000000000000000000",
	)
	cfg, err := LoadQuote("", flags)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if !cfg.Offline() || !cfg.HasTickRange {
		t.Fatalf("expected offline tick range quote: %+v", cfg)
	}
	if cfg.TickLower != -60 || cfg.TickUpper != 60 || cfg.TickSpacing != 60 {
		t.Fatalf("ticks mismatch: %+v", cfg)
	}
	if cfg.SlippageBps != 50 {
		t.Fatalf("default slippage: %d", cfg.SlippageBps)
	}
	if cfg.Amount0.String() != "10000000000000000000" {
		t.Fatalf("amount0: %s", cfg.Amount0)
	}
	if cfg.RPC.MaxRetries != 3 || cfg.RPC.RetryBackoff != 200*time.Millisecond {
		t.Fatalf("retry defaults: %+v", cfg.RPC)
	}
}

func TestLoadQuoteEnvAndFlagPrecedence(t *testing.T) {
	t.Setenv("TURADEX_RPC", "http://env:8545")
	t.Setenv("TURADEX_POOL", "0x1111111111111111111111111111111111111111")
	t.Setenv("TURADEX_SLIPPAGE_BPS", "100")
	t.Setenv("TURADEX_PRICE_LOWER", "0.99")
	t.Setenv("TURADEX_PRICE_UPPER", "1.01")
	t.Setenv("TURADEX_AMOUNT1", "5")

	flags := quoteFlags(t, "--slippage-bps", "25")
	cfg, err := LoadQuote("", flags)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if cfg.Offline() || cfg.HasTickRange {
		t.Fatalf("expected rpc price range quote: %+v", cfg)
	}
	if cfg.RPC.URL != "http://env:8545" {
		t.Fatalf("rpc from env: %q", cfg.RPC.URL)
	}
	if cfg.SlippageBps != 25 {
		t.Fatalf("flag should win over env: %d", cfg.SlippageBps)
	}
	if cfg.PriceLower.String() != "0.99" || cfg.PriceUpper.String() != "1.01" {
		t.Fatalf("prices: %s %s", cfg.PriceLower, cfg.PriceUpper)
	}
	if cfg.Amount0.Sign() != 0 || cfg.Amount1.Int64() != 5 {
		t.Fatalf("amounts: %s %s", cfg.Amount0, cfg.Amount1)
	}
}

func TestLoadQuoteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turadex.yaml")
	body := []byte("sqrt-price: \"79228162514264337593543950336\"\ntick-spacing: 10\ntick-lower: -100\ntick-upper: 100\namount0: \"1000\"\ndecimals0: 6\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadQuote(path, quoteFlags(t))
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if cfg.TickSpacing != 10 || cfg.TickLower != -100 || cfg.TickUpper != 100 {
		t.Fatalf("ticks from file: %+v", cfg)
	}
	if cfg.Decimals0 != 6 || cfg.Decimals1 != 18 {
		t.Fatalf("decimals: %d %d", cfg.Decimals0, cfg.Decimals1)
	}
}

func TestLoadQuoteInvalid(t *testing.T) {
	cases := map[string][]string{
		"no pool source":   {"--tick-lower", "-60", "--tick-upper", "60", "--amount0", "1"},
		"no spacing":       {"--sqrt-price", "1", "--tick-lower", "-60", "--tick-upper", "60", "--amount0", "1"},
		"half tick range":  {"--sqrt-price", "1", "--tick-spacing", "60", "--tick-lower", "-60", "--amount0", "1"},
		"no range":         {"--sqrt-price", "1", "--tick-spacing", "60", "--amount0", "1"},
		"no amounts":       {"--sqrt-price", "1", "--tick-spacing", "60", "--tick-lower", "-60", "--tick-upper", "60"},
		"negative amount":  {"--sqrt-price", "1", "--tick-spacing", "60", "--tick-lower", "-60", "--tick-upper", "60", "--amount0", "-1"},
		"slippage too big": {"--sqrt-price", "1", "--tick-spacing", "60", "--tick-lower", "-60", "--tick-upper", "60", "--amount0", "1", "--slippage-bps", "10001"},
		"bad price":        {"--sqrt-price", "1", "--tick-spacing", "60", "--price-lower", "abc", "--price-upper", "1", "--amount0", "1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadQuote("", quoteFlags(t, args...)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected invalid config, got %v", err)
			}
		})
	}
}

func positionFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("position", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.Uint64("block", 0, "")
	flags.String("position-manager", "", "")
	flags.String("factory", "", "")
	flags.StringSlice("token-id", nil, "")
	flags.Int("concurrency", 8, "")
	flags.String("out", "", "")
	flags.String("pg-dsn", "", "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func TestLoadPosition(t *testing.T) {
	flags := positionFlags(t,
		"--rpc", "http://localhost:8545",
		"--position-manager", "0x2222222222222222222222222222222222222222",
		"--factory", "0x3333333333333333333333333333333333333333",
		"--token-id", "1,2",
		"--token-id", "2",
		"--token-id", "3",
		"--block", "123",
	)
	cfg, err := LoadPosition("", flags)
	if err != nil {
		t.Fatalf("load position: %v", err)
	}
	if len(cfg.TokenIDs) != 3 {
		t.Fatalf("token ids: %v", cfg.TokenIDs)
	}
	for i, want := range []int64{1, 2, 3} {
		if cfg.TokenIDs[i].Int64() != want {
			t.Fatalf("token id %d: %s", i, cfg.TokenIDs[i])
		}
	}
	if cfg.Concurrency != 8 || cfg.RPC.Block != 123 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadPositionTokenIDsFromEnv(t *testing.T) {
	t.Setenv("TURADEX_TOKEN_ID", "7, 8")
	flags := positionFlags(t,
		"--rpc", "http://localhost:8545",
		"--position-manager", "0x2222222222222222222222222222222222222222",
		"--factory", "0x3333333333333333333333333333333333333333",
	)
	cfg, err := LoadPosition("", flags)
	if err != nil {
		t.Fatalf("load position: %v", err)
	}
	if len(cfg.TokenIDs) != 2 || cfg.TokenIDs[1].Int64() != 8 {
		t.Fatalf("token ids: %v", cfg.TokenIDs)
	}
}

func TestLoadPositionInvalid(t *testing.T) {
	base := []string{"--rpc", "http://localhost:8545", "--factory", "0x3333333333333333333333333333333333333333", "--token-id", "1"}
	if _, err := LoadPosition("", positionFlags(t, base...)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected missing manager error, got %v", err)
	}
	args := append([]string{"--position-manager", "0x2222222222222222222222222222222222222222", "--concurrency", "0"}, base...)
	if _, err := LoadPosition("", positionFlags(t, args...)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected concurrency error, got %v", err)
	}
	args = append([]string{"--position-manager", "0x2222222222222222222222222222222222222222", "--token-id", "x"}, base...)
	if _, err := LoadPosition("", positionFlags(t, args...)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected token id error, got %v", err)
	}
}
