package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"turadex/internal/chain"
	"turadex/internal/config"
	"turadex/internal/dex"
	"turadex/internal/model"
	"turadex/internal/position"
	"turadex/internal/storage"
	"turadex/internal/tickmath"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the liquidity and amounts of a mint over a tick range",
		RunE:  runQuote,
	}

	addRPCFlags(cmd)
	cmd.Flags().String("pool", "", "pool address (read over RPC)")
	cmd.Flags().String("sqrt-price", "", "offline Q64.96 sqrt price instead of reading the pool")
	cmd.Flags().Int32("tick-spacing", 0, "offline tick spacing")
	cmd.Flags().Int32("tick-lower", 0, "lower tick")
	cmd.Flags().Int32("tick-upper", 0, "upper tick")
	cmd.Flags().String("price-lower", "", "lower price, token0 in token1")
	cmd.Flags().String("price-upper", "", "upper price, token0 in token1")
	cmd.Flags().Uint8("decimals0", 18, "token0 decimals (offline only)")
	cmd.Flags().Uint8("decimals1", 18, "token1 decimals (offline only)")
	cmd.Flags().String("amount0", "", "desired token0 amount in base units")
	cmd.Flags().String("amount1", "", "desired token1 amount in base units")
	cmd.Flags().Uint32("slippage-bps", 50, "slippage tolerance for the minimum amounts")
	cmd.Flags().String("out", "", "append the quote to this JSONL file")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := loadQuotePool(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var rng position.Range
	if cfg.HasTickRange {
		rng, err = position.NewRange(cfg.TickLower, cfg.TickUpper, src.pool.TickSpacing)
	} else {
		rng, err = position.RangeFromPrices(cfg.PriceLower, cfg.PriceUpper, src.decimals0, src.decimals1, src.pool.TickSpacing)
	}
	if err != nil {
		return fmt.Errorf("tick range: %w", err)
	}

	q, err := position.QuoteMint(src.pool, rng, cfg.Amount0, cfg.Amount1, cfg.SlippageBps)
	if err != nil {
		return fmt.Errorf("quote mint: %w", err)
	}

	rec := q.Record(&src.decimals0, &src.decimals1)
	rec.Pool = cfg.Pool
	rec.BlockNumber = cfg.RPC.Block
	rec.QuotedAt = nowUTC()

	if cfg.Out != "" {
		if err := storage.NewJsonlStorage(cfg.Out).PutQuotes(ctx, []model.MintQuote{rec}); err != nil {
			return fmt.Errorf("write quote: %w", err)
		}
	}

	logger.Info("quote complete",
		zap.String("pool", cfg.Pool),
		zap.Bool("offline", cfg.Offline()),
		zap.Int32("tick", src.pool.Tick),
		zap.Int32("tick_lower", rng.TickLower),
		zap.Int32("tick_upper", rng.TickUpper),
		zap.String("status", rec.Status),
		zap.String("liquidity", rec.Liquidity),
		zap.String("out", cfg.Out),
	)

	return writeJSON(cmd.OutOrStdout(), rec)
}

type quotePool struct {
	pool      position.Pool
	decimals0 uint8
	decimals1 uint8
}

// loadQuotePool takes the pool from flags when offline, otherwise reads
// slot0, spacing and token decimals over RPC.
func loadQuotePool(ctx context.Context, cfg config.QuoteConfig, logger *zap.Logger) (quotePool, error) {
	if cfg.Offline() {
		tick, err := tickmath.GetTickAtSqrtRatio(cfg.SqrtPriceX96)
		if err != nil {
			return quotePool{}, fmt.Errorf("sqrt price: %w", err)
		}
		return quotePool{
			pool:      position.Pool{SqrtPriceX96: cfg.SqrtPriceX96, Tick: tick, TickSpacing: cfg.TickSpacing},
			decimals0: cfg.Decimals0,
			decimals1: cfg.Decimals1,
		}, nil
	}

	client, err := chain.NewClient(ctx, cfg.RPC.URL, chain.WithRetries(cfg.RPC.MaxRetries, cfg.RPC.RetryBackoff))
	if err != nil {
		return quotePool{}, fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	address := common.HexToAddress(cfg.Pool)
	state, err := dex.FetchPoolState(ctx, client, address, cfg.RPC.Block)
	if err != nil {
		return quotePool{}, fmt.Errorf("fetch pool %s: %w", address.Hex(), err)
	}
	pool, err := position.PoolFromState(state)
	if err != nil {
		return quotePool{}, err
	}

	tokens := dex.NewTokenMetaCache()
	meta0, err := tokens.GetOrFetch(ctx, client, common.HexToAddress(state.Token0), logger)
	if err != nil {
		return quotePool{}, fmt.Errorf("token0 metadata: %w", err)
	}
	meta1, err := tokens.GetOrFetch(ctx, client, common.HexToAddress(state.Token1), logger)
	if err != nil {
		return quotePool{}, fmt.Errorf("token1 metadata: %w", err)
	}

	logger.Debug("pool loaded",
		zap.String("pool", address.Hex()),
		zap.String("token0", meta0.Symbol),
		zap.String("token1", meta1.Symbol),
		zap.Uint32("fee", state.Fee),
		zap.Int32("tick_spacing", state.TickSpacing),
		zap.String("sqrt_price_x96", state.SqrtPriceX96),
	)

	return quotePool{pool: pool, decimals0: meta0.Decimals, decimals1: meta1.Decimals}, nil
}
