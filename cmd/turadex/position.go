package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"turadex/internal/chain"
	"turadex/internal/config"
	"turadex/internal/dex"
	"turadex/internal/model"
	"turadex/internal/position"
	"turadex/internal/storage"
	"turadex/internal/storage/postgres"
)

func newPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Value NonfungiblePositionManager positions at the pool price",
		RunE:  runPosition,
	}

	addRPCFlags(cmd)
	cmd.Flags().String("position-manager", "", "NonfungiblePositionManager address")
	cmd.Flags().String("factory", "", "V3 factory address")
	cmd.Flags().StringSlice("token-id", nil, "position token ids (comma-separated or repeated)")
	cmd.Flags().Int("concurrency", 8, "maximum positions fetched at once")
	cmd.Flags().String("out", "", "append snapshots to this JSONL file")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for pool states and snapshots")
	return cmd
}

func runPosition(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPosition(cfgFile, cmd.Flags())
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

	client, err := chain.NewClient(ctx, cfg.RPC.URL, chain.WithRetries(cfg.RPC.MaxRetries, cfg.RPC.RetryBackoff))
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	block := cfg.RPC.Block
	if block == 0 {
		// Pin every read to one block so amounts and prices agree.
		if block, err = client.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}

	var sinks []storage.PositionSink
	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}

	logger.Info("position start",
		zap.String("rpc", cfg.RPC.URL),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.Uint64("block", block),
		zap.Int("positions", len(cfg.TokenIDs)),
		zap.Int("concurrency", cfg.Concurrency),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	v := &valuer{
		caller:  client,
		manager: common.HexToAddress(cfg.PositionManager),
		factory: common.HexToAddress(cfg.Factory),
		chainID: chainID.Uint64(),
		block:   block,
		pools:   dex.NewPoolStateCache(),
		logger:  logger,
	}
	snapshots, err := v.valueAll(ctx, cfg.TokenIDs, cfg.Concurrency)
	if err != nil {
		return err
	}

	if store != nil {
		states := v.pools.States()
		for i := range states {
			states[i].ChainID = v.chainID
		}
		if err := store.UpsertPoolStates(ctx, states); err != nil {
			return err
		}
	}
	for _, sink := range sinks {
		if err := sink.PutPositionSnapshots(ctx, snapshots); err != nil {
			return fmt.Errorf("write snapshots: %w", err)
		}
	}
	if len(sinks) == 0 {
		for _, snap := range snapshots {
			if err := writeJSON(cmd.OutOrStdout(), snap); err != nil {
				return err
			}
		}
	}

	failed := len(cfg.TokenIDs) - len(snapshots)
	logger.Info("position complete",
		zap.Int("valued", len(snapshots)),
		zap.Int("failed", failed),
		zap.Int("pools", v.pools.Len()),
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d positions failed", failed, len(cfg.TokenIDs))
	}
	return nil
}

// valuer fetches positions and values them against pool states read at
// the same block.
type valuer struct {
	caller  dex.Caller
	manager common.Address
	factory common.Address
	chainID uint64
	block   uint64
	pools   *dex.PoolStateCache
	logger  *zap.Logger
}

// valueAll values every token id with at most limit in flight. A position
// that fails is logged and left out; cancellation aborts the whole run.
func (v *valuer) valueAll(ctx context.Context, tokenIDs []*big.Int, limit int) ([]model.PositionSnapshot, error) {
	results := make([]*model.PositionSnapshot, len(tokenIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range tokenIDs {
		i, id := i, id
		g.Go(func() error {
			snap, err := v.value(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				v.logger.Warn("position failed", zap.String("token_id", id.String()), zap.Error(err))
				return nil
			}
			results[i] = &snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.PositionSnapshot, 0, len(tokenIDs))
	for _, snap := range results {
		if snap != nil {
			out = append(out, *snap)
		}
	}
	return out, nil
}

func (v *valuer) value(ctx context.Context, tokenID *big.Int) (model.PositionSnapshot, error) {
	pos, err := dex.FetchPosition(ctx, v.caller, v.manager, v.factory, tokenID, v.block)
	if err != nil {
		return model.PositionSnapshot{}, err
	}
	state, err := v.pools.GetOrFetch(ctx, v.caller, pos.Pool, v.block)
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("pool %s: %w", pos.Pool.Hex(), err)
	}
	pool, err := position.PoolFromState(state)
	if err != nil {
		return model.PositionSnapshot{}, err
	}

	rng := position.Range{TickLower: pos.TickLower, TickUpper: pos.TickUpper}
	amount0, amount1, err := position.Amounts(pool, position.Position{Range: rng, Liquidity: pos.Liquidity})
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("amounts: %w", err)
	}
	status, err := position.StatusOf(pool, rng)
	if err != nil {
		return model.PositionSnapshot{}, err
	}

	return model.PositionSnapshot{
		ChainID:     v.chainID,
		BlockNumber: v.block,
		TokenID:     tokenID.String(),
		Owner:       pos.Owner.Hex(),
		Pool:        pos.Pool.Hex(),
		Token0:      pos.Token0.Hex(),
		Token1:      pos.Token1.Hex(),
		Fee:         pos.Fee,
		TickLower:   pos.TickLower,
		TickUpper:   pos.TickUpper,
		Liquidity:   pos.Liquidity.String(),
		Amount0:     amount0.String(),
		Amount1:     amount1.String(),
		TokensOwed0: pos.TokensOwed0.String(),
		TokensOwed1: pos.TokensOwed1.String(),
		Status:      string(status),
		FetchedAt:   nowUTC(),
	}, nil
}
