package dex

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"turadex/internal/model"
)

// FetchPoolState reads a pool's immutables, slot0 and active liquidity at
// blockNumber (0 means latest).
func FetchPoolState(ctx context.Context, caller Caller, pool common.Address, blockNumber uint64) (model.PoolState, error) {
	parsed, err := PoolABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}
	block := blockArg(blockNumber)
	state := model.PoolState{Address: pool.Hex(), BlockNumber: blockNumber}

	values, err := callMethod(ctx, caller, pool, parsed, "token0", block)
	if err != nil {
		return state, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return state, fmt.Errorf("token0: %w", err)
	}
	state.Token0 = token0.Hex()

	values, err = callMethod(ctx, caller, pool, parsed, "token1", block)
	if err != nil {
		return state, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return state, fmt.Errorf("token1: %w", err)
	}
	state.Token1 = token1.Hex()

	values, err = callMethod(ctx, caller, pool, parsed, "fee", block)
	if err != nil {
		return state, err
	}
	if state.Fee, err = asUint24(values[0]); err != nil {
		return state, fmt.Errorf("fee: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, parsed, "tickSpacing", block)
	if err != nil {
		return state, err
	}
	if state.TickSpacing, err = asInt24(values[0]); err != nil {
		return state, fmt.Errorf("tick spacing: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, parsed, "slot0", block)
	if err != nil {
		return state, err
	}
	if len(values) < 2 {
		return state, fmt.Errorf("slot0: %d values", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return state, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	if sqrtPrice.Sign() == 0 {
		return state, fmt.Errorf("%w: %s is not initialized", ErrPoolNotFound, pool.Hex())
	}
	state.SqrtPriceX96 = sqrtPrice.String()
	if state.Tick, err = asInt24(values[1]); err != nil {
		return state, fmt.Errorf("slot0 tick: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, parsed, "liquidity", block)
	if err != nil {
		return state, err
	}
	liquidity, err := asBigInt(values[0])
	if err != nil {
		return state, fmt.Errorf("liquidity: %w", err)
	}
	state.Liquidity = liquidity.String()

	return state, nil
}

type poolKey struct {
	address common.Address
	block   uint64
}

// PoolStateCache caches pool states by address and block. Concurrent
// misses for the same key share one fetch.
type PoolStateCache struct {
	mu    sync.RWMutex
	data  map[poolKey]model.PoolState
	group singleflight.Group
}

func NewPoolStateCache() *PoolStateCache {
	return &PoolStateCache{data: make(map[poolKey]model.PoolState)}
}

func (c *PoolStateCache) Get(address common.Address, blockNumber uint64) (model.PoolState, bool) {
	c.mu.RLock()
	state, ok := c.data[poolKey{address, blockNumber}]
	c.mu.RUnlock()
	return state, ok
}

func (c *PoolStateCache) Set(address common.Address, blockNumber uint64, state model.PoolState) {
	c.mu.Lock()
	c.data[poolKey{address, blockNumber}] = state
	c.mu.Unlock()
}

// Len returns the number of cached states.
func (c *PoolStateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// States returns a copy of every cached state.
func (c *PoolStateCache) States() []model.PoolState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.PoolState, 0, len(c.data))
	for _, state := range c.data {
		out = append(out, state)
	}
	return out
}

// GetOrFetch returns the cached state or fetches and caches it. Failed
// fetches are not cached.
func (c *PoolStateCache) GetOrFetch(ctx context.Context, caller Caller, address common.Address, blockNumber uint64) (model.PoolState, error) {
	if state, ok := c.Get(address, blockNumber); ok {
		return state, nil
	}
	key := address.Hex() + "@" + strconv.FormatUint(blockNumber, 10)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		state, err := FetchPoolState(ctx, caller, address, blockNumber)
		if err != nil {
			return nil, err
		}
		c.Set(address, blockNumber, state)
		return state, nil
	})
	if err != nil {
		return model.PoolState{}, err
	}
	return v.(model.PoolState), nil
}
