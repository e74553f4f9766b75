package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Position is a NonfungiblePositionManager position with its owner and the
// pool it belongs to.
type Position struct {
	TokenID     *big.Int
	Owner       common.Address
	Operator    common.Address
	Pool        common.Address
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// FetchPosition reads positions(tokenID) and ownerOf(tokenID) from the
// position manager and resolves the pool through the factory.
func FetchPosition(ctx context.Context, caller Caller, manager, factory common.Address, tokenID *big.Int, blockNumber uint64) (Position, error) {
	if tokenID == nil || tokenID.Sign() < 0 {
		return Position{}, fmt.Errorf("invalid token id %v", tokenID)
	}
	managerABI, err := PositionManagerABI()
	if err != nil {
		return Position{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	block := blockArg(blockNumber)
	pos := Position{TokenID: new(big.Int).Set(tokenID)}

	values, err := callMethod(ctx, caller, manager, managerABI, "positions", block, tokenID)
	if err != nil {
		return pos, fmt.Errorf("token %s: %w", tokenID, err)
	}
	if len(values) < 12 {
		return pos, fmt.Errorf("token %s: positions returned %d values", tokenID, len(values))
	}
	if pos.Operator, err = asAddress(values[1]); err != nil {
		return pos, fmt.Errorf("operator: %w", err)
	}
	if pos.Token0, err = asAddress(values[2]); err != nil {
		return pos, fmt.Errorf("token0: %w", err)
	}
	if pos.Token1, err = asAddress(values[3]); err != nil {
		return pos, fmt.Errorf("token1: %w", err)
	}
	if pos.Fee, err = asUint24(values[4]); err != nil {
		return pos, fmt.Errorf("fee: %w", err)
	}
	if pos.TickLower, err = asInt24(values[5]); err != nil {
		return pos, fmt.Errorf("tick lower: %w", err)
	}
	if pos.TickUpper, err = asInt24(values[6]); err != nil {
		return pos, fmt.Errorf("tick upper: %w", err)
	}
	if pos.Liquidity, err = asBigInt(values[7]); err != nil {
		return pos, fmt.Errorf("liquidity: %w", err)
	}
	if pos.TokensOwed0, err = asBigInt(values[10]); err != nil {
		return pos, fmt.Errorf("tokens owed0: %w", err)
	}
	if pos.TokensOwed1, err = asBigInt(values[11]); err != nil {
		return pos, fmt.Errorf("tokens owed1: %w", err)
	}

	values, err = callMethod(ctx, caller, manager, managerABI, "ownerOf", block, tokenID)
	if err != nil {
		return pos, fmt.Errorf("token %s: %w", tokenID, err)
	}
	if pos.Owner, err = asAddress(values[0]); err != nil {
		return pos, fmt.Errorf("owner: %w", err)
	}

	pos.Pool, err = FetchPoolAddress(ctx, caller, factory, pos.Token0, pos.Token1, pos.Fee, blockNumber)
	if err != nil {
		return pos, fmt.Errorf("token %s: %w", tokenID, err)
	}
	return pos, nil
}

// FetchPoolAddress resolves factory.getPool(token0, token1, fee).
func FetchPoolAddress(ctx context.Context, caller Caller, factory, token0, token1 common.Address, fee uint32, blockNumber uint64) (common.Address, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, caller, factory, parsed, "getPool", blockArg(blockNumber), token0, token1, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("pool: %w", err)
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s/%s fee %d", ErrPoolNotFound, token0.Hex(), token1.Hex(), fee)
	}
	return pool, nil
}
