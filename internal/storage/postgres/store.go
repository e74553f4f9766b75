package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turadex/internal/model"
)

// Store provides Postgres persistence for pool states and position snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS pool_states (
	chain_id       BIGINT       NOT NULL,
	pool_address   TEXT         NOT NULL,
	block_number   BIGINT       NOT NULL,
	token0         TEXT         NOT NULL,
	token1         TEXT         NOT NULL,
	fee            INTEGER      NOT NULL,
	tick_spacing   INTEGER      NOT NULL,
	sqrt_price_x96 NUMERIC(78,0) NOT NULL,
	tick           INTEGER      NOT NULL,
	liquidity      NUMERIC(78,0) NOT NULL,
	created_at     TIMESTAMPTZ  NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ  NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, block_number)
);

CREATE TABLE IF NOT EXISTS position_snapshots (
	chain_id      BIGINT        NOT NULL,
	token_id      NUMERIC(78,0) NOT NULL,
	block_number  BIGINT        NOT NULL,
	owner         TEXT          NOT NULL,
	pool_address  TEXT          NOT NULL,
	token0        TEXT          NOT NULL,
	token1        TEXT          NOT NULL,
	fee           INTEGER       NOT NULL,
	tick_lower    INTEGER       NOT NULL,
	tick_upper    INTEGER       NOT NULL,
	liquidity     NUMERIC(78,0) NOT NULL,
	amount0       NUMERIC(78,0) NOT NULL,
	amount1       NUMERIC(78,0) NOT NULL,
	tokens_owed0  NUMERIC(78,0) NOT NULL,
	tokens_owed1  NUMERIC(78,0) NOT NULL,
	status        TEXT          NOT NULL,
	created_at    TIMESTAMPTZ   NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ   NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, token_id, block_number)
);
`

// EnsureSchema creates the tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertPoolStates inserts or updates pool states.
func (s *Store) UpsertPoolStates(ctx context.Context, states []model.PoolState) error {
	if len(states) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range states {
		batch.Queue(`
			INSERT INTO pool_states (
				chain_id, pool_address, block_number, token0, token1, fee, tick_spacing,
				sqrt_price_x96, tick, liquidity, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (chain_id, pool_address, block_number)
			DO UPDATE SET
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				tick = EXCLUDED.tick,
				liquidity = EXCLUDED.liquidity,
				updated_at = now()
		`,
			int64(st.ChainID),
			st.Address,
			int64(st.BlockNumber),
			st.Token0,
			st.Token1,
			int64(st.Fee),
			st.TickSpacing,
			st.SqrtPriceX96,
			st.Tick,
			st.Liquidity,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range states {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool state: %w", err)
		}
	}
	return nil
}

// PutPositionSnapshots inserts or updates position snapshots.
func (s *Store) PutPositionSnapshots(ctx context.Context, snapshots []model.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range snapshots {
		batch.Queue(`
			INSERT INTO position_snapshots (
				chain_id, token_id, block_number, owner, pool_address, token0, token1, fee,
				tick_lower, tick_upper, liquidity, amount0, amount1, tokens_owed0, tokens_owed1,
				status, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
			ON CONFLICT (chain_id, token_id, block_number)
			DO UPDATE SET
				owner = EXCLUDED.owner,
				liquidity = EXCLUDED.liquidity,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				tokens_owed0 = EXCLUDED.tokens_owed0,
				tokens_owed1 = EXCLUDED.tokens_owed1,
				status = EXCLUDED.status,
				updated_at = now()
		`,
			int64(p.ChainID),
			p.TokenID,
			int64(p.BlockNumber),
			p.Owner,
			p.Pool,
			p.Token0,
			p.Token1,
			int64(p.Fee),
			p.TickLower,
			p.TickUpper,
			p.Liquidity,
			p.Amount0,
			p.Amount1,
			p.TokensOwed0,
			p.TokensOwed1,
			p.Status,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert position snapshot: %w", err)
		}
	}
	return nil
}

// PositionLiquidity returns the stored liquidity of a position at a block.
func (s *Store) PositionLiquidity(ctx context.Context, chainID uint64, tokenID string, blockNumber uint64) (string, error) {
	var liquidity string
	row := s.pool.QueryRow(ctx, `
		SELECT liquidity::text FROM position_snapshots
		WHERE chain_id = $1 AND token_id = $2 AND block_number = $3
	`, int64(chainID), tokenID, int64(blockNumber))
	if err := row.Scan(&liquidity); err != nil {
		return "", err
	}
	return liquidity, nil
}
