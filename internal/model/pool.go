package model

// PoolState is a snapshot of a V3 pool's immutables plus slot0 and active
// liquidity at a block. Big integers are decimal strings.
type PoolState struct {
	ChainID      uint64 `json:"chain_id"`
	BlockNumber  uint64 `json:"block_number"`
	Address      string `json:"address"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	Liquidity    string `json:"liquidity"`
	FetchedAt    string `json:"fetched_at,omitempty"`
}
