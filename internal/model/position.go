package model

import "encoding/json"

// PositionSnapshot is a NonfungiblePositionManager position valued at the
// pool price of the same block.
type PositionSnapshot struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	TokenID     string `json:"token_id"`
	Owner       string `json:"owner"`
	Pool        string `json:"pool"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Fee         uint32 `json:"fee"`
	TickLower   int32  `json:"tick_lower"`
	TickUpper   int32  `json:"tick_upper"`
	Liquidity   string `json:"liquidity"`
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	TokensOwed0 string `json:"tokens_owed0"`
	TokensOwed1 string `json:"tokens_owed1"`
	Status      string `json:"status"`
	FetchedAt   string `json:"fetched_at,omitempty"`
}

// MarshalJSON ensures PositionSnapshot is encoded with stable field names.
func (p PositionSnapshot) MarshalJSON() ([]byte, error) {
	type Alias PositionSnapshot
	return json.Marshal(Alias(p))
}

// UnmarshalJSON decodes a PositionSnapshot from JSON.
func (p *PositionSnapshot) UnmarshalJSON(data []byte) error {
	type Alias PositionSnapshot
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = PositionSnapshot(a)
	return nil
}
