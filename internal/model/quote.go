package model

// MintQuote holds the parameters a mint for a tick range would carry at the
// quoted pool price.
type MintQuote struct {
	Pool              string `json:"pool,omitempty"`
	BlockNumber       uint64 `json:"block_number,omitempty"`
	SqrtPriceX96      string `json:"sqrt_price_x96"`
	Tick              int32  `json:"tick"`
	TickSpacing       int32  `json:"tick_spacing"`
	TickLower         int32  `json:"tick_lower"`
	TickUpper         int32  `json:"tick_upper"`
	SqrtRatioLowerX96 string `json:"sqrt_ratio_lower_x96"`
	SqrtRatioUpperX96 string `json:"sqrt_ratio_upper_x96"`
	Status            string `json:"status"`
	Liquidity         string `json:"liquidity"`
	Amount0Desired    string `json:"amount0_desired"`
	Amount1Desired    string `json:"amount1_desired"`
	Amount0           string `json:"amount0"`
	Amount1           string `json:"amount1"`
	Amount0Min        string `json:"amount0_min"`
	Amount1Min        string `json:"amount1_min"`
	Amount0Charged    string `json:"amount0_charged"`
	Amount1Charged    string `json:"amount1_charged"`
	SlippageBps       uint32 `json:"slippage_bps"`
	PriceLower        string `json:"price_lower,omitempty"`
	PriceUpper        string `json:"price_upper,omitempty"`
	PriceCurrent      string `json:"price_current,omitempty"`
	QuotedAt          string `json:"quoted_at,omitempty"`
}
