package model

// TokenMeta is the ERC20 metadata used to scale prices. Symbol and Name are
// empty when the token exposes neither the string nor the bytes32 form.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}
