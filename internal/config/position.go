package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
)

// PositionConfig holds configuration for the position command.
type PositionConfig struct {
	RPC             RPC
	PositionManager string
	Factory         string
	TokenIDs        []*big.Int
	Concurrency     int
	Out             string
	PGDSN           string
	LogLevel        string
}

// LoadPosition merges config file, environment variables, and flags into PositionConfig.
func LoadPosition(cfgFile string, flags *pflag.FlagSet) (PositionConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"concurrency": 8,
	})
	if err != nil {
		return PositionConfig{}, err
	}

	cfg := PositionConfig{
		RPC:             loadRPC(v),
		PositionManager: strings.TrimSpace(v.GetString("position-manager")),
		Factory:         strings.TrimSpace(v.GetString("factory")),
		Concurrency:     v.GetInt("concurrency"),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	seen := make(map[string]bool)
	for _, raw := range getStringSlice(v, "token-id") {
		id, err := ParseAmount(raw)
		if err != nil {
			return PositionConfig{}, fmt.Errorf("token-id: %w", err)
		}
		if seen[id.String()] {
			continue
		}
		seen[id.String()] = true
		cfg.TokenIDs = append(cfg.TokenIDs, id)
	}

	if err := cfg.validate(); err != nil {
		return PositionConfig{}, err
	}
	return cfg, nil
}

func (c PositionConfig) validate() error {
	if c.RPC.URL == "" {
		return fmt.Errorf("%w: rpc is required", ErrInvalidConfig)
	}
	if !common.IsHexAddress(c.PositionManager) {
		return fmt.Errorf("%w: position-manager %q is not an address", ErrInvalidConfig, c.PositionManager)
	}
	if !common.IsHexAddress(c.Factory) {
		return fmt.Errorf("%w: factory %q is not an address", ErrInvalidConfig, c.Factory)
	}
	if len(c.TokenIDs) == 0 {
		return fmt.Errorf("%w: at least one token-id is required", ErrInvalidConfig)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}
