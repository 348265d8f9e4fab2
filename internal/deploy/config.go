// Package deploy builds contract storage records and drives the
// deployment sequence for the wrap protocol contracts.
package deploy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tezos"
)

// ContractPaths locates the contract sources a deployment compiles or
// loads.
type ContractPaths struct {
	// Minter and Quorum are LIGO sources, compiled with their
	// entrypoints. FA2 is a pre-compiled Michelson file. Views is the
	// LIGO source the FA2 off-chain views are compiled from.
	Minter           string `yaml:"minter"`
	MinterEntrypoint string `yaml:"minter_entrypoint"`
	Quorum           string `yaml:"quorum"`
	QuorumEntrypoint string `yaml:"quorum_entrypoint"`
	FA2              string `yaml:"fa2"`
	Views            string `yaml:"views"`
}

// Config is the deployment manifest, read from deploy.yaml.
type Config struct {
	Contracts ContractPaths      `yaml:"contracts"`
	Signers   map[string]string  `yaml:"signers"`
	Threshold int                `yaml:"threshold"`
	Tokens    []domain.TokenSpec `yaml:"tokens"`
}

// LoadConfig reads a manifest, fills defaults, and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deploy: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("deploy: parse %s: %w", path, err)
	}
	if cfg.Contracts.MinterEntrypoint == "" {
		cfg.Contracts.MinterEntrypoint = "main"
	}
	if cfg.Contracts.QuorumEntrypoint == "" {
		cfg.Contracts.QuorumEntrypoint = "main"
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 1
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Check validates the manifest shape. The threshold is never compared
// to the signer count: the quorum contract enforces that relation
// itself.
func (c *Config) Check() error {
	if c.Threshold < 1 {
		return fmt.Errorf("deploy: threshold is %d, want at least 1", c.Threshold)
	}
	if len(c.Tokens) == 0 {
		return fmt.Errorf("deploy: no tokens configured")
	}
	for i, tok := range c.Tokens {
		if tok.EthContract == "" || tok.Symbol == "" {
			return fmt.Errorf("deploy: token %d is missing its eth_contract or symbol", i)
		}
	}
	if c.Contracts.Minter == "" || c.Contracts.Quorum == "" || c.Contracts.FA2 == "" || c.Contracts.Views == "" {
		return fmt.Errorf("deploy: contract paths incomplete")
	}
	return nil
}

// SignerWarnings reports signer public keys that do not parse as
// canonical edpk keys. The deployment proceeds regardless: signers are
// passed through exactly as configured and key validity is the
// contract's concern.
func (c *Config) SignerWarnings() []string {
	var warnings []string
	for name, key := range c.Signers {
		if _, err := tezos.ParsePublicKey(key); err != nil {
			warnings = append(warnings, fmt.Sprintf("signer %s: %v", name, err))
		}
	}
	sort.Strings(warnings)
	return warnings
}
