// Package domain holds the records shared across the deployment tool:
// token descriptions, deployment state, and journal entries.
package domain

// TokenSpec describes one wrapped asset. Specs are positional: the
// index of a spec in the configured list becomes its FA2 token id, so
// reordering the list changes the deployed configuration.
type TokenSpec struct {
	// EthContract is the Ethereum contract address of the wrapped
	// asset, 0x-prefixed.
	EthContract string `json:"eth_contract" yaml:"eth_contract"`
	EthSymbol   string `json:"eth_symbol" yaml:"eth_symbol"`
	Symbol      string `json:"symbol" yaml:"symbol"`
	Name        string `json:"name" yaml:"name"`
	Decimals    int    `json:"decimals" yaml:"decimals"`
}
