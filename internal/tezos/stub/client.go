// Package stub provides an in-memory tezos.Client for tests.
package stub

import (
	"context"
	"fmt"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
)

// Call records one Originate or Call invocation.
type Call struct {
	Kind       string // "origination" or "transaction"
	Contract   string
	Entrypoint string
	Value      *micheline.Node
	Script     *micheline.Node
	Storage    *micheline.Node
}

// Client is a test double for tezos.Client. Originations hand out
// Addresses in order and every invocation is appended to Calls.
type Client struct {
	Account   string
	Addresses []string

	// FailAt makes the n-th invocation (1-based, counting both
	// originations and transactions) fail. Zero disables it.
	FailAt int

	// FailEntrypoint makes any call to the named entrypoint fail.
	FailEntrypoint string

	Calls []Call

	originations int
}

// New creates a stub client for account that serves addresses to
// successive originations.
func New(account string, addresses ...string) *Client {
	return &Client{Account: account, Addresses: addresses}
}

func (c *Client) AccountHash() string {
	return c.Account
}

func (c *Client) Originate(_ context.Context, script, storage *micheline.Node) (string, error) {
	c.Calls = append(c.Calls, Call{Kind: "origination", Script: script, Storage: storage})
	if c.FailAt > 0 && len(c.Calls) == c.FailAt {
		return "", fmt.Errorf("stub: origination %d failed", c.FailAt)
	}
	if c.originations >= len(c.Addresses) {
		return "", fmt.Errorf("stub: no address left for origination %d", c.originations+1)
	}
	addr := c.Addresses[c.originations]
	c.originations++
	return addr, nil
}

func (c *Client) Call(_ context.Context, contract, entrypoint string, value *micheline.Node) (string, error) {
	c.Calls = append(c.Calls, Call{Kind: "transaction", Contract: contract, Entrypoint: entrypoint, Value: value})
	if c.FailAt > 0 && len(c.Calls) == c.FailAt {
		return "", fmt.Errorf("stub: transaction %d failed", c.FailAt)
	}
	if c.FailEntrypoint != "" && entrypoint == c.FailEntrypoint {
		return "", fmt.Errorf("stub: entrypoint %s failed", entrypoint)
	}
	return fmt.Sprintf("op%dstub", len(c.Calls)), nil
}
