package tezos

import (
	"context"
	"fmt"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
)

// Client is the node surface the deployment sequencer drives. Originate
// and Call both block until the operation is included in a block.
type Client interface {
	// AccountHash returns the address operations are sent from.
	AccountHash() string

	// Originate deploys a contract from its code and initial storage
	// and returns the KT1 address of the new contract.
	Originate(ctx context.Context, script, storage *micheline.Node) (string, error)

	// Call invokes an entrypoint on an existing contract and returns
	// the operation hash.
	Call(ctx context.Context, contract, entrypoint string, value *micheline.Node) (string, error)
}

// OriginationError wraps a failure from Originate or Call with the kind
// of operation that failed.
type OriginationError struct {
	Kind string // "origination" or "transaction"
	Err  error
}

func (e *OriginationError) Error() string {
	return fmt.Sprintf("tezos: %s failed: %v", e.Kind, e.Err)
}

func (e *OriginationError) Unwrap() error { return e.Err }
