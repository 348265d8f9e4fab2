package deploy

import (
	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"
)

// QuorumMetadata builds the quorum contract's TZIP-16 document.
func QuorumMetadata() *tzip16.Document {
	return contractMetadata("Wrap protocol quorum contract")
}

// QuorumStorage builds the multisig's initial storage record. Signers
// and the threshold pass through exactly as configured.
func QuorumStorage(admin string, signers map[string]string, threshold int, metadata map[string]string) *micheline.Doc {
	return micheline.NewDoc().
		Set("admin", admin).
		Set("threshold", threshold).
		Set("signers", signers).
		Set("metadata", metadata)
}
