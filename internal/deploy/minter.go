package deploy

import (
	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"
)

// MinterMetadata builds the minter contract's TZIP-16 document.
func MinterMetadata() *tzip16.Document {
	return contractMetadata("Wrap protocol minter contract")
}

// MinterStorage builds the minter's initial storage record. Token keys
// are the Ethereum contract addresses with their first two characters
// stripped, mapped to the FA2 contract and the token's positional id.
// The deployer starts out as governance and fees contract.
func MinterStorage(admin, quorum, fa2 string, tokens []domain.TokenSpec, metadata map[string]string) *micheline.Doc {
	tokenMap := micheline.NewDoc()
	for i, tok := range tokens {
		key := ""
		if len(tok.EthContract) > 2 {
			key = tok.EthContract[2:]
		}
		tokenMap.Set(key, []any{fa2, i})
	}
	return micheline.NewDoc().
		Set("admin", micheline.NewDoc().
			Set("administrator", admin).
			Set("signer", quorum).
			Set("paused", false)).
		Set("assets", micheline.NewDoc().
			Set("tokens", tokenMap).
			Set("mints", nil)).
		Set("governance", micheline.NewDoc().
			Set("contract", admin).
			Set("fees_contract", admin).
			Set("wrapping_fees", 100).
			Set("unwrapping_fees", 100)).
		Set("metadata", metadata)
}
