// Package tezos implements the narrow client slice a contract
// deployment needs: base58check addresses and keys, ed25519 operation
// signing, and an HTTP RPC client that forges, signs, injects, and
// awaits origination and transaction operations.
package tezos

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// Base58check prefixes for the encodings this client handles.
var (
	prefixTz1   = []byte{6, 161, 159}
	prefixTz2   = []byte{6, 161, 161}
	prefixTz3   = []byte{6, 161, 164}
	prefixKT1   = []byte{2, 90, 121}
	prefixEdpk  = []byte{13, 15, 37, 217}
	prefixEdsk  = []byte{13, 15, 58, 7}
	prefixEdsig = []byte{9, 245, 205, 134, 18}
)

const addressHashLen = 20

// EncodeBase58Check renders prefix||payload with a 4-byte double
// SHA-256 checksum in base58.
func EncodeBase58Check(prefix, payload []byte) string {
	data := make([]byte, 0, len(prefix)+len(payload)+4)
	data = append(data, prefix...)
	data = append(data, payload...)
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return base58.Encode(append(data, second[:4]...))
}

// DecodeBase58Check decodes s, verifies the checksum, and strips the
// expected prefix.
func DecodeBase58Check(s string, prefix []byte) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("tezos: decode %q: %w", s, err)
	}
	if len(raw) < len(prefix)+4 {
		return nil, fmt.Errorf("tezos: %q too short", s)
	}
	payload, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], checksum) {
		return nil, fmt.Errorf("tezos: %q has a bad checksum", s)
	}
	if !bytes.HasPrefix(payload, prefix) {
		return nil, fmt.Errorf("tezos: %q does not carry the expected prefix", s)
	}
	return payload[len(prefix):], nil
}

// ImplicitAddress renders a 20-byte public key hash as a tz1 address.
func ImplicitAddress(pkh []byte) string {
	return EncodeBase58Check(prefixTz1, pkh)
}

// ContractAddress renders a 20-byte contract hash as a KT1 address.
func ContractAddress(hash []byte) string {
	return EncodeBase58Check(prefixKT1, hash)
}

// ValidateAddress checks that s is a well-formed implicit (tz1/tz2/tz3)
// or originated (KT1) address.
func ValidateAddress(s string) error {
	for _, prefix := range [][]byte{prefixTz1, prefixTz2, prefixTz3, prefixKT1} {
		payload, err := DecodeBase58Check(s, prefix)
		if err != nil {
			continue
		}
		if len(payload) != addressHashLen {
			return fmt.Errorf("tezos: address %q has a %d-byte hash", s, len(payload))
		}
		return nil
	}
	return fmt.Errorf("tezos: %q is not a tezos address", s)
}

// ValidateContractAddress checks that s is a well-formed KT1 address.
func ValidateContractAddress(s string) error {
	payload, err := DecodeBase58Check(s, prefixKT1)
	if err != nil {
		return err
	}
	if len(payload) != addressHashLen {
		return fmt.Errorf("tezos: contract address %q has a %d-byte hash", s, len(payload))
	}
	return nil
}
