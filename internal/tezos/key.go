package tezos

import (
	"crypto/ed25519"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

// OperationWatermark prefixes forged operation bytes before hashing and
// signing so operation signatures cannot be replayed as other payloads.
const OperationWatermark = 0x03

// Key holds an ed25519 secret key parsed from its edsk seed encoding.
type Key struct {
	priv ed25519.PrivateKey
}

// ParseKey parses an edsk-encoded 32-byte ed25519 seed.
func ParseKey(s string) (*Key, error) {
	seed, err := DecodeBase58Check(s, prefixEdsk)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("tezos: secret key seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
	}
	return &Key{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// PublicKey returns the edpk encoding of the key's public half.
func (k *Key) PublicKey() string {
	pub := k.priv.Public().(ed25519.PublicKey)
	return EncodeBase58Check(prefixEdpk, pub)
}

// PublicKeyHash returns the tz1 address of the key, the 20-byte
// blake2b digest of the public key.
func (k *Key) PublicKeyHash() string {
	pub := k.priv.Public().(ed25519.PublicKey)
	digest, _ := blake2b.New(addressHashLen, nil)
	digest.Write(pub)
	return ImplicitAddress(digest.Sum(nil))
}

// SignOperation signs forged operation bytes. The signature covers the
// 32-byte blake2b digest of the watermarked payload. It returns the raw
// 64-byte signature, appended to the forged bytes at injection, and its
// edsig encoding, sent with preapply.
func (k *Key) SignOperation(forged []byte) (raw []byte, edsig string) {
	payload := make([]byte, 0, len(forged)+1)
	payload = append(payload, OperationWatermark)
	payload = append(payload, forged...)
	digest := blake2b.Sum256(payload)
	raw = ed25519.Sign(k.priv, digest[:])
	return raw, EncodeBase58Check(prefixEdsig, raw)
}

// ParsePublicKey parses an edpk-encoded public key and checks that it
// is a canonical point on the ed25519 curve.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := DecodeBase58Check(s, prefixEdpk)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("tezos: public key is %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return nil, fmt.Errorf("tezos: public key %q is not on the curve", s)
	}
	return ed25519.PublicKey(raw), nil
}
