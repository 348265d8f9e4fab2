package tezos

import (
	"bytes"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func TestBase58CheckRoundTrip(t *testing.T) {
	payload := make([]byte, addressHashLen)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	encoded := EncodeBase58Check(prefixTz1, payload)
	decoded, err := DecodeBase58Check(encoded, prefixTz1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("payload = %x, want %x", decoded, payload)
	}
}

func TestBase58CheckChecksum(t *testing.T) {
	payload := make([]byte, addressHashLen)
	encoded := EncodeBase58Check(prefixKT1, payload)

	// Recompute the checksum with base58 directly.
	raw, err := base58.Decode(encoded)
	if err != nil {
		t.Fatalf("base58 decode: %v", err)
	}
	data, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], checksum) {
		t.Fatalf("checksum = %x, want %x", checksum, second[:4])
	}
	if !bytes.HasPrefix(data, prefixKT1) {
		t.Fatalf("data %x does not start with the KT1 prefix", data)
	}
}

func TestDecodeBase58CheckRejects(t *testing.T) {
	payload := make([]byte, addressHashLen)
	valid := EncodeBase58Check(prefixTz1, payload)

	// Flip one character without leaving the base58 alphabet.
	tampered := []byte(valid)
	if tampered[10] == 'z' {
		tampered[10] = 'x'
	} else {
		tampered[10] = 'z'
	}

	tests := []struct {
		name   string
		input  string
		prefix []byte
	}{
		{"bad checksum", string(tampered), prefixTz1},
		{"wrong prefix", valid, prefixKT1},
		{"not base58", "tz1-invalid-0OIl", prefixTz1},
		{"too short", base58.Encode([]byte{1, 2}), prefixTz1},
		{"empty", "", prefixTz1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBase58Check(tt.input, tt.prefix); err == nil {
				t.Fatalf("DecodeBase58Check(%q) succeeded", tt.input)
			}
		})
	}
}

func TestAddressShapes(t *testing.T) {
	hash := make([]byte, addressHashLen)
	for i := range hash {
		hash[i] = byte(i)
	}

	tz := ImplicitAddress(hash)
	if !strings.HasPrefix(tz, "tz1") || len(tz) != 36 {
		t.Fatalf("ImplicitAddress = %q, want a 36-char tz1 address", tz)
	}
	kt := ContractAddress(hash)
	if !strings.HasPrefix(kt, "KT1") || len(kt) != 36 {
		t.Fatalf("ContractAddress = %q, want a 36-char KT1 address", kt)
	}
}

func TestValidateAddress(t *testing.T) {
	hash := make([]byte, addressHashLen)
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"tz1", ImplicitAddress(hash), true},
		{"tz2", EncodeBase58Check(prefixTz2, hash), true},
		{"tz3", EncodeBase58Check(prefixTz3, hash), true},
		{"kt1", ContractAddress(hash), true},
		{"public key", EncodeBase58Check(prefixEdpk, make([]byte, 32)), false},
		{"truncated", ImplicitAddress(hash)[:20], false},
		{"empty", "", false},
		{"junk", "hello world", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.input)
			if tt.ok && err != nil {
				t.Fatalf("ValidateAddress(%q) = %v", tt.input, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("ValidateAddress(%q) succeeded", tt.input)
			}
		})
	}
}

func TestValidateContractAddress(t *testing.T) {
	hash := make([]byte, addressHashLen)
	if err := ValidateContractAddress(ContractAddress(hash)); err != nil {
		t.Fatalf("valid KT1 rejected: %v", err)
	}
	if err := ValidateContractAddress(ImplicitAddress(hash)); err == nil {
		t.Fatal("tz1 accepted as a contract address")
	}
}
