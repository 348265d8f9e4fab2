package tzip16

import (
	"encoding/hex"
	"fmt"
)

// StorageURI is the self-reference every encoded document points at:
// the metadata lives under the contract's own %metadata big map, key
// "content".
const StorageURI = "tezos-storage:content"

// ContentKey is the big-map key holding the document bytes.
const ContentKey = "content"

// Encode serializes the document into the two-entry mapping stored in
// a contract's %metadata big map: "" points at StorageURI, "content"
// holds the hex of the indented JSON document.
func Encode(doc *Document) (map[string]string, error) {
	content, err := doc.MarshalIndent()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"":         hex.EncodeToString([]byte(StorageURI)),
		ContentKey: hex.EncodeToString(content),
	}, nil
}

// DecodeContent recovers a document from its encoded mapping,
// verifying the URI entry on the way.
func DecodeContent(pairs map[string]string) (*Document, error) {
	uriHex, ok := pairs[""]
	if !ok {
		return nil, fmt.Errorf("tzip16: missing URI entry")
	}
	uri, err := hex.DecodeString(uriHex)
	if err != nil {
		return nil, fmt.Errorf("tzip16: invalid URI entry: %w", err)
	}
	if string(uri) != StorageURI {
		return nil, fmt.Errorf("tzip16: unexpected URI %q", uri)
	}
	contentHex, ok := pairs[ContentKey]
	if !ok {
		return nil, fmt.Errorf("tzip16: missing content entry")
	}
	content, err := hex.DecodeString(contentHex)
	if err != nil {
		return nil, fmt.Errorf("tzip16: invalid content entry: %w", err)
	}
	var doc Document
	if err := doc.UnmarshalJSON(content); err != nil {
		return nil, fmt.Errorf("tzip16: parse content: %w", err)
	}
	return &doc, nil
}
