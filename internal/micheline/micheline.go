// Package micheline models Micheline, the expression tree Tezos uses
// for contract code, types, and values, together with its JSON wire
// form and a type-directed encoder for initial storage.
package micheline

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
)

// Kind discriminates the node forms of the Micheline AST.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBytes
	KindPrim
	KindSeq
)

// Node is a single Micheline expression: an integer, string, or byte
// literal, a primitive application, or a sequence. Args holds the
// arguments of a primitive and the items of a sequence.
type Node struct {
	Kind   Kind
	Int    *big.Int
	Str    string
	Bytes  []byte
	Prim   string
	Args   []*Node
	Annots []string
}

// Int builds an integer literal.
func Int(v int64) *Node {
	return &Node{Kind: KindInt, Int: big.NewInt(v)}
}

// IntBig builds an integer literal from an arbitrary-precision value.
func IntBig(v *big.Int) *Node {
	return &Node{Kind: KindInt, Int: new(big.Int).Set(v)}
}

// String builds a string literal.
func String(s string) *Node {
	return &Node{Kind: KindString, Str: s}
}

// Bytes builds a byte literal.
func Bytes(b []byte) *Node {
	return &Node{Kind: KindBytes, Bytes: b}
}

// Prim builds a primitive application.
func Prim(name string, args ...*Node) *Node {
	return &Node{Kind: KindPrim, Prim: name, Args: args}
}

// Seq builds a sequence.
func Seq(items ...*Node) *Node {
	return &Node{Kind: KindSeq, Args: items}
}

// Unit is the unit value.
func Unit() *Node { return Prim("Unit") }

// Bool builds a True or False primitive.
func Bool(v bool) *Node {
	if v {
		return Prim("True")
	}
	return Prim("False")
}

// None is the absent option value.
func None() *Node { return Prim("None") }

// Some wraps a value in the present option constructor.
func Some(v *Node) *Node { return Prim("Some", v) }

// Elt builds a map entry.
func Elt(key, value *Node) *Node { return Prim("Elt", key, value) }

// FieldAnnot returns the node's %field annotation without the leading
// percent sign, if it carries one.
func (n *Node) FieldAnnot() (string, bool) {
	for _, a := range n.Annots {
		if len(a) > 1 && a[0] == '%' {
			return a[1:], true
		}
	}
	return "", false
}

// String renders the node as compact JSON, for logs and errors.
func (n *Node) String() string {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Sprintf("<invalid micheline: %v>", err)
	}
	return string(b)
}

type intJSON struct {
	Int string `json:"int"`
}

type stringJSON struct {
	String string `json:"string"`
}

type bytesJSON struct {
	Bytes string `json:"bytes"`
}

type primJSON struct {
	Prim   string   `json:"prim"`
	Args   []*Node  `json:"args,omitempty"`
	Annots []string `json:"annots,omitempty"`
}

// MarshalJSON renders the node in the Tezos JSON representation.
// Sequences become bare arrays, byte literals lowercase hex.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case KindInt:
		if n.Int == nil {
			return nil, fmt.Errorf("micheline: int node without value")
		}
		return json.Marshal(intJSON{Int: n.Int.String()})
	case KindString:
		return json.Marshal(stringJSON{String: n.Str})
	case KindBytes:
		return json.Marshal(bytesJSON{Bytes: hex.EncodeToString(n.Bytes)})
	case KindPrim:
		if n.Prim == "" {
			return nil, fmt.Errorf("micheline: prim node without name")
		}
		return json.Marshal(primJSON{Prim: n.Prim, Args: n.Args, Annots: n.Annots})
	case KindSeq:
		items := n.Args
		if items == nil {
			items = []*Node{}
		}
		return json.Marshal(items)
	default:
		return nil, fmt.Errorf("micheline: unknown node kind %d", n.Kind)
	}
}

// UnmarshalJSON parses the Tezos JSON representation.
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("micheline: empty node")
	}
	if trimmed[0] == '[' {
		var items []*Node
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if items == nil {
			items = []*Node{}
		}
		*n = Node{Kind: KindSeq, Args: items}
		return nil
	}

	var obj struct {
		Int    *string  `json:"int"`
		String *string  `json:"string"`
		Bytes  *string  `json:"bytes"`
		Prim   *string  `json:"prim"`
		Args   []*Node  `json:"args"`
		Annots []string `json:"annots"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.Int != nil:
		v, ok := new(big.Int).SetString(*obj.Int, 10)
		if !ok {
			return fmt.Errorf("micheline: invalid int %q", *obj.Int)
		}
		*n = Node{Kind: KindInt, Int: v}
	case obj.String != nil:
		*n = Node{Kind: KindString, Str: *obj.String}
	case obj.Bytes != nil:
		b, err := hex.DecodeString(*obj.Bytes)
		if err != nil {
			return fmt.Errorf("micheline: invalid bytes %q: %w", *obj.Bytes, err)
		}
		*n = Node{Kind: KindBytes, Bytes: b}
	case obj.Prim != nil:
		*n = Node{Kind: KindPrim, Prim: *obj.Prim, Args: obj.Args, Annots: obj.Annots}
	default:
		return fmt.Errorf("micheline: unrecognized node %s", truncate(trimmed, 80))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
