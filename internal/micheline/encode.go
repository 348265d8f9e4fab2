package micheline

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
)

// EncodeError reports a structured value that cannot be lowered
// against a Michelson type expression.
type EncodeError struct {
	Path string // dotted path into the structured value
	Type string // Michelson primitive being encoded against
	Msg  string
}

func (e *EncodeError) Error() string {
	path := e.Path
	if path == "" {
		path = "value"
	}
	return fmt.Sprintf("micheline: encode %s as %s: %s", path, e.Type, e.Msg)
}

func encodeErrf(path, typ, format string, args ...any) *EncodeError {
	return &EncodeError{Path: path, Type: typ, Msg: fmt.Sprintf(format, args...)}
}

// EncodeValue lowers a structured value against a Michelson type
// expression into its Micheline value form. Records are described by
// *Doc and matched to pair components through %field annotations,
// descending through unannotated intermediate pairs, so any comb
// layout of an annotated record encodes correctly. Map and big_map
// entries are emitted in key order (numeric for integral key types,
// bytewise otherwise) regardless of input ordering. A *Node value
// passes through untouched.
func EncodeValue(typ *Node, value any) (*Node, error) {
	return encode(typ, value, "")
}

func encode(typ *Node, value any, path string) (*Node, error) {
	if typ == nil || typ.Kind != KindPrim {
		return nil, encodeErrf(path, "", "type expression is not a primitive")
	}
	if n, ok := value.(*Node); ok {
		return n, nil
	}
	switch typ.Prim {
	case "nat", "mutez":
		v, err := toBig(value, path, typ.Prim)
		if err != nil {
			return nil, err
		}
		if v.Sign() < 0 {
			return nil, encodeErrf(path, typ.Prim, "negative value %s", v)
		}
		return IntBig(v), nil
	case "int":
		v, err := toBig(value, path, typ.Prim)
		if err != nil {
			return nil, err
		}
		return IntBig(v), nil
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, encodeErrf(path, typ.Prim, "expected string, got %T", value)
		}
		return String(s), nil
	case "bytes":
		switch v := value.(type) {
		case []byte:
			return Bytes(v), nil
		case string:
			b, err := hex.DecodeString(v)
			if err != nil {
				return nil, encodeErrf(path, typ.Prim, "invalid hex %q", v)
			}
			return Bytes(b), nil
		default:
			return nil, encodeErrf(path, typ.Prim, "expected []byte or hex string, got %T", value)
		}
	case "bool":
		b, ok := value.(bool)
		if !ok {
			return nil, encodeErrf(path, typ.Prim, "expected bool, got %T", value)
		}
		return Bool(b), nil
	case "address", "key", "key_hash", "signature", "chain_id", "contract":
		s, ok := value.(string)
		if !ok {
			return nil, encodeErrf(path, typ.Prim, "expected string, got %T", value)
		}
		return String(s), nil
	case "timestamp":
		switch v := value.(type) {
		case string:
			return String(v), nil
		default:
			n, err := toBig(value, path, typ.Prim)
			if err != nil {
				return nil, err
			}
			return IntBig(n), nil
		}
	case "unit":
		if value != nil {
			return nil, encodeErrf(path, typ.Prim, "unit takes no value, got %T", value)
		}
		return Unit(), nil
	case "option":
		if len(typ.Args) != 1 {
			return nil, encodeErrf(path, typ.Prim, "malformed option type")
		}
		if value == nil {
			return None(), nil
		}
		inner, err := encode(typ.Args[0], value, path)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case "pair":
		return encodePair(typ, value, path)
	case "list":
		return encodeList(typ, value, path)
	case "set":
		return encodeSet(typ, value, path)
	case "map", "big_map":
		return encodeMap(typ, value, path)
	default:
		return nil, encodeErrf(path, typ.Prim, "unsupported type")
	}
}

func encodePair(typ *Node, value any, path string) (*Node, error) {
	if len(typ.Args) < 2 {
		return nil, encodeErrf(path, typ.Prim, "malformed pair type")
	}
	switch v := value.(type) {
	case *Doc:
		used := make(map[string]bool)
		args, err := encodeRecordArgs(typ, v, path, used)
		if err != nil {
			return nil, err
		}
		for _, k := range v.Keys() {
			if !used[k] {
				return nil, encodeErrf(path, typ.Prim, "unknown field %q", k)
			}
		}
		return Prim("Pair", args...), nil
	case []any:
		if len(v) != len(typ.Args) {
			return nil, encodeErrf(path, typ.Prim, "expected %d components, got %d", len(typ.Args), len(v))
		}
		args := make([]*Node, len(v))
		for i, item := range v {
			n, err := encode(typ.Args[i], item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			args[i] = n
		}
		return Prim("Pair", args...), nil
	default:
		return nil, encodeErrf(path, typ.Prim, "expected record or components, got %T", value)
	}
}

// encodeRecordArgs resolves each pair component against the record:
// annotated components look up their field, unannotated nested pairs
// keep drawing from the same record.
func encodeRecordArgs(typ *Node, doc *Doc, path string, used map[string]bool) ([]*Node, error) {
	out := make([]*Node, 0, len(typ.Args))
	for _, arg := range typ.Args {
		if name, ok := arg.FieldAnnot(); ok {
			fv, present := doc.Get(name)
			if !present {
				return nil, encodeErrf(path, arg.Prim, "missing field %q", name)
			}
			used[name] = true
			child, err := encode(arg, fv, joinPath(path, name))
			if err != nil {
				return nil, err
			}
			out = append(out, child)
			continue
		}
		if arg.Kind == KindPrim && arg.Prim == "pair" {
			inner, err := encodeRecordArgs(arg, doc, path, used)
			if err != nil {
				return nil, err
			}
			out = append(out, Prim("Pair", inner...))
			continue
		}
		return nil, encodeErrf(path, arg.Prim, "pair component carries no field annotation")
	}
	return out, nil
}

func encodeList(typ *Node, value any, path string) (*Node, error) {
	if len(typ.Args) != 1 {
		return nil, encodeErrf(path, typ.Prim, "malformed list type")
	}
	if value == nil {
		return Seq(), nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, encodeErrf(path, typ.Prim, "expected list, got %T", value)
	}
	out := make([]*Node, len(items))
	for i, item := range items {
		n, err := encode(typ.Args[0], item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return Seq(out...), nil
}

func encodeSet(typ *Node, value any, path string) (*Node, error) {
	if len(typ.Args) != 1 {
		return nil, encodeErrf(path, typ.Prim, "malformed set type")
	}
	switch v := value.(type) {
	case nil:
		return Seq(), nil
	case *Doc:
		if v.Len() == 0 {
			return Seq(), nil
		}
		return nil, encodeErrf(path, typ.Prim, "set literal must be a list")
	case []any:
		out := make([]*Node, len(v))
		for i, item := range v {
			n, err := encode(typ.Args[0], item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		if err := sortElements(out, path, typ.Prim); err != nil {
			return nil, err
		}
		return Seq(out...), nil
	default:
		return nil, encodeErrf(path, typ.Prim, "expected list, got %T", value)
	}
}

func encodeMap(typ *Node, value any, path string) (*Node, error) {
	if len(typ.Args) != 2 {
		return nil, encodeErrf(path, typ.Prim, "malformed %s type", typ.Prim)
	}
	keyT, valT := typ.Args[0], typ.Args[1]

	var keys []string
	vals := make(map[string]any)
	switch v := value.(type) {
	case nil:
		return Seq(), nil
	case *Doc:
		keys = v.Keys()
		for _, k := range keys {
			vals[k], _ = v.Get(k)
		}
	case map[string]string:
		for k, mv := range v {
			keys = append(keys, k)
			vals[k] = mv
		}
	case map[string]any:
		for k, mv := range v {
			keys = append(keys, k)
			vals[k] = mv
		}
	default:
		return nil, encodeErrf(path, typ.Prim, "expected mapping, got %T", value)
	}

	if err := sortKeys(keys, keyT, path, typ.Prim); err != nil {
		return nil, err
	}
	elts := make([]*Node, 0, len(keys))
	for _, k := range keys {
		ek, err := encode(keyT, k, fmt.Sprintf("%s[%q]", path, k))
		if err != nil {
			return nil, err
		}
		ev, err := encode(valT, vals[k], joinPath(path, k))
		if err != nil {
			return nil, err
		}
		elts = append(elts, Elt(ek, ev))
	}
	return Seq(elts...), nil
}

// sortKeys orders map keys the way Michelson compares the key type:
// numerically for integral keys, bytewise for everything textual.
func sortKeys(keys []string, keyT *Node, path, typ string) error {
	if keyT.Kind == KindPrim && isIntPrim(keyT.Prim) {
		parsed := make(map[string]*big.Int, len(keys))
		for _, k := range keys {
			v, ok := new(big.Int).SetString(k, 10)
			if !ok {
				return encodeErrf(path, typ, "key %q is not an integer", k)
			}
			parsed[k] = v
		}
		sort.Slice(keys, func(i, j int) bool {
			return parsed[keys[i]].Cmp(parsed[keys[j]]) < 0
		})
		return nil
	}
	sort.Strings(keys)
	return nil
}

func sortElements(items []*Node, path, typ string) error {
	if len(items) < 2 {
		return nil
	}
	switch items[0].Kind {
	case KindInt:
		for _, n := range items {
			if n.Kind != KindInt {
				return encodeErrf(path, typ, "mixed element kinds in set")
			}
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Int.Cmp(items[j].Int) < 0 })
	case KindString:
		for _, n := range items {
			if n.Kind != KindString {
				return encodeErrf(path, typ, "mixed element kinds in set")
			}
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Str < items[j].Str })
	default:
		return encodeErrf(path, typ, "set elements must be integers or strings")
	}
	return nil
}

func toBig(value any, path, typ string) (*big.Int, error) {
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case *big.Int:
		return v, nil
	case string:
		parsed, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, encodeErrf(path, typ, "expected integer, got %q", v)
		}
		return parsed, nil
	default:
		return nil, encodeErrf(path, typ, "expected integer, got %T", value)
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func isIntPrim(p string) bool {
	switch p {
	case "nat", "int", "mutez", "timestamp":
		return true
	}
	return false
}
