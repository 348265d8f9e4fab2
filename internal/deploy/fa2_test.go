package deploy

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"
)

// fa2StorageType is the storage type of the compiled FA2 contract.
const fa2StorageType = `(pair
  (pair %admin (address %admin) (option %pending_admin address) (set %paused nat))
  (pair %assets
    (big_map %ledger (pair address nat) nat)
    (big_map %operators (pair address (pair address nat)) unit)
    (big_map %token_metadata nat (pair (nat %token_id) (map %extras string bytes)))
    (big_map %token_total_supply nat nat))
  (big_map %metadata string bytes))`

const testAdmin = "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"

func mustJSON(t *testing.T, n *micheline.Node) string {
	t.Helper()
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal node: %v", err)
	}
	return string(b)
}

func mustType(t *testing.T, src string) *micheline.Node {
	t.Helper()
	n, err := micheline.Parse(src)
	if err != nil {
		t.Fatalf("parse type: %v", err)
	}
	return n
}

func testView(t *testing.T) *tzip16.View {
	t.Helper()
	return tzip16.StorageView(
		"get_balance",
		"get_balance as defined in tzip-12",
		micheline.Prim("nat"),
		micheline.Seq(micheline.Prim("CAR")),
	)
}

func TestFA2StorageEncodes(t *testing.T) {
	tokens := []domain.TokenSpec{
		{EthContract: "0x1234", EthSymbol: "TOK", Symbol: "wTOK", Name: "Wrapped TOK", Decimals: 8},
	}
	metadata := map[string]string{
		"":        "74657a6f732d73746f726167653a636f6e74656e74",
		"content": "7b7d",
	}
	record := FA2Storage(testAdmin, tokens, metadata)
	got, err := micheline.EncodeValue(mustType(t, fa2StorageType), record)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got.Kind != micheline.KindPrim || len(got.Args) != 3 {
		t.Fatalf("unexpected storage shape: %s", mustJSON(t, got))
	}

	wantAdmin := `{"prim":"Pair","args":[{"string":"` + testAdmin + `"},{"prim":"None"},[]]}`
	if s := mustJSON(t, got.Args[0]); s != wantAdmin {
		t.Errorf("admin = %s\nwant %s", s, wantAdmin)
	}

	wantAssets := `{"prim":"Pair","args":[` +
		`[],` +
		`[],` +
		`[{"prim":"Elt","args":[{"int":"0"},{"prim":"Pair","args":[{"int":"0"},[` +
		`{"prim":"Elt","args":[{"string":"decimals"},{"bytes":"38"}]},` +
		`{"prim":"Elt","args":[{"string":"eth_contract"},{"bytes":"307831323334"}]},` +
		`{"prim":"Elt","args":[{"string":"eth_symbol"},{"bytes":"544f4b"}]},` +
		`{"prim":"Elt","args":[{"string":"name"},{"bytes":"5772617070656420544f4b"}]},` +
		`{"prim":"Elt","args":[{"string":"symbol"},{"bytes":"77544f4b"}]}` +
		`]]}]}],` +
		`[{"prim":"Elt","args":[{"int":"0"},{"int":"0"}]}]` +
		`]}`
	if s := mustJSON(t, got.Args[1]); s != wantAssets {
		t.Errorf("assets = %s\nwant %s", s, wantAssets)
	}

	wantMeta := `[{"prim":"Elt","args":[{"string":""},{"bytes":"74657a6f732d73746f726167653a636f6e74656e74"}]},` +
		`{"prim":"Elt","args":[{"string":"content"},{"bytes":"7b7d"}]}]`
	if s := mustJSON(t, got.Args[2]); s != wantMeta {
		t.Errorf("metadata = %s\nwant %s", s, wantMeta)
	}
}

func TestFA2StorageTokenIDsArePositional(t *testing.T) {
	tokens := []domain.TokenSpec{
		{EthContract: "0xaa", EthSymbol: "A", Symbol: "wA", Name: "A", Decimals: 0},
		{EthContract: "0xbb", EthSymbol: "B", Symbol: "wB", Name: "B", Decimals: 18},
	}
	record := FA2Storage(testAdmin, tokens, nil)
	got, err := micheline.EncodeValue(mustType(t, fa2StorageType), record)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	tokenMeta := got.Args[1].Args[2]
	if len(tokenMeta.Args) != 2 {
		t.Fatalf("token_metadata entries = %d, want 2", len(tokenMeta.Args))
	}
	for i, elt := range tokenMeta.Args {
		key := elt.Args[0]
		id := elt.Args[1].Args[0]
		if key.Int.Int64() != int64(i) || id.Int.Int64() != int64(i) {
			t.Errorf("entry %d: key %s, token_id %s", i, key.Int, id.Int)
		}
	}

	supply := got.Args[1].Args[3]
	for i, elt := range supply.Args {
		if elt.Args[0].Int.Int64() != int64(i) || elt.Args[1].Int.Sign() != 0 {
			t.Errorf("supply entry %d = %s", i, mustJSON(t, elt))
		}
	}
}

func TestFA2ViewSpecs(t *testing.T) {
	specs := FA2ViewSpecs()
	want := []ViewSpec{
		{"get_balance", "nat", "get_balance as defined in tzip-12"},
		{"total_supply", "nat", "get_total supply as defined in tzip-12"},
		{"is_operator", "bool", "is_operator as defined in tzip-12"},
		{"token_metadata", "(pair nat (map string bytes))", "token_metadata as defined in tzip-12"},
	}
	if len(specs) != len(want) {
		t.Fatalf("specs = %d, want %d", len(specs), len(want))
	}
	for i, s := range specs {
		if s != want[i] {
			t.Errorf("spec %d = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestFA2Metadata(t *testing.T) {
	meta, err := FA2Metadata([]*tzip16.View{testView(t)})
	if err != nil {
		t.Fatalf("FA2Metadata failed: %v", err)
	}
	wantKeys := []string{"interfaces", "name", "homepage", "license", "permissions", "views"}
	keys := meta.Keys()
	if len(keys) != len(wantKeys) {
		t.Fatalf("keys = %v, want %v", keys, wantKeys)
	}
	for i, k := range keys {
		if k != wantKeys[i] {
			t.Fatalf("keys = %v, want %v", keys, wantKeys)
		}
	}

	pairs, err := tzip16.Encode(meta)
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	if pairs[""] != hex.EncodeToString([]byte("tezos-storage:content")) {
		t.Errorf("storage uri = %q", pairs[""])
	}
	raw, err := hex.DecodeString(pairs["content"])
	if err != nil {
		t.Fatalf("content is not hex: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, `"name": "Wrap protocol FA2 tokens"`) {
		t.Errorf("content misses the contract name:\n%s", content)
	}
	if !strings.Contains(content, `"owner-or-operator-transfer"`) || !strings.Contains(content, `"PAUSABLE_TOKENS"`) {
		t.Errorf("content misses the permission policy:\n%s", content)
	}
	if !strings.Contains(content, `"get_balance as defined in tzip-12"`) {
		t.Errorf("content misses the view:\n%s", content)
	}

	decoded, err := tzip16.DecodeContent(pairs)
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if name, _ := decoded.Get("name"); name != "Wrap protocol FA2 tokens" {
		t.Errorf("decoded name = %v", name)
	}
}
