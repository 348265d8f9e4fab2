package micheline

import (
	"encoding/json"
	"testing"
)

func mustJSON(t *testing.T, n *Node) string {
	t.Helper()
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestParseTypeExpressions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"annotated record",
			`(pair (address %admin) (pair (nat %threshold) (map %signers string key)))`,
			`{"prim":"pair","args":[{"prim":"address","annots":["%admin"]},{"prim":"pair","args":[{"prim":"nat","annots":["%threshold"]},{"prim":"map","args":[{"prim":"string"},{"prim":"key"}],"annots":["%signers"]}]}]}`,
		},
		{
			"comb pair",
			`(pair nat string bool)`,
			`{"prim":"pair","args":[{"prim":"nat"},{"prim":"string"},{"prim":"bool"}]}`,
		},
		{
			"big map",
			`(big_map %metadata string bytes)`,
			`{"prim":"big_map","args":[{"prim":"string"},{"prim":"bytes"}],"annots":["%metadata"]}`,
		},
		{
			"view return type",
			`(pair nat (map string bytes))`,
			`{"prim":"pair","args":[{"prim":"nat"},{"prim":"map","args":[{"prim":"string"},{"prim":"bytes"}]}]}`,
		},
		{
			"bare prim",
			`nat`,
			`{"prim":"nat"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := mustJSON(t, n); got != tt.want {
				t.Errorf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseValueLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"int", `42`, `{"int":"42"}`},
		{"negative", `-1`, `{"int":"-1"}`},
		{"string", `"wrap"`, `{"string":"wrap"}`},
		{"escaped string", `"say \"hi\"\n"`, `{"string":"say \"hi\"\n"}`},
		{"bytes", `0xdeadbeef`, `{"bytes":"deadbeef"}`},
		{"empty seq", `{}`, `[]`},
		{
			"map literal",
			`{ Elt "a" 1 ; Elt "b" 2 }`,
			`[{"prim":"Elt","args":[{"string":"a"},{"int":"1"}]},{"prim":"Elt","args":[{"string":"b"},{"int":"2"}]}]`,
		},
		{
			"trailing semicolon",
			`{ Unit ; }`,
			`[{"prim":"Unit"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := mustJSON(t, n); got != tt.want {
				t.Errorf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseScript(t *testing.T) {
	src := `# token contract
parameter (or (unit %default) (nat %store));
storage (pair (nat %count) (address %admin));
code { CDR ; NIL operation ; PAIR };
`
	script, err := ParseScript(src)
	if err != nil {
		t.Fatalf("parse script: %v", err)
	}
	if script.Kind != KindSeq || len(script.Args) != 3 {
		t.Fatalf("expected 3 toplevel sections, got %s", script)
	}
	names := []string{"parameter", "storage", "code"}
	for i, want := range names {
		if script.Args[i].Prim != want {
			t.Errorf("section %d: got %q, want %q", i, script.Args[i].Prim, want)
		}
	}
	storage := script.Args[1].Args[0]
	if storage.Prim != "pair" || len(storage.Args) != 2 {
		t.Errorf("unexpected storage type %s", storage)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated string", `"abc`},
		{"unbalanced paren", `(pair nat`},
		{"unbalanced brace", `{ Unit`},
		{"trailing garbage", `nat )`},
		{"empty", ``},
		{"bad escape", `"\q"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.src); err == nil {
				t.Error("expected error")
			}
		})
	}
}
