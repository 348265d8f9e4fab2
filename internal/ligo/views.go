package ligo

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"
)

// Views compiles off-chain view expressions from a LIGO source file.
type Views struct {
	// Path is the views source file. The compiler syntax is inferred
	// from its extension.
	Path string

	// Bin overrides the compiler binary.
	Bin string
}

// CompileView compiles the named expression from the views source and
// wraps it in a TZIP-16 view descriptor. returnType is Michelson text,
// "nat" or "(pair nat (map string bytes))" for instance.
func (v *Views) CompileView(ctx context.Context, name, returnType, description string) (*tzip16.View, error) {
	syntax, err := syntaxFor(v.Path)
	if err != nil {
		return nil, err
	}
	c := Compiler{Bin: v.Bin}
	out, err := c.run(ctx, v.Path, "compile-expression", "--init-file="+v.Path, "--michelson-format=json", syntax, name)
	if err != nil {
		return nil, err
	}
	var code micheline.Node
	if err := json.Unmarshal(out, &code); err != nil {
		return nil, fmt.Errorf("ligo: parse compiled view %s: %w", name, err)
	}
	ret, err := micheline.Parse(returnType)
	if err != nil {
		return nil, fmt.Errorf("ligo: view %s return type: %w", name, err)
	}
	return tzip16.StorageView(name, description, ret, &code), nil
}

func syntaxFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mligo":
		return "cameligo", nil
	case ".religo":
		return "reasonligo", nil
	case ".ligo":
		return "pascaligo", nil
	default:
		return "", fmt.Errorf("ligo: cannot infer syntax from %q", path)
	}
}
