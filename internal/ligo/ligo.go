// Package ligo shells out to the LIGO compiler and loads pre-compiled
// Michelson contracts.
package ligo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
)

// DefaultBin is the compiler binary looked up on PATH.
const DefaultBin = "ligo"

// CompileError is a failed compiler invocation. Stderr carries the
// compiler's own diagnostics verbatim.
type CompileError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *CompileError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("ligo: compile %s: %s", e.Path, msg)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compiler runs an external LIGO binary.
type Compiler struct {
	// Bin is the compiler binary. Empty means DefaultBin.
	Bin string
}

func (c *Compiler) bin() string {
	if c.Bin == "" {
		return DefaultBin
	}
	return c.Bin
}

// CompileContract compiles the contract at path with the given main
// entrypoint and returns its script.
func (c *Compiler) CompileContract(ctx context.Context, path, entrypoint string) (*Contract, error) {
	out, err := c.run(ctx, path, "compile-contract", "--michelson-format=json", path, entrypoint)
	if err != nil {
		return nil, err
	}
	var code micheline.Node
	if err := json.Unmarshal(out, &code); err != nil {
		return nil, fmt.Errorf("ligo: parse compiler output for %s: %w", path, err)
	}
	return &Contract{code: &code}, nil
}

func (c *Compiler) run(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.bin(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CompileError{Path: path, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// Contract is a compiled Michelson script.
type Contract struct {
	code *micheline.Node
}

// ContractFromFile loads a pre-compiled contract: Micheline JSON from a
// .json file, Michelson text otherwise.
func ContractFromFile(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ligo: read contract: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var code micheline.Node
		if err := json.Unmarshal(data, &code); err != nil {
			return nil, fmt.Errorf("ligo: parse %s: %w", path, err)
		}
		return &Contract{code: &code}, nil
	}
	code, err := micheline.ParseScript(string(data))
	if err != nil {
		return nil, fmt.Errorf("ligo: parse %s: %w", path, err)
	}
	return &Contract{code: code}, nil
}

// Code returns the full script sequence.
func (c *Contract) Code() *micheline.Node { return c.code }

// StorageType returns the type expression of the script's storage
// section.
func (c *Contract) StorageType() (*micheline.Node, error) {
	if c.code == nil || c.code.Kind != micheline.KindSeq {
		return nil, fmt.Errorf("ligo: script is not a toplevel sequence")
	}
	for _, section := range c.code.Args {
		if section.Kind == micheline.KindPrim && section.Prim == "storage" && len(section.Args) == 1 {
			return section.Args[0], nil
		}
	}
	return nil, fmt.Errorf("ligo: script has no storage section")
}

// EncodeStorage encodes an initial storage value against the script's
// storage type.
func (c *Contract) EncodeStorage(value any) (*micheline.Node, error) {
	typ, err := c.StorageType()
	if err != nil {
		return nil, err
	}
	return micheline.EncodeValue(typ, value)
}
