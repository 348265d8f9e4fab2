package tezos

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the default number of retry attempts.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the initial delay between retries.
	DefaultRetryDelay = 1 * time.Second
	// DefaultMaxDelay caps the exponential backoff delay.
	DefaultMaxDelay = 10 * time.Second
	// DefaultPollInterval is the delay between head polls while waiting
	// for an operation to be included.
	DefaultPollInterval = 2 * time.Second

	backoffMultiplier = 2.0
)

const (
	headPath    = "/chains/main/blocks/head"
	contextPath = headPath + "/context"

	// Static limits, generous enough for every contract this tool
	// deploys. The node refunds unused gas and the fee is flat.
	defaultFee          = "100000"
	defaultGasLimit     = "1040000"
	defaultStorageLimit = "60000"
)

// RPCClient talks to a Tezos node over its HTTP RPC. It forges
// operations on the node, signs them locally, and injects them.
type RPCClient struct {
	endpoint     string
	key          *Key
	httpClient   *http.Client
	maxRetries   int
	retryDelay   time.Duration
	maxDelay     time.Duration
	pollInterval time.Duration
	logf         func(format string, args ...any)
}

var _ Client = (*RPCClient)(nil)

// ClientOption configures an RPCClient.
type ClientOption func(*RPCClient)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *RPCClient) { c.httpClient.Timeout = d }
}

// WithMaxRetries sets the number of retry attempts for transient
// failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *RPCClient) { c.maxRetries = n }
}

// WithRetryDelay sets the initial delay between retries.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *RPCClient) { c.retryDelay = d }
}

// WithMaxDelay caps the exponential backoff delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *RPCClient) { c.maxDelay = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RPCClient) { c.httpClient = hc }
}

// WithPollInterval sets the delay between head polls while waiting for
// inclusion.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *RPCClient) { c.pollInterval = d }
}

// WithLogf redirects client logging.
func WithLogf(logf func(format string, args ...any)) ClientOption {
	return func(c *RPCClient) { c.logf = logf }
}

// NewRPCClient creates a client for the node at endpoint that signs
// operations with key.
func NewRPCClient(endpoint string, key *Key, opts ...ClientOption) *RPCClient {
	c := &RPCClient{
		endpoint:     strings.TrimRight(endpoint, "/"),
		key:          key,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		maxRetries:   DefaultMaxRetries,
		retryDelay:   DefaultRetryDelay,
		maxDelay:     DefaultMaxDelay,
		pollInterval: DefaultPollInterval,
		logf:         log.Printf,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccountHash returns the tz1 address of the signing key.
func (c *RPCClient) AccountHash() string {
	return c.key.PublicKeyHash()
}

// RPCError is a non-2xx response from the node.
type RPCError struct {
	Status int
	Path   string
	Body   string
}

func (e *RPCError) Error() string {
	body := e.Body
	if len(body) > 240 {
		body = body[:240] + "..."
	}
	return fmt.Sprintf("tezos: rpc %s returned %d: %s", e.Path, e.Status, body)
}

// operation is one element of an operation group's contents.
type operation struct {
	Kind         string          `json:"kind"`
	Source       string          `json:"source"`
	Fee          string          `json:"fee"`
	Counter      string          `json:"counter"`
	GasLimit     string          `json:"gas_limit"`
	StorageLimit string          `json:"storage_limit"`
	PublicKey    string          `json:"public_key,omitempty"`
	Balance      string          `json:"balance,omitempty"`
	Script       *scriptBody     `json:"script,omitempty"`
	Amount       string          `json:"amount,omitempty"`
	Destination  string          `json:"destination,omitempty"`
	Parameters   *parametersBody `json:"parameters,omitempty"`
}

type scriptBody struct {
	Code    *micheline.Node `json:"code"`
	Storage *micheline.Node `json:"storage"`
}

type parametersBody struct {
	Entrypoint string          `json:"entrypoint"`
	Value      *micheline.Node `json:"value"`
}

// Originate deploys a contract and returns its KT1 address.
func (c *RPCClient) Originate(ctx context.Context, script, storage *micheline.Node) (string, error) {
	op := operation{
		Kind:         "origination",
		Fee:          defaultFee,
		GasLimit:     defaultGasLimit,
		StorageLimit: defaultStorageLimit,
		Balance:      "0",
		Script:       &scriptBody{Code: script, Storage: storage},
	}
	res, err := c.send(ctx, op)
	if err != nil {
		return "", &OriginationError{Kind: "origination", Err: err}
	}
	if len(res.originated) == 0 {
		return "", &OriginationError{Kind: "origination", Err: fmt.Errorf("operation %s originated no contracts", res.hash)}
	}
	return res.originated[0], nil
}

// Call invokes an entrypoint on contract and returns the operation
// hash.
func (c *RPCClient) Call(ctx context.Context, contract, entrypoint string, value *micheline.Node) (string, error) {
	op := operation{
		Kind:         "transaction",
		Fee:          defaultFee,
		GasLimit:     defaultGasLimit,
		StorageLimit: defaultStorageLimit,
		Amount:       "0",
		Destination:  contract,
		Parameters:   &parametersBody{Entrypoint: entrypoint, Value: value},
	}
	res, err := c.send(ctx, op)
	if err != nil {
		return "", &OriginationError{Kind: "transaction", Err: err}
	}
	return res.hash, nil
}

type sendResult struct {
	hash       string
	originated []string
}

// send runs the full operation lifecycle: fetch head and counter,
// prepend a reveal if the account's key is not yet published, forge on
// the node, sign locally, preapply, inject, and wait for inclusion.
func (c *RPCClient) send(ctx context.Context, op operation) (*sendResult, error) {
	var header struct {
		Hash     string `json:"hash"`
		Protocol string `json:"protocol"`
	}
	if err := c.get(ctx, headPath+"/header", &header); err != nil {
		return nil, err
	}

	source := c.key.PublicKeyHash()
	var counterStr string
	if err := c.get(ctx, contextPath+"/contracts/"+source+"/counter", &counterStr); err != nil {
		return nil, err
	}
	counter, err := strconv.ParseInt(counterStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("tezos: counter %q: %w", counterStr, err)
	}

	var managerKey *string
	if err := c.get(ctx, contextPath+"/contracts/"+source+"/manager_key", &managerKey); err != nil {
		return nil, err
	}

	contents := make([]operation, 0, 2)
	if managerKey == nil {
		counter++
		contents = append(contents, operation{
			Kind:         "reveal",
			Source:       source,
			Fee:          defaultFee,
			Counter:      strconv.FormatInt(counter, 10),
			GasLimit:     defaultGasLimit,
			StorageLimit: defaultStorageLimit,
			PublicKey:    c.key.PublicKey(),
		})
	}
	counter++
	op.Source = source
	op.Counter = strconv.FormatInt(counter, 10)
	contents = append(contents, op)

	var forgedHex string
	forgeReq := map[string]any{"branch": header.Hash, "contents": contents}
	if err := c.post(ctx, headPath+"/helpers/forge/operations", forgeReq, &forgedHex); err != nil {
		return nil, err
	}
	forged, err := hex.DecodeString(forgedHex)
	if err != nil {
		return nil, fmt.Errorf("tezos: forged bytes: %w", err)
	}

	rawSig, edsig := c.key.SignOperation(forged)

	preapplyReq := []map[string]any{{
		"protocol":  header.Protocol,
		"branch":    header.Hash,
		"contents":  contents,
		"signature": edsig,
	}}
	var preapplyRes []struct {
		Contents []struct {
			Metadata struct {
				OperationResult struct {
					Status              string            `json:"status"`
					OriginatedContracts []string          `json:"originated_contracts"`
					Errors              []json.RawMessage `json:"errors"`
				} `json:"operation_result"`
			} `json:"metadata"`
		} `json:"contents"`
	}
	if err := c.post(ctx, headPath+"/helpers/preapply/operations", preapplyReq, &preapplyRes); err != nil {
		return nil, err
	}
	var originated []string
	for _, group := range preapplyRes {
		for _, content := range group.Contents {
			result := content.Metadata.OperationResult
			if result.Status != "applied" {
				detail := ""
				if len(result.Errors) > 0 {
					detail = ": " + string(result.Errors[0])
				}
				return nil, fmt.Errorf("tezos: preapply status %q%s", result.Status, detail)
			}
			if len(result.OriginatedContracts) > 0 {
				originated = result.OriginatedContracts
			}
		}
	}

	signed := make([]byte, 0, len(forged)+len(rawSig))
	signed = append(signed, forged...)
	signed = append(signed, rawSig...)
	var opHash string
	if err := c.post(ctx, "/injection/operation?chain=main", hex.EncodeToString(signed), &opHash); err != nil {
		return nil, err
	}
	c.logf("[tezos] injected %s, waiting for inclusion", opHash)

	if err := c.waitInclusion(ctx, header.Hash, opHash); err != nil {
		return nil, err
	}
	return &sendResult{hash: opHash, originated: originated}, nil
}

// waitInclusion polls the chain head until a block lists opHash. A new
// head is checked along with its predecessor in case the operation was
// included while we were still looking at the previous head.
func (c *RPCClient) waitInclusion(ctx context.Context, injectedAt, opHash string) error {
	seen := injectedAt
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("tezos: waiting for inclusion of %s: %w", opHash, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		var header struct {
			Hash string `json:"hash"`
		}
		if err := c.get(ctx, headPath+"/header", &header); err != nil {
			return err
		}
		if header.Hash == seen {
			continue
		}
		seen = header.Hash
		for _, block := range []string{header.Hash, header.Hash + "~1"} {
			found, err := c.blockContains(ctx, block, opHash)
			if err != nil {
				return err
			}
			if found {
				c.logf("[tezos] operation %s included in block %s", opHash, block)
				return nil
			}
		}
	}
}

func (c *RPCClient) blockContains(ctx context.Context, block, opHash string) (bool, error) {
	var passes [][]string
	if err := c.get(ctx, "/chains/main/blocks/"+block+"/operation_hashes", &passes); err != nil {
		return false, err
	}
	for _, pass := range passes {
		for _, hash := range pass {
			if hash == opHash {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c *RPCClient) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *RPCClient) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do runs one request with retries and exponential backoff. Node-level
// rejections are not retried.
func (c *RPCClient) do(ctx context.Context, method, path string, body, result any) error {
	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logf("[tezos] retrying %s %s (attempt %d/%d) after %v: %v", method, path, attempt, c.maxRetries, delay, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * backoffMultiplier)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}
		err := c.doRequest(ctx, method, path, body, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("tezos: max retries exceeded: %w", lastErr)
}

func (c *RPCClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tezos: marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("tezos: build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tezos: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tezos: read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RPCError{Status: resp.StatusCode, Path: path, Body: string(data)}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("tezos: decode %s response: %w", path, err)
	}
	return nil
}

// isRetryable reports whether err is worth another attempt. Transport
// failures and 429/5xx responses are transient; anything the node
// rejected outright will not pass on a retry.
func isRetryable(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Status == http.StatusTooManyRequests || rpcErr.Status >= 500
	}
	return true
}
