// Package jsonrpc provides the JSON-RPC call primitive shared by the bundler
// and paymaster clients.
package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// Caller is the generic call primitive. *rpc.Client from go-ethereum and
// *HTTPClient both satisfy it.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

const defaultTimeout = 30 * time.Second

// Error is a JSON-RPC error object returned by the remote side.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("JSON-RPC error %d: %s (data: %s)", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// ErrorCode matches the rpc.Error interface of go-ethereum.
func (e *Error) ErrorCode() int {
	return e.Code
}

// HTTPStatusError is returned when the endpoint answers with a non 2xx status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// HTTPClient posts JSON-RPC 2.0 requests with resty. Bundler and paymaster
// services usually sit behind plain HTTPS endpoints that need API key headers.
type HTTPClient struct {
	url    string
	client *resty.Client
	nextID atomic.Uint64
}

type Option func(*HTTPClient)

func WithHeaders(headers map[string]string) Option {
	return func(c *HTTPClient) {
		c.client.SetHeaders(headers)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.SetTimeout(timeout)
	}
}

// WithRestyClient replaces the underlying client, mostly useful in tests.
func WithRestyClient(client *resty.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

func NewHTTPClient(url string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		url: url,
		client: resty.New().
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) URL() string {
	return c.url
}

func (c *HTTPClient) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if args == nil {
		args = []interface{}{}
	}
	req := request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  args,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	if resp.IsError() {
		return &HTTPStatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var out response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if out.Error != nil {
		return out.Error
	}
	if result == nil {
		return nil
	}
	if len(out.Result) == 0 {
		return fmt.Errorf("missing result in %s response", method)
	}
	return json.Unmarshal(out.Result, result)
}
