package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     uint64            `json:"id"`
}

func newServer(t *testing.T, reply string, calls *[]recordedCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call recordedCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		if calls != nil {
			*calls = append(*calls, call)
		}
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientCall(t *testing.T) {
	var calls []recordedCall
	srv := newServer(t, `{"jsonrpc":"2.0","id":1,"result":"0xabc"}`, &calls)

	c := NewHTTPClient(srv.URL, WithHeaders(map[string]string{"X-Api-Key": "secret"}))
	var out string
	require.NoError(t, c.CallContext(context.Background(), &out, "eth_sendUserOperation", map[string]string{"sender": "0x1"}, "0xep"))
	require.NoError(t, c.CallContext(context.Background(), &out, "eth_chainId"))

	assert.Equal(t, "0xabc", out)
	require.Len(t, calls, 2)
	assert.Equal(t, "eth_sendUserOperation", calls[0].Method)
	require.Len(t, calls[0].Params, 2)
	assert.JSONEq(t, `{"sender":"0x1"}`, string(calls[0].Params[0]))
	assert.JSONEq(t, `"0xep"`, string(calls[0].Params[1]))
	assert.Empty(t, calls[1].Params)
	assert.NotEqual(t, calls[0].ID, calls[1].ID)
}

func TestHTTPClientRPCError(t *testing.T) {
	srv := newServer(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`, nil)

	c := NewHTTPClient(srv.URL, WithHeaders(map[string]string{"X-Api-Key": "secret"}))
	err := c.CallContext(context.Background(), nil, "pm_sponsorUserOperation")

	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.ErrorCode())
	assert.Equal(t, "invalid params", rpcErr.Message)
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL).CallContext(context.Background(), nil, "eth_chainId")

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rate limited")
}

func TestHTTPClientMissingResult(t *testing.T) {
	srv := newServer(t, `{"jsonrpc":"2.0","id":1}`, nil)

	var out string
	err := NewHTTPClient(srv.URL, WithHeaders(map[string]string{"X-Api-Key": "secret"})).
		CallContext(context.Background(), &out, "eth_chainId")
	assert.ErrorContains(t, err, "missing result")
}
