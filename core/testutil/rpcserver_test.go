package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/aa-provider/pkg/jsonrpc"
)

func TestRPCServer(t *testing.T) {
	srv := NewRPCServer(t, map[string]Handler{
		"echo": func(params []json.RawMessage) (interface{}, error) {
			var s string
			if err := json.Unmarshal(params[0], &s); err != nil {
				return nil, err
			}
			return s, nil
		},
		"pending": func([]json.RawMessage) (interface{}, error) {
			return nil, nil
		},
		"boom": func([]json.RawMessage) (interface{}, error) {
			return nil, errors.New("exploded")
		},
	})
	client := jsonrpc.NewHTTPClient(srv.URL)

	var out string
	require.NoError(t, client.CallContext(context.Background(), &out, "echo", "hello"))
	assert.Equal(t, "hello", out)

	var raw json.RawMessage
	require.NoError(t, client.CallContext(context.Background(), &raw, "pending"))
	assert.Equal(t, "null", string(raw))

	err := client.CallContext(context.Background(), &out, "boom")
	var rpcErr *jsonrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)

	err = client.CallContext(context.Background(), &out, "missing")
	assert.ErrorContains(t, err, "method not found")

	assert.Len(t, srv.Calls("echo"), 1)
	assert.Len(t, srv.Calls("boom"), 1)
}
