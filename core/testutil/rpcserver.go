// Package testutil provides a scripted JSON-RPC endpoint for tests that
// exercise real clients end to end.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Handler answers one JSON-RPC method. A returned error becomes a JSON-RPC
// error object with code -32000; a nil result is answered with null.
type Handler func(params []json.RawMessage) (interface{}, error)

type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string][][]json.RawMessage
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// NewRPCServer starts a server that is closed with the test.
func NewRPCServer(t *testing.T, handlers map[string]Handler) *RPCServer {
	t.Helper()
	s := &RPCServer{
		handlers: handlers,
		calls:    map[string][][]json.RawMessage{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *RPCServer) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method] = append(s.calls[req.Method], req.Params)
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, err := h(req.Params); err != nil {
		resp.Error = &rpcError{Code: -32000, Message: err.Error()}
	} else if raw, err := json.Marshal(result); err != nil {
		resp.Error = &rpcError{Code: -32603, Message: err.Error()}
	} else {
		// a nil result is sent as null
		resp.Result = raw
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Calls returns the params of every request received for method.
func (s *RPCServer) Calls(method string) [][]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]json.RawMessage, len(s.calls[method]))
	copy(out, s.calls[method])
	return out
}
