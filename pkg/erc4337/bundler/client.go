// Provide primitive to work with a bundler RPC
// Bundler RPC is stateless
package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
	"github.com/AvaProtocol/aa-provider/pkg/jsonrpc"
)

const (
	methodSendUserOperation        = "eth_sendUserOperation"
	methodEstimateUserOperationGas = "eth_estimateUserOperationGas"
	methodGetUserOperationByHash   = "eth_getUserOperationByHash"
	methodGetUserOperationReceipt  = "eth_getUserOperationReceipt"
	methodSupportedEntryPoints     = "eth_supportedEntryPoints"
	methodGetBlockByNumber         = "eth_getBlockByNumber"
	methodMaxPriorityFeePerGas     = "eth_maxPriorityFeePerGas"
	methodChainID                  = "eth_chainId"
)

// BundlerClient defines a client for interacting with an EIP-4337 bundler RPC endpoint.
// Bundlers proxy the standard eth namespace too, so block and fee reads go
// through the same endpoint.
type BundlerClient struct {
	client jsonrpc.Caller
	close  func()
}

// NewBundlerClient creates a new BundlerClient that connects to the given URL.
func NewBundlerClient(url string) (*BundlerClient, error) {
	// Use DialHTTP instead of Dial as it is more compatible with HTTP-based bundler
	// endpoints, but it also supports other protocols such as WebSocket.
	c, err := rpc.DialHTTP(url)
	if err != nil {
		return nil, fmt.Errorf("Error creating bundler client: %w", err)
	}
	return &BundlerClient{client: c, close: c.Close}, nil
}

// DialBundlerClient is NewBundlerClient with extra HTTP headers, typically an API key.
func DialBundlerClient(ctx context.Context, url string, headers map[string]string) (*BundlerClient, error) {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	c, err := rpc.DialOptions(ctx, url, rpc.WithHeaders(h))
	if err != nil {
		return nil, fmt.Errorf("Error creating bundler client: %w", err)
	}
	return &BundlerClient{client: c, close: c.Close}, nil
}

// NewBundlerClientFromCaller wraps an existing transport, e.g. a jsonrpc.HTTPClient.
func NewBundlerClientFromCaller(caller jsonrpc.Caller) *BundlerClient {
	return &BundlerClient{client: caller}
}

// Close closes the underlying RPC client connection.
func (bc *BundlerClient) Close() {
	if bc.close != nil {
		bc.close()
	}
}

// SendUserOperation sends a UserOperation to the bundler and returns its hash.
func (bc *BundlerClient) SendUserOperation(ctx context.Context, req userop.Request, entrypoint common.Address) (string, error) {
	var hash string
	if err := bc.client.CallContext(ctx, &hash, methodSendUserOperation, req, entrypoint); err != nil {
		return "", err
	}
	return hash, nil
}

// EstimateUserOperationGas estimates the gas required for a UserOperation.
// https://eips.ethereum.org/EIPS/eip-4337#rpc-methods-eth-namespace
// The signature field is ignored by the bundler but must have a valid length.
// Fields missing from the response stay nil and are reported by validation.
func (bc *BundlerClient) EstimateUserOperationGas(ctx context.Context, req userop.Request, entrypoint common.Address) (*GasEstimation, error) {
	var result gasEstimationResult
	if err := bc.client.CallContext(ctx, &result, methodEstimateUserOperationGas, req, entrypoint); err != nil {
		return nil, err
	}
	return result.toEstimation(), nil
}

// BaseFee returns baseFeePerGas of the latest block, or nil when the chain has
// not activated London.
func (bc *BundlerClient) BaseFee(ctx context.Context) (*big.Int, error) {
	var head struct {
		BaseFeePerGas *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := bc.client.CallContext(ctx, &head, methodGetBlockByNumber, "latest", false); err != nil {
		return nil, err
	}
	if head.BaseFeePerGas == nil {
		return nil, nil
	}
	return head.BaseFeePerGas.ToInt(), nil
}

// MaxPriorityFeePerGas returns the tip suggested by eth_maxPriorityFeePerGas.
func (bc *BundlerClient) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	var tip hexutil.Big
	if err := bc.client.CallContext(ctx, &tip, methodMaxPriorityFeePerGas); err != nil {
		return nil, err
	}
	return tip.ToInt(), nil
}

func (bc *BundlerClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := bc.client.CallContext(ctx, &id, methodChainID); err != nil {
		return nil, err
	}
	return id.ToInt(), nil
}

// SupportedEntryPoints lists the entry points the bundler accepts operations for.
func (bc *BundlerClient) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	var entryPoints []common.Address
	err := bc.client.CallContext(ctx, &entryPoints, methodSupportedEntryPoints)
	return entryPoints, err
}

// GetUserOperationByHash fetches a UserOperation by its hash.
func (bc *BundlerClient) GetUserOperationByHash(ctx context.Context, hash string) (json.RawMessage, error) {
	var userOp json.RawMessage
	err := bc.client.CallContext(ctx, &userOp, methodGetUserOperationByHash, hash)
	return userOp, err
}

// GetUserOperationReceipt fetches the receipt of a UserOperation. The result
// is null until the operation is included.
func (bc *BundlerClient) GetUserOperationReceipt(ctx context.Context, hash string) (json.RawMessage, error) {
	var receipt json.RawMessage
	err := bc.client.CallContext(ctx, &receipt, methodGetUserOperationReceipt, hash)
	return receipt, err
}

// WaitForUserOperationReceipt polls eth_getUserOperationReceipt every interval
// until the bundler returns a receipt or ctx is done.
func (bc *BundlerClient) WaitForUserOperationReceipt(ctx context.Context, hash string, interval time.Duration) (json.RawMessage, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := bc.GetUserOperationReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if !IsNull(receipt) {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("user operation %s not included: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// IsNull reports whether a lookup result is empty, meaning the bundler does
// not know the operation yet.
func IsNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
