// Package paymaster talks to a stackup style paymaster over JSON-RPC.
package paymaster

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
	"github.com/AvaProtocol/aa-provider/pkg/jsonrpc"
)

const (
	MethodSponsorUserOperation = "pm_sponsorUserOperation"
	MethodEstimateCredit       = "pm_estimateCredit"
)

// SponsorResponse is what the paymaster returns for both methods. Gas fields
// are optional; a paymaster may only hand back paymasterAndData.
type SponsorResponse struct {
	PaymasterAndData     hexutil.Bytes `json:"paymasterAndData"`
	PreVerificationGas   *hexutil.Big  `json:"preVerificationGas,omitempty"`
	VerificationGasLimit *hexutil.Big  `json:"verificationGasLimit,omitempty"`
	CallGasLimit         *hexutil.Big  `json:"callGasLimit,omitempty"`
}

// ApplyTo overwrites the fields of uo that the paymaster returned.
func (r *SponsorResponse) ApplyTo(uo *userop.Struct) {
	if r.PaymasterAndData != nil {
		uo.PaymasterAndData = []byte(r.PaymasterAndData)
	}
	if r.PreVerificationGas != nil {
		uo.PreVerificationGas = new(big.Int).Set(r.PreVerificationGas.ToInt())
	}
	if r.VerificationGasLimit != nil {
		uo.VerificationGasLimit = new(big.Int).Set(r.VerificationGasLimit.ToInt())
	}
	if r.CallGasLimit != nil {
		uo.CallGasLimit = new(big.Int).Set(r.CallGasLimit.ToInt())
	}
}

// Client is a JSON-RPC client with the paymaster methods on top. The embedded
// Caller stays usable for any other method the endpoint serves.
type Client struct {
	jsonrpc.Caller
}

func NewClient(caller jsonrpc.Caller) *Client {
	return &Client{Caller: caller}
}

// Dial builds a client over HTTP.
func Dial(url string, opts ...jsonrpc.Option) *Client {
	return NewClient(jsonrpc.NewHTTPClient(url, opts...))
}

func (c *Client) SponsorUserOperation(ctx context.Context, req userop.Request, entryPoint common.Address, pmCtx Context) (*SponsorResponse, error) {
	return c.call(ctx, MethodSponsorUserOperation, req, entryPoint, pmCtx)
}

func (c *Client) EstimateCredit(ctx context.Context, req userop.Request, entryPoint common.Address, pmCtx Context) (*SponsorResponse, error) {
	return c.call(ctx, MethodEstimateCredit, req, entryPoint, pmCtx)
}

func (c *Client) call(ctx context.Context, method string, req userop.Request, entryPoint common.Address, pmCtx Context) (*SponsorResponse, error) {
	var resp SponsorResponse
	if err := c.CallContext(ctx, &resp, method, req, entryPoint, pmCtx); err != nil {
		return nil, err
	}
	return &resp, nil
}
