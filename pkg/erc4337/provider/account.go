package provider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/bundler"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
)

// Account is the smart contract account a provider builds operations for.
type Account interface {
	GetInitCode(ctx context.Context) ([]byte, error)
	GetAddress(ctx context.Context) (common.Address, error)
	GetNonce(ctx context.Context) (*big.Int, error)
	EncodeExecute(ctx context.Context, target common.Address, value *big.Int, data []byte) ([]byte, error)
	EncodeBatchExecute(ctx context.Context, calls []Call) ([]byte, error)
	// GetDummySignature must have the length and shape of a real signature so
	// gas estimation accounts for it.
	GetDummySignature(ctx context.Context) ([]byte, error)
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// RPCClient is the bundler side of the pipeline. *bundler.BundlerClient
// implements it.
type RPCClient interface {
	EstimateUserOperationGas(ctx context.Context, req userop.Request, entryPoint common.Address) (*bundler.GasEstimation, error)
	SendUserOperation(ctx context.Context, req userop.Request, entryPoint common.Address) (string, error)
	BaseFee(ctx context.Context) (*big.Int, error)
	MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error)
}

var _ RPCClient = (*bundler.BundlerClient)(nil)

// Intent is what the caller wants executed: a single Call or a Batch.
type Intent interface {
	isIntent()
}

type Call struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

// Batch executes its calls in order inside one user operation.
type Batch []Call

func (Call) isIntent()  {}
func (Batch) isIntent() {}
