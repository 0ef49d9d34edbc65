// Package provider assembles, signs and submits ERC-4337 user operations.
//
// A Provider is an immutable value: every With* method returns a new
// provider and leaves the receiver untouched, so one provider can serve
// concurrent submissions.
package provider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/aa-provider/pkg/chains"
	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/bundler"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
	"github.com/AvaProtocol/aa-provider/pkg/logger"
)

// DefaultEntryPoint is the EntryPoint v0.6 deployment.
var DefaultEntryPoint = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")

// Middleware mutates the in-progress struct in place.
type Middleware func(ctx context.Context, uo *userop.Struct) error

type Stages struct {
	FeeData            Middleware
	GasEstimator       Middleware
	PaymasterData      Middleware
	PaymasterEstimator Middleware
}

type Config struct {
	ChainID    int64
	EntryPoint common.Address

	// RPC takes precedence over RPCURL.
	RPC    RPCClient
	RPCURL string

	// Registry defaults to chains.Default().
	Registry *chains.Registry

	// MaxPriorityFeeBufferPercent defaults to eip1559.DefaultBufferPercent.
	MaxPriorityFeeBufferPercent *big.Int

	Logger  logger.Logger
	Metrics Metrics
}

type Provider struct {
	chain      chains.Chain
	entryPoint common.Address
	rpc        RPCClient
	account    Account
	stages     Stages

	feeMode   eip1559.GasFeeMode
	feeBuffer *big.Int

	logger   logger.Logger
	metrics  Metrics
	observer Observer
}

// ResolveChain looks chainID up in registry, or in the default registry when
// registry is nil. Unknown chains yield a ConfigurationError wrapping
// ErrUnsupportedChain.
func ResolveChain(registry *chains.Registry, chainID int64) (chains.Chain, error) {
	if registry == nil {
		registry = chains.Default()
	}
	chain, ok := registry.Resolve(chainID)
	if !ok {
		return chains.Chain{}, &ConfigurationError{
			Reason: fmt.Sprintf("chain %d is not supported", chainID),
			Err:    ErrUnsupportedChain,
		}
	}
	return chain, nil
}

// New validates the chain before touching the network.
func New(cfg Config) (*Provider, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = chains.Default()
	}
	chain, err := ResolveChain(registry, cfg.ChainID)
	if err != nil {
		return nil, err
	}

	rpc := cfg.RPC
	if rpc == nil {
		if cfg.RPCURL == "" {
			return nil, &ConfigurationError{Reason: "either RPC or RPCURL must be set", Err: ErrMissingRPC}
		}
		client, err := bundler.NewBundlerClient(cfg.RPCURL)
		if err != nil {
			return nil, err
		}
		rpc = client
	}

	entryPoint := cfg.EntryPoint
	if entryPoint == (common.Address{}) {
		entryPoint = DefaultEntryPoint
	}

	buffer := cfg.MaxPriorityFeeBufferPercent
	if buffer == nil {
		buffer = big.NewInt(eip1559.DefaultBufferPercent)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	p := &Provider{
		chain:      chain,
		entryPoint: entryPoint,
		rpc:        rpc,
		feeMode:    registry.PolicyFor(chain.ID),
		feeBuffer:  new(big.Int).Set(buffer),
		logger:     logger.EnsureLogger(cfg.Logger),
		metrics:    metrics,
	}
	p.stages = Stages{
		FeeData:       p.defaultFeeData(p.feeMode, p.feeBuffer),
		GasEstimator:  p.defaultGasEstimator(),
		PaymasterData: defaultPaymasterData,
	}

	p.logger.Debug("user operation provider created",
		"chain", chain.Name,
		"chain_id", chain.ID,
		"entrypoint", entryPoint.Hex(),
		"fee_mode", p.feeMode.String())
	return p, nil
}

func (p *Provider) clone() *Provider {
	c := *p
	return &c
}

func (p *Provider) Chain() chains.Chain         { return p.chain }
func (p *Provider) EntryPoint() common.Address  { return p.entryPoint }
func (p *Provider) RPC() RPCClient              { return p.rpc }
func (p *Provider) Account() Account            { return p.account }
func (p *Provider) IsConnected() bool           { return p.account != nil }
func (p *Provider) Stages() Stages              { return p.stages }
func (p *Provider) Logger() logger.Logger       { return p.logger }
func (p *Provider) FeeMode() eip1559.GasFeeMode { return p.feeMode }

// FeeBuffer returns a copy of the priority fee buffer percent in use.
func (p *Provider) FeeBuffer() *big.Int { return new(big.Int).Set(p.feeBuffer) }

// Connect binds the account operations are built for.
func (p *Provider) Connect(account Account) *Provider {
	c := p.clone()
	c.account = account
	return c
}

func (p *Provider) WithFeeDataGetter(m Middleware) *Provider {
	c := p.clone()
	if m == nil {
		m = c.defaultFeeData(c.feeMode, c.feeBuffer)
	}
	c.stages.FeeData = m
	return c
}

func (p *Provider) WithGasEstimator(m Middleware) *Provider {
	c := p.clone()
	if m == nil {
		m = c.defaultGasEstimator()
	}
	c.stages.GasEstimator = m
	return c
}

// WithPaymasterMiddleware installs the paymaster stage of the submission
// pipeline and the estimator used by EstimateCredit. A nil data stage
// restores the default, which leaves paymasterAndData empty.
func (p *Provider) WithPaymasterMiddleware(data, estimator Middleware) *Provider {
	c := p.clone()
	if data == nil {
		data = defaultPaymasterData
	}
	c.stages.PaymasterData = data
	c.stages.PaymasterEstimator = estimator
	return c
}

// WithFeeData switches the fee strategy. DEFAULT keeps the current fee stage.
func (p *Provider) WithFeeData(mode eip1559.GasFeeMode, bufferPercent *big.Int) *Provider {
	c := p.clone()
	if mode.Strategy == eip1559.Default {
		return c
	}
	if bufferPercent == nil {
		bufferPercent = big.NewInt(eip1559.DefaultBufferPercent)
	}
	if mode.Value != nil {
		mode.Value = new(big.Int).Set(mode.Value)
	}
	c.feeMode = mode
	c.feeBuffer = new(big.Int).Set(bufferPercent)
	c.stages.FeeData = c.defaultFeeData(c.feeMode, c.feeBuffer)
	return c
}

func (p *Provider) WithLogger(lgr logger.Logger) *Provider {
	c := p.clone()
	c.logger = logger.EnsureLogger(lgr)
	return c
}

func (p *Provider) WithMetrics(m Metrics) *Provider {
	c := p.clone()
	if m == nil {
		m = noopMetrics{}
	}
	c.metrics = m
	return c
}

func (p *Provider) WithObserver(o Observer) *Provider {
	c := p.clone()
	c.observer = o
	return c
}

func (p *Provider) defaultFeeData(mode eip1559.GasFeeMode, buffer *big.Int) Middleware {
	rpc := p.rpc
	return func(ctx context.Context, uo *userop.Struct) error {
		fees, err := eip1559.SuggestFees(ctx, rpc, mode, buffer)
		if err != nil {
			return err
		}
		uo.MaxFeePerGas = fees.MaxFeePerGas
		uo.MaxPriorityFeePerGas = fees.MaxPriorityFeePerGas
		return nil
	}
}

func (p *Provider) defaultGasEstimator() Middleware {
	rpc, entryPoint := p.rpc, p.entryPoint
	return func(ctx context.Context, uo *userop.Struct) error {
		est, err := rpc.EstimateUserOperationGas(ctx, uo.Hexlify(), entryPoint)
		if err != nil {
			return err
		}
		uo.CallGasLimit = est.CallGasLimit
		uo.PreVerificationGas = est.PreVerificationGas
		uo.VerificationGasLimit = est.VerificationGasLimit
		return nil
	}
}

func defaultPaymasterData(_ context.Context, uo *userop.Struct) error {
	uo.PaymasterAndData = []byte{}
	return nil
}
