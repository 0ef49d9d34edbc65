// Package gasmanager lets a paymaster sponsor the user operations of a provider.
package gasmanager

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/paymaster"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/provider"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
)

// SponsorClient is the part of *paymaster.Client the gas manager needs.
type SponsorClient interface {
	SponsorUserOperation(ctx context.Context, req userop.Request, entryPoint common.Address, pmCtx paymaster.Context) (*paymaster.SponsorResponse, error)
	EstimateCredit(ctx context.Context, req userop.Request, entryPoint common.Address, pmCtx paymaster.Context) (*paymaster.SponsorResponse, error)
}

var _ SponsorClient = (*paymaster.Client)(nil)

type Config struct {
	// EntryPoint defaults to the provider's entry point.
	EntryPoint common.Address
	Client     SponsorClient
	ChainID    *int64
	SponsorSig string

	// Context replaces the pay as you go context built from ChainID and SponsorSig.
	Context paymaster.Context
}

func (c Config) paymasterContext() paymaster.Context {
	if c.Context != nil {
		return c.Context
	}
	return paymaster.PayAsYouGo{ChainID: c.ChainID, SponsorSig: c.SponsorSig}
}

// WithStackupGasManager returns a copy of p whose operations are sponsored by
// the paymaster. Gas limits are zero until the paymaster fills them in. No
// request is made until an operation is sent.
func WithStackupGasManager(p *provider.Provider, cfg Config) (*provider.Provider, error) {
	if !p.IsConnected() {
		return nil, &provider.ConfigurationError{
			Reason: "connect an account before binding a gas manager",
			Err:    provider.ErrAccountNotConnected,
		}
	}
	if cfg.Client == nil {
		return nil, &provider.ConfigurationError{Reason: "gas manager has no paymaster client", Err: ErrMissingClient}
	}

	if cfg.EntryPoint == (common.Address{}) {
		cfg.EntryPoint = p.EntryPoint()
	}
	pmCtx := cfg.paymasterContext()
	lgr := p.Logger()

	sponsor := func(ctx context.Context, uo *userop.Struct) error {
		resp, err := cfg.Client.SponsorUserOperation(ctx, uo.Hexlify(), cfg.EntryPoint, pmCtx)
		if err != nil {
			return err
		}
		resp.ApplyTo(uo)
		return nil
	}

	estimate := func(ctx context.Context, uo *userop.Struct) error {
		lgr.Info("Estimating gas credit", "sender", uo.Sender, "paymaster_context", pmCtx.Type())
		resp, err := cfg.Client.EstimateCredit(ctx, uo.Hexlify(), cfg.EntryPoint, pmCtx)
		if err != nil {
			return err
		}
		resp.ApplyTo(uo)
		return nil
	}

	return p.
		WithGasEstimator(zeroGasEstimator).
		WithPaymasterMiddleware(sponsor, estimate), nil
}

func zeroGasEstimator(_ context.Context, uo *userop.Struct) error {
	uo.CallGasLimit = new(big.Int)
	uo.PreVerificationGas = new(big.Int)
	uo.VerificationGasLimit = new(big.Int)
	return nil
}
