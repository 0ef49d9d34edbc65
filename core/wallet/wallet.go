// Package wallet wires a SimpleAccount, a bundler and an optional paymaster
// into a ready to use provider.
package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/AvaProtocol/aa-provider/core/chainio/aa"
	"github.com/AvaProtocol/aa-provider/core/config"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/bundler"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/gasmanager"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/paymaster"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/provider"
	"github.com/AvaProtocol/aa-provider/pkg/jsonrpc"
)

type Wallet struct {
	Provider  *provider.Provider
	Account   *aa.SimpleAccount
	Bundler   *bundler.BundlerClient
	Paymaster *paymaster.Client

	eth *ethclient.Client
}

type Option func(*options)

type options struct {
	metrics provider.Metrics
}

func WithMetrics(m provider.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New builds every client lazily; nothing is sent over the network until the
// provider is used.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Wallet, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Dialing a websocket bundler already talks to the network.
	if _, err := provider.ResolveChain(nil, cfg.ChainID); err != nil {
		return nil, err
	}

	bundlerClient, err := newBundlerClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p, err := provider.New(provider.Config{
		ChainID:                     cfg.ChainID,
		EntryPoint:                  cfg.EntryPoint,
		RPC:                         bundlerClient,
		MaxPriorityFeeBufferPercent: cfg.MaxPriorityFeeBufferPercent,
		Logger:                      cfg.Logger,
		Metrics:                     o.metrics,
	})
	if err != nil {
		bundlerClient.Close()
		return nil, err
	}
	if cfg.FeeMode != nil {
		p = p.WithFeeData(*cfg.FeeMode, cfg.MaxPriorityFeeBufferPercent)
	}

	ethClient, err := ethclient.DialContext(ctx, cfg.EthRpcUrl)
	if err != nil {
		bundlerClient.Close()
		return nil, fmt.Errorf("Cannot create http ethclient: %w", err)
	}

	account, err := aa.NewSimpleAccount(aa.SimpleAccountConfig{
		Owner:      cfg.OwnerKey,
		Factory:    cfg.FactoryAddress,
		EntryPoint: p.EntryPoint(),
		Salt:       cfg.AccountSalt,
		Client:     ethClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		ethClient.Close()
		bundlerClient.Close()
		return nil, err
	}
	p = p.Connect(account)

	w := &Wallet{
		Provider: p,
		Account:  account,
		Bundler:  bundlerClient,
		eth:      ethClient,
	}

	if pm := cfg.Paymaster; pm != nil {
		w.Paymaster = paymaster.Dial(pm.URL, jsonrpc.WithHeaders(pm.Headers))
		w.Provider, err = gasmanager.WithStackupGasManager(p, gasmanager.Config{
			EntryPoint: pm.EntryPoint,
			Client:     w.Paymaster,
			ChainID:    pm.ChainID,
			SponsorSig: pm.SponsorSig,
			Context:    pm.Context,
		})
		if err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

func newBundlerClient(ctx context.Context, cfg *config.Config) (*bundler.BundlerClient, error) {
	switch cfg.BundlerTransport {
	case config.TransportGeth:
		return bundler.DialBundlerClient(ctx, cfg.BundlerUrl, cfg.BundlerHeaders)
	default:
		return bundler.NewBundlerClientFromCaller(
			jsonrpc.NewHTTPClient(cfg.BundlerUrl, jsonrpc.WithHeaders(cfg.BundlerHeaders)),
		), nil
	}
}

func (w *Wallet) Close() {
	if w.eth != nil {
		w.eth.Close()
	}
	if w.Bundler != nil {
		w.Bundler.Close()
	}
}
