package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AvaProtocol/aa-provider/core/config"
	"github.com/AvaProtocol/aa-provider/core/wallet"
	"github.com/AvaProtocol/aa-provider/metrics"
)

// metricsAddr enables the /metrics endpoint for as long as the command runs.
var metricsAddr string

func loadWallet(ctx context.Context) (*config.Config, *wallet.Wallet, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	var opts []wallet.Option
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		errC, err := metrics.Start(ctx, metricsAddr, reg, cfg.Logger)
		if err != nil {
			return nil, nil, err
		}
		go func() {
			for err := range errC {
				cfg.Logger.Error("metrics server stopped", "error", err)
			}
		}()
		opts = append(opts, wallet.WithMetrics(metrics.NewUserOpMetrics(reg)))
	}

	w, err := wallet.New(ctx, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, w, nil
}
