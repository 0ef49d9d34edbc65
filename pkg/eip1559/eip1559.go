package eip1559

import (
	"context"
	"math/big"

	"golang.org/x/sync/errgroup"
)

// FeeSource exposes the two on-chain gas signals the engine consumes.
// BaseFee returns nil when the latest block carries no base fee.
type FeeSource interface {
	BaseFee(ctx context.Context) (*big.Int, error)
	MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error)
}

// SuggestFees reads the latest base fee and the suggested priority fee
// concurrently, then applies mode. Both reads must succeed.
func SuggestFees(ctx context.Context, src FeeSource, mode GasFeeMode, bufferPercent *big.Int) (*Fees, error) {
	var baseFee, tipCap *big.Int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		baseFee, err = src.BaseFee(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tipCap, err = src.MaxPriorityFeePerGas(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if mode.Strategy == Default {
		return DefaultFees(baseFee, tipCap)
	}
	return ComputeFees(baseFee, tipCap, mode, bufferPercent)
}
