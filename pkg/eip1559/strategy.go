package eip1559

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// GasFeeStrategy selects how maxPriorityFeePerGas is derived for a chain.
type GasFeeStrategy string

const (
	// maxPriorityFee = 133% eth_maxPriorityFeePerGas; maxFee = 2 x base fee + maxPriorityFee
	Default GasFeeStrategy = "DEFAULT"
	// maxPriorityFee = value + eth_maxPriorityFeePerGas x (100 + buffer)%; maxFee = 1.25 x base fee + maxPriorityFee
	Fixed GasFeeStrategy = "FIXED"
	// maxPriorityFee = 1.25 x base fee x value%; maxFee = 1.25 x base fee + maxPriorityFee
	BaseFeePercentage GasFeeStrategy = "BASE_FEE_PERCENTAGE"
	// maxPriorityFee = eth_maxPriorityFeePerGas x (100 + buffer)% x (100 + value)%; maxFee = 1.25 x base fee + maxPriorityFee
	PriorityFeePercentage GasFeeStrategy = "PRIORITY_FEE_PERCENTAGE"
)

// DefaultBufferPercent is added on top of the suggested priority fee to absorb spikes.
const DefaultBufferPercent = 5

var (
	ErrBaseFeeMissing      = errors.New("baseFeePerGas is null")
	ErrUnsupportedStrategy = errors.New("fee mode not supported")

	hundred = big.NewInt(100)
)

// UnsupportedStrategyError reports a strategy tag the engine cannot compute.
type UnsupportedStrategyError struct {
	Strategy GasFeeStrategy
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedStrategy.Error(), string(e.Strategy))
}

func (e *UnsupportedStrategyError) Unwrap() error {
	return ErrUnsupportedStrategy
}

// GasFeeMode is the fee policy of a chain. A nil Value counts as zero.
type GasFeeMode struct {
	Strategy GasFeeStrategy
	Value    *big.Int
}

func (m GasFeeMode) value() *big.Int {
	if m.Value == nil {
		return new(big.Int)
	}
	return m.Value
}

func (m GasFeeMode) String() string {
	return fmt.Sprintf("%s(%s)", m.Strategy, m.value().String())
}

// DefaultMode is used for chains without an explicit policy.
func DefaultMode() GasFeeMode {
	return GasFeeMode{Strategy: Default, Value: new(big.Int)}
}

// ParseStrategy accepts the strategy tag case-insensitively.
func ParseStrategy(s string) (GasFeeStrategy, error) {
	switch strategy := GasFeeStrategy(strings.ToUpper(strings.TrimSpace(s))); strategy {
	case Default, Fixed, BaseFeePercentage, PriorityFeePercentage:
		return strategy, nil
	default:
		return "", &UnsupportedStrategyError{Strategy: strategy}
	}
}

// Fees is the pair written into a user operation.
type Fees struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// ComputeFees applies a non-default strategy to the current base fee and the
// network suggested priority fee. Every division truncates.
func ComputeFees(baseFee, suggestedTip *big.Int, mode GasFeeMode, bufferPercent *big.Int) (*Fees, error) {
	if baseFee == nil {
		return nil, ErrBaseFeeMissing
	}
	if suggestedTip == nil {
		suggestedTip = new(big.Int)
	}
	if bufferPercent == nil {
		bufferPercent = big.NewInt(DefaultBufferPercent)
	}

	// add a buffer to account for potential spikes in priority fee
	tip := new(big.Int).Mul(suggestedTip, new(big.Int).Add(hundred, bufferPercent))
	tip.Quo(tip, hundred)

	// 25% overhead on the base fee
	baseFeeScaled := new(big.Int).Mul(baseFee, big.NewInt(5))
	baseFeeScaled.Quo(baseFeeScaled, big.NewInt(4))

	var prioFee *big.Int
	switch mode.Strategy {
	case Fixed:
		prioFee = new(big.Int).Add(tip, mode.value())
	case BaseFeePercentage:
		prioFee = new(big.Int).Mul(baseFeeScaled, mode.value())
		prioFee.Quo(prioFee, hundred)
	case PriorityFeePercentage:
		prioFee = new(big.Int).Mul(tip, new(big.Int).Add(hundred, mode.value()))
		prioFee.Quo(prioFee, hundred)
	default:
		return nil, &UnsupportedStrategyError{Strategy: mode.Strategy}
	}

	return &Fees{
		MaxPriorityFeePerGas: prioFee,
		MaxFeePerGas:         new(big.Int).Add(baseFeeScaled, prioFee),
	}, nil
}

// DefaultFees is the fee logic used when a chain runs the DEFAULT strategy.
func DefaultFees(baseFee, suggestedTip *big.Int) (*Fees, error) {
	if baseFee == nil {
		return nil, ErrBaseFeeMissing
	}
	if suggestedTip == nil {
		suggestedTip = new(big.Int)
	}

	prioFee := new(big.Int).Mul(suggestedTip, big.NewInt(133))
	prioFee.Quo(prioFee, hundred)

	// 2x base fee leaves room for the base fee to double between blocks
	maxFee := new(big.Int).Mul(baseFee, big.NewInt(2))
	maxFee.Add(maxFee, prioFee)

	return &Fees{
		MaxPriorityFeePerGas: prioFee,
		MaxFeePerGas:         maxFee,
	}, nil
}
