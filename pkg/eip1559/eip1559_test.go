package eip1559

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	baseFee *big.Int
	tip     *big.Int
	baseErr error
	tipErr  error
}

func (s *staticSource) BaseFee(ctx context.Context) (*big.Int, error) {
	return s.baseFee, s.baseErr
}

func (s *staticSource) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	return s.tip, s.tipErr
}

func TestComputeFees(t *testing.T) {
	tests := []struct {
		name        string
		baseFee     int64
		tip         int64
		mode        GasFeeMode
		wantPrio    int64
		wantMaxFee  int64
		bufferValue int64
	}{
		{
			name:       "fixed with zero flat value",
			baseFee:    100,
			tip:        10,
			mode:       GasFeeMode{Strategy: Fixed, Value: big.NewInt(0)},
			wantPrio:   10,
			wantMaxFee: 135,
		},
		{
			name:       "fixed adds the flat value after the buffer",
			baseFee:    100,
			tip:        100,
			mode:       GasFeeMode{Strategy: Fixed, Value: big.NewInt(7)},
			wantPrio:   112,
			wantMaxFee: 237,
		},
		{
			name:       "base fee percentage",
			baseFee:    100,
			tip:        10,
			mode:       GasFeeMode{Strategy: BaseFeePercentage, Value: big.NewInt(5)},
			wantPrio:   6,
			wantMaxFee: 131,
		},
		{
			name:       "priority fee percentage truncates at each step",
			baseFee:    100,
			tip:        1,
			mode:       GasFeeMode{Strategy: PriorityFeePercentage, Value: big.NewInt(57)},
			wantPrio:   1,
			wantMaxFee: 126,
		},
		{
			name:       "priority fee percentage on gwei scale",
			baseFee:    30_000_000_000,
			tip:        1_000_000_000,
			mode:       GasFeeMode{Strategy: PriorityFeePercentage, Value: big.NewInt(25)},
			wantPrio:   1_312_500_000,
			wantMaxFee: 38_812_500_000,
		},
		{
			name:        "custom buffer",
			baseFee:     8,
			tip:         100,
			mode:        GasFeeMode{Strategy: Fixed},
			bufferValue: 20,
			wantPrio:    120,
			wantMaxFee:  130,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := big.NewInt(DefaultBufferPercent)
			if tt.bufferValue != 0 {
				buffer = big.NewInt(tt.bufferValue)
			}
			fees, err := ComputeFees(big.NewInt(tt.baseFee), big.NewInt(tt.tip), tt.mode, buffer)
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tt.wantPrio), fees.MaxPriorityFeePerGas)
			assert.Equal(t, big.NewInt(tt.wantMaxFee), fees.MaxFeePerGas)
		})
	}
}

func TestComputeFeesMissingBaseFee(t *testing.T) {
	_, err := ComputeFees(nil, big.NewInt(1), GasFeeMode{Strategy: Fixed}, nil)
	assert.ErrorIs(t, err, ErrBaseFeeMissing)
}

func TestComputeFeesUnsupportedStrategy(t *testing.T) {
	for _, strategy := range []GasFeeStrategy{Default, "SURGE"} {
		_, err := ComputeFees(big.NewInt(1), big.NewInt(1), GasFeeMode{Strategy: strategy}, nil)
		require.ErrorIs(t, err, ErrUnsupportedStrategy)

		var strategyErr *UnsupportedStrategyError
		require.True(t, errors.As(err, &strategyErr))
		assert.Equal(t, strategy, strategyErr.Strategy)
	}
}

func TestDefaultFees(t *testing.T) {
	fees, err := DefaultFees(big.NewInt(100), big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(13), fees.MaxPriorityFeePerGas)
	assert.Equal(t, big.NewInt(213), fees.MaxFeePerGas)
}

func TestSuggestFees(t *testing.T) {
	src := &staticSource{baseFee: big.NewInt(100), tip: big.NewInt(10)}

	fees, err := SuggestFees(context.Background(), src, GasFeeMode{Strategy: BaseFeePercentage, Value: big.NewInt(5)}, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6), fees.MaxPriorityFeePerGas)
	assert.Equal(t, big.NewInt(131), fees.MaxFeePerGas)

	fees, err = SuggestFees(context.Background(), src, DefaultMode(), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(213), fees.MaxFeePerGas)
}

func TestSuggestFeesPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("rpc down")

	_, err := SuggestFees(context.Background(), &staticSource{baseErr: boom, tip: big.NewInt(1)}, GasFeeMode{Strategy: Fixed}, nil)
	assert.ErrorIs(t, err, boom)

	_, err = SuggestFees(context.Background(), &staticSource{baseFee: big.NewInt(1), tipErr: boom}, GasFeeMode{Strategy: Fixed}, nil)
	assert.ErrorIs(t, err, boom)

	_, err = SuggestFees(context.Background(), &staticSource{tip: big.NewInt(1)}, GasFeeMode{Strategy: Fixed}, nil)
	assert.ErrorIs(t, err, ErrBaseFeeMissing)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" base_fee_percentage ")
	require.NoError(t, err)
	assert.Equal(t, BaseFeePercentage, s)

	_, err = ParseStrategy("legacy")
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)
}
