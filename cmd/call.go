package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/provider"
)

const etherSuffix = "ether"

// parseCall reads target[:value[:data]]. value is in wei unless it ends in
// "ether"; data is 0x prefixed hex.
func parseCall(raw string) (provider.Call, error) {
	parts := strings.SplitN(raw, ":", 3)
	if !common.IsHexAddress(parts[0]) {
		return provider.Call{}, fmt.Errorf("invalid call %q: %q is not an address", raw, parts[0])
	}
	call := provider.Call{Target: common.HexToAddress(parts[0]), Value: new(big.Int)}

	if len(parts) > 1 && parts[1] != "" {
		value, err := parseValue(parts[1])
		if err != nil {
			return provider.Call{}, fmt.Errorf("invalid call %q: %w", raw, err)
		}
		call.Value = value
	}
	if len(parts) > 2 && parts[2] != "" {
		data, err := hexutil.Decode(parts[2])
		if err != nil {
			return provider.Call{}, fmt.Errorf("invalid call %q: data: %w", raw, err)
		}
		call.Data = data
	}
	return call, nil
}

func parseValue(s string) (*big.Int, error) {
	shift := int32(0)
	if strings.HasSuffix(s, etherSuffix) {
		s = strings.TrimSuffix(s, etherSuffix)
		shift = 18
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("value %q: %w", s, err)
	}
	d = d.Shift(shift)
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("value %q is not a whole number of wei", s)
	}
	return d.BigInt(), nil
}

// intentFor turns one call into a Call and several into a Batch.
func intentFor(specs []string) (provider.Intent, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --call is required")
	}
	calls := make([]provider.Call, 0, len(specs))
	for _, raw := range specs {
		call, err := parseCall(raw)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	if len(calls) == 1 {
		return calls[0], nil
	}
	return provider.Batch(calls), nil
}

// formatGwei renders a wei amount in gwei.
func formatGwei(wei *big.Int) string {
	if wei == nil {
		return "n/a"
	}
	return decimal.NewFromBigInt(wei, -9).String() + " gwei"
}
