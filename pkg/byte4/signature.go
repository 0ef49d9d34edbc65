// Package byte4 resolves calldata back to the ABI method it invokes.
package byte4

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// GetMethodFromCalldata returns the ABI method for a 4-byte selector or full calldata.
func GetMethodFromCalldata(parsedABI abi.ABI, calldata []byte) (*abi.Method, error) {
	if len(calldata) < 4 {
		return nil, fmt.Errorf("invalid selector length: %d", len(calldata))
	}

	// Function calls in the EVM are identified by the first four bytes of
	// keccak256 over the canonical signature, e.g. transfer(address,uint256).
	method, err := parsedABI.MethodById(calldata[:4])
	if err != nil {
		return nil, fmt.Errorf("no matching method found for selector: 0x%x", calldata[:4])
	}
	return method, nil
}

// DecodeCalldata resolves the method and unpacks its arguments in ABI order.
func DecodeCalldata(parsedABI abi.ABI, calldata []byte) (*abi.Method, []interface{}, error) {
	method, err := GetMethodFromCalldata(parsedABI, calldata)
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("unpack %s arguments: %w", method.Name, err)
	}
	return method, args, nil
}
