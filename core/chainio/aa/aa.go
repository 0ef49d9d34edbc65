// Package aa implements the SimpleAccount smart contract account used by the
// provider.
package aa

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/aa-provider/pkg/byte4"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/provider"
)

var (
	factoryABI    = mustParseABI("SimpleAccountFactory", simpleFactoryABI)
	accountABI    = mustParseABI("SimpleAccount", simpleAccountABI)
	entrypointABI = mustParseABI("EntryPoint", entryPointABI)

	defaultSalt = big.NewInt(0)

	// ErrBatchValue is returned for a batch call that carries native value;
	// SimpleAccount.executeBatch has no value parameter.
	ErrBatchValue = errors.New("executeBatch cannot transfer value")

	ErrUnknownCallData = errors.New("calldata is neither execute nor executeBatch")
)

func mustParseABI(name, raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Errorf("Invalid %s ABI: %w", name, err))
	}
	return parsed
}

// GetInitCodeForFactory returns factory ++ createAccount(owner, salt).
func GetInitCodeForFactory(owner common.Address, factory common.Address, salt *big.Int) ([]byte, error) {
	if salt == nil {
		salt = defaultSalt
	}
	calldata, err := factoryABI.Pack("createAccount", owner, salt)
	if err != nil {
		return nil, err
	}

	var data []byte
	data = append(data, factory.Bytes()...)
	data = append(data, calldata...)
	return data, nil
}

// Generate calldata for UserOps
func PackExecute(targetAddress common.Address, ethValue *big.Int, calldata []byte) ([]byte, error) {
	if ethValue == nil {
		ethValue = new(big.Int)
	}
	if calldata == nil {
		calldata = []byte{}
	}
	return accountABI.Pack("execute", targetAddress, ethValue, calldata)
}

// PackExecuteBatch encodes executeBatch(address[],bytes[]).
func PackExecuteBatch(calls []provider.Call) ([]byte, error) {
	targets := make([]common.Address, 0, len(calls))
	payloads := make([][]byte, 0, len(calls))
	for i, c := range calls {
		if c.Value != nil && c.Value.Sign() != 0 {
			return nil, fmt.Errorf("call %d: %w", i, ErrBatchValue)
		}
		data := c.Data
		if data == nil {
			data = []byte{}
		}
		targets = append(targets, c.Target)
		payloads = append(payloads, data)
	}
	return accountABI.Pack("executeBatch", targets, payloads)
}

// DecodeCallData turns SimpleAccount calldata back into the calls it runs.
func DecodeCallData(data []byte) ([]provider.Call, error) {
	method, args, err := byte4.DecodeCalldata(accountABI, data)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "execute":
		return []provider.Call{{
			Target: args[0].(common.Address),
			Value:  args[1].(*big.Int),
			Data:   args[2].([]byte),
		}}, nil
	case "executeBatch":
		targets := args[0].([]common.Address)
		payloads := args[1].([][]byte)
		if len(targets) != len(payloads) {
			return nil, fmt.Errorf("executeBatch has %d targets and %d payloads", len(targets), len(payloads))
		}
		calls := make([]provider.Call, len(targets))
		for i := range targets {
			calls[i] = provider.Call{Target: targets[i], Value: new(big.Int), Data: payloads[i]}
		}
		return calls, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCallData, method.Name)
}
