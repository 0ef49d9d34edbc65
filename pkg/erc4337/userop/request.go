package userop

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Struct is a user operation under construction. A nil number or sender has
// not been resolved yet; byte fields encode as 0x while empty.
type Struct struct {
	Sender               *common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	Signature            []byte
	CallGasLimit         *big.Int
	PreVerificationGas   *big.Int
	VerificationGasLimit *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
}

// Request is the hex encoded wire form sent to bundlers and paymasters.
type Request struct {
	Sender               string `json:"sender"`
	Nonce                string `json:"nonce"`
	InitCode             string `json:"initCode"`
	CallData             string `json:"callData"`
	CallGasLimit         string `json:"callGasLimit"`
	VerificationGasLimit string `json:"verificationGasLimit"`
	PreVerificationGas   string `json:"preVerificationGas"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	PaymasterAndData     string `json:"paymasterAndData"`
	Signature            string `json:"signature"`
}

func encodeBig(v *big.Int) string {
	if v == nil {
		return ""
	}
	return hexutil.EncodeBig(v)
}

// Hexlify encodes every field uniformly. Unresolved numbers stay empty so
// Validate can report them.
func (s *Struct) Hexlify() Request {
	req := Request{
		Nonce:                encodeBig(s.Nonce),
		InitCode:             hexutil.Encode(s.InitCode),
		CallData:             hexutil.Encode(s.CallData),
		CallGasLimit:         encodeBig(s.CallGasLimit),
		VerificationGasLimit: encodeBig(s.VerificationGasLimit),
		PreVerificationGas:   encodeBig(s.PreVerificationGas),
		MaxFeePerGas:         encodeBig(s.MaxFeePerGas),
		MaxPriorityFeePerGas: encodeBig(s.MaxPriorityFeePerGas),
		PaymasterAndData:     hexutil.Encode(s.PaymasterAndData),
		Signature:            hexutil.Encode(s.Signature),
	}
	if s.Sender != nil {
		req.Sender = s.Sender.Hex()
	}
	return req
}

// ValidationError is returned when an assembled request is missing gas or fee
// fields. Snapshot holds the indented JSON of the whole request.
type ValidationError struct {
	Missing  []string
	Snapshot string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Request is missing parameters %v. All properties on UserOperationStruct must be set. uo: %s", e.Missing, e.Snapshot)
}

// Validate checks the fields bundlers treat as optional during estimation.
// A zero value ("0x0") is accepted, an empty one is not.
func Validate(req Request) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"callGasLimit", req.CallGasLimit},
		{"maxFeePerGas", req.MaxFeePerGas},
		{"maxPriorityFeePerGas", req.MaxPriorityFeePerGas},
		{"preVerificationGas", req.PreVerificationGas},
		{"verificationGasLimit", req.VerificationGasLimit},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	snapshot, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		snapshot = []byte(fmt.Sprintf("%+v", req))
	}
	return &ValidationError{Missing: missing, Snapshot: string(snapshot)}
}

// UserOperation decodes the request into its concrete form.
func (r Request) UserOperation() (*UserOperation, error) {
	if !common.IsHexAddress(r.Sender) {
		return nil, fmt.Errorf("invalid sender %q", r.Sender)
	}
	op := &UserOperation{Sender: common.HexToAddress(r.Sender)}

	for _, f := range []struct {
		name  string
		value string
		dst   **big.Int
	}{
		{"nonce", r.Nonce, &op.Nonce},
		{"callGasLimit", r.CallGasLimit, &op.CallGasLimit},
		{"verificationGasLimit", r.VerificationGasLimit, &op.VerificationGasLimit},
		{"preVerificationGas", r.PreVerificationGas, &op.PreVerificationGas},
		{"maxFeePerGas", r.MaxFeePerGas, &op.MaxFeePerGas},
		{"maxPriorityFeePerGas", r.MaxPriorityFeePerGas, &op.MaxPriorityFeePerGas},
	} {
		v, err := hexutil.DecodeBig(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = v
	}

	for _, f := range []struct {
		name  string
		value string
		dst   *[]byte
	}{
		{"initCode", r.InitCode, &op.InitCode},
		{"callData", r.CallData, &op.CallData},
		{"paymasterAndData", r.PaymasterAndData, &op.PaymasterAndData},
		{"signature", r.Signature, &op.Signature},
	} {
		v, err := hexutil.Decode(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = v
	}
	return op, nil
}

// HashRequest computes the user operation hash of a validated request.
func HashRequest(req Request, entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	op, err := req.UserOperation()
	if err != nil {
		return common.Hash{}, err
	}
	return op.GetUserOpHash(entryPoint, chainID)
}
