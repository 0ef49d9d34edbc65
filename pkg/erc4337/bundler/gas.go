package bundler

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type GasEstimation struct {
	PreVerificationGas   *big.Int
	VerificationGasLimit *big.Int
	CallGasLimit         *big.Int
}

// gasEstimationResult accepts both spellings of the verification limit; the
// stackup bundler answers with verificationGas.
type gasEstimationResult struct {
	PreVerificationGas   *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit *hexutil.Big `json:"verificationGasLimit"`
	VerificationGas      *hexutil.Big `json:"verificationGas"`
	CallGasLimit         *hexutil.Big `json:"callGasLimit"`
}

func (r *gasEstimationResult) toEstimation() *GasEstimation {
	verification := r.VerificationGasLimit
	if verification == nil {
		verification = r.VerificationGas
	}
	return &GasEstimation{
		PreVerificationGas:   r.PreVerificationGas.ToInt(),
		VerificationGasLimit: verification.ToInt(),
		CallGasLimit:         r.CallGasLimit.ToInt(),
	}
}
