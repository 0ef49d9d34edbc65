package provider

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedChain     = errors.New("unsupported chain")
	ErrAccountNotConnected  = errors.New("account not connected")
	ErrMissingRPC           = errors.New("no rpc client configured")
	ErrNoPaymasterEstimator = errors.New("no paymaster estimator configured")
	ErrEmptyBatch           = errors.New("batch has no calls")
)

// ConfigurationError is raised synchronously, before any network activity.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid provider configuration: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// StageError reports the stage a user operation failed in. State is the
// state the pipeline was moving to.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("user operation failed before %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
