package provider

import "time"

type State string

const (
	StateInit              State = "INIT"
	StateAccountResolved   State = "ACCOUNT_RESOLVED"
	StateFeesSet           State = "FEES_SET"
	StateGasEstimated      State = "GAS_ESTIMATED"
	StatePaymasterResolved State = "PAYMASTER_RESOLVED"
	StateValidated         State = "VALIDATED"
	StateSigned            State = "SIGNED"
	StateSubmitted         State = "SUBMITTED"
	StateFailed            State = "FAILED"
)

// Observer is notified of every state a pipeline run enters.
type Observer func(state State, at time.Time)

// Metrics receives stage timings and final outcomes. metrics.UserOpMetrics
// implements it.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	IncUserOp(status string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, time.Duration) {}
func (noopMetrics) IncUserOp(string)                   {}
