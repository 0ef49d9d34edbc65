package provider

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/bundler"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
)

var (
	testSender    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testTarget    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	testDummySig  = []byte{0xde, 0xad}
	testSignature = []byte{0x51, 0x6e}
)

type fakeAccount struct {
	mu        sync.Mutex
	nonceErr  error
	batches   [][]Call
	executes  []Call
	signedMsg []byte
}

func (a *fakeAccount) GetInitCode(ctx context.Context) ([]byte, error) {
	return []byte{}, nil
}

func (a *fakeAccount) GetAddress(ctx context.Context) (common.Address, error) {
	return testSender, nil
}

func (a *fakeAccount) GetNonce(ctx context.Context) (*big.Int, error) {
	if a.nonceErr != nil {
		return nil, a.nonceErr
	}
	return big.NewInt(0), nil
}

func (a *fakeAccount) EncodeExecute(ctx context.Context, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.executes = append(a.executes, Call{Target: target, Value: value, Data: data})
	return append([]byte{0x01}, data...), nil
}

func (a *fakeAccount) EncodeBatchExecute(ctx context.Context, calls []Call) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batches = append(a.batches, calls)
	return []byte{0x02, byte(len(calls))}, nil
}

func (a *fakeAccount) GetDummySignature(ctx context.Context) ([]byte, error) {
	return testDummySig, nil
}

func (a *fakeAccount) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signedMsg = msg
	return testSignature, nil
}

type fakeRPC struct {
	mu sync.Mutex

	baseFee  *big.Int
	tip      *big.Int
	estimate *bundler.GasEstimation
	sendErr  error

	calls          int
	estimateReqs   []userop.Request
	sent           []userop.Request
	sentEntryPoint common.Address
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		baseFee: big.NewInt(100),
		tip:     big.NewInt(10),
		estimate: &bundler.GasEstimation{
			PreVerificationGas:   big.NewInt(1),
			VerificationGasLimit: big.NewInt(2),
			CallGasLimit:         big.NewInt(3),
		},
	}
}

func (f *fakeRPC) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRPC) EstimateUserOperationGas(ctx context.Context, req userop.Request, entryPoint common.Address) (*bundler.GasEstimation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.estimateReqs = append(f.estimateReqs, req)
	return f.estimate, nil
}

func (f *fakeRPC) SendUserOperation(ctx context.Context, req userop.Request, entryPoint common.Address) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, req)
	f.sentEntryPoint = entryPoint
	return "0xhash", nil
}

func (f *fakeRPC) BaseFee(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.baseFee, nil
}

func (f *fakeRPC) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tip, nil
}

type transition struct {
	state State
	at    time.Time
}

type recorder struct {
	transitions []transition
}

func (r *recorder) observe(state State, at time.Time) {
	r.transitions = append(r.transitions, transition{state, at})
}

func (r *recorder) states() []State {
	out := make([]State, 0, len(r.transitions))
	for _, t := range r.transitions {
		out = append(out, t.state)
	}
	return out
}

func (r *recorder) at(state State) time.Time {
	for _, t := range r.transitions {
		if t.state == state {
			return t.at
		}
	}
	return time.Time{}
}

type fakeMetrics struct {
	mu       sync.Mutex
	stages   []string
	outcomes []string
}

func (m *fakeMetrics) ObserveStage(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *fakeMetrics) IncUserOp(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, status)
}
