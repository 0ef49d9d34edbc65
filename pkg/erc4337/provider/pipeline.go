package provider

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/AvaProtocol/aa-provider/pkg/erc4337/userop"
	"github.com/AvaProtocol/aa-provider/pkg/logger"
	"github.com/AvaProtocol/aa-provider/pkg/timekeeper"
)

type SendResult struct {
	// Hash is the user operation hash returned by the bundler.
	Hash    string
	Request userop.Request
}

// run tracks a single pass through the pipeline.
type run struct {
	p     *Provider
	id    string
	log   logger.Logger
	state State
	watch *timekeeper.Stopwatch
}

func (p *Provider) newRun() *run {
	id := ulid.Make().String()
	r := &run{
		p:     p,
		id:    id,
		log:   logger.ForUserOp(p.logger, id),
		state: StateInit,
		watch: timekeeper.NewStopwatch(),
	}
	r.notify(StateInit, r.watch.Started())
	return r
}

func (r *run) notify(state State, at time.Time) {
	if r.p.observer != nil {
		r.p.observer(state, at)
	}
}

func (r *run) transition(to State) {
	d, now := r.watch.Lap()
	r.p.metrics.ObserveStage(string(to), d)
	r.state = to
	r.log.Debug("user operation stage complete", "state", to)
	r.notify(to, now)
}

func (r *run) fail(to State, err error) error {
	r.log.Error("user operation failed", "from", r.state, "to", to, "error", err)
	r.state = StateFailed
	r.p.metrics.IncUserOp(string(StateFailed))
	r.notify(StateFailed, time.Now())
	return &StageError{State: to, Err: err}
}

func (r *run) step(to State, fn func() error) error {
	if err := fn(); err != nil {
		return r.fail(to, err)
	}
	r.transition(to)
	return nil
}

// SendUserOperation builds a user operation for intent, signs it with the
// connected account and submits it to the bundler. Nothing is retried; a
// failed run must be started again from scratch.
func (p *Provider) SendUserOperation(ctx context.Context, intent Intent) (*SendResult, error) {
	r := p.newRun()
	uo, err := r.build(ctx, intent, p.stages.PaymasterData)
	if err != nil {
		return nil, err
	}

	var req userop.Request
	if err := r.step(StateValidated, func() error {
		req = uo.Hexlify()
		return userop.Validate(req)
	}); err != nil {
		return nil, err
	}

	if err := r.step(StateSigned, func() error {
		hash, err := userop.HashRequest(req, p.entryPoint, big.NewInt(p.chain.ID))
		if err != nil {
			return err
		}
		sig, err := p.account.SignMessage(ctx, hash.Bytes())
		if err != nil {
			return fmt.Errorf("failed to sign user operation: %w", err)
		}
		req.Signature = hexutil.Encode(sig)
		return nil
	}); err != nil {
		return nil, err
	}

	var hash string
	if err := r.step(StateSubmitted, func() error {
		var err error
		hash, err = p.rpc.SendUserOperation(ctx, req, p.entryPoint)
		return err
	}); err != nil {
		return nil, err
	}

	p.metrics.IncUserOp(string(StateSubmitted))
	r.log.Info("user operation submitted", "hash", hash, "sender", req.Sender, "nonce", req.Nonce)
	return &SendResult{Hash: hash, Request: req}, nil
}

// EstimateCredit runs the pipeline up to the paymaster and asks the paymaster
// estimator for a quote instead of sponsorship. The result is never signed
// or submitted.
func (p *Provider) EstimateCredit(ctx context.Context, intent Intent) (*userop.Request, error) {
	if p.stages.PaymasterEstimator == nil {
		return nil, ErrNoPaymasterEstimator
	}

	r := p.newRun()
	uo, err := r.build(ctx, intent, p.stages.PaymasterEstimator)
	if err != nil {
		return nil, err
	}
	req := uo.Hexlify()
	r.log.Info("credit estimated", "sender", req.Sender, "paymaster_and_data", req.PaymasterAndData)
	return &req, nil
}

// build takes a fresh struct from INIT to PAYMASTER_RESOLVED. The fee stage
// always completes before gas estimation starts.
func (r *run) build(ctx context.Context, intent Intent, paymaster Middleware) (*userop.Struct, error) {
	p := r.p
	if p.account == nil {
		return nil, r.fail(StateAccountResolved, &ConfigurationError{
			Reason: "connect an account before sending user operations",
			Err:    ErrAccountNotConnected,
		})
	}

	uo := &userop.Struct{}
	if err := r.step(StateAccountResolved, func() error {
		return resolveAccount(ctx, p.account, intent, uo)
	}); err != nil {
		return nil, err
	}
	if err := r.step(StateFeesSet, func() error {
		return p.stages.FeeData(ctx, uo)
	}); err != nil {
		return nil, err
	}
	if err := r.step(StateGasEstimated, func() error {
		return p.stages.GasEstimator(ctx, uo)
	}); err != nil {
		return nil, err
	}
	if err := r.step(StatePaymasterResolved, func() error {
		return paymaster(ctx, uo)
	}); err != nil {
		return nil, err
	}
	return uo, nil
}

// resolveAccount queries the account concurrently. uo is only written once
// every query succeeded.
func resolveAccount(ctx context.Context, account Account, intent Intent, uo *userop.Struct) error {
	var (
		initCode  []byte
		sender    common.Address
		nonce     *big.Int
		callData  []byte
		signature []byte
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		initCode, err = account.GetInitCode(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sender, err = account.GetAddress(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		nonce, err = account.GetNonce(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		callData, err = encodeIntent(gctx, account, intent)
		return err
	})
	g.Go(func() error {
		var err error
		signature, err = account.GetDummySignature(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	uo.InitCode = initCode
	uo.Sender = &sender
	uo.Nonce = nonce
	uo.CallData = callData
	uo.Signature = signature
	return nil
}

func encodeIntent(ctx context.Context, account Account, intent Intent) ([]byte, error) {
	switch in := intent.(type) {
	case Call:
		value := in.Value
		if value == nil {
			value = new(big.Int)
		}
		return account.EncodeExecute(ctx, in.Target, value, in.Data)
	case Batch:
		if len(in) == 0 {
			return nil, ErrEmptyBatch
		}
		return account.EncodeBatchExecute(ctx, []Call(in))
	default:
		return nil, fmt.Errorf("unsupported intent %T", intent)
	}
}
