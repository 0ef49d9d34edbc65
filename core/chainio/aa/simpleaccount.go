package aa

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AvaProtocol/aa-provider/core/chainio/signer"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/provider"
	"github.com/AvaProtocol/aa-provider/pkg/logger"
)

type SimpleAccountConfig struct {
	Owner      *ecdsa.PrivateKey
	Factory    common.Address
	EntryPoint common.Address
	Salt       *big.Int

	// Client is usually an *ethclient.Client.
	Client bind.ContractCaller

	// Cache holds the counterfactual address and deployment status. A private
	// cache is created when nil.
	Cache  *bigcache.BigCache
	Logger logger.Logger
}

// SimpleAccount is the eth-infinitism SimpleAccount owned by a single ECDSA key.
type SimpleAccount struct {
	owner      *ecdsa.PrivateKey
	ownerAddr  common.Address
	factory    common.Address
	entryPoint common.Address
	salt       *big.Int
	client     bind.ContractCaller
	cache      *bigcache.BigCache
	logger     logger.Logger
}

var _ provider.Account = (*SimpleAccount)(nil)

func NewCache(ctx context.Context) (*bigcache.BigCache, error) {
	return bigcache.New(ctx, bigcache.Config{
		// number of shards (must be a power of 2)
		Shards:             16,
		LifeWindow:         60 * time.Minute,
		CleanWindow:        5 * time.Minute,
		MaxEntriesInWindow: 1024,
		MaxEntrySize:       64,
	})
}

func NewSimpleAccount(cfg SimpleAccountConfig) (*SimpleAccount, error) {
	if cfg.Owner == nil {
		return nil, errors.New("simple account requires an owner key")
	}
	if cfg.Client == nil {
		return nil, errors.New("simple account requires a chain client")
	}

	factory := cfg.Factory
	if factory == (common.Address{}) {
		factory = DefaultFactoryAddress
	}
	entryPoint := cfg.EntryPoint
	if entryPoint == (common.Address{}) {
		entryPoint = EntrypointAddress
	}
	salt := cfg.Salt
	if salt == nil {
		salt = defaultSalt
	}

	cache := cfg.Cache
	if cache == nil {
		var err error
		cache, err = NewCache(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create account cache: %w", err)
		}
	}

	return &SimpleAccount{
		owner:      cfg.Owner,
		ownerAddr:  crypto.PubkeyToAddress(cfg.Owner.PublicKey),
		factory:    factory,
		entryPoint: entryPoint,
		salt:       new(big.Int).Set(salt),
		client:     cfg.Client,
		cache:      cache,
		logger:     logger.EnsureLogger(cfg.Logger),
	}, nil
}

func (a *SimpleAccount) Owner() common.Address {
	return a.ownerAddr
}

func (a *SimpleAccount) senderKey() string {
	return fmt.Sprintf("sender:%s:%s:%s", a.factory.Hex(), a.ownerAddr.Hex(), a.salt.String())
}

func deployedKey(sender common.Address) string {
	return "deployed:" + sender.Hex()
}

// GetAddress asks the factory for the counterfactual address. The answer
// never changes for a given factory, owner and salt.
func (a *SimpleAccount) GetAddress(ctx context.Context) (common.Address, error) {
	if cached, err := a.cache.Get(a.senderKey()); err == nil {
		return common.BytesToAddress(cached), nil
	}

	var sender common.Address
	if err := a.call(ctx, factoryABI, a.factory, "getAddress", &sender, a.ownerAddr, a.salt); err != nil {
		return common.Address{}, fmt.Errorf("failed to resolve sender address: %w", err)
	}
	if err := a.cache.Set(a.senderKey(), sender.Bytes()); err != nil {
		a.logger.Warn("failed to cache sender address", "sender", sender.Hex(), "error", err)
	}
	return sender, nil
}

// GetInitCode is empty once the account has been deployed.
func (a *SimpleAccount) GetInitCode(ctx context.Context) ([]byte, error) {
	sender, err := a.GetAddress(ctx)
	if err != nil {
		return nil, err
	}

	deployed, err := a.isDeployed(ctx, sender)
	if err != nil {
		return nil, err
	}
	if deployed {
		return []byte{}, nil
	}
	return GetInitCodeForFactory(a.ownerAddr, a.factory, a.salt)
}

func (a *SimpleAccount) isDeployed(ctx context.Context, sender common.Address) (bool, error) {
	if _, err := a.cache.Get(deployedKey(sender)); err == nil {
		return true, nil
	}

	code, err := a.client.CodeAt(ctx, sender, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check deployment of %s: %w", sender.Hex(), err)
	}
	if len(code) == 0 {
		return false, nil
	}
	if err := a.cache.Set(deployedKey(sender), []byte{1}); err != nil {
		a.logger.Warn("failed to cache deployment status", "sender", sender.Hex(), "error", err)
	}
	return true, nil
}

// GetNonce reads the EntryPoint nonce for key 0.
func (a *SimpleAccount) GetNonce(ctx context.Context) (*big.Int, error) {
	sender, err := a.GetAddress(ctx)
	if err != nil {
		return nil, err
	}

	var nonce *big.Int
	if err := a.call(ctx, entrypointABI, a.entryPoint, "getNonce", &nonce, sender, new(big.Int)); err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	return nonce, nil
}

func (a *SimpleAccount) EncodeExecute(_ context.Context, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	return PackExecute(target, value, data)
}

func (a *SimpleAccount) EncodeBatchExecute(_ context.Context, calls []provider.Call) ([]byte, error) {
	return PackExecuteBatch(calls)
}

func (a *SimpleAccount) GetDummySignature(context.Context) ([]byte, error) {
	return common.CopyBytes(dummySignature), nil
}

// SignMessage produces the EIP-191 signature SimpleAccount validates against
// the user operation hash.
func (a *SimpleAccount) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	return signer.SignMessage(a.owner, msg)
}

func (a *SimpleAccount) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, out interface{}, args ...interface{}) error {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return err
	}
	raw, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s: empty response from %s", method, to.Hex())
	}
	return contractABI.UnpackIntoInterface(out, method, raw)
}
