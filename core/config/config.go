package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"

	"github.com/AvaProtocol/aa-provider/core/chainio/signer"
	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/paymaster"
)

const (
	TransportResty = "resty"
	TransportGeth  = "geth"

	// OwnerKeyEnv overrides owner_private_key so keys can stay out of config files.
	OwnerKeyEnv = "AA_OWNER_PRIVATE_KEY"
)

// Config is the resolved configuration of the provider CLI.
type Config struct {
	Environment sdklogging.LogLevel
	Logger      sdklogging.Logger

	ChainID    int64
	EntryPoint common.Address

	EthRpcUrl        string
	BundlerUrl       string
	BundlerTransport string
	BundlerHeaders   map[string]string

	OwnerKey       *ecdsa.PrivateKey
	OwnerAddress   common.Address
	FactoryAddress common.Address
	AccountSalt    *big.Int

	MaxPriorityFeeBufferPercent *big.Int
	// FeeMode is nil when the chain's default policy applies.
	FeeMode *eip1559.GasFeeMode

	// Paymaster is nil when operations are not sponsored.
	Paymaster *PaymasterConfig
}

type PaymasterConfig struct {
	URL        string
	EntryPoint common.Address
	ChainID    *int64
	SponsorSig string
	Headers    map[string]string
	// Context is nil when the gas manager should build the pay as you go default.
	Context paymaster.Context
}

// These are read from configPath
type ConfigRaw struct {
	Environment sdklogging.LogLevel `yaml:"environment" validate:"omitempty,oneof=production development"`

	ChainID    int64  `yaml:"chain_id" validate:"required,gt=0"`
	EntryPoint string `yaml:"entrypoint" validate:"omitempty,eth_addr"`

	EthRpcUrl        string            `yaml:"eth_rpc_url" validate:"required,url"`
	BundlerUrl       string            `yaml:"bundler_url" validate:"required,url"`
	BundlerTransport string            `yaml:"bundler_transport" validate:"omitempty,oneof=resty geth"`
	BundlerHeaders   map[string]string `yaml:"bundler_headers"`

	OwnerPrivateKey string `yaml:"owner_private_key" validate:"required"`
	FactoryAddress  string `yaml:"factory_address" validate:"omitempty,eth_addr"`
	AccountSalt     int64  `yaml:"account_salt" validate:"gte=0"`

	MaxPriorityFeeBufferPercent *int64 `yaml:"max_priority_fee_buffer_percent" validate:"omitempty,gte=0"`
	FeeStrategy                 string `yaml:"fee_strategy" validate:"omitempty,oneof=DEFAULT FIXED BASE_FEE_PERCENTAGE PRIORITY_FEE_PERCENTAGE"`
	FeeValue                    int64  `yaml:"fee_value" validate:"gte=0"`

	Paymaster *PaymasterConfigRaw `yaml:"paymaster"`
}

type PaymasterConfigRaw struct {
	URL        string                 `yaml:"url" validate:"required,url"`
	EntryPoint string                 `yaml:"entrypoint" validate:"omitempty,eth_addr"`
	ChainID    *int64                 `yaml:"chain_id" validate:"omitempty,gt=0"`
	SponsorSig string                 `yaml:"sponsor_sig"`
	Headers    map[string]string      `yaml:"headers"`
	Context    map[string]interface{} `yaml:"context"`
}

// ReadConfigRaw loads and validates a yaml config file. Unknown keys are rejected.
func ReadConfigRaw(configFilePath string) (*ConfigRaw, error) {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configFilePath, err)
	}

	var configRaw ConfigRaw
	if err := yaml.UnmarshalStrict(data, &configRaw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configFilePath, err)
	}
	if key := os.Getenv(OwnerKeyEnv); key != "" {
		configRaw.OwnerPrivateKey = key
	}

	if err := validator.New().Struct(&configRaw); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFilePath, err)
	}
	return &configRaw, nil
}

// NewConfig parses the config file and builds the logger.
func NewConfig(configFilePath string) (*Config, error) {
	configRaw, err := ReadConfigRaw(configFilePath)
	if err != nil {
		return nil, err
	}
	return configRaw.Build()
}

func (r *ConfigRaw) Build() (*Config, error) {
	environment := r.Environment
	if environment == "" {
		environment = sdklogging.Production
	}
	logger, err := sdklogging.NewZapLogger(environment)
	if err != nil {
		return nil, err
	}

	ownerKey, err := signer.ParsePrivateKey(r.OwnerPrivateKey)
	if err != nil {
		logger.Error("Cannot parse owner private key", "err", err)
		return nil, err
	}

	transport := r.BundlerTransport
	if transport == "" {
		transport = TransportResty
	}

	config := &Config{
		Environment:      environment,
		Logger:           logger,
		ChainID:          r.ChainID,
		EntryPoint:       common.HexToAddress(r.EntryPoint),
		EthRpcUrl:        r.EthRpcUrl,
		BundlerUrl:       r.BundlerUrl,
		BundlerTransport: transport,
		BundlerHeaders:   r.BundlerHeaders,
		OwnerKey:         ownerKey,
		OwnerAddress:     crypto.PubkeyToAddress(ownerKey.PublicKey),
		FactoryAddress:   common.HexToAddress(r.FactoryAddress),
		AccountSalt:      big.NewInt(r.AccountSalt),
	}

	if r.MaxPriorityFeeBufferPercent != nil {
		config.MaxPriorityFeeBufferPercent = big.NewInt(*r.MaxPriorityFeeBufferPercent)
	}

	if r.FeeStrategy != "" {
		strategy, err := eip1559.ParseStrategy(r.FeeStrategy)
		if err != nil {
			return nil, err
		}
		config.FeeMode = &eip1559.GasFeeMode{Strategy: strategy, Value: big.NewInt(r.FeeValue)}
	}

	if r.Paymaster != nil {
		pm, err := r.Paymaster.build(r.ChainID)
		if err != nil {
			return nil, err
		}
		config.Paymaster = pm
	}

	logger.Debug("config loaded",
		"chain_id", config.ChainID,
		"bundler_transport", config.BundlerTransport,
		"owner", config.OwnerAddress.Hex(),
		"sponsored", config.Paymaster != nil)
	return config, nil
}

func (r *PaymasterConfigRaw) build(chainID int64) (*PaymasterConfig, error) {
	pmChainID := r.ChainID
	if pmChainID == nil {
		pmChainID = &chainID
	}

	pmCtx, err := decodePaymasterContext(r.Context)
	if err != nil {
		return nil, err
	}

	return &PaymasterConfig{
		URL:        r.URL,
		EntryPoint: common.HexToAddress(r.EntryPoint),
		ChainID:    pmChainID,
		SponsorSig: r.SponsorSig,
		Headers:    r.Headers,
		Context:    pmCtx,
	}, nil
}
