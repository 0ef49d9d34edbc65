package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
	"github.com/AvaProtocol/aa-provider/pkg/erc4337/paymaster"
)

const testOwnerKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewConfig(t *testing.T) {
	path := writeConfig(t, `
environment: development
chain_id: 80001
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org/rpc
bundler_headers:
  X-Api-Key: secret
owner_private_key: `+testOwnerKey+`
account_salt: 3
max_priority_fee_buffer_percent: 10
fee_strategy: FIXED
fee_value: 2
paymaster:
  url: https://paymaster.example.org
  sponsor_sig: sig
  context:
    type: payg
    chainId: 80001
    sponsorSig: other
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(80001), cfg.ChainID)
	assert.Equal(t, TransportResty, cfg.BundlerTransport)
	assert.Equal(t, "secret", cfg.BundlerHeaders["X-Api-Key"])
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), cfg.OwnerAddress)
	assert.Equal(t, "3", cfg.AccountSalt.String())
	assert.Equal(t, "10", cfg.MaxPriorityFeeBufferPercent.String())
	require.NotNil(t, cfg.FeeMode)
	assert.Equal(t, eip1559.Fixed, cfg.FeeMode.Strategy)
	assert.Equal(t, "2", cfg.FeeMode.Value.String())
	assert.Equal(t, common.Address{}, cfg.EntryPoint)
	assert.NotNil(t, cfg.Logger)

	require.NotNil(t, cfg.Paymaster)
	assert.Equal(t, "https://paymaster.example.org", cfg.Paymaster.URL)
	require.NotNil(t, cfg.Paymaster.ChainID)
	assert.Equal(t, int64(80001), *cfg.Paymaster.ChainID)

	payg, ok := cfg.Paymaster.Context.(paymaster.PayAsYouGo)
	require.True(t, ok)
	assert.Equal(t, "other", payg.SponsorSig)
	require.NotNil(t, payg.ChainID)
	assert.Equal(t, int64(80001), *payg.ChainID)
}

func TestNewConfigMinimal(t *testing.T) {
	path := writeConfig(t, `
chain_id: 1
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org
bundler_transport: geth
owner_private_key: `+testOwnerKey[2:]+`
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, TransportGeth, cfg.BundlerTransport)
	assert.Nil(t, cfg.FeeMode)
	assert.Nil(t, cfg.Paymaster)
	assert.Nil(t, cfg.MaxPriorityFeeBufferPercent)
	assert.Equal(t, "0", cfg.AccountSalt.String())
}

func TestOwnerKeyFromEnv(t *testing.T) {
	t.Setenv(OwnerKeyEnv, testOwnerKey)
	path := writeConfig(t, `
chain_id: 1
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), cfg.OwnerAddress)
}

func TestReadConfigRawRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"missing bundler": `
chain_id: 1
eth_rpc_url: https://rpc.example.org
owner_private_key: abc
`,
		"unknown transport": `
chain_id: 1
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org
bundler_transport: carrier-pigeon
owner_private_key: abc
`,
		"unknown key": `
chain_id: 1
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org
owner_private_key: abc
bundler: oops
`,
		"bad strategy": `
chain_id: 1
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org
owner_private_key: abc
fee_strategy: CHEAP
`,
		"paymaster without url": `
chain_id: 1
eth_rpc_url: https://rpc.example.org
bundler_url: https://bundler.example.org
owner_private_key: abc
paymaster:
  sponsor_sig: sig
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadConfigRaw(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestReadConfigRawMissingFile(t *testing.T) {
	_, err := ReadConfigRaw(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestDecodePaymasterContext(t *testing.T) {
	pmCtx, err := decodePaymasterContext(nil)
	require.NoError(t, err)
	assert.Nil(t, pmCtx)

	pmCtx, err = decodePaymasterContext(map[string]interface{}{
		"type":  "erc20token",
		"token": "0x00000000000000000000000000000000000000cc",
	})
	require.NoError(t, err)
	assert.Equal(t, paymaster.ERC20Token{Token: common.HexToAddress("0xcc")}, pmCtx)

	_, err = decodePaymasterContext(map[string]interface{}{"type": "erc20token", "token": "nope"})
	assert.ErrorContains(t, err, "not an address")

	_, err = decodePaymasterContext(map[string]interface{}{"type": "barter"})
	assert.ErrorContains(t, err, "unknown type")

	_, err = decodePaymasterContext(map[string]interface{}{"type": "payg", "tip": 1})
	assert.Error(t, err)
}
