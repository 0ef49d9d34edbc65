// Package chains holds the static table of chains a provider can be built for
// and the fee policy each of them runs.
package chains

import (
	"math/big"

	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
)

type NativeCurrency struct {
	Name     string
	Symbol   string
	Decimals int
}

// Chain is the metadata of a supported network.
type Chain struct {
	ID             int64
	Name           string
	Network        string
	NativeCurrency NativeCurrency
	RPCURLs        []string
	Testnet        bool
}

var ether = NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}

var (
	Mainnet = Chain{ID: 1, Name: "Ethereum", Network: "homestead", NativeCurrency: ether,
		RPCURLs: []string{"https://cloudflare-eth.com"}}
	Goerli = Chain{ID: 5, Name: "Goerli", Network: "goerli", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18},
		RPCURLs:        []string{"https://rpc.ankr.com/eth_goerli"}}
	Optimism = Chain{ID: 10, Name: "OP Mainnet", Network: "optimism", NativeCurrency: ether,
		RPCURLs: []string{"https://mainnet.optimism.io"}}
	OptimismGoerli = Chain{ID: 420, Name: "Optimism Goerli", Network: "optimism-goerli", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18},
		RPCURLs:        []string{"https://goerli.optimism.io"}}
	BSC = Chain{ID: 56, Name: "BNB Smart Chain", Network: "bsc",
		NativeCurrency: NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18},
		RPCURLs:        []string{"https://rpc.ankr.com/bsc"}}
	BSCTestnet = Chain{ID: 97, Name: "Binance Smart Chain Testnet", Network: "bsc-testnet", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18},
		RPCURLs:        []string{"https://data-seed-prebsc-1-s1.binance.org:8545"}}
	Polygon = Chain{ID: 137, Name: "Polygon", Network: "matic",
		NativeCurrency: NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: 18},
		RPCURLs:        []string{"https://polygon-rpc.com"}}
	PolygonMumbai = Chain{ID: 80001, Name: "Polygon Mumbai", Network: "maticmum", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: 18},
		RPCURLs:        []string{"https://matic-mumbai.chainstacklabs.com"}}
	Arbitrum = Chain{ID: 42161, Name: "Arbitrum One", Network: "arbitrum", NativeCurrency: ether,
		RPCURLs: []string{"https://arb1.arbitrum.io/rpc"}}
	ArbitrumGoerli = Chain{ID: 421613, Name: "Arbitrum Goerli", Network: "arbitrum-goerli", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "Arbitrum Goerli Ether", Symbol: "AGOR", Decimals: 18},
		RPCURLs:        []string{"https://goerli-rollup.arbitrum.io/rpc"}}
	BaseGoerli = Chain{ID: 84531, Name: "Base Goerli", Network: "base-goerli", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18},
		RPCURLs:        []string{"https://goerli.base.org"}}
	LineaTestnet = Chain{ID: 59140, Name: "Linea Goerli Testnet", Network: "linea-testnet", Testnet: true,
		NativeCurrency: NativeCurrency{Name: "Linea Ether", Symbol: "ETH", Decimals: 18},
		RPCURLs:        []string{"https://rpc.goerli.linea.build"}}

	// Linea mainnet is not part of the upstream chain list, defined by hand.
	Linea = Chain{ID: 59144, Name: "Linea", Network: "linea",
		NativeCurrency: NativeCurrency{Name: "Ethereum", Symbol: "ETH", Decimals: 18},
		RPCURLs:        []string{"https://rpc.linea.build"}}
)

// SupportedChains lists every chain a provider accepts.
var SupportedChains = []Chain{
	BaseGoerli,
	PolygonMumbai,
	Polygon,
	Mainnet,
	Goerli,
	ArbitrumGoerli,
	Arbitrum,
	Optimism,
	OptimismGoerli,
	// not sure how bsc supports eip-1559
	BSC,
	BSCTestnet,
	LineaTestnet,
	Linea,
}

func strategy(s eip1559.GasFeeStrategy, value int64) eip1559.GasFeeMode {
	return eip1559.GasFeeMode{Strategy: s, Value: big.NewInt(value)}
}

// ChainFeeStrategies is the fee policy per chain id. Chains missing here run
// the DEFAULT strategy.
var ChainFeeStrategies = map[int64]eip1559.GasFeeMode{
	// testnets
	Goerli.ID:         strategy(eip1559.Fixed, 0),
	PolygonMumbai.ID:  strategy(eip1559.Fixed, 0),
	OptimismGoerli.ID: strategy(eip1559.Fixed, 0),
	ArbitrumGoerli.ID: strategy(eip1559.Fixed, 0),
	BSCTestnet.ID:     strategy(eip1559.Fixed, 0),
	LineaTestnet.ID:   strategy(eip1559.Fixed, 0),
	// mainnets
	Mainnet.ID:  strategy(eip1559.PriorityFeePercentage, 57),
	Polygon.ID:  strategy(eip1559.PriorityFeePercentage, 25),
	Optimism.ID: strategy(eip1559.BaseFeePercentage, 5),
	Arbitrum.ID: strategy(eip1559.BaseFeePercentage, 5),
	BSC.ID:      strategy(eip1559.Fixed, 0),
}
