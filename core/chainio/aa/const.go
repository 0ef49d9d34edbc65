package aa

import (
	"github.com/ethereum/go-ethereum/common"
)

var (
	// EntryPoint v0.6 and the eth-infinitism SimpleAccountFactory deployed next to it.
	EntrypointAddress     = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	DefaultFactoryAddress = common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")

	// dummySignature is a well formed ECDSA signature that fails recovery, so
	// bundlers can simulate validation with realistic calldata costs.
	dummySignature = common.FromHex("0xfffffffffffffffffffffffffffffff0000000000000000000000000000000007aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1c")
)

const (
	simpleFactoryABI = `[
	{"type":"function","name":"createAccount","stateMutability":"nonpayable",
	 "inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],
	 "outputs":[{"name":"ret","type":"address"}]},
	{"type":"function","name":"getAddress","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

	simpleAccountABI = `[
	{"type":"function","name":"execute","stateMutability":"nonpayable",
	 "inputs":[{"name":"dest","type":"address"},{"name":"value","type":"uint256"},{"name":"func","type":"bytes"}],
	 "outputs":[]},
	{"type":"function","name":"executeBatch","stateMutability":"nonpayable",
	 "inputs":[{"name":"dest","type":"address[]"},{"name":"func","type":"bytes[]"}],
	 "outputs":[]}
]`

	entryPointABI = `[
	{"type":"function","name":"getNonce","stateMutability":"view",
	 "inputs":[{"name":"sender","type":"address"},{"name":"key","type":"uint192"}],
	 "outputs":[{"name":"nonce","type":"uint256"}]}
]`
)
