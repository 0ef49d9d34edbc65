package chains

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
)

func TestPolicyForSupportedChains(t *testing.T) {
	known := []eip1559.GasFeeStrategy{
		eip1559.Default,
		eip1559.Fixed,
		eip1559.BaseFeePercentage,
		eip1559.PriorityFeePercentage,
	}

	r := Default()
	for _, c := range SupportedChains {
		mode := r.PolicyFor(c.ID)
		assert.Contains(t, known, mode.Strategy, "chain %d", c.ID)
		require.NotNil(t, mode.Value)
	}
}

func TestPolicyForKnownEntries(t *testing.T) {
	r := Default()

	assert.Equal(t, eip1559.PriorityFeePercentage, r.PolicyFor(Mainnet.ID).Strategy)
	assert.Equal(t, big.NewInt(57), r.PolicyFor(Mainnet.ID).Value)
	assert.Equal(t, big.NewInt(25), r.PolicyFor(Polygon.ID).Value)
	assert.Equal(t, eip1559.BaseFeePercentage, r.PolicyFor(Arbitrum.ID).Strategy)
	assert.Equal(t, eip1559.Fixed, r.PolicyFor(BSC.ID).Strategy)
	assert.Equal(t, 0, r.PolicyFor(BSC.ID).Value.Sign())
}

func TestPolicyForUnmappedChain(t *testing.T) {
	r := Default()

	// supported but without an explicit policy
	assert.Equal(t, eip1559.DefaultMode(), r.PolicyFor(Linea.ID))
	// not supported at all
	assert.Equal(t, eip1559.DefaultMode(), r.PolicyFor(31337))
}

func TestResolve(t *testing.T) {
	r := Default()

	c, ok := r.Resolve(59144)
	require.True(t, ok)
	assert.Equal(t, "Linea", c.Name)
	assert.Equal(t, []string{"https://rpc.linea.build"}, c.RPCURLs)

	_, ok = r.Resolve(31337)
	assert.False(t, ok)
}

func TestRegistryIsIsolatedFromInputs(t *testing.T) {
	strategies := map[int64]eip1559.GasFeeMode{
		1: {Strategy: eip1559.Fixed, Value: big.NewInt(3)},
	}
	r := NewRegistry([]Chain{Mainnet}, strategies)

	strategies[1].Value.SetInt64(99)
	r.PolicyFor(1).Value.SetInt64(42)

	assert.Equal(t, big.NewInt(3), r.PolicyFor(1).Value)
}

func TestChainsSorted(t *testing.T) {
	list := Default().Chains()
	require.Len(t, list, len(SupportedChains))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}
