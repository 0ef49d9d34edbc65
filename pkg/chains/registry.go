package chains

import (
	"math/big"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/AvaProtocol/aa-provider/pkg/eip1559"
)

// Registry resolves chain metadata and fee policy by chain id. It is never
// mutated after construction.
type Registry struct {
	chains     map[int64]Chain
	strategies map[int64]eip1559.GasFeeMode
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// NewRegistry copies its inputs so later changes to the slices and maps do not leak in.
func NewRegistry(chains []Chain, strategies map[int64]eip1559.GasFeeMode) *Registry {
	r := &Registry{
		chains:     make(map[int64]Chain, len(chains)),
		strategies: make(map[int64]eip1559.GasFeeMode, len(strategies)),
	}
	for _, c := range chains {
		r.chains[c.ID] = c
	}
	for id, mode := range strategies {
		if mode.Value != nil {
			mode.Value = new(big.Int).Set(mode.Value)
		}
		r.strategies[id] = mode
	}
	return r
}

// Default returns the process wide registry built from SupportedChains and ChainFeeStrategies.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(SupportedChains, ChainFeeStrategies)
	})
	return defaultRegistry
}

func (r *Registry) Resolve(chainID int64) (Chain, bool) {
	c, ok := r.chains[chainID]
	return c, ok
}

// PolicyFor falls back to DEFAULT/0 when the chain has no explicit entry.
func (r *Registry) PolicyFor(chainID int64) eip1559.GasFeeMode {
	mode, ok := r.strategies[chainID]
	if !ok {
		return eip1559.DefaultMode()
	}
	if mode.Value == nil {
		mode.Value = new(big.Int)
	} else {
		mode.Value = new(big.Int).Set(mode.Value)
	}
	return mode
}

// Chains returns every registered chain ordered by id.
func (r *Registry) Chains() []Chain {
	ids := lo.Keys(r.chains)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return lo.Map(ids, func(id int64, _ int) Chain {
		return r.chains[id]
	})
}
