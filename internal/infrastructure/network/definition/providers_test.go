package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/pkg/logger"
)

func TestChainRegistryBuiltins(t *testing.T) {
	r := NewChainRegistry(logger.NewNop(), nil)

	eth, ok := r.ResolveChain(1)
	require.True(t, ok)
	assert.Equal(t, "ETH", eth.NativeToken.Symbol)
	assert.True(t, eth.IsNativeToken(entity.ZeroAddress))

	sol, ok := r.ResolveChain(Solana.ChainID)
	require.True(t, ok)
	assert.Equal(t, entity.ChainTypeSVM, sol.ChainType)
	assert.Equal(t, SolanaNativeAddress, sol.NativeToken.Address)

	_, ok = r.ResolveChain(424242)
	assert.False(t, ok)

	chains := r.AllChains()
	require.Len(t, chains, len(allKnownDefinitions))
	for i := 1; i < len(chains); i++ {
		assert.Less(t, chains[i-1].ChainID, chains[i].ChainID)
	}

	polygon, ok := r.GetNetworkDefinitionByName("POLYGON")
	require.True(t, ok)
	assert.Equal(t, uint64(137), polygon.ChainID)
}

func TestChainRegistryOverrides(t *testing.T) {
	r := NewChainRegistry(logger.NewNop(), []configloader.NetworkNodeConfig{
		{ChainID: 1, RPCURL: "https://rpc.example.org", FallbackRPCURLs: []string{"https://backup.example.org"}},
		{ChainID: 31337, Name: "Anvil", NativeSymbol: "ETH"},
	})

	eth, ok := r.ResolveChain(1)
	require.True(t, ok)
	assert.Equal(t, "https://rpc.example.org", eth.PrimaryRPCURL)
	assert.Equal(t, []string{"https://backup.example.org"}, eth.FallbackRPCURLs)
	assert.Equal(t, "Ethereum Mainnet", eth.Name)

	anvil, ok := r.ResolveChain(31337)
	require.True(t, ok)
	assert.Equal(t, entity.ChainTypeEVM, anvil.ChainType)
	assert.Equal(t, "chain-31337", anvil.Identifier)
	assert.Equal(t, uint64(31337), anvil.NativeToken.ChainID)
	assert.Equal(t, uint8(18), anvil.NativeToken.Decimals)
}

func TestChainRegistryNil(t *testing.T) {
	var r *ChainRegistry
	_, ok := r.ResolveChain(1)
	assert.False(t, ok)
	assert.Empty(t, r.AllChains())
}
