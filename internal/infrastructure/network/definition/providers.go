package networkdefinition

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"
)

// SolanaNativeAddress is the system program address used for native SOL in routes.
const SolanaNativeAddress = "11111111111111111111111111111111"

// ChainRegistry provides network definitions keyed by chain id.
type ChainRegistry struct {
	logger port.Logger
	mu     sync.RWMutex
	byID   map[uint64]entity.NetworkDefinition
}

func evmNative(chainID uint64, symbol, name string) entity.Token {
	return entity.Token{ChainID: chainID, Address: entity.ZeroAddress, Symbol: symbol, Name: name, Decimals: 18}
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(1, "ETH", "Ether"),
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	BSC = entity.NetworkDefinition{
		ChainID:          56,
		Name:             "BNB Smart Chain",
		Identifier:       "bsc",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(56, "BNB", "BNB"),
		PrimaryRPCURL:    "https://1rpc.io/bnb",
		FallbackRPCURLs:  []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(137, "POL", "Polygon Ecosystem Token"),
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(42161, "ETH", "Ether"),
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:          43114,
		Name:             "Avalanche C-Chain",
		Identifier:       "avalanche",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(43114, "AVAX", "Avalanche"),
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
		BlockExplorerURL: "https://snowtrace.io",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(8453, "ETH", "Ether"),
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL: "https://basescan.org",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(10, "ETH", "Ether"),
		PrimaryRPCURL:    "https://mainnet.optimism.io",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:          100,
		Name:             "Gnosis Chain",
		Identifier:       "gnosis",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(100, "XDAI", "xDAI"),
		PrimaryRPCURL:    "https://rpc.gnosischain.com",
		FallbackRPCURLs:  []string{"https://gnosis.publicnode.com"},
		BlockExplorerURL: "https://gnosisscan.io",
	}
	Linea = entity.NetworkDefinition{
		ChainID:          59144,
		Name:             "Linea",
		Identifier:       "linea",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(59144, "ETH", "Ether"),
		PrimaryRPCURL:    "https://rpc.linea.build",
		FallbackRPCURLs:  []string{"https://linea.publicnode.com"},
		BlockExplorerURL: "https://lineascan.build",
	}
	Scroll = entity.NetworkDefinition{
		ChainID:          534352,
		Name:             "Scroll",
		Identifier:       "scroll",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(534352, "ETH", "Ether"),
		PrimaryRPCURL:    "https://rpc.scroll.io",
		FallbackRPCURLs:  []string{"https://scroll.publicnode.com"},
		BlockExplorerURL: "https://scrollscan.com",
	}
	ZkSync = entity.NetworkDefinition{
		ChainID:          324,
		Name:             "zkSync Era",
		Identifier:       "zksync",
		ChainType:        entity.ChainTypeEVM,
		NativeToken:      evmNative(324, "ETH", "Ether"),
		PrimaryRPCURL:    "https://mainnet.era.zksync.io",
		BlockExplorerURL: "https://explorer.zksync.io",
	}
	// Solana balances are not fetched (no SVM client), the definition is used for chain type checks.
	Solana = entity.NetworkDefinition{
		ChainID:    1151111081099710,
		Name:       "Solana",
		Identifier: "solana",
		ChainType:  entity.ChainTypeSVM,
		NativeToken: entity.Token{
			ChainID:  1151111081099710,
			Address:  SolanaNativeAddress,
			Symbol:   "SOL",
			Name:     "Solana",
			Decimals: 9,
		},
		BlockExplorerURL: "https://solscan.io",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = []entity.NetworkDefinition{ //nolint:gochecknoglobals
	Ethereum, BSC, Polygon, Arbitrum, Avalanche, Base, Optimism, Gnosis, Linea, Scroll, ZkSync, Solana,
}

// NewChainRegistry creates a registry from the built-in definitions with config overrides applied.
func NewChainRegistry(log port.Logger, overrides []configloader.NetworkNodeConfig) *ChainRegistry {
	r := &ChainRegistry{
		logger: log,
		byID:   make(map[uint64]entity.NetworkDefinition, len(allKnownDefinitions)+len(overrides)),
	}
	for _, def := range allKnownDefinitions {
		r.byID[def.ChainID] = def
	}
	for _, o := range overrides {
		r.apply(o)
	}
	r.logger.Info(fmt.Sprintf("ChainRegistry initialized with %d networks", len(r.byID)))
	return r
}

func (r *ChainRegistry) apply(o configloader.NetworkNodeConfig) {
	def, known := r.byID[o.ChainID]
	if !known {
		def = entity.NetworkDefinition{ChainID: o.ChainID, ChainType: entity.ChainTypeEVM}
		def.NativeToken = evmNative(o.ChainID, "ETH", "")
	}
	if o.Name != "" {
		def.Name = o.Name
	}
	if o.Identifier != "" {
		def.Identifier = strings.ToLower(o.Identifier)
	}
	if o.ChainType != "" {
		def.ChainType = entity.ChainType(strings.ToUpper(o.ChainType))
	}
	if o.RPCURL != "" {
		def.PrimaryRPCURL = o.RPCURL
	}
	if len(o.FallbackRPCURLs) > 0 {
		def.FallbackRPCURLs = o.FallbackRPCURLs
	}
	if o.NativeSymbol != "" {
		def.NativeToken.Symbol = o.NativeSymbol
	}
	if o.NativeAddress != "" {
		def.NativeToken.Address = o.NativeAddress
	}
	if o.NativeDecimals != 0 {
		def.NativeToken.Decimals = o.NativeDecimals
	}
	def.NativeToken.ChainID = def.ChainID
	if def.Identifier == "" {
		def.Identifier = fmt.Sprintf("chain-%d", def.ChainID)
	}
	if def.Name == "" {
		def.Name = def.Identifier
	}

	if known {
		r.logger.Debug("Network definition overridden from config", "chainId", def.ChainID, "network", def.Name)
	} else {
		r.logger.Info("Network definition added from config", "chainId", def.ChainID, "network", def.Name)
	}
	r.byID[def.ChainID] = def
}

// ResolveChain returns the network definition of chainID.
func (r *ChainRegistry) ResolveChain(chainID uint64) (entity.NetworkDefinition, bool) {
	if r == nil {
		return entity.NetworkDefinition{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byID[chainID]
	return def, ok
}

// AllChains returns all network definitions ordered by chain id.
func (r *ChainRegistry) AllChains() []entity.NetworkDefinition {
	if r == nil {
		return []entity.NetworkDefinition{}
	}
	r.mu.RLock()
	defs := make([]entity.NetworkDefinition, 0, len(r.byID))
	for _, def := range r.byID {
		defs = append(defs, def)
	}
	r.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByName returns a network definition by its identifier.
func (r *ChainRegistry) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	identifier = strings.ToLower(identifier)
	for _, def := range r.AllChains() {
		if def.Identifier == identifier {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
