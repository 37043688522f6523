package port

import (
	"context"

	"gas_checker/internal/domain/entity"
)

// BlockchainClient defines the interface for interacting with a blockchain network.
// Implementations are specific to network types (EVM only for now).
type BlockchainClient interface {
	// GetBalances fetches multiple balances in a single round trip.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// ChainRegistry resolves chain ids to network definitions.
type ChainRegistry interface {
	ResolveChain(chainID uint64) (entity.NetworkDefinition, bool)
	// AllChains returns every known network definition ordered by chain id.
	AllChains() []entity.NetworkDefinition
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
