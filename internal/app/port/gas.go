package port

import (
	"context"

	"gas_checker/internal/domain/entity"
)

// BalanceFetcher returns the balances a wallet holds of the given tokens.
// Tokens the fetcher could not resolve are simply absent from the result.
type BalanceFetcher interface {
	FetchBalances(ctx context.Context, address string, tokens []entity.Token) ([]entity.TokenBalance, error)
}

// GasRecommendationProvider fetches the recommended destination gas top-up.
type GasRecommendationProvider interface {
	GetRecommendation(ctx context.Context, toChainID, fromChainID uint64, fromTokenAddress string) (*entity.GasRecommendation, error)
}

// SufficiencyChecker evaluates whether an account can pay for the remaining steps of a route.
type SufficiencyChecker interface {
	Check(ctx context.Context, account entity.Account, route *entity.Route) ([]entity.GasSufficiency, error)
}

// RefuelRecommender decides whether a destination gas top-up should be offered.
type RefuelRecommender interface {
	Recommend(ctx context.Context, req entity.RefuelRequest) entity.RefuelResult
	Poll(req entity.RefuelRequest) entity.RefuelResult
}
