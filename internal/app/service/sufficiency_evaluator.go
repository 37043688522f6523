package service

import (
	"math/big"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
)

// EvaluateSufficiency compares the buckets of the route's source and destination chains with
// the fetched balances and returns the insufficient ones in bucket order.
// An empty balance list means the balances are unknown and nothing is flagged.
func EvaluateSufficiency(
	route entity.Route,
	summary *entity.GasCostSummary,
	balances []entity.TokenBalance,
	registry port.ChainRegistry,
) []entity.GasSufficiency {
	results := []entity.GasSufficiency{}
	if len(balances) == 0 || summary.Len() == 0 {
		return results
	}

	chains := []uint64{route.FromChainID}
	if route.ToChainID != route.FromChainID {
		chains = append(chains, route.ToChainID)
	}
	interesting := func(chainID uint64) bool {
		for _, id := range chains {
			if id == chainID {
				return true
			}
		}
		return false
	}

	for _, entry := range summary.Entries() {
		if !interesting(entry.Token.ChainID) {
			continue
		}
		result, insufficient := evaluateEntry(entry, balances)
		if !insufficient {
			continue
		}
		if registry != nil {
			if chain, ok := registry.ResolveChain(entry.Token.ChainID); ok {
				result.Chain = &chain
			}
		}
		results = append(results, result)
	}
	return results
}

func evaluateEntry(entry *entity.GasCostEntry, balances []entity.TokenBalance) (entity.GasSufficiency, bool) {
	balance := entity.FindBalance(balances, entry.Token.Key())
	if balance == nil {
		balance = new(big.Int)
	}
	tokenAmount := entry.TokenAmount
	if tokenAmount == nil {
		tokenAmount = new(big.Int)
	}

	insufficient := balance.Sign() <= 0 ||
		balance.Cmp(entry.GasAmount) < 0 ||
		balance.Cmp(tokenAmount) < 0

	result := entity.GasSufficiency{
		GasAmount:    new(big.Int).Set(entry.GasAmount),
		Token:        entry.Token,
		Insufficient: insufficient,
	}
	if entry.TokenAmount != nil {
		result.TokenAmount = new(big.Int).Set(entry.TokenAmount)
	}
	if !insufficient {
		return result, false
	}

	// A zero token amount counts as unset.
	if tokenAmount.Sign() != 0 {
		result.InsufficientAmount = new(big.Int).Sub(tokenAmount, balance)
	} else {
		result.InsufficientAmount = new(big.Int).Sub(entry.GasAmount, balance)
	}
	return result, true
}
