package service

import (
	"math/big"

	"github.com/holiman/uint256"

	"gas_checker/internal/domain/entity"
	"gas_checker/internal/pkg/utils"
)

// RefuelDecisionInput carries everything the refuel decision depends on.
type RefuelDecisionInput struct {
	FromChain      entity.NetworkDefinition
	ToChain        entity.NetworkDefinition
	ToAddress      string
	Recommendation *entity.GasRecommendation
	// DestinationNativeBalance is nil when the balance could not be determined.
	DestinationNativeBalance *big.Int
}

// ShouldRefuel reports whether a destination gas top-up should be offered: the destination
// native balance must be below half of the recommended amount.
func ShouldRefuel(in RefuelDecisionInput) bool {
	if in.FromChain.ChainID == in.ToChain.ChainID {
		return false
	}
	rec := in.Recommendation
	if rec == nil || !rec.Available || rec.Recommended == nil {
		return false
	}
	if in.DestinationNativeBalance == nil || in.DestinationNativeBalance.Sign() < 0 {
		return false
	}
	if in.FromChain.ChainType != in.ToChain.ChainType && in.ToAddress == "" {
		return false
	}

	recommended, overflow := uint256.FromBig(utils.ParseBigInt(rec.Recommended.Amount))
	if overflow {
		return false
	}
	balance, overflow := uint256.FromBig(in.DestinationNativeBalance)
	if overflow {
		return false
	}

	half := new(uint256.Int).Div(recommended, uint256.NewInt(2))
	return balance.Lt(half)
}
