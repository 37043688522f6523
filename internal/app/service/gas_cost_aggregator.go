package service

import (
	"math/big"

	"gas_checker/internal/domain/entity"
	"gas_checker/internal/pkg/utils"
)

// DefaultRefuelTool is the tool key of the refuel protocol inside included steps.
const DefaultRefuelTool = "lifuelProtocol"

// AggregateGasCosts sums what the pending steps of route still need to spend, per
// (chain, token) bucket. Gas is not counted for accounts whose gas is sponsored, nor for
// steps on the destination chain when the route carries a refuel sub-step.
// Non-included fees are always counted in the bucket of the fee token.
func AggregateGasCosts(route entity.Route, account entity.Account, refuelTool string) *entity.GasCostSummary {
	if refuelTool == "" {
		refuelTool = DefaultRefuelTool
	}
	summary := entity.NewGasCostSummary()
	hasRefuelStep := route.HasIncludedTool(refuelTool)
	sponsored := account.RequiresGasSponsorship()

	for _, step := range route.Steps {
		if !step.IsPending() || step.Estimate == nil {
			continue
		}

		skipGas := sponsored || (hasRefuelStep && step.Action.FromChainID == route.ToChainID)
		if gasCosts := step.Estimate.GasCosts; !skipGas && len(gasCosts) > 0 {
			total := new(big.Int)
			for _, gasCost := range gasCosts {
				total.Add(total, utils.ParseBigInt(gasCost.Amount))
			}
			summary.Add(gasCosts[0].Token, total)
		}

		var feeToken *entity.Token
		feeTotal := new(big.Int)
		for _, fee := range step.Estimate.FeeCosts {
			if fee.Included {
				continue
			}
			if feeToken == nil {
				token := fee.Token
				feeToken = &token
			}
			feeTotal.Add(feeTotal, utils.ParseBigInt(fee.Amount))
		}
		if feeToken != nil {
			summary.Add(*feeToken, feeTotal)
		}
	}

	fromKey := entity.KeyFor(entity.Token{ChainID: route.FromChainID, Address: route.FromToken.Address})
	if entry, ok := summary.Get(fromKey); ok {
		entry.TokenAmount = new(big.Int).Add(entry.GasAmount, utils.ParseBigInt(route.FromAmount))
	}

	return summary
}
