package service

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"gas_checker/internal/domain/entity"
)

func recommendation(amount string) *entity.GasRecommendation {
	return &entity.GasRecommendation{
		Available:   true,
		Recommended: &entity.TokenAmount{Token: nativeB, Amount: amount},
		FromAmount:  "123",
	}
}

func TestShouldRefuel(t *testing.T) {
	registry := newFakeRegistry()
	ethereum, _ := registry.ResolveChain(chainA)
	polygon, _ := registry.ResolveChain(chainB)
	solana, _ := registry.ResolveChain(chainSolana)

	tests := []struct {
		name string
		in   RefuelDecisionInput
		want bool
	}{
		{
			name: "balance below half of recommended",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: polygon, Recommendation: recommendation("1000"), DestinationNativeBalance: big.NewInt(400)},
			want: true,
		},
		{
			name: "balance above half of recommended",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: polygon, Recommendation: recommendation("1000"), DestinationNativeBalance: big.NewInt(600)},
			want: false,
		},
		{
			name: "balance equal to half is enough",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: polygon, Recommendation: recommendation("1000"), DestinationNativeBalance: big.NewInt(500)},
			want: false,
		},
		{
			name: "half truncates",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: polygon, Recommendation: recommendation("1001"), DestinationNativeBalance: big.NewInt(500)},
			want: false,
		},
		{
			name: "same chain never refuels",
			in:   RefuelDecisionInput{FromChain: polygon, ToChain: polygon, Recommendation: recommendation("1000"), DestinationNativeBalance: big.NewInt(0)},
			want: false,
		},
		{
			name: "no recommendation",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: polygon, DestinationNativeBalance: big.NewInt(0)},
			want: false,
		},
		{
			name: "recommendation unavailable",
			in: RefuelDecisionInput{FromChain: ethereum, ToChain: polygon,
				Recommendation:           &entity.GasRecommendation{Available: false, Recommended: &entity.TokenAmount{Amount: "1000"}},
				DestinationNativeBalance: big.NewInt(0)},
			want: false,
		},
		{
			name: "recommendation without amount",
			in: RefuelDecisionInput{FromChain: ethereum, ToChain: polygon,
				Recommendation:           &entity.GasRecommendation{Available: true},
				DestinationNativeBalance: big.NewInt(0)},
			want: false,
		},
		{
			name: "unknown balance",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: polygon, Recommendation: recommendation("1000")},
			want: false,
		},
		{
			name: "cross ecosystem without destination address",
			in:   RefuelDecisionInput{FromChain: ethereum, ToChain: solana, Recommendation: recommendation("1000"), DestinationNativeBalance: big.NewInt(0)},
			want: false,
		},
		{
			name: "cross ecosystem with destination address",
			in: RefuelDecisionInput{FromChain: ethereum, ToChain: solana, ToAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
				Recommendation: recommendation("1000"), DestinationNativeBalance: big.NewInt(0)},
			want: true,
		},
		{
			name: "large amounts",
			in: RefuelDecisionInput{FromChain: ethereum, ToChain: polygon,
				Recommendation:           recommendation("100000000000000000000000000000"),
				DestinationNativeBalance: new(big.Int).SetUint64(18000000000000000000)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRefuel(tt.in))
		})
	}
}
