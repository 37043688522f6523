package entity

import domain "gas_checker/internal/domain/entity"

// GasSuggestionToken is a token as returned by the gas suggestion API.
type GasSuggestionToken struct {
	Address  string `json:"address"`
	ChainID  uint64 `json:"chainId"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name"`
	PriceUSD string `json:"priceUSD,omitempty"`
}

// GasSuggestionAmount is an amount entry of the gas suggestion API.
type GasSuggestionAmount struct {
	Token     GasSuggestionToken `json:"token"`
	Amount    string             `json:"amount"`
	AmountUSD string             `json:"amountUsd"`
}

// GasSuggestionResponse is the body of GET /gas/suggestion/{chain}.
type GasSuggestionResponse struct {
	Available   bool                 `json:"available"`
	Message     string               `json:"message,omitempty"`
	Recommended *GasSuggestionAmount `json:"recommended,omitempty"`
	Limit       *GasSuggestionAmount `json:"limit,omitempty"`
	ServiceFee  *GasSuggestionAmount `json:"serviceFee,omitempty"`
	FromToken   *GasSuggestionToken  `json:"fromToken,omitempty"`
	FromAmount  string               `json:"fromAmount,omitempty"`
}

func (t GasSuggestionToken) toDomain() domain.Token {
	return domain.Token{
		ChainID:  t.ChainID,
		Address:  t.Address,
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: t.Decimals,
	}
}

func (a *GasSuggestionAmount) toDomain() *domain.TokenAmount {
	if a == nil {
		return nil
	}
	return &domain.TokenAmount{Token: a.Token.toDomain(), Amount: a.Amount, AmountUSD: a.AmountUSD}
}

// ToDomain converts the API response into a domain recommendation.
func (r GasSuggestionResponse) ToDomain() *domain.GasRecommendation {
	rec := &domain.GasRecommendation{
		Available:   r.Available,
		Message:     r.Message,
		Recommended: r.Recommended.toDomain(),
		Limit:       r.Limit.toDomain(),
		ServiceFee:  r.ServiceFee.toDomain(),
		FromAmount:  r.FromAmount,
	}
	if r.FromToken != nil {
		token := r.FromToken.toDomain()
		rec.FromToken = &token
	}
	return rec
}
