package entity

// TokenAmount is an amount of a given token.
type TokenAmount struct {
	Token     Token  `json:"token"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUsd,omitempty"`
}

// GasRecommendation is the answer of the gas recommendation service for a destination chain.
type GasRecommendation struct {
	Available   bool         `json:"available"`
	Message     string       `json:"message,omitempty"`
	Recommended *TokenAmount `json:"recommended,omitempty"`
	Limit       *TokenAmount `json:"limit,omitempty"`
	ServiceFee  *TokenAmount `json:"serviceFee,omitempty"`
	FromToken   *Token       `json:"fromToken,omitempty"`
	FromAmount  string       `json:"fromAmount,omitempty"`
}

// RefuelRequest carries the form fields a refuel recommendation depends on.
type RefuelRequest struct {
	FromChainID      uint64 `json:"fromChain"`
	FromTokenAddress string `json:"fromToken"`
	ToChainID        uint64 `json:"toChain"`
	ToAddress        string `json:"toAddress,omitempty"`
	// FromAddress is the connected account; its balance is checked when ToAddress is empty.
	FromAddress string `json:"fromAddress,omitempty"`
}

// RefuelResult tells whether a gas top-up of the destination chain should be offered.
type RefuelResult struct {
	Enabled    bool               `json:"enabled"`
	Available  *bool              `json:"available,omitempty"`
	IsLoading  bool               `json:"isLoading"`
	Chain      *NetworkDefinition `json:"chain,omitempty"`
	FromAmount string             `json:"fromAmount,omitempty"`
}
