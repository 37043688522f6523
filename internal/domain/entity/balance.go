package entity

import "math/big"

// TokenBalance is the amount of a token held by a wallet.
type TokenBalance struct {
	WalletAddress string   `json:"-"`
	Token         Token    `json:"token"`
	Amount        *big.Int `json:"-"`
	BlockNumber   uint64   `json:"blockNumber,omitempty"`
}

// FindBalance returns the amount held for key, or nil when the list has no entry for it.
func FindBalance(balances []TokenBalance, key TokenKey) *big.Int {
	for _, b := range balances {
		if b.Token.Key() == key {
			return b.Amount
		}
	}
	return nil
}
