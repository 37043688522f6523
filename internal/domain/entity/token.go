package entity

import "strings"

// ZeroAddress is the EVM zero address. Routes use it for the native token of EVM chains.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Token holds the details of a specific token.
type Token struct {
	ChainID  uint64 `json:"chainId" yaml:"chainId"`
	Address  string `json:"address" yaml:"address"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// TokenKey identifies a token across chains.
type TokenKey struct {
	ChainID uint64
	Address string
}

// Key returns the normalized identity of the token.
func (t Token) Key() TokenKey {
	return TokenKey{ChainID: t.ChainID, Address: NormalizeAddress(t.Address)}
}

// NormalizeAddress lower-cases hex addresses. Other encodings (base58, bech32) are case
// sensitive and returned as is.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return "0x" + strings.ToLower(address[2:])
	}
	return address
}

// SameAddress compares two addresses after normalization.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}
