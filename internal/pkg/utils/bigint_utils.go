package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// ParseBigInt parses a base-10 integer amount. Empty or malformed input yields zero,
// negative values are clamped to zero.
func ParseBigInt(s string) *big.Int {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return new(big.Int)
	}
	return v
}

// BigIntString renders v as a base-10 string, "" for nil.
func BigIntString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
