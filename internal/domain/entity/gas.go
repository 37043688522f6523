package entity

import "math/big"

// GasCostKey identifies a gas-cost bucket. Buckets are per (chain, token) so costs paid in
// different tokens on the same chain are never merged.
type GasCostKey struct {
	ChainID      uint64
	TokenAddress string
}

// GasCostEntry accumulates what a route still has to spend of one token on one chain.
type GasCostEntry struct {
	Token     Token
	GasAmount *big.Int
	// TokenAmount is set only when the route's source token is this bucket's token and
	// equals GasAmount plus the transferred amount.
	TokenAmount *big.Int
}

// GasCostSummary is an insertion-ordered map of gas-cost buckets.
type GasCostSummary struct {
	entries map[GasCostKey]*GasCostEntry
	order   []GasCostKey
}

// NewGasCostSummary returns an empty summary.
func NewGasCostSummary() *GasCostSummary {
	return &GasCostSummary{entries: make(map[GasCostKey]*GasCostEntry)}
}

// KeyFor returns the bucket key for a token.
func KeyFor(token Token) GasCostKey {
	return GasCostKey{ChainID: token.ChainID, TokenAddress: NormalizeAddress(token.Address)}
}

// Add adds amount to the bucket of token, creating the bucket on first use.
func (s *GasCostSummary) Add(token Token, amount *big.Int) {
	key := KeyFor(token)
	entry, ok := s.entries[key]
	if !ok {
		entry = &GasCostEntry{Token: token, GasAmount: new(big.Int)}
		s.entries[key] = entry
		s.order = append(s.order, key)
	}
	entry.GasAmount.Add(entry.GasAmount, amount)
}

// Get returns the bucket for key.
func (s *GasCostSummary) Get(key GasCostKey) (*GasCostEntry, bool) {
	if s == nil {
		return nil, false
	}
	entry, ok := s.entries[key]
	return entry, ok
}

// Len returns the number of buckets.
func (s *GasCostSummary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Entries returns the buckets in insertion order.
func (s *GasCostSummary) Entries() []*GasCostEntry {
	if s == nil {
		return nil
	}
	out := make([]*GasCostEntry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.entries[key])
	}
	return out
}

// Tokens returns the token of every bucket.
func (s *GasCostSummary) Tokens() []Token {
	entries := s.Entries()
	tokens := make([]Token, 0, len(entries))
	for _, entry := range entries {
		tokens = append(tokens, entry.Token)
	}
	return tokens
}

// GasSufficiency is the evaluation of one gas-cost bucket against the account balance.
type GasSufficiency struct {
	GasAmount          *big.Int
	TokenAmount        *big.Int
	InsufficientAmount *big.Int
	Insufficient       bool
	Token              Token
	// Chain is attached only when the bucket is insufficient.
	Chain *NetworkDefinition
}
