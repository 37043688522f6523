package entity

// Connector describes the wallet connector behind an account.
type Connector struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	// GasSponsored is set for smart-contract wallets (e.g. multisigs) whose transactions are
	// not paid from the checked account.
	GasSponsored bool `json:"gasSponsored"`
}

// Account is the connected wallet account.
type Account struct {
	Address   string    `json:"address"`
	ChainType ChainType `json:"chainType,omitempty"`
	Connector Connector `json:"connector"`
}

// IsConnected reports whether the account carries an address.
func (a Account) IsConnected() bool {
	return a.Address != ""
}

// RequiresGasSponsorship reports whether gas for the account's transactions is paid by a
// third party rather than from the account balance.
func (a Account) RequiresGasSponsorship() bool {
	return a.Connector.GasSponsored
}
