package entity

// ChainType is the ecosystem family of a chain.
type ChainType string

const (
	ChainTypeEVM  ChainType = "EVM"
	ChainTypeSVM  ChainType = "SVM"
	ChainTypeUTXO ChainType = "UTXO"
	ChainTypeMVM  ChainType = "MVM"
)

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	ChainID          uint64    `json:"chainId" yaml:"chainId"`
	Name             string    `json:"name" yaml:"name"`
	Identifier       string    `json:"identifier" yaml:"identifier"`
	ChainType        ChainType `json:"chainType" yaml:"chainType"`
	NativeToken      Token     `json:"nativeToken" yaml:"nativeToken"`
	PrimaryRPCURL    string    `json:"-" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string  `json:"-" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string    `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}

// IsNativeToken reports whether address is the native token of the network.
func (n NetworkDefinition) IsNativeToken(address string) bool {
	if SameAddress(address, n.NativeToken.Address) {
		return true
	}
	return n.ChainType == ChainTypeEVM && SameAddress(address, ZeroAddress)
}
