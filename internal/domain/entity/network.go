package entity

// NetworkDescriptor holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDescriptor struct {
	ChainID      uint64 `json:"chainId" yaml:"chainId"`
	Name         string `json:"name" yaml:"name"`
	Identifier   string `json:"identifier" yaml:"identifier"` // Уникальный идентификатор сети (например, "ethereum", "bsc")
	NativeSymbol string `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals     int32  `json:"decimals" yaml:"decimals"`
	RPCURL       string `json:"rpcUrl" yaml:"rpcUrl"`
	// Credential is the private key authorizing an account on this network.
	// Optional: networks without one are skipped by the multi-network fetcher.
	Credential string `json:"-" yaml:"credential"`
}
