package definition

import (
	"fmt"
	"strings"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/configloader"
)

// Predefined network descriptors
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDescriptor{
		ChainID:      1,
		Name:         "Ethereum Mainnet",
		Identifier:   "ethereum",
		NativeSymbol: "ETH",
		Decimals:     18,
		RPCURL:       "https://ethereum-rpc.publicnode.com",
	}
	BSC = entity.NetworkDescriptor{
		ChainID:      56,
		Name:         "BNB Smart Chain",
		Identifier:   "bsc",
		NativeSymbol: "BNB",
		Decimals:     18,
		RPCURL:       "https://1rpc.io/bnb",
	}
	Polygon = entity.NetworkDescriptor{
		ChainID:      137,
		Name:         "Polygon PoS",
		Identifier:   "polygon",
		NativeSymbol: "MATIC",
		Decimals:     18,
		RPCURL:       "https://polygon-rpc.com/",
	}
	Arbitrum = entity.NetworkDescriptor{
		ChainID:      42161,
		Name:         "Arbitrum One",
		Identifier:   "arbitrum",
		NativeSymbol: "ETH",
		Decimals:     18,
		RPCURL:       "https://arb1.arbitrum.io/rpc",
	}
	Avalanche = entity.NetworkDescriptor{
		ChainID:      43114,
		Name:         "Avalanche C-Chain",
		Identifier:   "avalanche",
		NativeSymbol: "AVAX",
		Decimals:     18,
		RPCURL:       "https://api.avax.network/ext/bc/C/rpc",
	}
	Base = entity.NetworkDescriptor{
		ChainID:      8453,
		Name:         "Base Mainnet",
		Identifier:   "base",
		NativeSymbol: "ETH",
		Decimals:     18,
		RPCURL:       "https://1rpc.io/base",
	}
	Optimism = entity.NetworkDescriptor{
		ChainID:      10,
		Name:         "OP Mainnet",
		Identifier:   "optimism",
		NativeSymbol: "ETH",
		Decimals:     18,
		RPCURL:       "https://op-pokt.nodies.app",
	}
)

// knownDescriptors is the fixed ordered sequence of supported networks.
// The order is part of the catalog's contract and must not change.
var knownDescriptors = []entity.NetworkDescriptor{
	Ethereum,
	BSC,
	Polygon,
	Arbitrum,
	Avalanche,
	Base,
	Optimism,
}

// NetworkCatalogProvider provides the fixed set of network descriptors with
// RPC URLs and credentials resolved from configuration at construction time.
type NetworkCatalogProvider struct {
	logger      port.Logger
	descriptors []entity.NetworkDescriptor
	primary     entity.NetworkDescriptor
}

var _ port.NetworkCatalog = (*NetworkCatalogProvider)(nil)

// NewNetworkCatalog creates a NetworkCatalogProvider resolving per-network
// overrides and credentials through the configuration's fallback chains.
func NewNetworkCatalog(cfg *configloader.Config, log port.Logger) (*NetworkCatalogProvider, error) {
	p := &NetworkCatalogProvider{
		logger:      log,
		descriptors: make([]entity.NetworkDescriptor, 0, len(knownDescriptors)),
	}

	for _, def := range knownDescriptors {
		def.RPCURL = cfg.RPCURLFor(def.Identifier, def.RPCURL)
		def.Credential = cfg.CredentialFor(def.Identifier)
		p.descriptors = append(p.descriptors, def)
	}

	primaryID := cfg.PrimaryNetwork
	if primaryID == "" {
		primaryID = p.descriptors[0].Identifier
		log.Debug("No primary network configured, using first catalog entry", "identifier", primaryID)
	}

	primary, ok := p.lookup(primaryID)
	if !ok {
		return nil, fmt.Errorf("configured primary network %q is not in the catalog", primaryID)
	}
	p.primary = primary

	log.Info("Network catalog initialized", "networks", len(p.descriptors), "primary", p.primary.Identifier)
	return p, nil
}

func (p *NetworkCatalogProvider) lookup(identifier string) (entity.NetworkDescriptor, bool) {
	for _, def := range p.descriptors {
		if strings.EqualFold(def.Identifier, identifier) {
			return def, true
		}
	}
	return entity.NetworkDescriptor{}, false
}

// GetAllNetworkDescriptors returns all known descriptors in catalog order.
func (p *NetworkCatalogProvider) GetAllNetworkDescriptors() []entity.NetworkDescriptor {
	if p == nil {
		return []entity.NetworkDescriptor{}
	}
	defsCopy := make([]entity.NetworkDescriptor, len(p.descriptors))
	copy(defsCopy, p.descriptors)
	return defsCopy
}

// GetNetworkDescriptorByName returns a specific descriptor by its identifier.
func (p *NetworkCatalogProvider) GetNetworkDescriptorByName(identifier string) (entity.NetworkDescriptor, bool) {
	if p == nil {
		return entity.NetworkDescriptor{}, false
	}
	return p.lookup(identifier)
}

// Primary returns the descriptor of the configured primary network.
func (p *NetworkCatalogProvider) Primary() entity.NetworkDescriptor {
	return p.primary
}
