package port

import (
	"context"

	"wallet_sync/internal/domain/entity"
)

// ChainDialer defines the interface for opening RPC sessions to blockchain
// networks. Implementations will be specific to network types (e.g., EVM).
type ChainDialer interface {
	// Dial opens a connection to the node at rpcURL.
	Dial(ctx context.Context, rpcURL string) (entity.Connection, error)
}

// AccountDeriver defines the interface for deriving an account from a
// credential bound to a connection.
type AccountDeriver interface {
	Derive(credential string, conn entity.Connection) (*entity.Account, error)
}

// NetworkCatalog defines the interface for providing the fixed set of known
// network descriptors.
type NetworkCatalog interface {
	// GetAllNetworkDescriptors returns all known network descriptors in their
	// defined order.
	GetAllNetworkDescriptors() []entity.NetworkDescriptor

	// GetNetworkDescriptorByName returns a specific descriptor by its identifier.
	// Возвращает дескриптор и true, если найден, иначе false.
	GetNetworkDescriptorByName(identifier string) (entity.NetworkDescriptor, bool)

	// Primary returns the descriptor of the primary network the relayer
	// connection is established against.
	Primary() entity.NetworkDescriptor
}
