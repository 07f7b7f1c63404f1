package entity

import (
	"context"
	"math/big"
)

// Connection abstracts a live RPC session to one network. It is owned by the
// WalletState and shared by reference with any Account built against it.
type Connection interface {
	// GetBalance fetches the native currency balance for the given address.
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// GetChainID returns the chain id reported by the connected node.
	GetChainID(ctx context.Context) (*big.Int, error)

	// Close releases the underlying RPC session.
	Close()
}

// Account represents a key-derived address bound to a connection.
// The address is derived once from a credential and never mutated.
type Account struct {
	Address string `json:"address"`
}
