package entity

import "math/big"

// BalanceEntry is a single network's native balance in human-readable form.
type BalanceEntry struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// WalletState is the aggregate root shared by every controller in the
// application. It is created once at startup with all optional fields empty
// and only ever mutated through the WalletStateStore's serial commit loop.
//
// Invariants:
//   - IsConfigured is true iff RelayerAccount, Connection and a non-empty
//     UserCredential exist simultaneously (recomputed on every commit).
//   - UserAddress/UserBalance are empty whenever UserAccount is nil.
type WalletState struct {
	Connection Connection `json:"-"`

	RelayerAccount *Account `json:"relayerAccount,omitempty"`
	RelayerAddress string   `json:"relayerAddress,omitempty"`
	RelayerBalance string   `json:"relayerBalance,omitempty"`

	UserAccount    *Account `json:"userAccount,omitempty"`
	UserAddress    string   `json:"userAddress,omitempty"`
	UserBalance    string   `json:"userBalance,omitempty"`
	UserCredential string   `json:"-"`

	IsConfigured bool `json:"isConfigured"`

	// MultiNetworkBalances is fully replaced (never merged) on each fetch cycle.
	MultiNetworkBalances map[string]BalanceEntry `json:"multiNetworkBalances,omitempty"`

	ChainID *big.Int `json:"chainId,omitempty"`

	LastError string `json:"lastError,omitempty"`
}

// HasConnection reports whether a primary connection has been established.
func (s WalletState) HasConnection() bool {
	return s.Connection != nil
}
