package port

import (
	"context"

	"wallet_sync/internal/domain/entity"
)

// WalletService is the handle exposed to callers: read access to the current
// WalletState snapshot plus the four state-changing operations. None of the
// operations propagate errors as panics; failures are recorded into the
// state's LastError field.
type WalletService interface {
	// Snapshot returns a copy of the latest committed WalletState.
	Snapshot() entity.WalletState

	// Refresh re-queries balances for whichever of user/relayer accounts exist
	// and triggers a multi-network fetch as an independent side effect.
	Refresh(ctx context.Context)

	// ReinitializeConnection fully re-derives the primary connection and the
	// relayer-related state fields. It is the sole recovery path after a
	// failed initialize.
	ReinitializeConnection(ctx context.Context) error

	// SetUserCredential creates, replaces or clears the user-side account.
	SetUserCredential(ctx context.Context, raw string)

	// FetchMultiNetworkBalances fans out balance queries across every catalog
	// network with a usable credential and commits the result wholesale.
	FetchMultiNetworkBalances(ctx context.Context) map[string]entity.BalanceEntry
}
