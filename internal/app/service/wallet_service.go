package service

import (
	"context"
	"strings"
	"sync/atomic"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// WalletManager implements port.WalletService. It coordinates the user
// account lifecycle and balance refreshes on top of the WalletStateStore,
// the ConnectionManager and the MultiNetworkBalanceFetcher.
type WalletManager struct {
	store   *WalletStateStore
	conns   *ConnectionManager
	fetcher *MultiNetworkBalanceFetcher
	deriver port.AccountDeriver
	catalog port.NetworkCatalog
	logger  port.Logger

	// credentialSeq orders SetUserCredential calls so a deferred commit or an
	// in-flight balance query can detect it was superseded.
	credentialSeq atomic.Uint64
}

var _ port.WalletService = (*WalletManager)(nil)

// NewWalletManager creates a new WalletManager.
func NewWalletManager(
	store *WalletStateStore,
	conns *ConnectionManager,
	fetcher *MultiNetworkBalanceFetcher,
	deriver port.AccountDeriver,
	catalog port.NetworkCatalog,
	log port.Logger,
) *WalletManager {
	return &WalletManager{
		store:   store,
		conns:   conns,
		fetcher: fetcher,
		deriver: deriver,
		catalog: catalog,
		logger:  log,
	}
}

// Snapshot returns a copy of the latest committed WalletState.
func (m *WalletManager) Snapshot() entity.WalletState {
	return m.store.Snapshot()
}

// ReinitializeConnection fully re-derives the primary connection and the
// relayer-related state fields.
func (m *WalletManager) ReinitializeConnection(ctx context.Context) error {
	return m.conns.Initialize(ctx)
}

// FetchMultiNetworkBalances triggers a full multi-network fetch cycle.
func (m *WalletManager) FetchMultiNetworkBalances(ctx context.Context) map[string]entity.BalanceEntry {
	return m.fetcher.FetchAll(ctx)
}

// SetUserCredential creates, replaces or clears the user-side account.
// A blank credential clears unconditionally. A non-blank credential commits
// an account immediately when a connection exists; otherwise the commit is
// deferred until the ConnectionManager signals readiness, without the caller
// re-invoking.
func (m *WalletManager) SetUserCredential(ctx context.Context, raw string) {
	seq := m.credentialSeq.Add(1)

	if strings.TrimSpace(raw) == "" {
		m.logger.Info("Clearing user account")
		m.store.Apply(clearUserAccount)
		return
	}

	if !m.store.Snapshot().HasConnection() {
		m.logger.Info("Connection not ready, deferring user account commit")
		go m.commitWhenReady(context.WithoutCancel(ctx), raw, seq)
		return
	}

	m.commitUserCredential(context.WithoutCancel(ctx), raw, seq)
}

// clearUserAccount wipes every user-side field. It is idempotent.
func clearUserAccount(st entity.WalletState) entity.WalletState {
	st.UserCredential = ""
	st.UserAccount = nil
	st.UserAddress = ""
	st.UserBalance = ""
	return st
}

// commitWhenReady waits for the readiness signal, then commits the credential
// unless a newer SetUserCredential call has superseded this one.
func (m *WalletManager) commitWhenReady(ctx context.Context, raw string, seq uint64) {
	select {
	case <-m.conns.Ready():
	case <-ctx.Done():
		return
	}
	if m.credentialSeq.Load() != seq {
		m.logger.Debug("Deferred user credential superseded, dropping")
		return
	}
	m.commitUserCredential(ctx, raw, seq)
}

// commitUserCredential derives the account and commits it in a single
// transform, so the commit always works against the latest state, never a
// value captured before a suspension point. Derivation is local key material
// handling and performs no I/O inside the commit loop.
func (m *WalletManager) commitUserCredential(ctx context.Context, raw string, seq uint64) {
	var derived *entity.Account
	var deriveErr error

	committed := m.store.Apply(func(st entity.WalletState) entity.WalletState {
		derived, deriveErr = m.deriver.Derive(raw, st.Connection)
		if deriveErr != nil {
			// The credential is remembered even though derivation failed, so
			// a later retry can be told apart from "never attempted".
			st.UserCredential = raw
			st.UserAccount = nil
			st.UserAddress = ""
			st.UserBalance = ""
			st.LastError = deriveErr.Error()
			return st
		}
		st.UserCredential = raw
		st.UserAccount = derived
		st.UserAddress = derived.Address
		st.LastError = ""
		return st
	})

	if !committed {
		// Store shut down before the transform ran; derived was never set.
		return
	}
	if deriveErr != nil {
		m.logger.Error("Failed to derive user account", "error", deriveErr)
		return
	}

	m.logger.Info("User account committed", "address", derived.Address)

	// Balance arrives independently and merges into whatever the state is at
	// completion time.
	go m.fetchUserBalance(ctx, derived.Address)
}

// fetchUserBalance queries the user balance and merges it into the latest
// state. A failure is soft: the balance is simply left unset.
func (m *WalletManager) fetchUserBalance(ctx context.Context, address string) {
	st := m.store.Snapshot()
	if !st.HasConnection() {
		return
	}

	balance, err := st.Connection.GetBalance(ctx, address)
	if err != nil {
		m.logger.Warn("User balance query failed", "address", address, "error", err)
		return
	}
	formatted := utils.FormatUnits(balance, m.catalog.Primary().Decimals)

	m.store.Apply(func(cur entity.WalletState) entity.WalletState {
		// Drop the result if the account was cleared or replaced while the
		// query was in flight.
		if cur.UserAccount == nil || cur.UserAddress != address {
			return cur
		}
		cur.UserBalance = formatted
		return cur
	})
}

// Refresh re-queries the balances of whichever of user/relayer accounts
// currently exist and triggers a multi-network fetch as an independent side
// effect. Refresh never returns an error to its caller; failures are logged.
func (m *WalletManager) Refresh(ctx context.Context) {
	st := m.store.Snapshot()
	if !st.HasConnection() {
		m.logger.Info("Refresh skipped: no connection established")
		return
	}

	decimals := m.catalog.Primary().Decimals
	var eg errgroup.Group

	if st.UserAccount != nil {
		address := st.UserAccount.Address
		eg.Go(func() error {
			balance, err := st.Connection.GetBalance(ctx, address)
			if err != nil {
				m.logger.Warn("User balance refresh failed", "address", address, "error", err)
				return nil
			}
			formatted := utils.FormatUnits(balance, decimals)
			m.store.Apply(func(cur entity.WalletState) entity.WalletState {
				if cur.UserAccount == nil || cur.UserAddress != address {
					return cur
				}
				cur.UserBalance = formatted
				return cur
			})
			return nil
		})
	}

	if st.RelayerAccount != nil {
		address := st.RelayerAccount.Address
		eg.Go(func() error {
			balance, err := st.Connection.GetBalance(ctx, address)
			if err != nil {
				m.logger.Warn("Relayer balance refresh failed", "address", address, "error", err)
				return nil
			}
			formatted := utils.FormatUnits(balance, decimals)
			m.store.Apply(func(cur entity.WalletState) entity.WalletState {
				if cur.RelayerAccount == nil || cur.RelayerAddress != address {
					return cur
				}
				cur.RelayerBalance = formatted
				return cur
			})
			return nil
		})
	}

	// Independent side effect: completion is not part of Refresh's contract.
	go m.fetcher.FetchAll(context.WithoutCancel(ctx))

	_ = eg.Wait()
}
