package service

import (
	"strings"
	"sync"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/metrics"
)

// StateTransform produces the next wallet state from the latest committed one.
// Transforms must treat their input as a value: modify the copy and return it.
type StateTransform func(entity.WalletState) entity.WalletState

type applyRequest struct {
	fn   StateTransform
	done chan struct{}
}

// WalletStateStore owns the single shared WalletState. All mutations are
// expressed as transforms of "whatever the latest state is" and are consumed
// serially by one goroutine, so no writer can ever merge into a value captured
// before another writer committed.
type WalletStateStore struct {
	applyCh  chan applyRequest
	snapCh   chan chan entity.WalletState
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWalletStateStore creates the store and starts its commit loop.
func NewWalletStateStore() *WalletStateStore {
	s := &WalletStateStore{
		applyCh: make(chan applyRequest),
		snapCh:  make(chan chan entity.WalletState),
		stopCh:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *WalletStateStore) run() {
	var state entity.WalletState

	for {
		select {
		case req := <-s.applyCh:
			state = normalize(req.fn(state))
			metrics.StateCommitsTotal.Inc()
			if state.IsConfigured {
				metrics.WalletConfigured.Set(1)
			} else {
				metrics.WalletConfigured.Set(0)
			}
			close(req.done)
		case out := <-s.snapCh:
			out <- snapshotOf(state)
		case <-s.stopCh:
			return
		}
	}
}

// normalize re-establishes the state invariants after every commit:
// user address/balance never outlive the user account, and IsConfigured is
// recomputed from its three preconditions rather than trusted from the
// transform.
func normalize(state entity.WalletState) entity.WalletState {
	if state.UserAccount == nil {
		state.UserAddress = ""
		state.UserBalance = ""
	}
	state.IsConfigured = state.RelayerAccount != nil &&
		state.Connection != nil &&
		strings.TrimSpace(state.UserCredential) != ""
	return state
}

// snapshotOf copies the state deeply enough that callers cannot mutate the
// committed value through a returned snapshot.
func snapshotOf(state entity.WalletState) entity.WalletState {
	if state.MultiNetworkBalances != nil {
		balances := make(map[string]entity.BalanceEntry, len(state.MultiNetworkBalances))
		for name, entry := range state.MultiNetworkBalances {
			balances[name] = entry
		}
		state.MultiNetworkBalances = balances
	}
	return state
}

// Apply commits the transform against the latest state and returns once the
// commit is visible to subsequent snapshots. The return value reports whether
// the transform actually ran; it is false when the store was closed first, so
// callers must not act on values captured inside a transform that never ran.
func (s *WalletStateStore) Apply(fn StateTransform) bool {
	req := applyRequest{fn: fn, done: make(chan struct{})}
	select {
	case s.applyCh <- req:
		select {
		case <-req.done:
			return true
		case <-s.stopCh:
			// The loop may have processed the request right before stopping.
			select {
			case <-req.done:
				return true
			default:
				return false
			}
		}
	case <-s.stopCh:
		return false
	}
}

// Snapshot returns a copy of the latest committed state.
func (s *WalletStateStore) Snapshot() entity.WalletState {
	out := make(chan entity.WalletState, 1)
	select {
	case s.snapCh <- out:
		select {
		case state := <-out:
			return state
		case <-s.stopCh:
			return entity.WalletState{}
		}
	case <-s.stopCh:
		return entity.WalletState{}
	}
}

// Close stops the commit loop. Pending and future operations become no-ops.
func (s *WalletStateStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
