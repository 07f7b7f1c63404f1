package service

import (
	"context"
	"sync"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/configloader"
	"wallet_sync/internal/pkg/metrics"
	"wallet_sync/internal/pkg/utils"
)

// ConnectionManager owns the connection to the primary network and the relayer
// account derived from it. Initialize may be re-invoked at any time; it fully
// re-derives and overwrites the relayer-related state fields and is the sole
// recovery path after a failure.
type ConnectionManager struct {
	store   *WalletStateStore
	dialer  port.ChainDialer
	deriver port.AccountDeriver
	catalog port.NetworkCatalog
	cfg     *configloader.Config
	logger  port.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// NewConnectionManager creates a new ConnectionManager.
func NewConnectionManager(
	store *WalletStateStore,
	dialer port.ChainDialer,
	deriver port.AccountDeriver,
	catalog port.NetworkCatalog,
	cfg *configloader.Config,
	log port.Logger,
) *ConnectionManager {
	return &ConnectionManager{
		store:   store,
		dialer:  dialer,
		deriver: deriver,
		catalog: catalog,
		cfg:     cfg,
		logger:  log,
		ready:   make(chan struct{}),
	}
}

// Ready returns a channel closed once the first Initialize has committed a
// connection. Operations needing a connection wait on it instead of polling.
func (m *ConnectionManager) Ready() <-chan struct{} {
	return m.ready
}

// Initialize opens the primary connection, derives the relayer account,
// queries the chain id and the relayer's balance, then commits everything
// atomically. On any failure the error is recorded into LastError and all
// other state fields are left untouched.
func (m *ConnectionManager) Initialize(ctx context.Context) error {
	primary := m.catalog.Primary()
	credential := m.cfg.RelayerCredentialValue()

	if primary.RPCURL == "" {
		return m.fail(&entity.ConfigurationError{Missing: "primary network RPC URL"})
	}
	if credential == "" {
		return m.fail(&entity.ConfigurationError{Missing: "relayer credential"})
	}

	m.logger.Info("Initializing primary connection", "network", primary.Identifier, "rpcUrl", primary.RPCURL)

	conn, err := m.dialer.Dial(ctx, primary.RPCURL)
	if err != nil {
		return m.fail(&entity.ConnectionError{Stage: "dial", Err: err})
	}

	relayer, err := m.deriver.Derive(credential, conn)
	if err != nil {
		conn.Close()
		return m.fail(&entity.ConnectionError{Stage: "relayer derivation", Err: err})
	}

	chainID, err := conn.GetChainID(ctx)
	if err != nil {
		conn.Close()
		return m.fail(&entity.ConnectionError{Stage: "chain id query", Err: err})
	}

	balance, err := conn.GetBalance(ctx, relayer.Address)
	if err != nil {
		conn.Close()
		return m.fail(&entity.ConnectionError{Stage: "relayer balance query", Err: err})
	}
	formatted := utils.FormatUnits(balance, primary.Decimals)

	var replaced entity.Connection
	m.store.Apply(func(st entity.WalletState) entity.WalletState {
		replaced = st.Connection
		st.Connection = conn
		st.RelayerAccount = relayer
		st.RelayerAddress = relayer.Address
		st.RelayerBalance = formatted
		st.ChainID = chainID
		st.LastError = ""
		return st
	})
	if replaced != nil && replaced != conn {
		replaced.Close()
	}

	m.readyOnce.Do(func() { close(m.ready) })
	metrics.ConnectionInitTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	m.logger.Info("Primary connection initialized",
		"network", primary.Identifier,
		"relayerAddress", relayer.Address,
		"chainId", chainID.String(),
		"relayerBalance", formatted)
	return nil
}

// fail records the error into LastError without touching any other field.
func (m *ConnectionManager) fail(err error) error {
	m.logger.Error("Primary connection initialization failed", "error", err)
	metrics.ConnectionInitTotal.WithLabelValues(metrics.OutcomeError).Inc()
	m.store.Apply(func(st entity.WalletState) entity.WalletState {
		st.LastError = err.Error()
		return st
	})
	return err
}
