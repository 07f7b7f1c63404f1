package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/configloader"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

// stubConnection is an in-memory entity.Connection. Per-address gates allow
// tests to control the interleaving of in-flight balance queries.
type stubConnection struct {
	mu         sync.Mutex
	balances   map[string]*big.Int
	chainID    *big.Int
	balanceErr error
	gates      map[string]chan struct{}
	closed     bool
}

func (c *stubConnection) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	c.mu.Lock()
	gate := c.gates[address]
	c.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balanceErr != nil {
		return nil, c.balanceErr
	}
	if balance, ok := c.balances[address]; ok {
		return new(big.Int).Set(balance), nil
	}
	return big.NewInt(0), nil
}

func (c *stubConnection) setBalance(address string, wei *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balances == nil {
		c.balances = make(map[string]*big.Int)
	}
	c.balances[address] = wei
}

func (c *stubConnection) gate(address string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gates == nil {
		c.gates = make(map[string]chan struct{})
	}
	g := make(chan struct{})
	c.gates[address] = g
	return g
}

func (c *stubConnection) GetChainID(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return c.chainID, nil
	}
	return big.NewInt(1), nil
}

func (c *stubConnection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// stubDialer hands out connections by RPC URL and counts dial attempts.
type stubDialer struct {
	mu    sync.Mutex
	conns map[string]entity.Connection
	errs  map[string]error
	dials int
}

func (d *stubDialer) Dial(ctx context.Context, rpcURL string) (entity.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if err, ok := d.errs[rpcURL]; ok {
		return nil, err
	}
	if conn, ok := d.conns[rpcURL]; ok {
		return conn, nil
	}
	return nil, fmt.Errorf("no stub connection for %s", rpcURL)
}

func (d *stubDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// stubCatalog implements port.NetworkCatalog over a fixed slice.
type stubCatalog struct {
	mu          sync.Mutex
	descriptors []entity.NetworkDescriptor
	primary     entity.NetworkDescriptor
}

func (c *stubCatalog) GetAllNetworkDescriptors() []entity.NetworkDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entity.NetworkDescriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

func (c *stubCatalog) GetNetworkDescriptorByName(identifier string) (entity.NetworkDescriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.descriptors {
		if strings.EqualFold(d.Identifier, identifier) {
			return d, true
		}
	}
	return entity.NetworkDescriptor{}, false
}

func (c *stubCatalog) Primary() entity.NetworkDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primary
}

func (c *stubCatalog) setDescriptors(descriptors []entity.NetworkDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors = descriptors
}

// stubDeriver derives addresses with go-ethereum's key handling, matching the
// production deriver's behavior without importing the infrastructure package.
type stubDeriver struct{}

func (stubDeriver) Derive(credential string, conn entity.Connection) (*entity.Account, error) {
	if conn == nil {
		return nil, &entity.DerivationError{Err: fmt.Errorf("no connection to bind account to")}
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(credential), "0x")
	privateKey, err := gethcrypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, &entity.DerivationError{Err: err}
	}
	return &entity.Account{Address: gethcrypto.PubkeyToAddress(privateKey.PublicKey).Hex()}, nil
}

const (
	relayerKey = "0x" + "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	userKey    = "0x" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	otherKey   = "0x" + "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
	// Exactly 64 hex characters but above the secp256k1 curve order, so it
	// passes format validation yet fails derivation.
	badScalarKey = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
)

func addrOf(t *testing.T, hexKey string) string {
	t.Helper()
	privateKey, err := gethcrypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		t.Fatalf("bad test key %q: %v", hexKey, err)
	}
	return gethcrypto.PubkeyToAddress(privateKey.PublicKey).Hex()
}

func testConfig() *configloader.Config {
	return &configloader.Config{
		RelayerCredential: relayerKey,
		RPCClient: configloader.RPCClientConfig{
			ConnectionTimeoutMs: 1000,
			CallTimeoutMs:       1000,
			RateLimit:           100,
			BurstLimit:          100,
		},
		BalanceCache: configloader.BalanceCacheConfig{TTLSeconds: 60, CleanupIntervalSeconds: 300},
		Fetcher:      configloader.FetcherConfig{MaxConcurrentRequests: 7},
	}
}

const primaryRPCURL = "https://primary.example"

func primaryDescriptor() entity.NetworkDescriptor {
	return entity.NetworkDescriptor{
		ChainID:      1,
		Name:         "Ethereum Mainnet",
		Identifier:   "ethereum",
		NativeSymbol: "ETH",
		Decimals:     18,
		RPCURL:       primaryRPCURL,
	}
}

// testRig wires a full service stack against stub infrastructure.
type testRig struct {
	store   *WalletStateStore
	conns   *ConnectionManager
	fetcher *MultiNetworkBalanceFetcher
	manager *WalletManager
	conn    *stubConnection
	dialer  *stubDialer
	catalog *stubCatalog
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	conn := &stubConnection{chainID: big.NewInt(1)}
	dialer := &stubDialer{conns: map[string]entity.Connection{primaryRPCURL: conn}}
	catalog := &stubCatalog{
		descriptors: []entity.NetworkDescriptor{primaryDescriptor()},
		primary:     primaryDescriptor(),
	}
	cfg := testConfig()

	store := NewWalletStateStore()
	t.Cleanup(store.Close)

	conns := NewConnectionManager(store, dialer, stubDeriver{}, catalog, cfg, nopLogger{})
	fetcher := NewMultiNetworkBalanceFetcher(catalog, dialer, stubDeriver{}, store, cfg, nopLogger{})
	manager := NewWalletManager(store, conns, fetcher, stubDeriver{}, catalog, nopLogger{})

	return &testRig{
		store:   store,
		conns:   conns,
		fetcher: fetcher,
		manager: manager,
		conn:    conn,
		dialer:  dialer,
		catalog: catalog,
	}
}

// waitFor polls until the condition holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
