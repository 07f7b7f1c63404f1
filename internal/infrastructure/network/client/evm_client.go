package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"wallet_sync/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// evmConnection implements entity.Connection for EVM-compatible chains.
type evmConnection struct {
	ethClient   *ethclient.Client
	limiter     *rate.Limiter
	callTimeout time.Duration
}

// GetBalance fetches the native currency balance for the given address at the
// latest block.
func (c *evmConnection) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(callCtx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance for %s: %w", address, err)
	}
	return balance, nil
}

// GetChainID returns the chain id reported by the connected node.
func (c *evmConnection) GetChainID(ctx context.Context) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	chainID, err := c.ethClient.ChainID(callCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}
	return chainID, nil
}

// Close releases the underlying RPC session.
func (c *evmConnection) Close() {
	c.ethClient.Close()
}

// EVMDialer implements the port.ChainDialer interface over go-ethereum's
// ethclient. Each Dial produces an independent connection with its own
// rate limiter.
type EVMDialer struct {
	logger            *zap.Logger
	connectionTimeout time.Duration
	callTimeout       time.Duration
	rateLimit         rate.Limit
	burstLimit        int
}

// NewEVMDialer creates a new EVMDialer.
func NewEVMDialer(connectionTimeout, callTimeout time.Duration, rateLimit, burstLimit int, logger *zap.Logger) *EVMDialer {
	return &EVMDialer{
		logger:            logger.Named("EVMDialer"),
		connectionTimeout: connectionTimeout,
		callTimeout:       callTimeout,
		rateLimit:         rate.Limit(rateLimit),
		burstLimit:        burstLimit,
	}
}

// Dial opens a connection to the node at rpcURL.
func (d *EVMDialer) Dial(ctx context.Context, rpcURL string) (entity.Connection, error) {
	dialCtx, cancel := context.WithTimeout(ctx, d.connectionTimeout)
	defer cancel()

	ethClient, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		d.logger.Error("Failed to connect to RPC", zap.String("url", rpcURL), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	d.logger.Debug("Connected to RPC", zap.String("url", rpcURL))
	return &evmConnection{
		ethClient:   ethClient,
		limiter:     rate.NewLimiter(d.rateLimit, d.burstLimit),
		callTimeout: d.callTimeout,
	}, nil
}
