package service

import (
	"context"
	"sync"
	"time"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/configloader"
	"wallet_sync/internal/pkg/keys"
	"wallet_sync/internal/pkg/metrics"
	"wallet_sync/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// MultiNetworkBalanceFetcher fans out native balance queries across every
// catalog network with a usable credential. One network's failure never
// affects another's result or aborts the batch: failures become the
// ZeroBalance sentinel entry before aggregation.
type MultiNetworkBalanceFetcher struct {
	catalog       port.NetworkCatalog
	dialer        port.ChainDialer
	deriver       port.AccountDeriver
	store         *WalletStateStore
	logger        port.Logger
	entryCache    *cache.Cache
	maxConcurrent int
}

// NewMultiNetworkBalanceFetcher creates a new MultiNetworkBalanceFetcher.
func NewMultiNetworkBalanceFetcher(
	catalog port.NetworkCatalog,
	dialer port.ChainDialer,
	deriver port.AccountDeriver,
	store *WalletStateStore,
	cfg *configloader.Config,
	log port.Logger,
) *MultiNetworkBalanceFetcher {
	return &MultiNetworkBalanceFetcher{
		catalog: catalog,
		dialer:  dialer,
		deriver: deriver,
		store:   store,
		logger:  log,
		entryCache: cache.New(
			time.Duration(cfg.BalanceCache.TTLSeconds)*time.Second,
			time.Duration(cfg.BalanceCache.CleanupIntervalSeconds)*time.Second,
		),
		maxConcurrent: cfg.Fetcher.MaxConcurrentRequests,
	}
}

// FetchAll queries every eligible network concurrently, waits until all have
// settled and commits the resulting mapping wholesale, replacing any prior
// value. Networks without a usable credential produce no entry at all.
func (f *MultiNetworkBalanceFetcher) FetchAll(ctx context.Context) map[string]entity.BalanceEntry {
	descriptors := f.catalog.GetAllNetworkDescriptors()
	results := make(map[string]entity.BalanceEntry, len(descriptors))
	var mu sync.Mutex

	eg, fetchCtx := errgroup.WithContext(ctx)
	eg.SetLimit(f.maxConcurrent)

	for _, descriptor := range descriptors {
		if keys.IsPlaceholder(descriptor.Credential) {
			f.logger.Debug("Skipping network without credential", "network", descriptor.Identifier)
			metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeSkipped).Inc()
			continue
		}
		if !keys.IsValidCredential(descriptor.Credential) {
			validationErr := &entity.ValidationError{Network: descriptor.Identifier}
			f.logger.Warn("Skipping network with malformed credential", "error", validationErr.Error())
			metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeSkipped).Inc()
			continue
		}

		d := descriptor
		eg.Go(func() error {
			entry := f.fetchOne(fetchCtx, d)
			mu.Lock()
			results[d.Name] = entry
			mu.Unlock()
			// Failures were already converted to the sentinel entry; the
			// group must never see them.
			return nil
		})
	}

	_ = eg.Wait()

	committed := make(map[string]entity.BalanceEntry, len(results))
	for name, entry := range results {
		committed[name] = entry
	}
	f.store.Apply(func(st entity.WalletState) entity.WalletState {
		st.MultiNetworkBalances = committed
		return st
	})

	f.logger.Info("Multi-network balance fetch complete", "entries", len(results))
	return results
}

// fetchOne opens an ephemeral connection to one network, derives the account
// from its credential and queries the native balance. Any failure yields the
// fallback entry instead of an error.
func (f *MultiNetworkBalanceFetcher) fetchOne(ctx context.Context, descriptor entity.NetworkDescriptor) entity.BalanceEntry {
	if cached, ok := f.entryCache.Get(descriptor.Identifier); ok {
		if entry, ok := cached.(entity.BalanceEntry); ok {
			metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeCached).Inc()
			return entry
		}
	}

	fallback := entity.BalanceEntry{Balance: utils.ZeroBalance, Currency: descriptor.NativeSymbol}

	conn, err := f.dialer.Dial(ctx, descriptor.RPCURL)
	if err != nil {
		f.logger.Warn("Failed to connect to network", "network", descriptor.Identifier, "error", err)
		metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeError).Inc()
		return fallback
	}
	defer conn.Close()

	account, err := f.deriver.Derive(descriptor.Credential, conn)
	if err != nil {
		f.logger.Warn("Failed to derive account for network", "network", descriptor.Identifier, "error", err)
		metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeError).Inc()
		return fallback
	}

	balance, err := conn.GetBalance(ctx, account.Address)
	if err != nil {
		f.logger.Warn("Failed to fetch balance for network", "network", descriptor.Identifier, "error", err)
		metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeError).Inc()
		return fallback
	}

	entry := entity.BalanceEntry{
		Balance:  utils.FormatUnits(balance, descriptor.Decimals),
		Currency: descriptor.NativeSymbol,
	}
	f.entryCache.Set(descriptor.Identifier, entry, cache.DefaultExpiration)
	metrics.BalanceFetchTotal.WithLabelValues(descriptor.Identifier, metrics.OutcomeSuccess).Inc()
	return entry
}
