package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BalanceFetchTotal counts per-network balance fetch attempts by outcome.
	BalanceFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_sync_balance_fetch_total",
			Help: "Number of native balance fetch attempts, by network and outcome.",
		},
		[]string{"network", "outcome"},
	)

	// StateCommitsTotal counts commits applied to the wallet state store.
	StateCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_sync_state_commits_total",
			Help: "Number of state transforms committed by the wallet state store.",
		},
	)

	// WalletConfigured reports whether relayer account, connection and a user
	// credential are all present (1) or not (0).
	WalletConfigured = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallet_sync_configured",
			Help: "1 when relayer account, connection and user credential all exist.",
		},
	)

	// ConnectionInitTotal counts primary connection initialization attempts.
	ConnectionInitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_sync_connection_init_total",
			Help: "Number of primary connection initialization attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
	OutcomeCached  = "cached"
)

// MustRegisterMetrics registers all collectors with the default registry.
// Panics on duplicate registration, which indicates a programming error.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		BalanceFetchTotal,
		StateCommitsTotal,
		WalletConfigured,
		ConnectionInitTotal,
	)
}
