package entity

import "fmt"

// ConfigurationError reports a missing required configuration value
// (RPC URL or relayer credential). Fatal to initialize, recoverable by
// re-invoking after fixing configuration.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: missing %s", e.Missing)
}

// ConnectionError reports an RPC open/query failure during primary
// initialization. Recorded into WalletState.LastError, recoverable by
// reinitializing.
type ConnectionError struct {
	Stage string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Stage, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ValidationError reports a malformed credential. Causes a per-network skip,
// never propagates past the fetcher.
type ValidationError struct {
	Network string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: malformed credential for network %s", e.Network)
}

// DerivationError reports a failed account derivation for a
// syntactically-valid-looking credential.
type DerivationError struct {
	Err error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derivation error: %v", e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }
