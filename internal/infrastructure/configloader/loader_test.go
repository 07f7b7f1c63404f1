package configloader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "primaryNetwork: ethereum\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.RPCClient.ConnectionTimeoutMs != 10000 || cfg.RPCClient.CallTimeoutMs != 10000 {
		t.Errorf("RPC timeouts = %d/%d, want 10000/10000",
			cfg.RPCClient.ConnectionTimeoutMs, cfg.RPCClient.CallTimeoutMs)
	}
	if cfg.BalanceCache.TTLSeconds != 30 || cfg.BalanceCache.CleanupIntervalSeconds != 120 {
		t.Errorf("cache config = %d/%d, want 30/120",
			cfg.BalanceCache.TTLSeconds, cfg.BalanceCache.CleanupIntervalSeconds)
	}
	if cfg.Fetcher.MaxConcurrentRequests != 7 {
		t.Errorf("MaxConcurrentRequests = %d, want 7", cfg.Fetcher.MaxConcurrentRequests)
	}
	if cfg.PrimaryNetwork != "ethereum" {
		t.Errorf("PrimaryNetwork = %q, want %q", cfg.PrimaryNetwork, "ethereum")
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
rpcClient:
  connectionTimeoutMs: 2500
  rateLimit: 40
fetcher:
  maxConcurrentRequests: 3
refreshIntervalSeconds: 45
networks:
  - identifier: bsc
    rpcUrl: https://bsc.example
    credential: deadbeef
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.RPCClient.ConnectionTimeoutMs != 2500 {
		t.Errorf("ConnectionTimeoutMs = %d, want 2500", cfg.RPCClient.ConnectionTimeoutMs)
	}
	if cfg.Fetcher.MaxConcurrentRequests != 3 {
		t.Errorf("MaxConcurrentRequests = %d, want 3", cfg.Fetcher.MaxConcurrentRequests)
	}
	if cfg.RefreshIntervalS != 45 {
		t.Errorf("RefreshIntervalS = %d, want 45", cfg.RefreshIntervalS)
	}
	if len(cfg.Networks) != 1 || cfg.Networks[0].RPCURL != "https://bsc.example" {
		t.Errorf("networks = %+v", cfg.Networks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail for malformed YAML")
	}
}

func TestCredentialForFallbackChain(t *testing.T) {
	cfg := &Config{Networks: []NetworkOverride{{Identifier: "polygon", Credential: "yaml-key"}}}

	t.Setenv("WALLET_SYNC_POLYGON_PRIVATE_KEY", "")
	t.Setenv("WALLET_SYNC_PRIVATE_KEY", "")

	// YAML override wins when no env variable is set.
	if got := cfg.CredentialFor("polygon"); got != "yaml-key" {
		t.Errorf("CredentialFor = %q, want yaml override", got)
	}

	// The shared default env variable covers networks without an override.
	t.Setenv("WALLET_SYNC_PRIVATE_KEY", "shared-key")
	if got := cfg.CredentialFor("bsc"); got != "shared-key" {
		t.Errorf("CredentialFor = %q, want shared env key", got)
	}

	// The network-specific env variable beats everything.
	t.Setenv("WALLET_SYNC_POLYGON_PRIVATE_KEY", "env-key")
	if got := cfg.CredentialFor("polygon"); got != "env-key" {
		t.Errorf("CredentialFor = %q, want network env key", got)
	}
}

func TestRPCURLForFallbackChain(t *testing.T) {
	cfg := &Config{Networks: []NetworkOverride{{Identifier: "base", RPCURL: "https://yaml.example"}}}

	t.Setenv("WALLET_SYNC_BASE_RPC_URL", "")
	if got := cfg.RPCURLFor("base", "https://default.example"); got != "https://yaml.example" {
		t.Errorf("RPCURLFor = %q, want yaml override", got)
	}
	if got := cfg.RPCURLFor("optimism", "https://default.example"); got != "https://default.example" {
		t.Errorf("RPCURLFor = %q, want catalog default", got)
	}

	t.Setenv("WALLET_SYNC_BASE_RPC_URL", "https://env.example")
	if got := cfg.RPCURLFor("base", "https://default.example"); got != "https://env.example" {
		t.Errorf("RPCURLFor = %q, want env value", got)
	}
}

func TestRelayerCredentialValue(t *testing.T) {
	cfg := &Config{RelayerCredential: "yaml-relayer"}

	t.Setenv("WALLET_SYNC_RELAYER_PRIVATE_KEY", "")
	if got := cfg.RelayerCredentialValue(); got != "yaml-relayer" {
		t.Errorf("RelayerCredentialValue = %q, want yaml value", got)
	}

	t.Setenv("WALLET_SYNC_RELAYER_PRIVATE_KEY", "env-relayer")
	if got := cfg.RelayerCredentialValue(); got != "env-relayer" {
		t.Errorf("RelayerCredentialValue = %q, want env value", got)
	}
}
