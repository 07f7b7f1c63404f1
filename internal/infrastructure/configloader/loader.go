package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix of every environment variable this loader consults.
const envPrefix = "WALLET_SYNC_"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// RPCClientConfig holds configuration for RPC connections.
type RPCClientConfig struct {
	ConnectionTimeoutMs int64 `yaml:"connectionTimeoutMs"`
	CallTimeoutMs       int64 `yaml:"callTimeoutMs"`
	RateLimit           int   `yaml:"rateLimit"`
	BurstLimit          int   `yaml:"burstLimit"`
}

// BalanceCacheConfig holds configuration for the multi-network balance cache.
type BalanceCacheConfig struct {
	TTLSeconds             int `yaml:"ttlSeconds"`
	CleanupIntervalSeconds int `yaml:"cleanupIntervalSeconds"`
}

// FetcherConfig holds configuration for the multi-network balance fetcher.
type FetcherConfig struct {
	MaxConcurrentRequests int `yaml:"maxConcurrentRequests"`
}

// NetworkOverride carries per-network values configured in the YAML file.
// Both fields are optional; env variables take precedence over them.
type NetworkOverride struct {
	Identifier string `yaml:"identifier"`
	RPCURL     string `yaml:"rpcUrl"`
	Credential string `yaml:"credential"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server            ServerConfig       `yaml:"server"`
	Logging           LoggingConfig      `yaml:"logging"`
	RPCClient         RPCClientConfig    `yaml:"rpcClient"`
	BalanceCache      BalanceCacheConfig `yaml:"balanceCache"`
	Fetcher           FetcherConfig      `yaml:"fetcher"`
	PrimaryNetwork    string             `yaml:"primaryNetwork"`
	RelayerCredential string             `yaml:"relayerCredential"`
	RefreshIntervalS  int                `yaml:"refreshIntervalSeconds"`
	Networks          []NetworkOverride  `yaml:"networks"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	cfg.applyDefaults()

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

// applyDefaults fills in default values for fields that were not set.
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.RPCClient.ConnectionTimeoutMs <= 0 {
		c.RPCClient.ConnectionTimeoutMs = 10000 // 10 seconds
		logrus.Infof("RPCClient.ConnectionTimeoutMs not set, defaulting to %d ms", c.RPCClient.ConnectionTimeoutMs)
	}
	if c.RPCClient.CallTimeoutMs <= 0 {
		c.RPCClient.CallTimeoutMs = 10000 // 10 seconds
		logrus.Infof("RPCClient.CallTimeoutMs not set, defaulting to %d ms", c.RPCClient.CallTimeoutMs)
	}
	if c.RPCClient.RateLimit <= 0 {
		c.RPCClient.RateLimit = 10
	}
	if c.RPCClient.BurstLimit <= 0 {
		c.RPCClient.BurstLimit = 5
	}
	if c.BalanceCache.TTLSeconds <= 0 {
		c.BalanceCache.TTLSeconds = 30
	}
	if c.BalanceCache.CleanupIntervalSeconds <= 0 {
		c.BalanceCache.CleanupIntervalSeconds = 120
	}
	if c.Fetcher.MaxConcurrentRequests <= 0 {
		c.Fetcher.MaxConcurrentRequests = 7 // One in-flight request per catalog network
	}
}

// envKey builds the environment variable name for a network-specific value,
// e.g. envKey("ethereum", "PRIVATE_KEY") => "WALLET_SYNC_ETHEREUM_PRIVATE_KEY".
func envKey(identifier, suffix string) string {
	if identifier == "" {
		return envPrefix + suffix
	}
	return envPrefix + strings.ToUpper(identifier) + "_" + suffix
}

// override returns the YAML override block for the given network, if any.
func (c *Config) override(identifier string) (NetworkOverride, bool) {
	for _, n := range c.Networks {
		if strings.EqualFold(n.Identifier, identifier) {
			return n, true
		}
	}
	return NetworkOverride{}, false
}

// CredentialFor resolves the credential for a network through the fallback
// chain: network-specific env variable, YAML override, default env variable.
// An empty result means no credential is configured for that network.
func (c *Config) CredentialFor(identifier string) string {
	if v := os.Getenv(envKey(identifier, "PRIVATE_KEY")); v != "" {
		return v
	}
	if ov, ok := c.override(identifier); ok && ov.Credential != "" {
		return ov.Credential
	}
	return os.Getenv(envKey("", "PRIVATE_KEY"))
}

// RPCURLFor resolves the RPC endpoint for a network: network-specific env
// variable, YAML override, then the catalog default passed by the caller.
func (c *Config) RPCURLFor(identifier, catalogDefault string) string {
	if v := os.Getenv(envKey(identifier, "RPC_URL")); v != "" {
		return v
	}
	if ov, ok := c.override(identifier); ok && ov.RPCURL != "" {
		return ov.RPCURL
	}
	return catalogDefault
}

// RelayerCredentialValue resolves the relayer credential: env variable first,
// then the YAML field. Empty means the relayer is not configured.
func (c *Config) RelayerCredentialValue() string {
	if v := os.Getenv(envKey("", "RELAYER_PRIVATE_KEY")); v != "" {
		return v
	}
	return c.RelayerCredential
}
