package configloader

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when neither --config nor CONFIG_PATH is set.
const DefaultConfigPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// NetworkNodeConfig overrides or extends a built-in network definition.
type NetworkNodeConfig struct {
	ChainID         uint64   `yaml:"chainId"`
	Name            string   `yaml:"name"`
	Identifier      string   `yaml:"identifier"`
	ChainType       string   `yaml:"chainType"`
	RPCURL          string   `yaml:"rpcURL"`
	FallbackRPCURLs []string `yaml:"fallbackRpcURLs"`
	NativeSymbol    string   `yaml:"nativeSymbol"`
	NativeAddress   string   `yaml:"nativeAddress"`
	NativeDecimals  uint8    `yaml:"nativeDecimals"`
}

// RPCClientConfig holds settings of the JSON-RPC balance client.
type RPCClientConfig struct {
	ConnectionTimeoutSeconds int     `yaml:"connectionTimeoutSeconds"`
	CallTimeoutSeconds       int     `yaml:"callTimeoutSeconds"`
	MaxRetries               int     `yaml:"maxRetries"`
	RetryDelayMs             int     `yaml:"retryDelayMs"`
	RequestsPerSecond        float64 `yaml:"requestsPerSecond"`
	Burst                    int     `yaml:"burst"`
	MaxBatchSize             int     `yaml:"maxBatchSize"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
}

// SufficiencyConfig holds settings of the gas sufficiency check.
type SufficiencyConfig struct {
	RefetchInterval     time.Duration `yaml:"refetchInterval"`
	RefuelTool          string        `yaml:"refuelTool"`
	SponsoredConnectors []string      `yaml:"sponsoredConnectors"`
}

// GasRecommendationConfig holds settings of the gas recommendation API client.
type GasRecommendationConfig struct {
	BaseURL              string        `yaml:"baseURL"`
	APIKey               string        `yaml:"apiKey"`
	RequestTimeoutMillis int64         `yaml:"requestTimeoutMillis"`
	CacheTTL             time.Duration `yaml:"cacheTTL"`
}

// TracingConfig holds OpenTelemetry exporter settings. An empty endpoint disables tracing.
type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"serviceName"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server            ServerConfig            `yaml:"server"`
	Logging           LoggingConfig           `yaml:"logging"`
	Networks          []NetworkNodeConfig     `yaml:"networks"`
	RPCClient         RPCClientConfig         `yaml:"rpcClient"`
	Performance       PerformanceConfig       `yaml:"performance"`
	Sufficiency       SufficiencyConfig       `yaml:"sufficiency"`
	GasRecommendation GasRecommendationConfig `yaml:"gasRecommendation"`
	Tracing           TracingConfig           `yaml:"tracing"`
}

// ResolvePath picks the config path: explicit flag, then CONFIG_PATH, then the default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	log := logrus.WithField("component", "configloader")

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
		log.Debug("performance.max_concurrent_routines not set, using 10")
	}

	if cfg.RPCClient.ConnectionTimeoutSeconds <= 0 {
		cfg.RPCClient.ConnectionTimeoutSeconds = 10
	}
	if cfg.RPCClient.CallTimeoutSeconds <= 0 {
		cfg.RPCClient.CallTimeoutSeconds = 10
	}
	if cfg.RPCClient.MaxRetries <= 0 {
		cfg.RPCClient.MaxRetries = 3
	}
	if cfg.RPCClient.RetryDelayMs <= 0 {
		cfg.RPCClient.RetryDelayMs = 500
	}
	if cfg.RPCClient.RequestsPerSecond <= 0 {
		cfg.RPCClient.RequestsPerSecond = 20
	}
	if cfg.RPCClient.Burst <= 0 {
		cfg.RPCClient.Burst = 5
	}
	if cfg.RPCClient.MaxBatchSize <= 0 {
		cfg.RPCClient.MaxBatchSize = 50
	}

	if cfg.Sufficiency.RefetchInterval <= 0 {
		cfg.Sufficiency.RefetchInterval = 30 * time.Second
		log.Debug("sufficiency.refetchInterval not set, using 30s")
	}
	if cfg.Sufficiency.RefuelTool == "" {
		cfg.Sufficiency.RefuelTool = "lifuelProtocol"
	}
	// An explicit empty list disables sponsorship.
	if cfg.Sufficiency.SponsoredConnectors == nil {
		cfg.Sufficiency.SponsoredConnectors = []string{"safe"}
	}

	if cfg.GasRecommendation.BaseURL == "" {
		cfg.GasRecommendation.BaseURL = "https://li.quest/v1"
	}
	cfg.GasRecommendation.BaseURL = strings.TrimRight(cfg.GasRecommendation.BaseURL, "/")
	if cfg.GasRecommendation.RequestTimeoutMillis <= 0 {
		cfg.GasRecommendation.RequestTimeoutMillis = 10000
	}
	if cfg.GasRecommendation.CacheTTL <= 0 {
		cfg.GasRecommendation.CacheTTL = cfg.Sufficiency.RefetchInterval
	}

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "gas_checker"
	}
	if cfg.Tracing.OTLPEndpoint == "" {
		log.Debug("tracing.otlpEndpoint not set, tracing disabled")
	}
}

func validate(cfg *Config) error {
	for i, network := range cfg.Networks {
		if network.ChainID == 0 {
			return fmt.Errorf("networks[%d]: chainId is required", i)
		}
		isEVM := network.ChainType == "" || strings.EqualFold(network.ChainType, "EVM")
		if isEVM && network.RPCURL == "" {
			logrus.WithField("chainId", network.ChainID).Warn("network override without rpcURL, built-in RPC endpoints are kept")
		}
	}
	return nil
}

// IsSponsoredConnector reports whether connectorID pays gas on behalf of the account.
func (c SufficiencyConfig) IsSponsoredConnector(connectorID string) bool {
	for _, id := range c.SponsoredConnectors {
		if strings.EqualFold(id, connectorID) {
			return true
		}
	}
	return false
}
