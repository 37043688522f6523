package configloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Performance.MaxConcurrentRoutines)
	assert.Equal(t, 30*time.Second, cfg.Sufficiency.RefetchInterval)
	assert.Equal(t, "lifuelProtocol", cfg.Sufficiency.RefuelTool)
	assert.Equal(t, []string{"safe"}, cfg.Sufficiency.SponsoredConnectors)
	assert.Equal(t, "https://li.quest/v1", cfg.GasRecommendation.BaseURL)
	assert.Equal(t, cfg.Sufficiency.RefetchInterval, cfg.GasRecommendation.CacheTTL)
	assert.Equal(t, 50, cfg.RPCClient.MaxBatchSize)
	assert.Equal(t, "gas_checker", cfg.Tracing.ServiceName)
}

func TestParse(t *testing.T) {
	data := []byte(`
server:
  port: "9090"
logging:
  level: debug
  format: console
sufficiency:
  refetchInterval: 10s
  sponsoredConnectors: [safe, argent]
gasRecommendation:
  baseURL: https://example.org/v1/
  apiKey: secret
networks:
  - chainId: 1
    rpcURL: https://rpc.example.org
  - chainId: 8453
    chainType: evm
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 10*time.Second, cfg.Sufficiency.RefetchInterval)
	assert.Equal(t, 10*time.Second, cfg.GasRecommendation.CacheTTL)
	assert.Equal(t, "https://example.org/v1", cfg.GasRecommendation.BaseURL)
	assert.Equal(t, "secret", cfg.GasRecommendation.APIKey)
	require.Len(t, cfg.Networks, 2)
	assert.Equal(t, "https://rpc.example.org", cfg.Networks[0].RPCURL)

	assert.True(t, cfg.Sufficiency.IsSponsoredConnector("Argent"))
	assert.False(t, cfg.Sufficiency.IsSponsoredConnector("metaMask"))
}

func TestParseEmptySponsoredConnectors(t *testing.T) {
	cfg, err := Parse([]byte("sufficiency:\n  sponsoredConnectors: []\n"))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Sufficiency.SponsoredConnectors)
	assert.Empty(t, cfg.Sufficiency.SponsoredConnectors)
	assert.False(t, cfg.Sufficiency.IsSponsoredConnector("safe"))

	cfg, err = Parse([]byte("sufficiency:\n  refuelTool: lifuelProtocol\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"safe"}, cfg.Sufficiency.SponsoredConnectors)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("server: [unterminated"))
	assert.Error(t, err)

	_, err = Parse([]byte("networks:\n  - name: missing id\n"))
	assert.ErrorContains(t, err, "chainId is required")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"7000\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultConfigPath, ResolvePath(""))

	t.Setenv("CONFIG_PATH", "/etc/gas_checker.yml")
	assert.Equal(t, "/etc/gas_checker.yml", ResolvePath(""))
	assert.Equal(t, "local.yml", ResolvePath("local.yml"))
}
