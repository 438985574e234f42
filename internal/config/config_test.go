package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
rpc_list:
  - https://api.mainnet-beta.solana.com
`))
	require.NoError(t, err)

	assert.Equal(t, "random", cfg.EndpointStrategy)
	assert.Equal(t, "finalized", cfg.Commitment)
	assert.Equal(t, 2500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, uint64(150), cfg.ExpiryMargin)
	assert.Equal(t, "legacy", cfg.TxFormat)
	assert.Equal(t, ":3000", cfg.Server.Listen)
	assert.Equal(t, 200, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, 5, cfg.RateLimit.DelayAfter)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.Delay())
	assert.Equal(t, cfg.WriteTimeout()/2, cfg.RateLimitMaxDelay())
	assert.Less(t, cfg.RateLimitMaxDelay(), cfg.WriteTimeout())
	assert.Equal(t, 8, cfg.Metadata.Concurrency)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
rpc_list: ["https://a.example", "https://b.example"]
endpoint_strategy: round_robin
tx_format: v0
commitment: confirmed
compute_units: 300000
priority_fee_microlamports: 5000
server:
  listen: "127.0.0.1:8080"
rate_limit:
  limit: 50
mongo:
  uri: mongodb://localhost:27017
metadata:
  proxy_base: https://ik.imagekit.io/demo
  hashlist: [mintA, mintB]
`))
	require.NoError(t, err)
	assert.Len(t, cfg.RPCList, 2)
	assert.Equal(t, "round_robin", cfg.EndpointStrategy)
	assert.Equal(t, "v0", cfg.TxFormat)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, uint32(300000), cfg.ComputeUnits)
	assert.Equal(t, uint64(5000), cfg.PriorityFeeMicroLamports)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
	assert.Equal(t, 50, cfg.RateLimit.Limit)
	assert.Equal(t, []string{"mintA", "mintB"}, cfg.Metadata.Hashlist)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SOLSTARTER_RPC_LIST", "https://x.example, https://y.example ,")
	t.Setenv("SOLSTARTER_MAX_ATTEMPTS", "3")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.RPCList)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty rpc":      `max_attempts: 3`,
		"bad scheme":     `rpc_list: ["ftp://node"]`,
		"bad strategy":   "rpc_list: [\"https://a\"]\nendpoint_strategy: fastest",
		"bad commitment": "rpc_list: [\"https://a\"]\ncommitment: processed",
		"bad format":     "rpc_list: [\"https://a\"]\ntx_format: v1",
		"bad attempts":   "rpc_list: [\"https://a\"]\nmax_attempts: 0",
		"bad amqp":       "rpc_list: [\"https://a\"]\namqp:\n  url: http://broker",
		"bad max delay":  "rpc_list: [\"https://a\"]\nrate_limit:\n  max_delay_ms: 15000",
		"bad timeout":    "rpc_list: [\"https://a\"]\nserver:\n  write_timeout_ms: -1",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRateLimitMaxDelay(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
rpc_list: ["https://a.example"]
server:
  write_timeout_ms: 4000
rate_limit:
  max_delay_ms: 1200
`))
	require.NoError(t, err)
	assert.Equal(t, 1200*time.Millisecond, cfg.RateLimitMaxDelay())

	cfg.RateLimit.MaxDelayMs = 0
	assert.Equal(t, 2*time.Second, cfg.RateLimitMaxDelay())
}
