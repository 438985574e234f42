// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "SOLSTARTER"

type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	ReadTimeoutMs  int    `mapstructure:"read_timeout_ms"`
	WriteTimeoutMs int    `mapstructure:"write_timeout_ms"`
}

type RateLimitConfig struct {
	Limit      int `mapstructure:"limit"`
	WindowMs   int `mapstructure:"window_ms"`
	DelayAfter int `mapstructure:"delay_after"`
	DelayMs    int `mapstructure:"delay_ms"`
	// MaxDelayMs - потолок задержки, 0 - половина server.write_timeout_ms.
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type MetadataConfig struct {
	ProxyBase         string   `mapstructure:"proxy_base"`
	Hashlist          []string `mapstructure:"hashlist"`
	Concurrency       int      `mapstructure:"concurrency"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
}

type Config struct {
	RPCList          []string `mapstructure:"rpc_list"`
	EndpointStrategy string   `mapstructure:"endpoint_strategy"`
	RPCRateLimit     int      `mapstructure:"rpc_rate_limit"`
	Commitment       string   `mapstructure:"commitment"`
	PollIntervalMs   int      `mapstructure:"poll_interval_ms"`
	MaxAttempts      int      `mapstructure:"max_attempts"`
	ExpiryMargin     uint64   `mapstructure:"expiry_margin"`
	TxFormat         string   `mapstructure:"tx_format"`
	SkipPreflight    bool     `mapstructure:"skip_preflight"`

	// Compute budget, 0 - не добавлять инструкции.
	ComputeUnits             uint32 `mapstructure:"compute_units"`
	PriorityFeeMicroLamports uint64 `mapstructure:"priority_fee_microlamports"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	WalletsFile  string `mapstructure:"wallets_file"`
	PostgresURL  string `mapstructure:"postgres_url"`

	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
}

const (
	DefaultPollIntervalMs = 2500
	DefaultMaxAttempts    = 5
	DefaultExpiryMargin   = 150
	DefaultRPCRateLimit   = 10
	DefaultListen         = ":3000"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"endpoint_strategy":            "random",
		"rpc_rate_limit":               DefaultRPCRateLimit,
		"commitment":                   "finalized",
		"poll_interval_ms":             DefaultPollIntervalMs,
		"max_attempts":                 DefaultMaxAttempts,
		"expiry_margin":                DefaultExpiryMargin,
		"tx_format":                    "legacy",
		"log_file":                     "solstarter.log",
		"wallets_file":                 "wallets.yaml",
		"server.listen":                DefaultListen,
		"server.read_timeout_ms":       15000,
		"server.write_timeout_ms":      15000,
		"rate_limit.limit":             200,
		"rate_limit.window_ms":         60000,
		"rate_limit.delay_after":       5,
		"rate_limit.delay_ms":          500,
		"rate_limit.max_delay_ms":      0,
		"mongo.database":               "solstarter",
		"amqp.exchange":                "solana.tx",
		"metadata.concurrency":         8,
		"metadata.requests_per_second": 10.0,
	}
}

// LoadConfig читает YAML файл. Пустой path - только defaults и окружение.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

// PollInterval и прочие геттеры переводят миллисекунды в time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutMs) * time.Millisecond
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutMs) * time.Millisecond
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

func (c RateLimitConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// RateLimitMaxDelay держит замедление ниже WriteTimeout, иначе сервер рвёт соединение до ответа.
func (c *Config) RateLimitMaxDelay() time.Duration {
	if c.RateLimit.MaxDelayMs > 0 {
		return time.Duration(c.RateLimit.MaxDelayMs) * time.Millisecond
	}
	return c.WriteTimeout() / 2
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL: %w", err)
		}
	}
	switch cfg.EndpointStrategy {
	case "random", "round_robin":
	default:
		return fmt.Errorf("invalid endpoint_strategy %q", cfg.EndpointStrategy)
	}
	switch cfg.Commitment {
	case "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment %q: must be confirmed or finalized", cfg.Commitment)
	}
	switch cfg.TxFormat {
	case "legacy", "v0":
	default:
		return fmt.Errorf("invalid tx_format %q", cfg.TxFormat)
	}
	if cfg.Mongo.URI != "" {
		if err := validateURLWithCache(cfg.Mongo.URI, "mongodb"); err != nil {
			return fmt.Errorf("invalid mongo uri: %w", err)
		}
	}
	if cfg.AMQP.URL != "" {
		if err := validateURLWithCache(cfg.AMQP.URL, "amqp"); err != nil {
			return fmt.Errorf("invalid amqp url: %w", err)
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.MaxAttempts <= 0 {
		return errors.New("invalid max_attempts")
	}
	if cfg.RPCRateLimit < 0 {
		return errors.New("invalid rpc_rate_limit")
	}
	if cfg.RateLimit.Limit <= 0 || cfg.RateLimit.WindowMs <= 0 {
		return errors.New("invalid rate_limit")
	}
	if cfg.RateLimit.DelayAfter < 0 || cfg.RateLimit.DelayMs < 0 || cfg.RateLimit.MaxDelayMs < 0 {
		return errors.New("invalid rate_limit delay")
	}
	if cfg.Server.ReadTimeoutMs <= 0 || cfg.Server.WriteTimeoutMs <= 0 {
		return errors.New("invalid server timeouts")
	}
	if cfg.RateLimit.MaxDelayMs >= cfg.Server.WriteTimeoutMs {
		return errors.New("rate_limit.max_delay_ms must be below server.write_timeout_ms")
	}
	if cfg.Metadata.Concurrency < 0 {
		return errors.New("invalid metadata.concurrency")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// loadEnvironmentVariables - списки из окружения через запятую.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	if list := splitList(v.GetString("RPC_LIST")); len(list) > 0 {
		cfg.RPCList = list
	}
	if list := splitList(v.GetString("METADATA_HASHLIST")); len(list) > 0 {
		cfg.Metadata.Hashlist = list
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
