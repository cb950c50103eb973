package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

// Error policies applied by providers when a secondary fetch fails.
const (
	ErrorPolicyPartial = "partial"
	ErrorPolicyStrict  = "strict"
)

const (
	defaultClientTimeout = 30 * time.Second
	defaultConcurrency   = 4
	defaultRetryBackoff  = 500 * time.Millisecond
	defaultCacheTTL      = 15 * time.Minute
)

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	GRPC struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"grpc"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider string `mapstructure:"provider"` // "memory", "redis" or empty to disable
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Fetch struct {
		Concurrency  int    `mapstructure:"concurrency"`
		Retries      int    `mapstructure:"retries"`
		RetryBackoff string `mapstructure:"retry_backoff"`
		ErrorPolicy  string `mapstructure:"error_policy"`
	} `mapstructure:"fetch"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Sentry    struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetDefault("server.address", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("grpc.port", 8081)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("cache.size", 1000)
	viper.SetDefault("cache.ttl", "15m")
	viper.SetDefault("fetch.concurrency", defaultConcurrency)
	viper.SetDefault("fetch.retry_backoff", defaultRetryBackoff.String())
	viper.SetDefault("fetch.error_policy", ErrorPolicyPartial)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// GetClientTimeout returns the per-request timeout, falling back to 30s when
// the configured value is missing or invalid.
func (c *Config) GetClientTimeout() time.Duration {
	return parseDurationOr(c.ClientTimeout, defaultClientTimeout)
}

// GetRetryBackoff returns the delay between fetch retries.
func (c *Config) GetRetryBackoff() time.Duration {
	return parseDurationOr(c.Fetch.RetryBackoff, defaultRetryBackoff)
}

// GetConcurrency returns the fan-out limit for concurrent sub-requests.
func (c *Config) GetConcurrency() int {
	if c.Fetch.Concurrency <= 0 {
		return defaultConcurrency
	}
	return c.Fetch.Concurrency
}

// GetCacheTTL returns how long cached catalog responses stay valid.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDurationOr(c.Cache.TTL, defaultCacheTTL)
}

// IsStrict reports whether sub-request failures must abort the whole call.
func (c *Config) IsStrict() bool {
	return strings.EqualFold(c.Fetch.ErrorPolicy, ErrorPolicyStrict)
}

// ProviderBaseURL returns the configured base URL override for a provider, or fallback.
func (c *Config) ProviderBaseURL(id, fallback string) string {
	if p, ok := c.Providers[id]; ok && p.BaseURL != "" {
		return strings.TrimRight(p.BaseURL, "/")
	}
	return fallback
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn().Str("value", value).Dur("fallback", fallback).Msg("Invalid duration in config, using default")
		return fallback
	}
	return d
}
