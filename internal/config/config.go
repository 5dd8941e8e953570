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

	"github.com/spf13/viper"
)

// TokenConfig describes one entry of the token catalog.
type TokenConfig struct {
	Symbol    string   `mapstructure:"symbol"`
	Name      string   `mapstructure:"name"`
	Address   string   `mapstructure:"address"`
	Price     float64  `mapstructure:"price"`
	Change24h float64  `mapstructure:"change_24h"`
	Balance   float64  `mapstructure:"balance"`
	Variants  []string `mapstructure:"variants"`
}

// PoolConfig describes one entry of the pool list.
type PoolConfig struct {
	ID        string  `mapstructure:"id"`
	Base      string  `mapstructure:"base"`
	Quote     string  `mapstructure:"quote"`
	Liquidity float64 `mapstructure:"liquidity"`
	Volume24h float64 `mapstructure:"volume_24h"`
	APR       float64 `mapstructure:"apr"`
	Change    float64 `mapstructure:"change"`
	Share     float64 `mapstructure:"share"`
	Value     float64 `mapstructure:"value"`
	Mine      bool    `mapstructure:"mine"`
}

type Config struct {
	APIKey           string        `mapstructure:"api_key"`
	PriceAPIURL      string        `mapstructure:"price_api_url"`
	RequestTimeoutMs int           `mapstructure:"request_timeout_ms"`
	Retries          int           `mapstructure:"retries"`
	RateLimitRPS     float64       `mapstructure:"rate_limit_rps"`
	DebugLogging     bool          `mapstructure:"debug_logging"`
	LogFile          string        `mapstructure:"log_file"`
	StateDB          string        `mapstructure:"state_db"`
	HistoryFile      string        `mapstructure:"history_file"`
	RotateHistory    bool          `mapstructure:"rotate_history"`
	ExportDir        string        `mapstructure:"export_dir"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	Slippage         float64       `mapstructure:"slippage"`
	PriceAlertPct    float64       `mapstructure:"price_alert_percent"`
	NetworkFee       string        `mapstructure:"network_fee"`
	HookWhitelist    []string      `mapstructure:"hook_whitelist"`
	Tokens           []TokenConfig `mapstructure:"tokens"`
	Pools            []PoolConfig  `mapstructure:"pools"`
}

const (
	DefaultPriceAPIURL      = "https://pro-api.coinmarketcap.com/v1"
	DefaultRequestTimeoutMs = 10000
	DefaultRetries          = 0
	DefaultRateLimitRPS     = 5
	DefaultLogFile          = "logs/dex2k.log"
	DefaultStateDB          = "data/state.db"
	DefaultHistoryFile      = "data/swaps.csv"
	DefaultRotateHistory    = true
	DefaultExportDir        = "exports"
	DefaultSlippage         = 0.5
	DefaultPriceAlertPct    = 5.0
	DefaultNetworkFee       = "~$0.002"
)

// EnvPrefix is the prefix for environment overrides (DEX2K_API_KEY etc).
const EnvPrefix = "DEX2K"

// LoadConfig reads the config file at path. An empty path yields defaults
// plus environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, _ := LoadConfig("")
	return cfg
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"price_api_url":       DefaultPriceAPIURL,
		"request_timeout_ms":  DefaultRequestTimeoutMs,
		"retries":             DefaultRetries,
		"rate_limit_rps":      DefaultRateLimitRPS,
		"log_file":            DefaultLogFile,
		"state_db":            DefaultStateDB,
		"history_file":        DefaultHistoryFile,
		"rotate_history":      DefaultRotateHistory,
		"export_dir":          DefaultExportDir,
		"slippage":            DefaultSlippage,
		"price_alert_percent": DefaultPriceAlertPct,
		"network_fee":         DefaultNetworkFee,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func validateConfig(cfg *Config) error {
	if err := validateURLWithCache(cfg.PriceAPIURL, "http"); err != nil {
		return fmt.Errorf("invalid price_api_url: %w", err)
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		sym := strings.ToUpper(strings.TrimSpace(t.Symbol))
		if sym == "" {
			return errors.New("token with empty symbol")
		}
		if _, dup := seen[sym]; dup {
			return fmt.Errorf("duplicate token symbol %s", sym)
		}
		seen[sym] = struct{}{}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RateLimitRPS < 0 {
		return errors.New("invalid rate_limit_rps")
	}
	if cfg.Slippage < 0 || cfg.Slippage > 100 {
		return errors.New("slippage must be between 0 and 100")
	}
	if cfg.PriceAlertPct < 0 {
		return errors.New("invalid price_alert_percent")
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
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envKey := v.GetString("API_KEY"); envKey != "" {
		cfg.APIKey = envKey
	}
	if envURL := v.GetString("PRICE_API_URL"); envURL != "" {
		cfg.PriceAPIURL = envURL
	}

	envWhitelist := v.GetString("HOOK_WHITELIST")
	if envWhitelist != "" {
		var ids []string
		for _, id := range strings.Split(envWhitelist, ",") {
			clean := strings.TrimSpace(id)
			if clean != "" {
				ids = append(ids, clean)
			}
		}
		if len(ids) > 0 {
			cfg.HookWhitelist = ids
		}
	}
	return nil
}
