package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	StoreBackend  string `mapstructure:"STORE_BACKEND"`
	RecordKey     string `mapstructure:"RECORD_KEY"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`

	PageLoadTimeoutSeconds int    `mapstructure:"PAGE_LOAD_TIMEOUT"`
	SettleTimeoutMS        int    `mapstructure:"SETTLE_TIMEOUT_MS"`
	SettlePollMS           int    `mapstructure:"SETTLE_POLL_MS"`
	Headless               bool   `mapstructure:"HEADLESS"`
	AcceptLanguage         string `mapstructure:"ACCEPT_LANGUAGE"`
	ProxyURLs              string `mapstructure:"PROXY_URLS"`
	UserAgents             string `mapstructure:"USER_AGENTS"`
	BrowserWSURL           string `mapstructure:"BROWSER_WS_URL"`

	FormSubmitSelector  string `mapstructure:"FORM_SUBMIT_SELECTOR"`
	FormSubmitTimeoutMS int    `mapstructure:"FORM_SUBMIT_TIMEOUT_MS"`

	CatalogBaseURL         string `mapstructure:"CATALOG_BASE_URL"`
	CatalogAPIKey          string `mapstructure:"CATALOG_API_KEY"`
	CatalogTimeoutSeconds  int    `mapstructure:"CATALOG_TIMEOUT_SECONDS"`
	VerifyConstructedCover bool   `mapstructure:"VERIFY_CONSTRUCTED_COVER"`

	ImageProbeTimeoutSeconds int    `mapstructure:"IMAGE_PROBE_TIMEOUT_SECONDS"`
	LanguageDisplayLocale    string `mapstructure:"LANGUAGE_DISPLAY_LOCALE"`
	WatchIntervalMS          int    `mapstructure:"WATCH_INTERVAL_MS"`
}

var defaults = map[string]any{
	"SERVER_PORT":                 "8080",
	"LOG_LEVEL":                   "info",
	"STORE_BACKEND":               BackendMemory,
	"RECORD_KEY":                  "bookmeta:record",
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"POSTGRES_URL":                "",
	"PAGE_LOAD_TIMEOUT":           60, // in seconds
	"SETTLE_TIMEOUT_MS":           500,
	"SETTLE_POLL_MS":              50,
	"HEADLESS":                    true,
	"ACCEPT_LANGUAGE":             "en-US,en;q=0.9",
	"PROXY_URLS":                  "",
	"USER_AGENTS":                 "",
	"BROWSER_WS_URL":              "",
	"FORM_SUBMIT_SELECTOR":        "",
	"FORM_SUBMIT_TIMEOUT_MS":      10000,
	"CATALOG_BASE_URL":            "https://www.googleapis.com/books/v1",
	"CATALOG_API_KEY":             "",
	"CATALOG_TIMEOUT_SECONDS":     10,
	"VERIFY_CONSTRUCTED_COVER":    false,
	"IMAGE_PROBE_TIMEOUT_SECONDS": 15,
	"LANGUAGE_DISPLAY_LOCALE":     "en",
	"WATCH_INTERVAL_MS":           1000,
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The file is optional so configuration can come purely from the
	// environment in production.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when STORE_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.SettleTimeoutMS < 0 || c.SettlePollMS <= 0 {
		return fmt.Errorf("settle timeout must be >= 0 and poll interval > 0")
	}
	return nil
}

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

func (c *Config) SettleTimeout() time.Duration {
	return time.Duration(c.SettleTimeoutMS) * time.Millisecond
}

func (c *Config) SettlePoll() time.Duration {
	return time.Duration(c.SettlePollMS) * time.Millisecond
}

func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

func (c *Config) ImageProbeTimeout() time.Duration {
	return time.Duration(c.ImageProbeTimeoutSeconds) * time.Second
}

func (c *Config) FormSubmitTimeout() time.Duration {
	return time.Duration(c.FormSubmitTimeoutMS) * time.Millisecond
}

func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalMS) * time.Millisecond
}
