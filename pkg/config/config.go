package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const ConfigFileName = ".ftxwidget.json"

const DefaultBaseURL = "https://ftx.com/api"

var ErrNoCredentials = errors.New("no API credentials configured")

// ExchangeConfig holds connection settings for the trading API.
type ExchangeConfig struct {
	BaseURL               string `json:"base_url"`
	APIKey                string `json:"api_key,omitempty"`
	APISecret             string `json:"api_secret,omitempty"`
	Subaccount            string `json:"subaccount,omitempty"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// OAuthConfig holds the settings used to build the account connect URL.
type OAuthConfig struct {
	AuthorizeURL string `json:"authorize_url"`
	ClientID     string `json:"client_id"`
	RedirectURL  string `json:"redirect_url"`
}

// WidgetConfig holds display settings.
type WidgetConfig struct {
	HideBalances  bool `json:"hide_balances"`
	FiatDecimals  int  `json:"fiat_decimals"`
	TokenDecimals int  `json:"token_decimals"`
}

// RedisConfig enables the market data cache when Addr is set.
type RedisConfig struct {
	Addr       string `json:"addr,omitempty"`
	Password   string `json:"password,omitempty"`
	DB         int    `json:"db"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// NATSConfig enables the action journal when URL is set.
type NATSConfig struct {
	URL     string `json:"url,omitempty"`
	Subject string `json:"subject"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "text" or "json"
	Output string `json:"output"` // "stdout", "stderr" or a file path
}

// Config is the complete application configuration.
type Config struct {
	Exchange ExchangeConfig `json:"exchange"`
	OAuth    OAuthConfig    `json:"oauth"`
	Widget   WidgetConfig   `json:"widget"`
	Redis    RedisConfig    `json:"redis"`
	NATS     NATSConfig     `json:"nats"`
	Logging  LoggingConfig  `json:"logging"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Exchange: ExchangeConfig{
			BaseURL:               DefaultBaseURL,
			RequestTimeoutSeconds: 10,
		},
		OAuth: OAuthConfig{
			AuthorizeURL: "https://ftx.com/oauth",
		},
		Widget: WidgetConfig{
			HideBalances:  true,
			FiatDecimals:  2,
			TokenDecimals: 4,
		},
		Redis: RedisConfig{
			TTLSeconds: 30,
		},
		NATS: NATSConfig{
			Subject: "ftxwidget.actions",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// HasCredentials reports whether both API key and secret are present.
func (c Config) HasCredentials() bool {
	return c.Exchange.APIKey != "" && c.Exchange.APISecret != ""
}

// RequestTimeout returns the HTTP timeout for exchange calls.
func (c Config) RequestTimeout() time.Duration {
	if c.Exchange.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Exchange.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the market data cache lifetime.
func (c Config) CacheTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// Validate checks the configuration for structural errors.
func (c Config) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Exchange.BaseURL) == "" {
		errs = append(errs, "exchange base_url is empty")
	} else if u, err := url.Parse(c.Exchange.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("exchange base_url %q is not an absolute URL", c.Exchange.BaseURL))
	}
	if (c.Exchange.APIKey == "") != (c.Exchange.APISecret == "") {
		errs = append(errs, "api_key and api_secret must be set together")
	}
	if c.OAuth.ClientID != "" && c.OAuth.RedirectURL == "" {
		errs = append(errs, "oauth redirect_url is required when client_id is set")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.Logging.Format))
	}
	return errs
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) (Config, error) {
	var raw struct {
		Exchange struct {
			BaseURL               string `json:"base_url"`
			APIKey                string `json:"api_key"`
			APISecret             string `json:"api_secret"`
			Subaccount            string `json:"subaccount"`
			RequestTimeoutSeconds *int   `json:"request_timeout_seconds"`
		} `json:"exchange"`
		OAuth  OAuthConfig `json:"oauth"`
		Widget struct {
			HideBalances  *bool `json:"hide_balances"`
			FiatDecimals  *int  `json:"fiat_decimals"`
			TokenDecimals *int  `json:"token_decimals"`
		} `json:"widget"`
		Redis struct {
			Addr       string `json:"addr"`
			Password   string `json:"password"`
			DB         int    `json:"db"`
			TTLSeconds *int   `json:"ttl_seconds"`
		} `json:"redis"`
		NATS    NATSConfig    `json:"nats"`
		Logging LoggingConfig `json:"logging"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if raw.Exchange.BaseURL != "" {
		cfg.Exchange.BaseURL = raw.Exchange.BaseURL
	}
	cfg.Exchange.APIKey = raw.Exchange.APIKey
	cfg.Exchange.APISecret = raw.Exchange.APISecret
	cfg.Exchange.Subaccount = raw.Exchange.Subaccount
	if raw.Exchange.RequestTimeoutSeconds != nil {
		cfg.Exchange.RequestTimeoutSeconds = *raw.Exchange.RequestTimeoutSeconds
	}

	if raw.OAuth.AuthorizeURL != "" {
		cfg.OAuth.AuthorizeURL = raw.OAuth.AuthorizeURL
	}
	cfg.OAuth.ClientID = raw.OAuth.ClientID
	cfg.OAuth.RedirectURL = raw.OAuth.RedirectURL

	if raw.Widget.HideBalances != nil {
		cfg.Widget.HideBalances = *raw.Widget.HideBalances
	}
	if raw.Widget.FiatDecimals != nil {
		cfg.Widget.FiatDecimals = *raw.Widget.FiatDecimals
	}
	if raw.Widget.TokenDecimals != nil {
		cfg.Widget.TokenDecimals = *raw.Widget.TokenDecimals
	}

	cfg.Redis.Addr = raw.Redis.Addr
	cfg.Redis.Password = raw.Redis.Password
	cfg.Redis.DB = raw.Redis.DB
	if raw.Redis.TTLSeconds != nil {
		cfg.Redis.TTLSeconds = *raw.Redis.TTLSeconds
	}

	cfg.NATS.URL = raw.NATS.URL
	if raw.NATS.Subject != "" {
		cfg.NATS.Subject = raw.NATS.Subject
	}

	if raw.Logging.Level != "" {
		cfg.Logging.Level = raw.Logging.Level
	}
	if raw.Logging.Format != "" {
		cfg.Logging.Format = raw.Logging.Format
	}
	if raw.Logging.Output != "" {
		cfg.Logging.Output = raw.Logging.Output
	}

	return cfg, nil
}

// envOverrides lists the settings that can be supplied through the environment.
type envOverrides struct {
	Settings struct {
		APIKey     string `env:"API_KEY"`
		APISecret  string `env:"API_SECRET"`
		Subaccount string `env:"SUBACCOUNT"`
		BaseURL    string `env:"BASE_URL"`
		RedisAddr  string `env:"REDIS_ADDR"`
		NATSURL    string `env:"NATS_URL"`
		LogLevel   string `env:"LOG_LEVEL"`
	} `env:", prefix=FTXWIDGET_"`
}

// ApplyEnv overlays FTXWIDGET_* environment variables onto cfg. A nil
// lookuper reads the process environment.
func ApplyEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	s := env.Settings
	if s.APIKey != "" {
		cfg.Exchange.APIKey = s.APIKey
	}
	if s.APISecret != "" {
		cfg.Exchange.APISecret = s.APISecret
	}
	if s.Subaccount != "" {
		cfg.Exchange.Subaccount = s.Subaccount
	}
	if s.BaseURL != "" {
		cfg.Exchange.BaseURL = s.BaseURL
	}
	if s.RedisAddr != "" {
		cfg.Redis.Addr = s.RedisAddr
	}
	if s.NATSURL != "" {
		cfg.NATS.URL = s.NATSURL
	}
	if s.LogLevel != "" {
		cfg.Logging.Level = s.LogLevel
	}
	return nil
}

// Load reads the file at path and applies environment overrides.
func Load(ctx context.Context, path string) (Config, error) {
	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(ctx, &cfg, nil); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	// The file holds API secrets.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0600)
}
