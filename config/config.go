// Package config handles loading and managing application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"

	"github.com/fitstack/paygate/internal/adapters/tenpay"
	"github.com/fitstack/paygate/internal/core/domain"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Merchant MerchantConfig `yaml:"merchant"`
	Tenpay   TenpayConfig   `yaml:"tenpay"`
	Core     CoreConfig     `yaml:"core"`

	// APIKey authenticates the merchant backend on /api/v1 routes.
	APIKey string `yaml:"api_key" env:"PAYGATE_API_KEY"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	GinMode         string        `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // json or console
}

// MerchantConfig holds the credentials issued by the provider.
type MerchantConfig struct {
	PartnerID string `yaml:"partner_id" env:"MERCHANT_PARTNER_ID"`
	Key       string `yaml:"key" env:"MERCHANT_KEY"`
	NotifyURL string `yaml:"notify_url" env:"MERCHANT_NOTIFY_URL"`
	ReturnURL string `yaml:"return_url" env:"MERCHANT_RETURN_URL"`
}

// TenpayConfig overrides the gateway endpoints, mostly for sandboxes.
type TenpayConfig struct {
	PayURL    string        `yaml:"pay_url" env:"TENPAY_PAY_URL" env-default:"https://gw.tenpay.com/gateway/pay.htm"`
	VerifyURL string        `yaml:"verify_url" env:"TENPAY_VERIFY_URL" env-default:"https://gw.tenpay.com/gateway/verifynotifyid.xml"`
	QueryURL  string        `yaml:"query_url" env:"TENPAY_QUERY_URL" env-default:"https://gw.tenpay.com/gateway/normalorderquery.xml"`
	Charset   string        `yaml:"charset" env:"TENPAY_CHARSET" env-default:"GBK"`
	Timeout   time.Duration `yaml:"timeout" env:"TENPAY_TIMEOUT" env-default:"15s"`

	// SkipConfirmation turns off notify-id confirmation. Sandboxes only.
	SkipConfirmation bool `yaml:"skip_confirmation" env:"TENPAY_SKIP_CONFIRMATION"`
}

// CoreConfig points at the merchant order system that receives settlements.
// An empty BaseURL disables the settlement callback.
type CoreConfig struct {
	BaseURL string        `yaml:"base_url" env:"CORE_BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"CORE_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"CORE_TIMEOUT" env-default:"15s"`
}

// Load reads the YAML file at path when it exists, then overlays environment
// variables. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Usage describes the supported environment variables.
func Usage() string {
	desc, _ := cleanenv.GetDescription(&Config{}, nil)
	return desc
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Merchant.Domain().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("PAYGATE_API_KEY is required"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format))
	}

	for name, raw := range map[string]string{
		"MERCHANT_NOTIFY_URL": c.Merchant.NotifyURL,
		"TENPAY_PAY_URL":      c.Tenpay.PayURL,
		"TENPAY_VERIFY_URL":   c.Tenpay.VerifyURL,
		"TENPAY_QUERY_URL":    c.Tenpay.QueryURL,
	} {
		if raw != "" && !isAbsoluteURL(raw) {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL", name))
		}
	}
	if c.Core.BaseURL != "" && !isAbsoluteURL(c.Core.BaseURL) {
		errs = append(errs, errors.New("CORE_BASE_URL must be an absolute URL"))
	}

	if c.Tenpay.Timeout <= 0 {
		errs = append(errs, errors.New("TENPAY_TIMEOUT must be positive"))
	}
	if c.Core.Timeout <= 0 {
		errs = append(errs, errors.New("CORE_TIMEOUT must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// Domain converts the merchant section into domain credentials.
func (m MerchantConfig) Domain() domain.Merchant {
	return domain.Merchant{
		PartnerID: m.PartnerID,
		Key:       m.Key,
		NotifyURL: m.NotifyURL,
		ReturnURL: m.ReturnURL,
	}
}

// Options converts the tenpay section into provider options.
func (t TenpayConfig) Options() tenpay.Options {
	return tenpay.Options{
		PayURL:           t.PayURL,
		VerifyURL:        t.VerifyURL,
		QueryURL:         t.QueryURL,
		Charset:          t.Charset,
		SkipConfirmation: t.SkipConfirmation,
	}
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
