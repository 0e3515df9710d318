package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the core runtime configuration for the service.
// Values are sourced from environment variables (optionally via a .env
// file loaded by main). See .env.example.
type Config struct {
	ListenAddr string `envconfig:"APP_LISTEN_ADDR" default:":8080"`

	// OpsAddr serves /healthz and /metrics. Empty disables the ops listener.
	OpsAddr string `envconfig:"APP_OPS_ADDR" default:":9090"`

	// APIPrefix is the fixed path all merchant routes are mounted under.
	APIPrefix string `envconfig:"APP_API_PREFIX" default:"/merchant-api"`

	// BaseURL is the public application URL used to build tracking links.
	BaseURL string `envconfig:"APP_BASE_URL" required:"true"`

	// QRCodeURL is the image service that renders tracking links as QR codes.
	QRCodeURL string `envconfig:"APP_QR_CODE_URL" default:"https://api.qrserver.com/v1/create-qr-code/"`

	Store StoreConfig

	LogLevel  string `envconfig:"APP_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"APP_LOG_FORMAT" default:"json"`

	// RedisURL enables the failed-authentication throttle when set.
	RedisURL          string        `envconfig:"APP_REDIS_URL"`
	AuthFailureLimit  int           `envconfig:"APP_AUTH_FAILURE_LIMIT" default:"10"`
	AuthFailureWindow time.Duration `envconfig:"APP_AUTH_FAILURE_WINDOW" default:"15m"`

	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	Bootstrap BootstrapConfig
}

// StoreConfig carries the exchange store connection settings.
type StoreConfig struct {
	DatabaseURL     string        `envconfig:"APP_DATABASE_URL" required:"true"`
	MaxOpenConns    int           `envconfig:"APP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"APP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"APP_DB_CONN_MAX_LIFETIME" default:"1h"`
}

// BootstrapConfig seeds a development merchant and key on startup.
// Ignored unless both MerchantID and Key are set.
type BootstrapConfig struct {
	MerchantID string `envconfig:"APP_BOOTSTRAP_MERCHANT_ID"`
	Name       string `envconfig:"APP_BOOTSTRAP_MERCHANT_NAME" default:"Demo merchant"`
	Email      string `envconfig:"APP_BOOTSTRAP_MERCHANT_EMAIL"`
	Key        string `envconfig:"APP_BOOTSTRAP_MERCHANT_KEY"`
}

// Enabled reports whether a bootstrap merchant should be ensured.
func (b BootstrapConfig) Enabled() bool {
	return b.MerchantID != "" && b.Key != ""
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("APP_BASE_URL must be an absolute URL")
	}

	c.APIPrefix = "/" + strings.Trim(strings.TrimSpace(c.APIPrefix), "/")
	if c.APIPrefix == "/" {
		c.APIPrefix = ""
	}

	if c.AuthFailureLimit < 0 {
		c.AuthFailureLimit = 0
	}
	return nil
}
