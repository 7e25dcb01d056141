package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Bring Shipping Guide
	BringAPIUID    string        `envconfig:"BRING_API_UID"`
	BringAPIKey    string        `envconfig:"BRING_API_KEY"`
	BringClientURL string        `envconfig:"BRING_CLIENT_URL"`
	BringBaseURL   string        `envconfig:"BRING_BASE_URL" default:"https://api.bring.com/shippingguide"`
	BringTimeout   time.Duration `envconfig:"BRING_TIMEOUT" default:"30s"`
	BringUseMock   bool          `envconfig:"BRING_USE_MOCK" default:"false"`

	// Shipping methods; empty is only allowed with BRING_USE_MOCK and serves a demo method.
	ShippingMethodsFile  string `envconfig:"SHIPPING_METHODS_FILE"`
	ShippingMethodsWatch bool   `envconfig:"SHIPPING_METHODS_WATCH" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"bringrate"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables, after loading any
// variables defined in the given .env files (default ".env"). Missing
// files are ignored; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.BringUseMock && (cfg.BringAPIUID == "" || cfg.BringAPIKey == "") {
		return nil, errors.New("loading config: BRING_API_UID and BRING_API_KEY are required unless BRING_USE_MOCK is set")
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("bring.mock", c.BringUseMock),
		attribute.String("bring.base_url", c.BringBaseURL),
	}
}
