// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSLicenseKey         string `envconfig:"UPS_LICENSE_KEY"`
	UPSUserID             string `envconfig:"UPS_USER_ID"`
	UPSPassword           string `envconfig:"UPS_PASSWORD"`
	UPSShipperNumber      string `envconfig:"UPS_SHIPPER_NUMBER"`
	UPSSandbox            bool   `envconfig:"UPS_SANDBOX" default:"true"`
	UPSUOMSystem          string `envconfig:"UPS_UOM_SYSTEM" default:"01"`
	UPSNegotiatedRates    bool   `envconfig:"UPS_NEGOTIATED_RATES" default:"false"`
	UPSProductCode        string `envconfig:"UPS_PRODUCT_CODE" default:"UPS"`
	UPSBaseURL            string `envconfig:"UPS_BASE_URL"`
	UPSEnabled            bool   `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock            bool   `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSDefaultService     string `envconfig:"UPS_DEFAULT_SERVICE" default:"03"`
	UPSDefaultPackageType string `envconfig:"UPS_DEFAULT_PACKAGE_TYPE" default:"02"`

	// UPS_SERVICES replaces the service table, e.g. "03:Ground,12:3 Day Select".
	UPSServices map[string]string `envconfig:"UPS_SERVICES"`

	// Storage
	StoreDriver   string        `envconfig:"STORE_DRIVER" default:"sqlite"`
	DatabaseDSN   string        `envconfig:"DATABASE_DSN" default:"file:ups.db?_busy_timeout=5000"`
	MongoURI      string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string        `envconfig:"MONGO_DATABASE" default:"ups"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	LabelLockTTL  time.Duration `envconfig:"LABEL_LOCK_TTL" default:"2m"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"tournevent-ups"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// UPS returns the carrier settings.
func (c *Config) UPS() ups.Config {
	cfg := ups.Config{
		LicenseKey:      c.UPSLicenseKey,
		UserID:          c.UPSUserID,
		Password:        c.UPSPassword,
		ShipperNumber:   c.UPSShipperNumber,
		UOMSystem:       c.UPSUOMSystem,
		Sandbox:         c.UPSSandbox,
		NegotiatedRates: c.UPSNegotiatedRates,
		ProductCode:     c.UPSProductCode,
		BaseURL:         c.UPSBaseURL,
		UseMock:         c.UPSUseMock,
	}
	if len(c.UPSServices) > 0 {
		cfg.Services = ups.ServiceTable(c.UPSServices)
	}
	return cfg
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("ups.sandbox", c.UPSSandbox),
		attribute.String("store.driver", c.StoreDriver),
	}
}
