package main

import (
	"context"
	"fmt"

	"github.com/tournevent/ups/internal/config"
	"github.com/tournevent/ups/internal/lock"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/internal/store/mongostore"
	"github.com/tournevent/ups/internal/store/sqlstore"
	"github.com/tournevent/ups/internal/telemetry"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const driverMongo = "mongo"

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	return shutdown, err
}

func initStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case driverMongo:
		return mongostore.Connect(ctx, mongostore.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		return sqlstore.Open(cfg.StoreDriver, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// initLocker uses Redis when an address is configured, so that several
// replicas share the per-shipment lock.
func initLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func() error, error) {
	if cfg.RedisAddr == "" {
		return lock.NewMemory(), func() error { return nil }, nil
	}
	r, err := lock.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger) *shipper.Registry {
	registry := shipper.NewRegistry()

	tracer := otel.Tracer(cfg.ServiceName)

	if cfg.UPSEnabled {
		upsCfg := cfg.UPS()
		if err := upsCfg.Validate(); err != nil {
			logger.Warn("UPS settings are incomplete, requests will fail", zap.Error(err))
		}
		registry.Register(ups.New(upsCfg, logger, tracer))
	}

	return registry
}

func initShippingService(cfg *config.Config, registry *shipper.Registry, st store.Store, locker lock.Locker, logger *otelzap.Logger) *shipping.Service {
	return shipping.NewService(registry, st, locker, logger, shipping.Options{
		DefaultPackageType: cfg.UPSDefaultPackageType,
		DefaultServiceCode: cfg.UPSDefaultService,
		LockTTL:            cfg.LabelLockTTL,
	})
}
