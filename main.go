package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/ups/internal/server"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ups",
	Short:   "UPS shipping bridge - rates, shipment confirmation and labels over GraphQL",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the label store schema and indexes",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.WithoutCancel(ctx))
	}

	// Storage and label lock
	st, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}

	locker, closeLocker, err := initLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	// Initialize shipper registry and the shipping pipeline
	registry := initShipperRegistry(cfg, logger)
	service := initShippingService(cfg, registry, st, locker, logger)

	logger.Info("Starting UPS shipping bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("store", cfg.StoreDriver),
		zap.Strings("carriers", registry.Names()),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: cfg.Port}, service, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}

	logger.Info("Store migrated", zap.String("store", cfg.StoreDriver))
	return nil
}
