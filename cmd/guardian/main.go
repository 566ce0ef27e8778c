package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/adapters/mailgate"
	"github.com/safetyshield/guardian/internal/adapters/nativehost"
	"github.com/safetyshield/guardian/internal/background"
	"github.com/safetyshield/guardian/internal/config"
	"github.com/safetyshield/guardian/internal/di"
	"github.com/safetyshield/guardian/internal/popup"
	"github.com/safetyshield/guardian/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	host *nativehost.Host,
	coordinator *background.Coordinator,
	controller *popup.Controller,
	gateway *mailgate.Gateway,
	store ports.SafetyStore,
) error {
	defer logger.Sync()

	host.SetHandler(coordinator)
	host.SetPopupHandler(controller)

	// Start the mail gateway if enabled
	if cfg.GetBool("mailgate.enabled") {
		if err := gateway.Start(); err != nil {
			logger.Error("Failed to start mail gateway", zap.Error(err))
			return err
		}
		defer func() {
			if err := gateway.Stop(); err != nil {
				logger.Error("Failed to stop mail gateway", zap.Error(err))
			}
		}()
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	// Serve the native messaging channel until the browser closes it
	if err := host.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Native messaging host error", zap.Error(err))
		return err
	}

	// Close any resources that need closing
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close safety store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
