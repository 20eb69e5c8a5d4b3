// Package app assembles the configured dive computers, archive, and REST
// server into one running service.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/managers"
	"github.com/chrissnell/remotedive/internal/restserver"
	"github.com/chrissnell/remotedive/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(ctx, &wg, a.configProvider, a.logger)
	if err != nil {
		return err
	}

	// Initialize the dive computer manager
	dcm, err := managers.NewDiveComputerManager(ctx, &wg, a.configProvider, storageManager.DiveDistributor, a.logger)
	if err != nil {
		return err
	}
	go dcm.StartDiveComputers()

	// Start the REST server if one is configured
	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}
	if cfgData.REST != nil {
		restController, err := restserver.NewController(ctx, &wg, a.configProvider, *cfgData.REST, a.logger)
		if err != nil {
			return err
		}
		if err := restController.StartController(); err != nil {
			return err
		}
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
