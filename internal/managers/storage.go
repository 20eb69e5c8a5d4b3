// Package managers wires configuration to running dive computer backends
// and the dive archive.
package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/database"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

// StorageManager receives completed dives from the dive computer backends
// and archives them.
type StorageManager struct {
	DiveDistributor chan types.Dive
	client          *database.Client
	logger          *zap.SugaredLogger
}

// NewStorageManager creates a StorageManager, connecting and migrating the
// archive database when one is configured, and starts the dive
// distributor.
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*StorageManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	s := &StorageManager{
		DiveDistributor: make(chan types.Dive, 20),
		logger:          logger,
	}

	if cfgData.Storage.Postgres != nil && cfgData.Storage.Postgres.ConnectionString != "" {
		client := database.NewClient(cfgData.Storage.Postgres.ConnectionString, logger)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("could not connect to dive archive: %v", err)
		}
		if err := client.Migrate(); err != nil {
			return nil, fmt.Errorf("could not migrate dive archive: %v", err)
		}
		s.client = client
	} else {
		logger.Warn("no dive archive configured; received dives will be logged and discarded")
	}

	wg.Add(1)
	go s.startDiveDistributor(ctx, wg)

	return s, nil
}

// startDiveDistributor archives every dive received from the backends
// until the context is cancelled.
func (s *StorageManager) startDiveDistributor(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling dive distributor.")
			return
		case dive := <-s.DiveDistributor:
			s.archiveDive(&dive)
		}
	}
}

func (s *StorageManager) archiveDive(dive *types.Dive) {
	if s.client == nil {
		s.logger.Infow("discarding dive, no archive configured",
			"device", dive.DeviceName, "samples", len(dive.Samples))
		return
	}

	id, err := s.client.SaveDive(dive)
	if err != nil {
		s.logger.Errorf("could not archive dive from [%s]: %v", dive.DeviceName, err)
		return
	}
	log.Debugf("archived dive %v from [%s]", id, dive.DeviceName)
}
