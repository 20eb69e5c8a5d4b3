package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/divecomputers"
	"github.com/chrissnell/remotedive/internal/divecomputers/jsonstream"
	"github.com/chrissnell/remotedive/internal/divecomputers/livefeed"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

// DiveComputerManager holds the configured dive computer backends and the
// live feed listener.
type DiveComputerManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	distributor    chan types.Dive
	logger         *zap.SugaredLogger
	stations       map[string]divecomputers.DiveComputer
	liveFeed       *livefeed.Listener
}

// NewDiveComputerManager creates a DiveComputerManager populated with all
// configured dive computers.
func NewDiveComputerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan types.Dive, logger *zap.SugaredLogger) (*DiveComputerManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	m := &DiveComputerManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		distributor:    distributor,
		logger:         logger,
		stations:       make(map[string]divecomputers.DiveComputer),
	}

	for _, deviceConfig := range cfgData.Devices {
		station, err := createStationFromConfig(ctx, wg, configProvider, deviceConfig, distributor, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating dive computer [%s]: %w", deviceConfig.Name, err)
		}
		m.stations[deviceConfig.Name] = station
	}

	if cfgData.LiveFeed != nil {
		m.liveFeed = livefeed.NewListener(ctx, wg, *cfgData.LiveFeed, distributor, logger)
	}

	return m, nil
}

// createStationFromConfig creates a dive computer backend for one device
func createStationFromConfig(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceConfig config.DeviceData, distributor chan types.Dive, logger *zap.SugaredLogger) (divecomputers.DiveComputer, error) {
	switch deviceConfig.Type {
	case "", "jsonstream":
		return jsonstream.NewStation(ctx, wg, configProvider, deviceConfig.Name, distributor, logger), nil
	default:
		return nil, fmt.Errorf("unknown dive computer type: %v", deviceConfig.Type)
	}
}

// StartDiveComputers starts every configured backend and the live feed
// listener.
func (m *DiveComputerManager) StartDiveComputers() error {
	m.logger.Info("Dive computer manager started")
	for name, station := range m.stations {
		m.logger.Infof("Starting dive computer [%v]...", name)
		if err := station.StartDiveComputer(); err != nil {
			return fmt.Errorf("failed to start dive computer [%s]: %w", name, err)
		}
	}

	if m.liveFeed != nil {
		if err := m.liveFeed.StartListener(); err != nil {
			return fmt.Errorf("failed to start live feed listener: %w", err)
		}
	}

	return nil
}
