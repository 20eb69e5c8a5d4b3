// Package restserver exposes the dive archive and reconstructed profiles
// over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/database"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

// DiveStore is the slice of the archive the REST handlers need.
type DiveStore interface {
	ListDives(limit int) ([]types.Dive, error)
	GetDive(id string) (*types.Dive, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	restConfig     config.RESTData
	Server         http.Server
	Store          DiveStore
	StoreEnabled   bool
	Devices        []config.DeviceData
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTData, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		restConfig:     rc,
		logger:         logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	ctrl.Devices = cfgData.Devices

	// If a listen address was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", constants.DefaultRESTPort)
		rc.Port = constants.DefaultRESTPort
	}

	// If a dive archive was configured, set up a database client so that
	// the handlers can retrieve dives
	if cfgData.Storage.Postgres != nil && cfgData.Storage.Postgres.ConnectionString != "" {
		client := database.NewClient(cfgData.Storage.Postgres.ConnectionString, logger)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("REST server could not connect to database: %v", err)
		}
		ctrl.Store = client
		ctrl.StoreEnabled = true
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = handlers.CombinedLoggingHandler(os.Stdout, router)

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/dives", c.handlers.GetDives).Methods(http.MethodGet)
	router.HandleFunc("/api/dives/{id}", c.handlers.GetDive).Methods(http.MethodGet)
	router.HandleFunc("/api/dives/{id}/profile", c.handlers.GetDiveProfile).Methods(http.MethodGet)

	return router
}

// deviceConfig returns the configuration for a named dive computer, or
// nil if the device is not configured.
func (c *Controller) deviceConfig(name string) *config.DeviceData {
	for i := range c.Devices {
		if c.Devices[i].Name == name {
			return &c.Devices[i]
		}
	}
	return nil
}
