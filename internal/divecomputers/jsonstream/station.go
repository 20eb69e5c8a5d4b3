// Package jsonstream implements a dive computer backend that reads
// newline-delimited JSON dive logs from a serial port or a TCP socket.
package jsonstream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	serial "github.com/tarm/goserial"
	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/divecomputers"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

// Station implements a JSON-streaming dive computer
type Station struct {
	ctx             context.Context
	wg              *sync.WaitGroup
	netConn         net.Conn
	rwc             io.ReadWriteCloser
	config          config.DeviceData
	configProvider  config.ConfigProvider
	deviceName      string
	DiveDistributor chan types.Dive
	logger          *zap.SugaredLogger
	connecting      bool
	connectingMu    sync.RWMutex
	connected       bool
	connectedMu     sync.RWMutex
}

// NewStation creates a new JSON-streaming dive computer station
func NewStation(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceName string, distributor chan types.Dive, logger *zap.SugaredLogger) divecomputers.DiveComputer {
	station := &Station{
		ctx:             ctx,
		wg:              wg,
		configProvider:  configProvider,
		deviceName:      deviceName,
		DiveDistributor: distributor,
		logger:          logger,
	}

	deviceConfig := divecomputers.LoadDeviceConfig(configProvider, deviceName, logger)
	station.config = *deviceConfig

	if err := divecomputers.ValidateSerialOrNetwork(station.config); err != nil {
		logger.Fatalf("jsonstream station [%s]: %v", deviceName, err)
	}

	if station.config.SerialDevice != "" {
		log.Info("Configuring jsonstream dive computer via serial port...")
	}

	if station.config.Hostname != "" && station.config.Port != "" {
		log.Info("Configuring jsonstream dive computer via TCP/IP")
	}

	// 115200 baud is the common rate for dive computer download cradles
	if station.config.Baud == 0 {
		station.config.Baud = 115200
	}

	return station
}

func (s *Station) StationName() string {
	return s.config.Name
}

// StartDiveComputer connects to the device and launches the packet-reading goroutine
func (s *Station) StartDiveComputer() error {
	log.Infof("Starting jsonstream dive computer [%v]...", s.config.Name)

	s.Connect()

	s.wg.Add(1)
	go s.GetDivePackets()

	return nil
}

// GetDivePackets runs the ParseDivePackets function, reconnecting if there
// is an error.
func (s *Station) GetDivePackets() {
	defer s.wg.Done()
	log.Info("starting jsonstream packet getter")
	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling ParseDivePackets()")
			return
		default:
			err := s.ParseDivePackets()
			if err != nil {
				s.logger.Error(err)
				s.rwc.Close()
				if len(s.config.Hostname) > 0 {
					s.netConn.Close()
				}
				s.logger.Info("attempting to reconnect...")
				s.Connect()
			} else {
				return
			}
		}
	}
}

// ParseDivePackets reads JSON lines from the device, assembles them into
// dives, and sends completed dives to the DiveDistributor.
func (s *Station) ParseDivePackets() error {
	asm := NewAssembler(s.config)

	// A dropped connection mid-dive still delivers the samples received
	// so far; the interpolation engine fills what it can.
	defer func() {
		if dive := asm.Flush(); dive != nil {
			log.Infof("jsonstream [%s] delivering partial dive after disconnect: %d samples",
				s.config.Name, len(dive.Samples))
			s.DiveDistributor <- *dive
		}
	}()

	scanner := bufio.NewScanner(s.rwc)

	for scanner.Scan() {
		// Update read deadline for network connections to prevent timeout
		if s.netConn != nil {
			s.netConn.SetReadDeadline(time.Now().Add(time.Minute * 5))
		}
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling ParseDivePackets()")
			return nil
		default:
			if len(scanner.Bytes()) == 0 {
				continue
			}

			var p Packet
			err := json.Unmarshal(scanner.Bytes(), &p)
			if err != nil {
				return fmt.Errorf("error unmarshalling JSON: %v", err)
			}

			dive := asm.Ingest(&p)
			if dive == nil {
				continue
			}

			log.Debugf("jsonstream [%s] sending dive to distributor: site=%q samples=%d duration=%v",
				s.config.Name, dive.Site, len(dive.Samples), dive.Duration())
			s.DiveDistributor <- *dive
		}
	}

	return fmt.Errorf("scanning aborted due to error or EOF")
}

// Connect connects to a dive computer over serial or network
func (s *Station) Connect() {
	if len(s.config.SerialDevice) > 0 {
		s.connectToSerialStation()
	} else if (len(s.config.Hostname) > 0) && (len(s.config.Port) > 0) {
		s.connectToNetworkStation()
	} else {
		s.logger.Fatal("must provide either network hostname+port or serial device in config")
	}
}

// connectToSerialStation connects to a dive computer download cradle over
// a serial port
func (s *Station) connectToSerialStation() {
	var err error

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		s.logger.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	s.logger.Infof("connecting to %v ...", s.config.SerialDevice)

	for {
		sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud}
		s.logger.Debugf("attempting to open serial port %s at %d baud", s.config.SerialDevice, s.config.Baud)
		s.rwc, err = serial.OpenPort(sc)

		if err != nil {
			s.logger.Errorf("failed to open serial port %s: %v", s.config.SerialDevice, err)
			s.logger.Error("sleeping 30 seconds and trying again")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(30 * time.Second):
				// Continue to next iteration
			}
		} else {
			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			return
		}
	}
}

// connectToNetworkStation connects to a dive computer over TCP/IP
func (s *Station) connectToNetworkStation() {
	var err error

	console := fmt.Sprint(s.config.Hostname, ":", s.config.Port)

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		log.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	log.Info("connecting to:", console)

	for {
		s.netConn, err = net.DialTimeout("tcp", console, 10*time.Second)

		if err != nil {
			log.Errorf("could not connect to %v: %v", console, err)
			log.Error("sleeping 5 seconds and trying again.")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(5 * time.Second):
				// Continue to next iteration
			}
		} else {
			// Dive uploads are bursty; allow long idle gaps between dives
			s.netConn.SetReadDeadline(time.Now().Add(time.Minute * 5))

			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			// Create an io.ReadWriteCloser for our connection
			s.rwc = io.ReadWriteCloser(s.netConn)
			return
		}
	}
}
