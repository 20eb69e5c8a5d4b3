// Package livefeed implements a TCP listener that accepts live dive
// telemetry pushed by surface buoys and boat units, in the same
// newline-delimited JSON format the jsonstream backend reads.
package livefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/divecomputers/jsonstream"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

// connState holds the line buffer and dive assembler of one connection.
type connState struct {
	asm *jsonstream.Assembler
	buf []byte
}

// Listener accepts live dive telemetry over TCP and delivers completed
// dives to the distributor.
type Listener struct {
	gnet.BuiltinEventEngine

	ctx             context.Context
	wg              *sync.WaitGroup
	eng             gnet.Engine
	port            int
	DiveDistributor chan types.Dive
	logger          *zap.SugaredLogger
}

// NewListener creates a live feed listener on the configured port.
func NewListener(ctx context.Context, wg *sync.WaitGroup, lc config.LiveFeedData, distributor chan types.Dive, logger *zap.SugaredLogger) *Listener {
	if lc.Port == 0 {
		lc.Port = constants.DefaultLiveFeedPort
	}

	return &Listener{
		ctx:             ctx,
		wg:              wg,
		port:            lc.Port,
		DiveDistributor: distributor,
		logger:          logger,
	}
}

// StartListener runs the event loop and arranges shutdown on context
// cancellation.
func (l *Listener) StartListener() error {
	addr := fmt.Sprintf("tcp://:%d", l.port)
	log.Infof("Starting live feed listener on %v...", addr)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		err := gnet.Run(l, addr, gnet.WithMulticore(true), gnet.WithLogger(l.logger))
		if err != nil {
			log.Errorf("live feed listener error: %v", err)
		}
	}()

	go func() {
		<-l.ctx.Done()
		log.Info("Shutting down the live feed listener...")
		l.eng.Stop(context.Background())
	}()

	return nil
}

func (l *Listener) OnBoot(eng gnet.Engine) gnet.Action {
	l.eng = eng
	return gnet.None
}

func (l *Listener) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	l.logger.Debugf("live feed connection from %v", c.RemoteAddr())
	c.SetContext(&connState{asm: jsonstream.NewAssembler(config.DeviceData{})})
	return nil, gnet.None
}

func (l *Listener) OnTraffic(c gnet.Conn) gnet.Action {
	state, ok := c.Context().(*connState)
	if !ok {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		l.logger.Errorf("live feed read error: %v", err)
		return gnet.Close
	}

	for _, dive := range l.consume(state, data) {
		l.deliver(dive)
	}

	return gnet.None
}

// consume appends raw bytes to the connection's line buffer and runs every
// complete line through the dive assembler. Partial lines stay buffered
// for the next read.
func (l *Listener) consume(state *connState, data []byte) []*types.Dive {
	state.buf = append(state.buf, data...)

	var dives []*types.Dive
	for {
		idx := bytes.IndexByte(state.buf, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSpace(state.buf[:idx])
		state.buf = state.buf[idx+1:]

		if len(line) == 0 {
			continue
		}

		var p jsonstream.Packet
		if err := json.Unmarshal(line, &p); err != nil {
			l.logger.Errorf("live feed: dropping malformed packet: %v", err)
			continue
		}

		if dive := state.asm.Ingest(&p); dive != nil {
			dives = append(dives, dive)
		}
	}

	return dives
}

// OnClose flushes any dive still being assembled so a dropped feed loses
// no samples.
func (l *Listener) OnClose(c gnet.Conn, err error) gnet.Action {
	if err != nil {
		l.logger.Debugf("live feed connection from %v closed: %v", c.RemoteAddr(), err)
	}

	if state, ok := c.Context().(*connState); ok {
		if dive := state.asm.Flush(); dive != nil {
			log.Infof("live feed delivering partial dive after disconnect: %d samples", len(dive.Samples))
			l.deliver(dive)
		}
	}

	return gnet.None
}

func (l *Listener) deliver(dive *types.Dive) {
	log.Debugf("live feed sending dive to distributor: device=%q site=%q samples=%d",
		dive.DeviceName, dive.Site, len(dive.Samples))
	l.DiveDistributor <- *dive
}
