// Package main provides a synthetic dive computer that emits
// newline-delimited JSON dive logs, for exercising the jsonstream backend
// and the live feed listener without hardware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"math"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/remotedive/internal/divecomputers/jsonstream"
	"github.com/chrissnell/remotedive/internal/types"
)

// DiveEmulator generates synthetic dive profiles with realistic descent,
// bottom and ascent phases, declining cylinder pressures, and the
// occasional transmitter dropout.
type DiveEmulator struct {
	device       string
	site         string
	maxDepth     int // mm
	bottomTime   int // seconds
	sampleEvery  int // seconds
	dropoutOdds  float64
	switchAt     int // seconds; 0 = no gas switch
	trackDiluent bool
}

// GenerateDive produces the full packet sequence of one dive.
func (e *DiveEmulator) GenerateDive() []jsonstream.Packet {
	packets := []jsonstream.Packet{{
		Event:     jsonstream.EventDiveStart,
		Device:    e.device,
		Site:      e.site,
		StartTime: time.Now(),
		Cylinders: []types.Cylinder{
			{Index: 0, Description: "D12 232 bar", Size: 24000, WorkingPressure: 232000},
			{Index: 1, Description: "AL80 deco", Size: 11100, WorkingPressure: 207000},
		},
	}}

	descent := e.maxDepth / 200 // seconds to reach the bottom at ~12 m/min
	if descent < 30 {
		descent = 30
	}
	ascent := e.maxDepth / 100
	total := descent + e.bottomTime + ascent

	pressure := 210000.0
	diluent := 180000.0

	for sec := 0; sec <= total; sec += e.sampleEvery {
		var depthMM int
		switch {
		case sec < descent:
			depthMM = e.maxDepth * sec / descent
		case sec < descent+e.bottomTime:
			// Small swell around the bottom depth
			depthMM = e.maxDepth + int(1500*math.Sin(float64(sec)/20))
		default:
			remaining := total - sec
			depthMM = e.maxDepth * remaining / ascent
		}
		if depthMM < 0 {
			depthMM = 0
		}

		cylinder := 0
		if e.switchAt > 0 && sec >= e.switchAt {
			cylinder = 1
		}

		// Gas goes faster at depth
		ambient := 1.0 + float64(depthMM)/10000.0
		pressure -= 18.0 * ambient * float64(e.sampleEvery)
		diluent -= 2.0 * float64(e.sampleEvery)

		p := jsonstream.Packet{
			Sec:      sec,
			Depth:    depthMM,
			Cylinder: cylinder,
		}

		// Transmitter dropouts leave the pressure field empty
		if rand.Float64() >= e.dropoutOdds {
			p.Pressure = int(pressure)
		}
		if e.trackDiluent && rand.Float64() >= e.dropoutOdds {
			p.DiluentPressure = int(diluent)
		}

		packets = append(packets, p)
	}

	packets = append(packets, jsonstream.Packet{Event: jsonstream.EventDiveEnd})
	return packets
}

func main() {
	listenAddr := flag.String("listen", "", "Listen address for jsonstream backends to connect to, e.g. :7070")
	connectAddr := flag.String("connect", "", "Live feed listener address to push dives to, e.g. localhost:9120")
	device := flag.String("device", "sim-1", "Device name reported in the stream")
	site := flag.String("site", "Simulator Bay", "Site name reported in the stream")
	maxDepth := flag.Int("depth", 30000, "Maximum depth in mm")
	bottomTime := flag.Int("bottom", 1200, "Bottom time in seconds")
	interval := flag.Int("interval", 10, "Sample interval in seconds")
	dropout := flag.Float64("dropout", 0.15, "Probability that a sample loses its pressure reading")
	switchAt := flag.Int("switch", 0, "Switch to the deco cylinder at this many seconds (0 = never)")
	diluent := flag.Bool("diluent", false, "Emit diluent pressures as well")
	realtime := flag.Bool("realtime", false, "Pace packets at the sample interval instead of sending at once")
	flag.Parse()

	emu := &DiveEmulator{
		device:       *device,
		site:         *site,
		maxDepth:     *maxDepth,
		bottomTime:   *bottomTime,
		sampleEvery:  *interval,
		dropoutOdds:  *dropout,
		switchAt:     *switchAt,
		trackDiluent: *diluent,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	switch {
	case *listenAddr != "":
		var wg sync.WaitGroup
		wg.Add(1)
		go startListener(ctx, &wg, *listenAddr, emu, *realtime)
		wg.Wait()
	case *connectAddr != "":
		if err := pushDive(ctx, *connectAddr, emu, *realtime); err != nil {
			log.Fatalf("push failed: %v", err)
		}
	default:
		// No transport chosen; write the dive to stdout
		writeDive(ctx, os.Stdout, emu, *realtime)
	}
}

func startListener(ctx context.Context, wg *sync.WaitGroup, addr string, emu *DiveEmulator, realtime bool) {
	defer wg.Done()

	l, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("failed to listen on %s: %v", addr, err)
		return
	}
	defer l.Close()
	log.Printf("listening on %s", addr)

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				log.Printf("accept error: %v", err)
			}
			return
		}
		log.Printf("client %s connected", conn.RemoteAddr())
		go func(c net.Conn) {
			defer c.Close()
			writeDive(ctx, c, emu, realtime)
		}(conn)
	}
}

func pushDive(ctx context.Context, addr string, emu *DiveEmulator, realtime bool) error {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("pushing dive to %s", addr)
	writeDive(ctx, conn, emu, realtime)
	return nil
}

func writeDive(ctx context.Context, w io.Writer, emu *DiveEmulator, realtime bool) {
	encoder := json.NewEncoder(w)
	for _, p := range emu.GenerateDive() {
		if err := encoder.Encode(p); err != nil {
			log.Printf("write error: %v", err)
			return
		}
		if realtime && p.Event == "" {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(emu.sampleEvery) * time.Second):
			}
		}
	}
}
