package livefeed

import (
	"testing"

	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/divecomputers/jsonstream"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

func testListener() *Listener {
	return &Listener{logger: zap.NewNop().Sugar()}
}

func newState() *connState {
	return &connState{asm: jsonstream.NewAssembler(config.DeviceData{})}
}

func TestConsumeCompleteDive(t *testing.T) {
	l := testListener()
	state := newState()

	feed := `{"event":"dive_start","device":"buoy-7","site":"Jackson Reef"}
{"sec":0,"depth":0,"pressure":200000}
{"sec":30,"depth":9000,"pressure":196000}
{"event":"dive_end"}
`
	dives := l.consume(state, []byte(feed))

	if len(dives) != 1 {
		t.Fatalf("got %d dives, want 1", len(dives))
	}
	dive := dives[0]
	if dive.DeviceName != "buoy-7" {
		t.Errorf("device = %q, want buoy-7", dive.DeviceName)
	}
	if dive.Site != "Jackson Reef" {
		t.Errorf("site = %q, want Jackson Reef", dive.Site)
	}
	if len(dive.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(dive.Samples))
	}
}

func TestConsumeSplitAcrossReads(t *testing.T) {
	l := testListener()
	state := newState()

	var dives []*types.Dive
	chunks := []string{
		"{\"event\":\"dive_start\",\"device\":\"buoy-7\"}\n{\"sec\":0,\"de",
		"pth\":5000,\"pressure\":180000}\n{\"eve",
		"nt\":\"dive_end\"}\n",
	}
	for _, chunk := range chunks {
		dives = append(dives, l.consume(state, []byte(chunk))...)
	}

	if len(dives) != 1 {
		t.Fatalf("got %d dives, want 1", len(dives))
	}
	if len(dives[0].Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(dives[0].Samples))
	}
	if dives[0].Samples[0].Depth != 5000 {
		t.Errorf("depth = %d, want 5000", dives[0].Samples[0].Depth)
	}
	if len(state.buf) != 0 {
		t.Errorf("buffer not drained, %d bytes left", len(state.buf))
	}
}

func TestConsumeDropsMalformedLines(t *testing.T) {
	l := testListener()
	state := newState()

	feed := `{"event":"dive_start","device":"buoy-7"}
this is not json
{"sec":0,"depth":4000,"pressure":150000}
{"event":"dive_end"}
`
	dives := l.consume(state, []byte(feed))

	if len(dives) != 1 {
		t.Fatalf("got %d dives, want 1", len(dives))
	}
	if len(dives[0].Samples) != 1 {
		t.Fatalf("got %d samples, want 1 (malformed line dropped)", len(dives[0].Samples))
	}
}

func TestFlushOnDisconnect(t *testing.T) {
	l := testListener()
	state := newState()

	l.consume(state, []byte("{\"event\":\"dive_start\",\"device\":\"buoy-7\"}\n{\"sec\":0,\"depth\":7000}\n"))

	dive := state.asm.Flush()
	if dive == nil {
		t.Fatal("mid-dive flush returned nil")
	}
	if len(dive.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(dive.Samples))
	}
}
