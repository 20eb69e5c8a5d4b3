package plot

import (
	"testing"

	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/types"
)

func TestBuild(t *testing.T) {
	dive := &types.Dive{
		Samples: []types.Sample{
			{Sec: 0, Depth: 1500, Cylinder: 1, Pressure: 200000},
			{Sec: 10, Depth: 5000, Cylinder: 1},
			{Sec: 20, Depth: 9000, Cylinder: 1, Pressure: 195000, DiluentPressure: 150000},
		},
	}

	pi := Build(dive)

	want := len(dive.Samples) + constants.PlotFillerEntries
	if len(pi.Entries) != want {
		t.Fatalf("expected %d entries, got %d", want, len(pi.Entries))
	}

	// fillers carry the first sample's cylinder and sensor pressure
	for i := 0; i < constants.PlotFillerEntries; i++ {
		e := pi.Entries[i]
		if e.Sec != 0 || e.Depth != 0 {
			t.Errorf("filler %d has timing/depth meaning: %+v", i, e)
		}
		if e.Cylinder != 1 {
			t.Errorf("filler %d cylinder: expected 1, got %d", i, e.Cylinder)
		}
		if e.Pressure[SensorPR] != 200000 {
			t.Errorf("filler %d pressure: expected 200000, got %d", i, e.Pressure[SensorPR])
		}
	}

	last := pi.Entries[len(pi.Entries)-1]
	if last.Sec != 20 || last.Depth != 9000 || last.Diluent[SensorPR] != 150000 {
		t.Errorf("last entry mismatch: %+v", last)
	}
}

func TestBuildEmpty(t *testing.T) {
	pi := Build(&types.Dive{})
	if len(pi.Entries) != 0 {
		t.Errorf("expected empty profile, got %d entries", len(pi.Entries))
	}
}

func TestBuildClampsCylinder(t *testing.T) {
	dive := &types.Dive{
		Samples: []types.Sample{
			{Sec: 0, Depth: 1000, Cylinder: -3},
			{Sec: 10, Depth: 1000, Cylinder: constants.MaxCylinders + 5},
		},
	}
	pi := Build(dive)
	if got := pi.Entries[constants.PlotFillerEntries].Cylinder; got != 0 {
		t.Errorf("negative cylinder: expected 0, got %d", got)
	}
	if got := pi.Entries[constants.PlotFillerEntries+1].Cylinder; got != constants.MaxCylinders-1 {
		t.Errorf("oversized cylinder: expected %d, got %d", constants.MaxCylinders-1, got)
	}
}

func TestMaxDepth(t *testing.T) {
	dive := &types.Dive{
		Samples: []types.Sample{
			{Sec: 0, Depth: 1000},
			{Sec: 10, Depth: 31000},
			{Sec: 20, Depth: 8000},
		},
	}
	if got := Build(dive).MaxDepth(); got != 31000 {
		t.Errorf("expected 31000, got %d", got)
	}
}
