package analysis

import (
	"testing"
	"time"

	"github.com/chrissnell/remotedive/internal/gaspressure"
	"github.com/chrissnell/remotedive/internal/plot"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/depth"
)

func testDive() *types.Dive {
	return &types.Dive{
		StartTime: time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC),
		Cylinders: []types.Cylinder{
			{Index: 0, Description: "AL80", Size: 11100, WorkingPressure: 207000},
		},
		Samples: []types.Sample{
			{Sec: 0, Depth: 0, Pressure: 200000},
			{Sec: 60, Depth: 10000},
			{Sec: 120, Depth: 20000},
			{Sec: 180, Depth: 10000},
			{Sec: 240, Depth: 0, Pressure: 150000},
		},
	}
}

func TestSummarize(t *testing.T) {
	dive := testDive()
	pi := plot.Build(dive)
	gaspressure.New(depth.NewModel(dive.Salinity, dive.SurfacePressure), nil).Populate(pi, false)

	s := Summarize(dive, pi, Site{Latitude: 27.3, Longitude: 33.8})

	if s.MaxDepth != 20000 {
		t.Errorf("max depth: expected 20000, got %d", s.MaxDepth)
	}
	if s.Duration != 240*time.Second {
		t.Errorf("duration: expected 4m, got %v", s.Duration)
	}
	// profile spends most of its time between 5 m and 15 m
	if s.MeanDepth < 5000 || s.MeanDepth > 15000 {
		t.Errorf("mean depth implausible: %d", s.MeanDepth)
	}
	if s.Night {
		t.Error("morning dive classified as night dive")
	}

	if len(s.Cylinders) != 1 {
		t.Fatalf("expected 1 cylinder, got %d", len(s.Cylinders))
	}
	use := s.Cylinders[0]
	if use.StartPressure != 200000 || use.EndPressure != 150000 {
		t.Errorf("cylinder pressures: expected 200000/150000, got %d/%d", use.StartPressure, use.EndPressure)
	}
	// 11.1 l * 50 bar
	if use.GasUsed < 554 || use.GasUsed > 556 {
		t.Errorf("gas used: expected ~555 l, got %.1f", use.GasUsed)
	}
}

func TestSummarizeNightDive(t *testing.T) {
	dive := testDive()
	dive.StartTime = time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)
	pi := plot.Build(dive)

	s := Summarize(dive, pi, Site{Latitude: 27.3, Longitude: 33.8})
	if !s.Night {
		t.Error("evening dive not classified as night dive")
	}
}

func TestSummarizeNoSite(t *testing.T) {
	dive := testDive()
	dive.StartTime = time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)
	pi := plot.Build(dive)

	if s := Summarize(dive, pi, Site{}); s.Night {
		t.Error("night classification without site coordinates")
	}
}

func TestSummarizeDiluent(t *testing.T) {
	dive := &types.Dive{
		TrackDiluent: true,
		Cylinders: []types.Cylinder{
			{Index: 0, Size: 3000},
			{Index: 1, Size: 3000, Diluent: true},
		},
		Samples: []types.Sample{
			{Sec: 0, Depth: 20000, Pressure: 180000, DiluentPressure: 150000},
			{Sec: 300, Depth: 20000, Pressure: 170000, DiluentPressure: 140000},
		},
	}
	pi := plot.Build(dive)

	s := Summarize(dive, pi, Site{})
	if s.Diluent == nil {
		t.Fatal("no diluent use reported")
	}
	if s.Diluent.Index != 1 {
		t.Errorf("diluent index: expected 1, got %d", s.Diluent.Index)
	}
	if s.Diluent.StartPressure != 150000 || s.Diluent.EndPressure != 140000 {
		t.Errorf("diluent pressures: expected 150000/140000, got %d/%d",
			s.Diluent.StartPressure, s.Diluent.EndPressure)
	}
	// 3 l * 10 bar
	if s.Diluent.GasUsed < 29 || s.Diluent.GasUsed > 31 {
		t.Errorf("diluent gas used: expected ~30 l, got %.1f", s.Diluent.GasUsed)
	}
}

func TestSummarizeEmptyProfile(t *testing.T) {
	dive := &types.Dive{}
	s := Summarize(dive, plot.Build(dive), Site{})
	if s.MaxDepth != 0 || s.MeanDepth != 0 || len(s.Cylinders) != 0 {
		t.Errorf("summary invented data for empty dive: %+v", s)
	}
}
