package restserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/chrissnell/remotedive/internal/plot"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

// fakeStore serves a fixed set of dives without a database.
type fakeStore struct {
	dives map[string]*types.Dive
}

func (s *fakeStore) ListDives(limit int) ([]types.Dive, error) {
	var out []types.Dive
	for _, d := range s.dives {
		stripped := *d
		stripped.Samples = nil
		out = append(out, stripped)
	}
	return out, nil
}

func (s *fakeStore) GetDive(id string) (*types.Dive, error) {
	d, ok := s.dives[id]
	if !ok {
		return nil, fmt.Errorf("failed to fetch dive %s: %w", id, gorm.ErrRecordNotFound)
	}
	copied := *d
	return &copied, nil
}

func testController(store DiveStore) *Controller {
	ctrl := &Controller{
		Store:        store,
		StoreEnabled: store != nil,
		Devices: []config.DeviceData{
			{
				Name: "shearwater-1",
				Site: config.SiteData{Latitude: 27.85, Longitude: 34.31},
			},
		},
	}
	ctrl.handlers = NewHandlers(ctrl)
	return ctrl
}

func gapDive() *types.Dive {
	return &types.Dive{
		ID:         "d1",
		DeviceName: "shearwater-1",
		Site:       "Shark Reef",
		StartTime:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Cylinders:  []types.Cylinder{{Index: 0, Size: 11100, WorkingPressure: 232000}},
		Samples: []types.Sample{
			{Sec: 0, Depth: 10000, Cylinder: 0, Pressure: 200000},
			{Sec: 60, Depth: 10000, Cylinder: 0},
			{Sec: 120, Depth: 10000, Cylinder: 0, Pressure: 180000},
		},
	}
}

func TestGetHealth(t *testing.T) {
	router := testController(&fakeStore{}).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["archive"] != true {
		t.Errorf("archive = %v, want true", body["archive"])
	}
}

func TestGetDives(t *testing.T) {
	store := &fakeStore{dives: map[string]*types.Dive{"d1": gapDive()}}
	router := testController(store).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dives", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d, want 200", w.Code)
	}

	var dives []types.Dive
	if err := json.Unmarshal(w.Body.Bytes(), &dives); err != nil {
		t.Fatalf("decoding dive list: %v", err)
	}
	if len(dives) != 1 {
		t.Fatalf("got %d dives, want 1", len(dives))
	}
	if dives[0].ID != "d1" {
		t.Errorf("dive ID = %q, want d1", dives[0].ID)
	}
	if len(dives[0].Samples) != 0 {
		t.Errorf("dive list should not carry samples, got %d", len(dives[0].Samples))
	}
}

func TestGetDivesBadLimit(t *testing.T) {
	router := testController(&fakeStore{}).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dives?limit=banana", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit returned %d, want 400", w.Code)
	}
}

func TestGetDiveNotFound(t *testing.T) {
	store := &fakeStore{dives: map[string]*types.Dive{}}
	router := testController(store).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dives/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("missing dive returned %d, want 404", w.Code)
	}
}

func TestGetDive(t *testing.T) {
	store := &fakeStore{dives: map[string]*types.Dive{"d1": gapDive()}}
	router := testController(store).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dives/d1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("get dive returned %d, want 200", w.Code)
	}

	var dive types.Dive
	if err := json.Unmarshal(w.Body.Bytes(), &dive); err != nil {
		t.Fatalf("decoding dive: %v", err)
	}
	if len(dive.Samples) != 3 {
		t.Errorf("got %d samples, want 3", len(dive.Samples))
	}
}

func TestGetDiveProfile(t *testing.T) {
	store := &fakeStore{dives: map[string]*types.Dive{"d1": gapDive()}}
	router := testController(store).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dives/d1/profile", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("profile returned %d, want 200", w.Code)
	}

	var resp ProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}

	if len(resp.Entries) != 3 {
		t.Fatalf("got %d entries, want 3 (fillers stripped)", len(resp.Entries))
	}

	// Flat depth splits the pressure drop evenly across the gap.
	if got := resp.Entries[1].Pressure[plot.InterpolatedPR]; got != 190000 {
		t.Errorf("interpolated gap pressure = %d, want 190000", got)
	}
	if got := resp.Entries[0].Pressure[plot.SensorPR]; got != 200000 {
		t.Errorf("start pressure = %d, want 200000", got)
	}

	if resp.Summary.MaxDepth != 10000 {
		t.Errorf("max depth = %d, want 10000", resp.Summary.MaxDepth)
	}
	if resp.Summary.Duration != 2*time.Minute {
		t.Errorf("duration = %v, want 2m", resp.Summary.Duration)
	}
	// Shark Reef at 09:00 local is daylight.
	if resp.Summary.Night {
		t.Error("dive classified as night, want day")
	}
}

func TestGetDiveProfileNoArchive(t *testing.T) {
	router := testController(nil).setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dives/d1/profile", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("profile without archive returned %d, want 503", w.Code)
	}
}
