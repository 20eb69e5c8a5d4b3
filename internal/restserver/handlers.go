package restserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/chrissnell/remotedive/internal/analysis"
	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/gaspressure"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/plot"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/depth"
	"github.com/chrissnell/remotedive/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// ProfileResponse is the reconstructed profile of one dive: every entry
// carries a pressure, sensor-read or interpolated.
type ProfileResponse struct {
	ID         string           `json:"id"`
	DeviceName string           `json:"device_name,omitempty"`
	Site       string           `json:"site,omitempty"`
	Summary    analysis.Summary `json:"summary"`
	Entries    []plot.Entry     `json:"entries"`
}

// GetHealth reports whether the server is up and the archive reachable.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"archive": h.controller.StoreEnabled,
	}
	h.formatter.WriteResponse(w, req, status)
}

// GetDives handles requests for the dive list, newest first.
func (h *Handlers) GetDives(w http.ResponseWriter, req *http.Request) {
	if !h.controller.StoreEnabled {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "dive archive not configured")
		return
	}

	limit := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		var err error
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	dives, err := h.controller.Store.ListDives(limit)
	if err != nil {
		log.Errorf("error listing dives: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error fetching dives")
		return
	}

	h.formatter.WriteResponse(w, req, dives)
}

// GetDive handles requests for a single dive with its raw sample series.
func (h *Handlers) GetDive(w http.ResponseWriter, req *http.Request) {
	dive, ok := h.fetchDive(w, req)
	if !ok {
		return
	}

	h.formatter.WriteResponse(w, req, dive)
}

// GetDiveProfile handles requests for a dive's reconstructed pressure
// profile. The optional diluent query parameter overrides the dive's own
// diluent-tracking flag.
func (h *Handlers) GetDiveProfile(w http.ResponseWriter, req *http.Request) {
	dive, ok := h.fetchDive(w, req)
	if !ok {
		return
	}

	trackDiluent := dive.TrackDiluent
	device := h.controller.deviceConfig(dive.DeviceName)
	if device != nil && device.TrackDiluent {
		trackDiluent = true
	}
	if v := req.URL.Query().Get("diluent"); v != "" {
		var err error
		trackDiluent, err = strconv.ParseBool(v)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid diluent flag")
			return
		}
	}
	dive.TrackDiluent = trackDiluent

	model := depth.NewModel(dive.Salinity, dive.SurfacePressure)
	pi := plot.Build(dive)
	gaspressure.New(model, h.controller.logger).Populate(pi, trackDiluent)

	var site analysis.Site
	if device != nil {
		site = analysis.Site{
			Latitude:  device.Site.Latitude,
			Longitude: device.Site.Longitude,
		}
	}

	resp := ProfileResponse{
		ID:         dive.ID,
		DeviceName: dive.DeviceName,
		Site:       dive.Site,
		Summary:    analysis.Summarize(dive, pi, site),
		Entries:    profileEntries(pi),
	}

	h.formatter.WriteResponse(w, req, resp)
}

// fetchDive resolves the {id} route variable against the archive, writing
// the error response itself when the dive cannot be served.
func (h *Handlers) fetchDive(w http.ResponseWriter, req *http.Request) (*types.Dive, bool) {
	if !h.controller.StoreEnabled {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "dive archive not configured")
		return nil, false
	}

	id := mux.Vars(req)["id"]
	dive, err := h.controller.Store.GetDive(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.formatter.WriteError(w, req, http.StatusNotFound, "dive not found")
			return nil, false
		}
		log.Errorf("error fetching dive %v: %v", id, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error fetching dive")
		return nil, false
	}

	return dive, true
}

// profileEntries strips the leading filler entries the profile builder
// prepends; they carry no timing information.
func profileEntries(pi *plot.Info) []plot.Entry {
	if len(pi.Entries) <= constants.PlotFillerEntries {
		return []plot.Entry{}
	}
	return pi.Entries[constants.PlotFillerEntries:]
}
