// Package main renders a dive's reconstructed pressure profile as a
// terminal table, reading the dive from a JSON file or from the archive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/chrissnell/remotedive/internal/analysis"
	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/database"
	"github.com/chrissnell/remotedive/internal/gaspressure"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/plot"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
	"github.com/chrissnell/remotedive/pkg/depth"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source (YAML or SQLite)")
	diveID := flag.String("id", "", "Dive ID to load from the archive")
	diveFile := flag.String("file", "", "JSON dive log to load instead of the archive")
	diluent := flag.Bool("diluent", false, "Track diluent pressures as well")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dive, err := loadDive(*cfgFile, *diveID, *diveFile)
	if err != nil {
		log.Fatalf("could not load dive: %v", err)
	}

	trackDiluent := dive.TrackDiluent || *diluent

	model := depth.NewModel(dive.Salinity, dive.SurfacePressure)
	pi := plot.Build(dive)
	gaspressure.New(model, log.GetSugaredLogger()).Populate(pi, trackDiluent)
	dive.TrackDiluent = trackDiluent
	summary := analysis.Summarize(dive, pi, analysis.Site{})

	printSummary(dive, summary)
	printProfile(pi, trackDiluent)
}

func loadDive(cfgFile, diveID, diveFile string) (*types.Dive, error) {
	switch {
	case diveFile != "":
		data, err := os.ReadFile(diveFile)
		if err != nil {
			return nil, err
		}
		var dive types.Dive
		if err := json.Unmarshal(data, &dive); err != nil {
			return nil, err
		}
		return &dive, nil

	case diveID != "":
		filename, _ := filepath.Abs(cfgFile)
		provider, err := config.NewProvider(filename)
		if err != nil {
			return nil, err
		}
		defer provider.Close()

		storageConfig, err := provider.GetStorageConfig()
		if err != nil {
			return nil, err
		}
		if storageConfig.Postgres == nil || storageConfig.Postgres.ConnectionString == "" {
			return nil, fmt.Errorf("no dive archive configured")
		}

		client := database.NewClient(storageConfig.Postgres.ConnectionString, log.GetSugaredLogger())
		if err := client.Connect(); err != nil {
			return nil, err
		}
		return client.GetDive(diveID)

	default:
		return nil, fmt.Errorf("pass either -file or -id")
	}
}

func printSummary(dive *types.Dive, summary analysis.Summary) {
	pterm.DefaultSection.Printf("Dive %s", dive.ID)

	rows := pterm.TableData{
		{"Device", dive.DeviceName},
		{"Site", dive.Site},
		{"Start", dive.StartTime.Format("2006-01-02 15:04")},
		{"Duration", summary.Duration.String()},
		{"Max depth", fmt.Sprintf("%.1f m", float64(summary.MaxDepth)/1000)},
		{"Mean depth", fmt.Sprintf("%.1f m", float64(summary.MeanDepth)/1000)},
	}
	for _, use := range summary.Cylinders {
		rows = append(rows, []string{
			fmt.Sprintf("Cylinder %d", use.Index),
			fmt.Sprintf("%.0f → %.0f bar, %.0f l used",
				float64(use.StartPressure)/1000, float64(use.EndPressure)/1000, use.GasUsed),
		})
	}
	if summary.Diluent != nil {
		rows = append(rows, []string{
			"Diluent",
			fmt.Sprintf("%.0f → %.0f bar", float64(summary.Diluent.StartPressure)/1000,
				float64(summary.Diluent.EndPressure)/1000),
		})
	}

	pterm.DefaultTable.WithData(rows).Render()
}

func printProfile(pi *plot.Info, trackDiluent bool) {
	header := []string{"Time", "Depth", "Cyl", "Sensor", "Interpolated"}
	if trackDiluent {
		header = append(header, "Dil sensor", "Dil interp")
	}
	rows := pterm.TableData{header}

	entries := pi.Entries
	if len(entries) > constants.PlotFillerEntries {
		entries = entries[constants.PlotFillerEntries:]
	}

	for i := range entries {
		e := &entries[i]
		row := []string{
			fmt.Sprintf("%d:%02d", e.Sec/60, e.Sec%60),
			fmt.Sprintf("%.1f m", float64(e.Depth)/1000),
			fmt.Sprintf("%d", e.Cylinder),
			formatPressure(e.Pressure[plot.SensorPR]),
			formatPressure(e.Pressure[plot.InterpolatedPR]),
		}
		if trackDiluent {
			row = append(row,
				formatPressure(e.Diluent[plot.SensorPR]),
				formatPressure(e.Diluent[plot.InterpolatedPR]))
		}
		rows = append(rows, row)
	}

	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func formatPressure(mbar int) string {
	if mbar == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f bar", float64(mbar)/1000)
}
