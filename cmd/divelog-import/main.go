// Package main imports dive logs from JSON files into the dive archive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/remotedive/internal/database"
	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source (YAML or SQLite)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] dive.json [dive.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	provider, err := config.NewProvider(filename)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	defer provider.Close()

	storageConfig, err := provider.GetStorageConfig()
	if err != nil {
		log.Fatalf("Failed to load storage configuration: %v", err)
	}
	if storageConfig.Postgres == nil || storageConfig.Postgres.ConnectionString == "" {
		log.Fatal("no dive archive configured; nothing to import into")
	}

	client := database.NewClient(storageConfig.Postgres.ConnectionString, log.GetSugaredLogger())
	if err := client.Connect(); err != nil {
		log.Fatalf("could not connect to dive archive: %v", err)
	}
	if err := client.Migrate(); err != nil {
		log.Fatalf("could not migrate dive archive: %v", err)
	}

	imported := 0
	for _, path := range flag.Args() {
		dives, err := loadDives(path)
		if err != nil {
			log.Errorf("skipping %s: %v", path, err)
			continue
		}

		for i := range dives {
			id, err := client.SaveDive(&dives[i])
			if err != nil {
				log.Errorf("could not import dive %d from %s: %v", i, path, err)
				continue
			}
			log.Infof("imported dive %s from %s (%d samples)", id, path, len(dives[i].Samples))
			imported++
		}
	}

	log.Infof("import complete: %d dives", imported)
}

// loadDives reads one file holding either a single dive object or an array
// of dives.
func loadDives(path string) ([]types.Dive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var dives []types.Dive
	if err := json.Unmarshal(data, &dives); err == nil {
		return dives, nil
	}

	var dive types.Dive
	if err := json.Unmarshal(data, &dive); err != nil {
		return nil, fmt.Errorf("not a dive or dive array: %v", err)
	}
	return []types.Dive{dive}, nil
}
