package config

import (
	"fmt"
	"os"

	"busmonitor.luzern.ch/internal/models"
	"gopkg.in/yaml.v3"
)

// routesFile is the on-disk layout of the monitored routes list:
//
//	routes:
//	  - route_id: "1"
//	    label: "Express"
//	    station: "Luzern, Bahnhof"
//	    destination: "Ebikon"
type routesFile struct {
	Routes []models.Route `yaml:"routes"`
}

// LoadRoutesFromFile reads the YAML routes file from disk and returns the
// configured routes. An unreadable file, malformed YAML, or an empty routes
// list is an error; the caller treats it as startup-fatal.
func LoadRoutesFromFile(filePath string) ([]models.Route, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file %s: %w", filePath, err)
	}

	var parsed routesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse routes file %s: %w", filePath, err)
	}

	if len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("routes file %s contains no routes", filePath)
	}

	return parsed.Routes, nil
}
