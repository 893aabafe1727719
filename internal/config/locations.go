package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
)

type locationsFile struct {
	Locations []locationEntry `yaml:"locations" validate:"dive"`
}

type locationEntry struct {
	Name      string  `yaml:"name" validate:"required"`
	Latitude  float64 `yaml:"latitude" validate:"latitude"`
	Longitude float64 `yaml:"longitude" validate:"longitude"`
}

// LoadLocations reads reference locations from a YAML file of the form
//
//	locations:
//	  - name: Delhi
//	    latitude: 28.6139
//	    longitude: 77.2090
func LoadLocations(path string) ([]airquality.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}

	var f locationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse locations file: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid locations file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Locations))
	locs := make([]airquality.Location, 0, len(f.Locations))
	for _, e := range f.Locations {
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("invalid locations file: duplicate location %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		locs = append(locs, airquality.Location{Name: e.Name, Latitude: e.Latitude, Longitude: e.Longitude})
	}
	return locs, nil
}
