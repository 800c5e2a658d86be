package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds server settings loadable from a YAML file. Flags and
// environment variables override file values.
type Config struct {
	Port         int    `yaml:"port"`
	DBPath       string `yaml:"db_path"`
	NominatimURL string `yaml:"nominatim_url"`
	CompanyName  string `yaml:"company_name"`
	CompanyEmail string `yaml:"company_email"`
	// DefaultLatitude/Longitude seed the map pin when a client supplies
	// no location and device GPS is unavailable.
	DefaultLatitude  float64 `yaml:"default_latitude"`
	DefaultLongitude float64 `yaml:"default_longitude"`
}

func defaultConfig() Config {
	return Config{
		Port:             9000,
		DBPath:           "ewms.db",
		NominatimURL:     "https://nominatim.openstreetmap.org",
		CompanyName:      "Your Company",
		CompanyEmail:     "admin@example.com",
		DefaultLatitude:  28.6139,
		DefaultLongitude: 77.2090,
	}
}

// loadConfig reads a YAML config file over the defaults. A missing path is
// not an error; a malformed file is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
