package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"itinerary-route-service/internal/adapters/routing"
	"itinerary-route-service/internal/services"
	"os"

	"gopkg.in/yaml.v3"
)

// OptimizerFile is the YAML layout of the optimizer configuration file.
// Option keys sit at the top level next to speed_tiers.
type OptimizerFile struct {
	services.Options `yaml:",inline"`
	SpeedTiers       []routing.SpeedTier `yaml:"speed_tiers"`
}

// LoadOptimizerOptions overlays the YAML file at path onto base. Keys absent from
// the file keep their base value. An empty path returns base and no tiers.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadOptimizerOptions(path string, base services.Options) (services.Options, []routing.SpeedTier, error) {
	if path == "" {
		return base, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return base, nil, fmt.Errorf("load optimizer options: read %q: %w", path, err)
	}

	file := OptimizerFile{Options: base}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return base, nil, fmt.Errorf("load optimizer options: parse %q: %w", path, err)
	}

	if err := file.Options.Validate(); err != nil {
		return base, nil, fmt.Errorf("load optimizer options: %w", err)
	}

	return file.Options, file.SpeedTiers, nil
}
