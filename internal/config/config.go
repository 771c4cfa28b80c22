// Package config loads the YAML configuration file that selects the
// tile-grid preset, the Overpass endpoint and tag filters, and the
// interest categories to emit.
package config

import (
	"fmt"
	"os"

	"github.com/invopop/yaml"
)

// Standard tile-grid presets. TileBorderThickness stays fixed across
// presets: it approximates one metre in angular units, not a fraction
// of the tile side.
const (
	PresetDefault = "default"
	PresetSki     = "ski"

	defaultSide         = 1.0 / 750.0
	skiSide             = 1.0 / 150.0
	TileBorderThickness = 1.0 / 111200.0

	defaultOverpassURL = "https://overpass-api.de/api/interpreter"
)

// defaultTagFilters excludes the way categories the router has no use
// for: roads under construction, proposed roads, and transit platforms
// that would clutter a road-routing map.
var defaultTagFilters = []string{
	"highway!=construction",
	"highway!=proposed",
	"highway!=platform",
}

// InterestCategory assigns a numeric category id (1..K; 0 is reserved
// for waypoints) to an OSM tag match.
type InterestCategory struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Config is the user-editable configuration, loaded from an optional
// YAML file and overridable by CLI flags.
type Config struct {
	Preset      string             `json:"preset,omitempty"`
	OverpassURL string             `json:"overpass_url,omitempty"`
	TagFilters  []string           `json:"tag_filters,omitempty"`
	Interests   []InterestCategory `json:"interests,omitempty"`
	OutputDir   string             `json:"output_dir,omitempty"`
}

// Side returns the tile side for cfg's preset.
func (cfg Config) Side() (float64, error) {
	switch cfg.Preset {
	case "", PresetDefault:
		return defaultSide, nil
	case PresetSki:
		return skiSide, nil
	default:
		return 0, fmt.Errorf("config: unknown preset %q", cfg.Preset)
	}
}

// Endpoint returns the configured Overpass endpoint, or the public
// default when unset.
func (cfg Config) Endpoint() string {
	if cfg.OverpassURL == "" {
		return defaultOverpassURL
	}
	return cfg.OverpassURL
}

// Filters returns the configured tag filters, or the fixed default set
// when unset.
func (cfg Config) Filters() []string {
	if len(cfg.TagFilters) == 0 {
		return defaultTagFilters
	}
	return cfg.TagFilters
}

// Load reads and parses a YAML config file. A zero Config (default
// preset, public endpoint, default filters, no interest categories) is
// returned unchanged if path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save encodes cfg back to YAML, for round-tripping a generated config
// file.
func Save(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
