// Package config handles loading and saving nv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/nv/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SimulationConfig tunes the force layout. Zero values fall back to the
// built-in defaults at startup.
type SimulationConfig struct {
	Charge            float64 `yaml:"charge,omitempty"`              // repulsion strength (negative)
	LinkDistanceMajor float64 `yaml:"link_distance_major,omitempty"` // preferred major-major edge length
	LinkDistance      float64 `yaml:"link_distance,omitempty"`       // preferred default edge length
	TickMillis        int     `yaml:"tick_ms,omitempty"`             // layout tick interval
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme     string `yaml:"theme,omitempty"`      // dark or light
	NodeList  *bool  `yaml:"node_list,omitempty"`  // show the ranked node list panel
	MouseHelp *bool  `yaml:"mouse_help,omitempty"` // show the mouse hint footer
}

// Config is the top-level configuration for nv.
type Config struct {
	// DataPath points at the network document; overridden by --data and
	// NETVIEW_DATA.
	DataPath string `yaml:"data_path,omitempty"`
	// PerflogPath points at the benchmark time-series database.
	PerflogPath string           `yaml:"perflog_path,omitempty"`
	Simulation  SimulationConfig `yaml:"simulation,omitempty"`
	UI          UIConfig         `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			Charge:            -180,
			LinkDistanceMajor: 60,
			LinkDistance:      100,
			TickMillis:        30,
		},
		UI: UIConfig{Theme: "dark"},
	}
}

// ConfigDir returns the XDG config directory for nv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "nv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "nv")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Missing file is not an error;
// a file that exists but fails to parse is.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func (c Config) Save() error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to a specific path, creating parent directories.
func (c Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
