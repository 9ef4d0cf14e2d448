package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Simulation.Charge >= 0 {
		t.Error("default charge must be repulsive (negative)")
	}
	if cfg.Simulation.LinkDistanceMajor >= cfg.Simulation.LinkDistance {
		t.Error("major edges should prefer shorter distances than default edges")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("default theme = %q, want dark", cfg.UI.Theme)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.Simulation.TickMillis != DefaultConfig().Simulation.TickMillis {
		t.Error("missing config did not fall back to defaults")
	}
}

func TestLoadFromRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DataPath = "/srv/reports/network.json"
	cfg.PerflogPath = "/srv/reports/perflog.db"
	cfg.Simulation.Charge = -250
	cfg.UI.Theme = "light"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.DataPath != cfg.DataPath || loaded.PerflogPath != cfg.PerflogPath {
		t.Error("paths did not round-trip")
	}
	if loaded.Simulation.Charge != -250 {
		t.Errorf("charge = %v, want -250", loaded.Simulation.Charge)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("theme = %q, want light", loaded.UI.Theme)
	}
}

func TestConfigDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg-test", "nv") {
		t.Errorf("ConfigDir = %q", got)
	}
}
