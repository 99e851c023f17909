package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Server.URL != nil || cfg.Dashboard.Seats != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
url = "http://boathouse:8000"
timeout = "5s"

[dashboard]
seats = 4
crew-average = false
panels = ["power", "summary"]
hidden-panels = ["angles"]

[log]
level = "debug"

[serve]
addr = ":9000"
cors-origins = ["http://localhost:5173"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.URL == nil || *cfg.Server.URL != "http://boathouse:8000" {
		t.Fatalf("unexpected url: %v", cfg.Server.URL)
	}
	if cfg.Dashboard.Seats == nil || *cfg.Dashboard.Seats != 4 {
		t.Fatalf("unexpected seats: %v", cfg.Dashboard.Seats)
	}
	if cfg.Dashboard.CrewAverage == nil || *cfg.Dashboard.CrewAverage {
		t.Fatalf("expected crew-average=false")
	}
	if len(cfg.Dashboard.Panels) != 2 || cfg.Dashboard.HiddenPanels[0] != "angles" {
		t.Fatalf("unexpected panels: %+v", cfg.Dashboard)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" || cfg.Log.File != nil {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Serve.Addr == nil || *cfg.Serve.Addr != ":9000" || cfg.Serve.DB != nil {
		t.Fatalf("unexpected serve config: %+v", cfg.Serve)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nurll = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "server.urll") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "peach", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "peach", "peach.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "peach", "peach.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
