// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Every value is a
// pointer so an unset key can be told apart from a zero value.
type FileConfig struct {
	Server    ServerConfig    `toml:"server"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Log       LogConfig       `toml:"log"`
	Serve     ServeConfig     `toml:"serve"`
}

// ServerConfig points the client at an API.
type ServerConfig struct {
	URL     *string `toml:"url"`
	Timeout *string `toml:"timeout"`
}

// DashboardConfig holds dashboard defaults.
type DashboardConfig struct {
	Seats        *int     `toml:"seats"`
	CrewAverage  *bool    `toml:"crew-average"`
	Panels       []string `toml:"panels"`
	HiddenPanels []string `toml:"hidden-panels"`
}

// LogConfig controls the log level and destination.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// ServeConfig maps the local replay server settings.
type ServeConfig struct {
	Addr        *string  `toml:"addr"`
	DB          *string  `toml:"db"`
	CORSOrigins []string `toml:"cors-origins"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
