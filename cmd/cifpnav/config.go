// cmd/cifpnav/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/nav"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Path to the sqlite procedure database.
	Database string `toml:"database"`
	// Optional bundle that is loaded in place of the database.
	Bundle string `toml:"bundle"`

	LogLevel string `toml:"log_level"`
	LogDir   string `toml:"log_dir"`

	// Address for -http if none is given on the command line.
	HTTPAddress string `toml:"http_address"`

	WaypointCacheSize int `toml:"waypoint_cache_size"`

	// FAA page that links to the current CIFP for -fetch-cifp.
	CIFPPage string `toml:"cifp_page"`

	Tuning nav.Tuning `toml:"tuning"`
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "cifpnav")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

func getDefaultConfig() *Config {
	return &Config{
		Database:          filepath.Join(configDir(), "procedures.db"),
		LogLevel:          "info",
		HTTPAddress:       "localhost:8642",
		WaypointCacheSize: 4096,
		CIFPPage:          "https://www.faa.gov/air_traffic/flight_info/aeronav/digital_products/cifp/download/",
		Tuning:            nav.DefaultTuning(),
	}
}

// LoadOrMakeDefaultConfig reads the configuration at path. Settings that
// aren't in the file keep their default values; a missing file gives the
// defaults.
func LoadOrMakeDefaultConfig(path string) (*Config, error) {
	config := getDefaultConfig()

	if _, err := toml.DecodeFile(path, config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return getDefaultConfig(), err
	}
	return config, nil
}

func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) Save(path string, lg *log.Logger) error {
	lg.Infof("Saving config to: %s", path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Encode(f)
}
