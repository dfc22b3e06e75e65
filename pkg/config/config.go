// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/btcsuite/btclog"
	"github.com/cahaug/ls8/pkg/machine"
)

const (
	COLOR_AUTO   = "auto"
	COLOR_ALWAYS = "always"
	COLOR_NEVER  = "never"
)

type Config struct {
	Machine MachineConfig `toml:"machine"`
	Log     LogConfig     `toml:"log"`
	Trace   TraceConfig   `toml:"trace"`

	// Path is the file the config was read from (set at load time).
	Path string `toml:"-"`
}

type MachineConfig struct {
	Memory int `toml:"memory"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Color   string `toml:"color"`
}

func Default() *Config {
	return &Config{
		Machine: MachineConfig{Memory: machine.MEMORY_SIZE},
		Log:     LogConfig{Level: "info"},
		Trace:   TraceConfig{Color: COLOR_AUTO},
	}
}

// Load parses the TOML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg, err := Decode(data)

	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	cfg.Path = path

	return cfg, nil
}

func Decode(data []byte) (*Config, error) {
	cfg := Default()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Trace.Color == "" {
		cfg.Trace.Color = COLOR_AUTO
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.Machine.Memory < 1 || cfg.Machine.Memory > machine.MEMORY_SIZE {
		return fmt.Errorf(
			"machine.memory must be within 1..%d, have %d",
			machine.MEMORY_SIZE,
			cfg.Machine.Memory,
		)
	}

	if _, ok := btclog.LevelFromString(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level '%s' is not a valid level", cfg.Log.Level)
	}

	switch cfg.Trace.Color {
	case COLOR_AUTO, COLOR_ALWAYS, COLOR_NEVER:
	default:
		return fmt.Errorf("trace.color '%s' is not one of auto, always, never", cfg.Trace.Color)
	}

	return nil
}

func (cfg *Config) LogLevel() btclog.Level {
	level, _ := btclog.LevelFromString(cfg.Log.Level)
	return level
}
