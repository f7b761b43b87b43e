// Package runtimecfg loads the ambient runtime configuration every kodit
// subcommand shares: GC tuning, execution limits, and debugger defaults.
package runtimecfg

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the ambient runtime configuration, loaded from TOML.
type Config struct {
	Execution struct {
		GCThreshold   int    `toml:"gc_threshold"`
		MaxStackDepth int    `toml:"max_stack_depth"`
		MaxCycles     uint64 `toml:"max_cycles"`
		Verbose       bool   `toml:"verbose"`
		Trace         bool   `toml:"trace"`
	} `toml:"execution"`

	Debugger struct {
		HistorySize int  `toml:"history_size"`
		ShowSource  bool `toml:"show_source"`
		ShowHeap    bool `toml:"show_heap"`
	} `toml:"debugger"`
}

// Default returns a Config populated with kodit's built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Execution.GCThreshold = 20
	cfg.Execution.MaxStackDepth = 256
	cfg.Execution.MaxCycles = 0
	cfg.Execution.Verbose = false
	cfg.Execution.Trace = false

	cfg.Debugger.HistorySize = 500
	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowHeap = true

	return cfg
}

// Path returns the platform-specific config file path.
func Path() string {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "kodit")
	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "kodit.toml"
		}
		dir = filepath.Join(home, ".config", "kodit")
	default:
		return "kodit.toml"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "kodit.toml"
	}
	return filepath.Join(dir, "kodit.toml")
}

// Load reads the config file at the default path, falling back to
// Default() when the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, falling back to Default()
// when the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveTo writes c to path in TOML form, creating parent directories as
// needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-supplied config path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
