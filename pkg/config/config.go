// Package config loads slang.toml, the optional per-project file that tunes
// VM execution limits.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Limits bounds one VM execution (spec.md §5's resource-control knobs).
type Limits struct {
	// MaxFrames caps the call-frame stack depth; exceeding it raises
	// StackOverflow. spec.md §5 fixes the default at 1024.
	MaxFrames int `toml:"max-frames"`
	// GasLimit caps the number of instructions Run executes before
	// aborting with a gas-exhaustion error. Zero means unlimited.
	GasLimit int `toml:"gas-limit"`
	// StackCapacity is the initial value-stack allocation; the stack grows
	// past this as needed, so it is a performance hint, not a hard cap.
	StackCapacity int `toml:"stack-capacity"`
}

// Config is the top-level shape of slang.toml.
type Config struct {
	Limits Limits `toml:"limits"`

	// Dir is the directory the config was loaded from (unset for Default()).
	Dir string `toml:"-"`
}

// Default returns the configuration used when no slang.toml is present.
func Default() *Config {
	return &Config{
		Limits: Limits{
			MaxFrames:     1024,
			GasLimit:      0,
			StackCapacity: 100,
		},
	}
}

// Load parses slang.toml from dir, falling back to Default() for any field
// the file does not set. A field the file sets explicitly, even to zero,
// overrides the default.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "slang.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}
	cfg.Dir = dir
	return cfg, nil
}
