// Package config loads VM tuning parameters from a TOML file, with
// sane defaults when none is supplied.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config bounds the runtime's resource usage and locates its iseq
// cache database.
type Config struct {
	MaxStackDepth int    `toml:"max_stack_depth"`
	MaxFrameDepth int    `toml:"max_frame_depth"`
	CachePath     string `toml:"cache_path"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		MaxStackDepth: 65536,
		MaxFrameDepth: 4096,
		CachePath:     "yarvm_cache.db",
	}
}

// Load reads and decodes a TOML configuration file, filling any
// field the file omits from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "loading config from %s", path)
	}
	return cfg, nil
}
