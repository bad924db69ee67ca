// Package config resolves Engine construction options from, in
// increasing priority: built-in defaults, environment variables, an
// optional TOML file, then explicit overrides (CLI flags in the cmd
// binaries). TOML is the config format used throughout for the same
// reason the teacher picked its own binary format for dictionary
// data — BurntSushi/toml is the corpus's attested config-file library.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable the engine needs at construction time.
type Config struct {
	DataDir        string `toml:"data_dir"`
	ModelDir       string `toml:"model_dir"`
	Workers        int    `toml:"workers"`
	IntraOpThreads int    `toml:"intra_op_threads"`
	LogLevel       string `toml:"log_level"`
}

// Default returns the built-in baseline configuration.
func Default() Config {
	return Config{
		DataDir:        "./data",
		ModelDir:       "./models",
		Workers:        0, // 0 means "use runtime.NumCPU()"
		IntraOpThreads: 0,
		LogLevel:       "info",
	}
}

// Load resolves a Config starting from Default, then applying environment
// variables, then — if path is non-empty and the file exists — a TOML
// file. A missing TOML file at an explicitly given path is an error; a
// missing file at the default empty path is not (there may simply be no
// config file).
func Load(path string) (Config, error) {
	cfg := Default()
	applyEnv(&cfg)

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("XMORPH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("XMORPH_MODEL_DIR"); v != "" {
		cfg.ModelDir = v
	}
	if v := os.Getenv("XMORPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
