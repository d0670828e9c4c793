package queuectl

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config holds the two tunables the dispatch engine reads: the
// default retry budget for newly enqueued jobs, and the base of the
// exponential backoff formula (delay = backoffBase ^ attempts).
type Config struct {
	MaxRetries  uint32 `json:"max_retries"`
	BackoffBase uint32 `json:"backoff_base"`
}

// DefaultConfig returns the built-in defaults, matching the original
// implementation's DEFAULT_CONFIG.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, BackoffBase: 2}
}

// LoadConfig reads config.json at path, writing out defaults if the
// file is missing, and resetting to defaults if it is present but
// corrupted (invalid JSON) — matching the original config.py's
// load_config behavior exactly.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		def := DefaultConfig()
		return def, SaveConfig(path, def)
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		def := DefaultConfig()
		return def, SaveConfig(path, def)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as indented JSON.
func SaveConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SetConfigValue parses value against the named key's expected type
// and writes the updated config to path. It returns ErrUnknownConfigKey
// for any key outside {max_retries, backoff_base}, and
// ErrBadConfigValue if value cannot be parsed as an unsigned integer.
func SetConfigValue(path string, key string, value string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	n, perr := strconv.ParseUint(value, 10, 32)
	switch key {
	case "max_retries":
		if perr != nil {
			return fmt.Errorf("%w: %s", ErrBadConfigValue, value)
		}
		cfg.MaxRetries = uint32(n)
	case "backoff_base":
		if perr != nil {
			return fmt.Errorf("%w: %s", ErrBadConfigValue, value)
		}
		cfg.BackoffBase = uint32(n)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}
	return SaveConfig(path, cfg)
}
