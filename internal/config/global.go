// Package config implements the prefix layout (user vs system scope),
// privilege detection, and the small ambient global config file that sits
// outside the four core subsystems' hot path.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds settings from ~/.wenget/config.yaml, following the
// teacher's yaml-file-plus-env-override pattern for its own global config.
type GlobalConfig struct {
	// AutoYes sets the default auto-confirm policy when --yes is not
	// passed on the command line (still overridden by an explicit flag).
	AutoYes bool `yaml:"auto_yes"`
	// PreferMusl overrides the default glibc-host tie-break (see
	// internal/platform) to prefer musl binaries even when a matching
	// gnu asset is offered.
	PreferMusl bool `yaml:"prefer_musl"`
	// HTTPConnectTimeout and HTTPTotalTimeout are loaded from the file
	// (defaulting to §5's 10s-connect/30s-total budgets) but are not passed
	// to any HTTP client: downloads and bucket fetches use their own fixed
	// timeouts.
	HTTPConnectTimeout time.Duration `yaml:"http_connect_timeout"`
	HTTPTotalTimeout   time.Duration `yaml:"http_total_timeout"`
}

// DefaultGlobalConfig returns the built-in defaults, matching §5's stated
// HTTP budgets.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		AutoYes:            false,
		PreferMusl:         false,
		HTTPConnectTimeout: 10 * time.Second,
		HTTPTotalTimeout:   30 * time.Second,
	}
}

// LoadGlobal reads <UserPrefixDir>/config.yaml and applies environment
// overrides. A missing or unparsable file silently falls back to defaults
// (the global config is ambient, not one of the three I6-covered stores).
func LoadGlobal() (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	configPath := filepath.Join(UserPrefixDir(), "config.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		_ = yaml.Unmarshal(data, cfg)
	}

	if v := os.Getenv("WENGET_AUTO_YES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoYes = b
		}
	}
	if v := os.Getenv("WENGET_PREFER_MUSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PreferMusl = b
		}
	}

	return cfg, nil
}

// UserPrefixDir returns $HOME/.wenget on UNIX and %USERPROFILE%\.wenget on
// Windows (os.UserHomeDir already does the platform split).
func UserPrefixDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".wenget")
	}
	return filepath.Join(home, ".wenget")
}
