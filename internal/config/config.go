package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appName    = "nativekit"
	configFile = "config.json"
)

// Duration reads and writes JSON strings such as "250ms" or "30m".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Rating struct {
	AppName           string `json:"app_name"`
	StoreURL          string `json:"store_url"`
	FirstAfterMinutes int    `json:"first_after_minutes"`
	AgainAfterMinutes int    `json:"again_after_minutes"`
	AskOnStartup      bool   `json:"ask_on_startup"`
}

type Config struct {
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	// NativeLibPath points at a shared library exporting the C entry points.
	// Empty means every capability uses its fallback.
	NativeLibPath string `json:"native_lib_path"`

	TickInterval    Duration `json:"tick_interval"`
	NetworkCacheTTL Duration `json:"network_cache_ttl"`
	NetworkCaching  bool     `json:"network_caching"`

	PrefsBackend string `json:"prefs_backend"`
	PrefsPath    string `json:"prefs_path"`

	MetricsAddr string `json:"metrics_addr"`

	Rating Rating `json:"rating"`
}

func Default(appDir string) Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      "text",
		TickInterval:   Duration{16 * time.Millisecond},
		NetworkCaching: true,
		PrefsBackend:   "keyring",
		PrefsPath:      filepath.Join(appDir, "prefs"),
		Rating: Rating{
			AppName:           "My cool app",
			FirstAfterMinutes: 30,
			AgainAfterMinutes: 60,
			AskOnStartup:      true,
		},
	}
}

// Load reads the config from the user config directory, writing the
// defaults there first when no file exists yet.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(configDir, appName, configFile))
}

func LoadFrom(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(path, out, 0600); err != nil {
			return nil, err
		}
		slog.Info("generated new config", "path", path)
	default:
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NATIVEKIT_LIB_PATH"); v != "" {
		cfg.NativeLibPath = v
	}
	if v := os.Getenv("NATIVEKIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("NATIVEKIT_PREFS_BACKEND"); v != "" {
		cfg.PrefsBackend = v
	}
	if v := os.Getenv("NATIVEKIT_PREFS_PATH"); v != "" {
		cfg.PrefsPath = v
	}
	if v := os.Getenv("NATIVEKIT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
}
