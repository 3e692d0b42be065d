// Package config loads the typograf-live configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"typograf-live/internal/typograf"
)

// Validation errors.
var (
	ErrInvalidAddr     = errors.New("server.addr must not be empty")
	ErrInvalidDebounce = errors.New("editor.debounce_ms must be positive")
	ErrInvalidLimit    = errors.New("editor.fragment_limit must be positive")
	ErrInvalidLevel    = errors.New("log.level must be debug, info, warn or error")
	ErrInvalidFormat   = errors.New("log.format must be text or json")
)

// Config holds the complete application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Editor EditorConfig `toml:"editor"`
	Prefs  PrefsConfig  `toml:"prefs"`
	Save   SaveConfig   `toml:"save"`
	Docs   DocsConfig   `toml:"docs"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// EditorConfig tunes the live editor.
type EditorConfig struct {
	// DebounceMs is the quiet period after a keystroke before the result
	// is recomputed.
	DebounceMs int `toml:"debounce_ms"`

	// FragmentLimit is the number of input characters kept in the URL.
	FragmentLimit int `toml:"fragment_limit"`
}

// PrefsConfig locates the preferences file and its defaults.
type PrefsConfig struct {
	Path   string `toml:"path"`
	Locale string `toml:"locale"`
	Mode   string `toml:"mode"`
	LangUI string `toml:"lang_ui"`
	// Watch reloads the file when it is edited by hand.
	Watch bool `toml:"watch"`
}

// SaveConfig is where the save action writes files.
type SaveConfig struct {
	Dir string `toml:"dir"`
}

// DocsConfig optionally overrides the embedded about document.
type DocsConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:7778"},
		Editor: EditorConfig{DebounceMs: 250, FragmentLimit: 512},
		Prefs: PrefsConfig{
			Path:   defaultPrefsPath(),
			Locale: "ru",
			Mode:   string(typograf.EntityDefault),
			LangUI: "en",
			Watch:  true,
		},
		Save: SaveConfig{Dir: defaultSaveDir()},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies TYPOGRAF_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TYPOGRAF_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TYPOGRAF_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TYPOGRAF_PREFS"); v != "" {
		c.Prefs.Path = v
	}
	if v := os.Getenv("TYPOGRAF_SAVE_DIR"); v != "" {
		c.Save.Dir = v
	}
	if v := os.Getenv("TYPOGRAF_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Editor.DebounceMs = ms
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, ErrInvalidAddr)
	}
	if c.Editor.DebounceMs <= 0 {
		errs = append(errs, ErrInvalidDebounce)
	}
	if c.Editor.FragmentLimit <= 0 {
		errs = append(errs, ErrInvalidLimit)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLevel)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, ErrInvalidFormat)
	}

	return errors.Join(errs...)
}

// Debounce returns the editor quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Editor.DebounceMs) * time.Millisecond
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "typograf-live", "prefs.yaml")
}

func defaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Documents", "typograf")
}
