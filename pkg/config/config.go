// Package config loads user settings for the polaroid CLI.
//
// Settings are merged in increasing order of precedence:
//
//  1. built-in defaults ([Default])
//  2. the YAML config file, $XDG_CONFIG_HOME/polaroid/config.yaml by default
//  3. POLAROID_* environment variables (a .env file in the working directory
//     is loaded into the environment by the CLI before this step)
//  4. command-line flags, applied by the caller
//
// Example config.yaml:
//
//	preset: grid6
//	dpi: 300
//	workers: 4
//	jpeg_quality: 90
//	font: ~/fonts/Caveat.ttf
//	redis_url: redis://localhost:6379/0
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/layout"
)

const appName = "polaroid"

// Environment variable names.
const (
	EnvCacheDir    = "POLAROID_CACHE_DIR"
	EnvRedisURL    = "POLAROID_REDIS_URL"
	EnvWorkers     = "POLAROID_WORKERS"
	EnvDPI         = "POLAROID_DPI"
	EnvFont        = "POLAROID_FONT"
	EnvPreset      = "POLAROID_PRESET"
	EnvJPEGQuality = "POLAROID_JPEG_QUALITY"
)

// Defaults.
const (
	DefaultDPI         = 300
	DefaultJPEGQuality = 92
	MaxDPI             = 1200
)

// Config holds user settings.
type Config struct {
	CacheDir    string `yaml:"cache_dir,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
	Workers     int    `yaml:"workers,omitempty"`
	DPI         int    `yaml:"dpi,omitempty"`
	FontPath    string `yaml:"font,omitempty"`
	Preset      string `yaml:"preset,omitempty"`
	JPEGQuality int    `yaml:"jpeg_quality,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	dir, _ := DefaultCacheDir()
	return Config{
		CacheDir:    dir,
		Workers:     runtime.NumCPU(),
		DPI:         DefaultDPI,
		Preset:      layout.DefaultPreset,
		JPEGQuality: DefaultJPEGQuality,
	}
}

// DefaultPath returns the config file location, following the XDG base
// directory convention.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.yaml"), nil
}

// DefaultCacheDir returns the cache directory (~/.cache/polaroid/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load merges defaults, the file at path and the environment, then
// validates the result. An empty path means [DefaultPath]; a missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	c.merge(file)
	return nil
}

// merge overwrites fields that are set in o.
func (c *Config) merge(o Config) {
	if o.CacheDir != "" {
		c.CacheDir = expandHome(o.CacheDir)
	}
	if o.RedisURL != "" {
		c.RedisURL = o.RedisURL
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.DPI != 0 {
		c.DPI = o.DPI
	}
	if o.FontPath != "" {
		c.FontPath = expandHome(o.FontPath)
	}
	if o.Preset != "" {
		c.Preset = o.Preset
	}
	if o.JPEGQuality != 0 {
		c.JPEGQuality = o.JPEGQuality
	}
}

// ApplyEnv overrides settings from environment variables looked up with
// lookup (usually os.LookupEnv). Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var o Config
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be an integer", key)
		}
		*dst = n
		return nil
	}

	str(EnvCacheDir, &o.CacheDir)
	str(EnvRedisURL, &o.RedisURL)
	str(EnvFont, &o.FontPath)
	str(EnvPreset, &o.Preset)
	for key, dst := range map[string]*int{
		EnvWorkers:     &o.Workers,
		EnvDPI:         &o.DPI,
		EnvJPEGQuality: &o.JPEGQuality,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	c.merge(o)
	return nil
}

// Validate checks ranges and the preset name.
func (c Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "workers must be positive, got %d", c.Workers)
	case c.DPI <= 0 || c.DPI > MaxDPI:
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be between 1 and %d, got %d", MaxDPI, c.DPI)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return errors.New(errors.ErrCodeInvalidInput, "jpeg quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if _, err := layout.LookupPreset(c.Preset); err != nil {
		return err
	}
	return nil
}

// Save writes c as YAML to path, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create config dir")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write config %s", path)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
