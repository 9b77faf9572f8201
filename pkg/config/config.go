// Package config loads the poststencil configuration.
//
// Configuration is a TOML file decoded onto DefaultConfig, so a partial file
// only overrides the keys it names. It covers the HTTP server, logging, image
// acquisition, font sources and export encoding.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/xob0t/poststencil/pkg/fonts"
	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/imageload"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the top-level configuration.
type Config struct {
	// Server holds HTTP API settings.
	Server ServerConfig `toml:"server"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Images holds image acquisition settings.
	Images ImagesConfig `toml:"images"`
	// Fonts holds font resolution settings.
	Fonts FontsConfig `toml:"fonts"`
	// Export holds output encoding settings.
	Export ExportConfig `toml:"export"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
	// MaxUploadMB caps a single asset upload.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `toml:"file"`
	// MaxSizeMB is the log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups"`
}

// ImagesConfig holds image acquisition settings.
type ImagesConfig struct {
	// Timeout bounds each fetch attempt, direct or proxied.
	Timeout Duration `toml:"timeout"`
	// MaxPixels rejects images with more decoded pixels.
	MaxPixels int `toml:"max_pixels"`
	// RetryMax is the HTTP-level retry count per attempt.
	RetryMax int `toml:"retry_max"`
	// Proxies is the ordered proxy chain tried after a direct fetch. Each
	// entry is a URL template containing {url} or {raw}.
	Proxies []string `toml:"proxies"`
	// DirectHosts lists host globs that are never proxied.
	DirectHosts []string `toml:"direct_hosts"`
}

// FontsConfig holds font resolution settings.
type FontsConfig struct {
	// CacheDir stores downloaded fonts. Empty uses the user cache dir.
	CacheDir string `toml:"cache_dir"`
	// Offline disables downloads; cached and embedded fonts still work.
	Offline bool `toml:"offline"`
	// Sources overrides a family's source with a file path or a
	// google:FAMILY:WEIGHT spec, keyed by family name.
	Sources map[string]string `toml:"sources,omitempty"`
}

// ExportConfig holds output encoding settings.
type ExportConfig struct {
	// Format is png or jpeg.
	Format string `toml:"format"`
	// JPEGQuality is the JPEG quality, 1-100.
	JPEGQuality int `toml:"jpeg_quality"`
	// MinDuration is a floor on export wall time.
	MinDuration Duration `toml:"min_duration"`
}

// Duration is a time.Duration written as a Go duration string ("8s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			MaxUploadMB: 32,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Images: ImagesConfig{
			Timeout:   Duration{imageload.DefaultTimeout},
			MaxPixels: imageload.DefaultMaxPixels,
			RetryMax:  0,
			Proxies:   append([]string(nil), imageload.DefaultProxies...),
		},
		Export: ExportConfig{
			Format:      string(generator.FormatPNG),
			JPEGQuality: 92,
		},
	}
}

// DefaultPath returns the per-user config file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "poststencil", FileName)
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads the config at path. A missing file yields DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML onto the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as TOML, atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return generator.WriteFile(path, buf.Bytes())
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all values are within acceptable ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0, got %d", c.Server.MaxUploadMB)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_backups must be >= 0")
	}

	if c.Images.Timeout.Duration <= 0 {
		return fmt.Errorf("images.timeout must be > 0, got %s", c.Images.Timeout)
	}
	if c.Images.MaxPixels <= 0 {
		return fmt.Errorf("images.max_pixels must be > 0, got %d", c.Images.MaxPixels)
	}
	if c.Images.RetryMax < 0 {
		return fmt.Errorf("images.retry_max must be >= 0, got %d", c.Images.RetryMax)
	}
	for _, p := range c.Images.Proxies {
		if strings.EqualFold(p, "direct") {
			continue
		}
		if !strings.Contains(p, "{url}") && !strings.Contains(p, "{raw}") {
			return fmt.Errorf("invalid images.proxies entry %q: must contain {url} or {raw}", p)
		}
	}
	for _, g := range c.Images.DirectHosts {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid images.direct_hosts pattern %q", g)
		}
	}

	for fam, src := range c.Fonts.Sources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("fonts.sources.%q must not be empty", fam)
		}
	}

	if _, err := generator.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("invalid export.format: %w", err)
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be 1-100, got %d", c.Export.JPEGQuality)
	}
	if c.Export.MinDuration.Duration < 0 {
		return fmt.Errorf("export.min_duration must be >= 0, got %s", c.Export.MinDuration)
	}
	return nil
}

// ///////////////////////////////////////////////
// Component Options
// ///////////////////////////////////////////////

// LoaderOptions maps [images] onto imageload options.
func (c *Config) LoaderOptions(log *slog.Logger) imageload.Options {
	return imageload.Options{
		Strategies:  imageload.Strategies(c.Images.Proxies),
		Timeout:     c.Images.Timeout.Duration,
		MaxPixels:   c.Images.MaxPixels,
		RetryMax:    c.Images.RetryMax,
		DirectHosts: c.Images.DirectHosts,
		Logger:      log,
	}
}

// FontOptions maps [fonts] onto font manager options.
func (c *Config) FontOptions(log *slog.Logger) fonts.Options {
	return fonts.Options{
		Sources:  c.Fonts.Sources,
		CacheDir: c.Fonts.CacheDir,
		Offline:  c.Fonts.Offline,
		Logger:   log,
	}
}

// Encoding maps [export] onto the encoder config. Validate has already
// checked the format.
func (c *Config) Encoding() generator.Config {
	f, _ := generator.ParseFormat(c.Export.Format)
	return generator.Config{Format: f, Quality: c.Export.JPEGQuality}
}
