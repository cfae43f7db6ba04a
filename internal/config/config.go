// Package config loads render and server settings from a JSON or YAML
// file and merges command-line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"icos-renderer/internal/descriptor"
	"icos-renderer/internal/shapes"
)

// Config holds all configurable paths, render and server settings.
type Config struct {
	// Descriptor sources, tried in order: catalog directory, HTTP
	// endpoint, built-in shapes.
	CatalogDir    string `json:"catalog_dir" yaml:"catalog_dir"`
	DescriptorURL string `json:"descriptor_url" yaml:"descriptor_url"`
	ConstsPath    string `json:"consts_path" yaml:"consts_path"`
	OutputDir     string `json:"output_dir" yaml:"output_dir"`

	// Render settings
	Format      string  `json:"format" yaml:"format"`
	RenderSize  int     `json:"render_size" yaml:"render_size"`
	Supersample int     `json:"supersample" yaml:"supersample"`
	Yaw         float64 `json:"yaw" yaml:"yaw"`
	Pitch       float64 `json:"pitch" yaml:"pitch"`
	FOV         float64 `json:"fov" yaml:"fov"`
	Workers     int     `json:"workers" yaml:"workers"`
	SweepFrames int     `json:"sweep_frames" yaml:"sweep_frames"`
	SweepParam  int     `json:"sweep_param" yaml:"sweep_param"`

	// Server settings
	Listen    string `json:"listen" yaml:"listen"`
	FrameRate int    `json:"frame_rate" yaml:"frame_rate"`
	Watch     bool   `json:"watch" yaml:"watch"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Output formats.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// Load reads a config file and returns Config. Files ending in .yaml or
// .yml are read as YAML, anything else as JSON. Fields not set in the
// file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	CatalogDir    string
	DescriptorURL string
	OutputDir     string
	Format        string
	Size          int
	Workers       int
	Listen        string
	LogLevel      string
}

// Resolve applies flags and fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.CatalogDir != "" {
		c.CatalogDir = flags.CatalogDir
	}
	if flags.DescriptorURL != "" {
		c.DescriptorURL = flags.DescriptorURL
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = FormatWebP
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.SweepFrames <= 0 {
		c.SweepFrames = 24
	}
	if c.Listen == "" {
		c.Listen = "localhost:8000"
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatWebP, FormatTGA:
	default:
		return fmt.Errorf("config: unknown format %q (want %s or %s)", c.Format, FormatWebP, FormatTGA)
	}
	if c.SweepParam < 0 {
		return fmt.Errorf("config: sweep_param %d is negative", c.SweepParam)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	return nil
}

// Logger returns a text logger at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Source assembles the descriptor chain. The returned catalog is nil when
// no catalog directory is configured.
func (c *Config) Source(logger *slog.Logger) (descriptor.Source, *descriptor.Catalog) {
	var chain descriptor.Chain
	if c.ConstsPath != "" {
		chain = append(chain, descriptor.ConstsFile(c.ConstsPath))
	}

	var cat *descriptor.Catalog
	if c.CatalogDir != "" {
		cat = descriptor.NewCatalog(c.CatalogDir, logger)
		chain = append(chain, cat)
	}
	if c.DescriptorURL != "" {
		chain = append(chain, descriptor.NewHTTPSource(c.DescriptorURL))
	}
	chain = append(chain, shapes.Builtin{})
	return chain, cat
}
