// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Asset source kinds.
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`

	// Path is the file the settings were read from, empty for defaults.
	Path string `yaml:"-"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// AssetsConfig selects where models and reference data come from.
type AssetsConfig struct {
	Source    string        `yaml:"source"`   // dir, http or s3
	Dir       string        `yaml:"dir"`      // root for the dir source
	BaseURL   string        `yaml:"base_url"` // root for the http source
	Timeout   time.Duration `yaml:"timeout"`
	S3        S3Config      `yaml:"s3"`
	CacheMB   int           `yaml:"cache_mb"`
	RootModel string        `yaml:"root_model"` // model name of the translucent overlay
	Reference string        `yaml:"reference"`  // reference JSON name
}

// S3Config holds bucket settings for the s3 source.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// ViewerConfig holds initial viewer behaviour.
type ViewerConfig struct {
	FadeDuration     time.Duration `yaml:"fade_duration"`
	OutlineThickness float32       `yaml:"outline_thickness"`
	TooltipOffset    float64       `yaml:"tooltip_offset"`
	Outlines         bool          `yaml:"outlines"`
	Tooltips         bool          `yaml:"tooltips"`
	DescriptionBoxes bool          `yaml:"description_boxes"`
	DarkBackground   bool          `yaml:"dark_background"`
	WatchReference   bool          `yaml:"watch_reference"`
	// Regions are shown at startup, each "base[:Left|Right|Both[:Color]]".
	Regions []string `yaml:"regions"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "NeuroView",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Assets: AssetsConfig{
			Source:    SourceDir,
			Dir:       "assets",
			Timeout:   30 * time.Second,
			CacheMB:   256,
			RootModel: "root",
			Reference: "reference.json",
		},
		Viewer: ViewerConfig{
			FadeDuration:     100 * time.Millisecond,
			OutlineThickness: 0.005,
			TooltipOffset:    10,
			Outlines:         true,
			Tooltips:         true,
			DescriptionBoxes: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	switch c.Assets.Source {
	case SourceDir:
		if c.Assets.Dir == "" {
			return fmt.Errorf("assets.dir is required for the %s source", SourceDir)
		}
	case SourceHTTP:
		if c.Assets.BaseURL == "" {
			return fmt.Errorf("assets.base_url is required for the %s source", SourceHTTP)
		}
	case SourceS3:
		if c.Assets.S3.Bucket == "" {
			return fmt.Errorf("assets.s3.bucket is required for the %s source", SourceS3)
		}
	default:
		return fmt.Errorf("unknown assets.source %q", c.Assets.Source)
	}
	if c.Viewer.FadeDuration < 0 {
		return fmt.Errorf("viewer.fade_duration must not be negative")
	}
	return nil
}
