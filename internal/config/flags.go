package config

import (
	"flag"
	"strings"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagAssets  = flag.String("assets", "", "Asset directory, or http(s):// base URL, or s3://bucket/prefix")
	flagWidth   = flag.Int("width", 0, "Window width")
	flagHeight  = flag.Int("height", 0, "Window height")
	flagRegions = flag.String("regions", "", "Comma-separated regions to show at startup, e.g. 100:Left:Yellow,200")
	flagMetrics = flag.String("metrics", "", "Prometheus listen address, e.g. :9090")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAssets != "" {
		applyAssetsFlag(&cfg.Assets, *flagAssets)
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagRegions != "" {
		cfg.Viewer.Regions = splitList(*flagRegions)
	}
	if *flagMetrics != "" {
		cfg.Metrics.Listen = *flagMetrics
	}
}

// applyAssetsFlag picks the source kind from the location's scheme.
func applyAssetsFlag(a *AssetsConfig, loc string) {
	switch {
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		a.Source = SourceHTTP
		a.BaseURL = loc
	case strings.HasPrefix(loc, "s3://"):
		a.Source = SourceS3
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(loc, "s3://"), "/")
		a.S3.Bucket = bucket
		a.S3.Prefix = prefix
	default:
		a.Source = SourceDir
		a.Dir = loc
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
