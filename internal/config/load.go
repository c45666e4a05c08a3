package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config dirs.
const FileName = "neuroview.yaml"

// EnvVar names a config file when -config is not given.
const EnvVar = "NEUROVIEW_CONFIG"

// Load builds the viewer settings: defaults, then the first config file
// found, then command-line flags. The result is validated.
//
// The file is, in order: -config, $NEUROVIEW_CONFIG, ./neuroview.yaml,
// neuroview.yaml in ConfigDir. An explicitly named file must exist.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("reading settings %s: %w", path, err)
		}
		cfg.Path = path
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		if cfg.Path != "" {
			return nil, fmt.Errorf("settings %s: %w", cfg.Path, err)
		}
		return nil, fmt.Errorf("settings: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first neuroview.yaml in the working
// directory or ConfigDir, or "".
func findConfigFile() string {
	for _, path := range []string{
		"./" + FileName,
		filepath.Join(ConfigDir(), FileName),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user settings directory of the viewer.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "NeuroView")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "NeuroView")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "neuroview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "neuroview")
	}
}

// loadFromFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected so a misspelt setting does not silently keep its default. An
// empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
