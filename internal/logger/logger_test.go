package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNopBeforeInit(t *testing.T) {
	// Must not panic with the zero configuration.
	Named("viewer").Info("ignored")
	Sugar.Debugf("ignored %d", 1)
}

func TestFileLevels(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{`"error"`}, excluded: []string{`"warn"`, `"info"`, `"debug"`}},
		{level: "warn", expected: []string{`"error"`, `"warn"`}, excluded: []string{`"info"`, `"debug"`}},
		{level: "info", expected: []string{`"error"`, `"warn"`, `"info"`}, excluded: []string{`"debug"`}},
		{level: "debug", expected: []string{`"error"`, `"warn"`, `"info"`, `"debug"`}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(dir, tt.level+".log")
			cfg := FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("init: %v", err)
			}

			log := Named("gateway")
			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e", zap.String("region", "100L"))
			Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			out := string(data)
			for _, want := range tt.expected {
				if !strings.Contains(out, `"level":`+want) {
					t.Errorf("missing level %s in %q", want, out)
				}
			}
			for _, bad := range tt.excluded {
				if strings.Contains(out, `"level":`+bad) {
					t.Errorf("unexpected level %s for %s", bad, tt.level)
				}
			}
			if !strings.Contains(out, `"logger":"gateway"`) {
				t.Errorf("component name missing: %q", out)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/neuroview.log")
	if cfg.Path != "/tmp/neuroview.log" {
		t.Errorf("Path = %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 14 {
		t.Errorf("unexpected rotation %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress")
	}
}
