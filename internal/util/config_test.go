package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"config.toml", "root_path = \"/scripts\"\ndebug = true\nwait_tasks = false\ntrace_driver = \"mysql\"\n"},
		{"config.yaml", "root_path: /scripts\ndebug: true\nwait_tasks: false\ntrace_driver: mysql\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg := DefaultConfiguration()
			cfg.LogLevel = "warn"
			if err := LoadFile(path, &cfg); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cfg.RootPath != "/scripts" || !cfg.Debug || cfg.WaitTasks || cfg.TraceDriver != "mysql" {
				t.Errorf("unexpected configuration: %+v", cfg)
			}
			if cfg.LogLevel != "warn" {
				t.Errorf("expected unset keys to keep their value, got %q", cfg.LogLevel)
			}
		})
	}
}

func TestLoadFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte("x=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfiguration()
	if err := LoadFile(path, &cfg); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}
