package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromStrings(t *testing.T) {
	lines := FromStrings("cwl a", "cwl b")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Content != "cwl b" || lines[1].Index != 1 || lines[1].FileName != MemoryFile {
		t.Errorf("unexpected line: %+v", lines[1])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	lines := FromStrings("a", "b")
	clone := Clone(lines)
	clone[0].Content = "changed"
	if lines[0].Content != "a" {
		t.Errorf("clone shares storage with the original")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ynt")
	if err := os.WriteFile(path, []byte("cwl one\r\n\ncwl two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Content != "cwl one" {
		t.Errorf("expected carriage return stripped, got %q", lines[0].Content)
	}
	if lines[2].FileName != path || lines[2].Index != 2 {
		t.Errorf("unexpected line: %+v", lines[2])
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.ynt"))
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "local.ynt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "lib", "shared.ynt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path     string
		expected string
	}{
		{"local", filepath.Join(root, "local.ynt")},
		{"local.ynt", filepath.Join(root, "local.ynt")},
		{"shared", filepath.Join(home, "lib", "shared.ynt")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Resolve(tt.path, root, home)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}

	if _, err := Resolve("missing", root, home); !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
