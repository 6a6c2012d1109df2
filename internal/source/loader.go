package source

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a script from disk, one Line per physical line.
func LoadFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, Line{
			Content:  strings.TrimSuffix(scanner.Text(), "\r"),
			FileName: path,
			Index:    len(lines),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return lines, nil
}

// Resolve finds the file an import refers to. The path is tried relative to
// rootPath first and then under home/lib. A path without an extension gets
// Extension appended.
func Resolve(path, rootPath, home string) (string, error) {
	if filepath.Ext(path) == "" {
		path += Extension
	}

	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates[0] = filepath.Join(rootPath, path)
		if home != "" {
			candidates = append(candidates, filepath.Join(home, "lib", path))
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			slog.Debug("resolved import", slog.String("path", path), slog.String("file", candidate))
			return candidate, nil
		}
	}
	return "", fmt.Errorf("resolving %q: %w", path, os.ErrNotExist)
}

// IsNotFound reports whether err came from a file that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
