package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Version   string `toml:"-" yaml:"-"`
	BuildDate string `toml:"-" yaml:"-"`
	Commit    string `toml:"-" yaml:"-"`

	RootPath  string `toml:"root_path" yaml:"root_path"`
	Home      string `toml:"home" yaml:"home"`
	Debug     bool   `toml:"debug" yaml:"debug"`
	WaitTasks bool   `toml:"wait_tasks" yaml:"wait_tasks"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogFile  string `toml:"log_file" yaml:"log_file"`

	TraceDriver string `toml:"trace_driver" yaml:"trace_driver"`
	TraceDSN    string `toml:"trace_dsn" yaml:"trace_dsn"`
}

// HomeEnv names the environment variable holding the library home.
const HomeEnv = "YNT_HOME"

func DefaultConfiguration() Configuration {
	return Configuration{
		RootPath:    ".",
		Home:        os.Getenv(HomeEnv),
		WaitTasks:   true,
		LogLevel:    "error",
		TraceDriver: "sqlite3",
	}
}

// LoadFile overlays the settings found in path onto cfg. The format is picked
// from the file extension: .toml, .yaml or .yml.
func LoadFile(path string, cfg *Configuration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}
