package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the optional yaml configuration. Every key has an environment
// variable that takes precedence over it.
type File struct {
	Home             string   `yaml:"home"`
	SourceDir        string   `yaml:"source_dir"`
	ConfigureOptions string   `yaml:"configure_options"`
	MakeOptions      string   `yaml:"make_options"`
	SourceMode       string   `yaml:"source_mode"`
	EnvFiles         []string `yaml:"env_files"`
}

// FilePath returns where the yaml configuration is looked up: $PG_VENV_CONFIG,
// else pg-venv/config.yaml under the user config directory.
func FilePath() string {
	if p := strings.TrimSpace(os.Getenv("PG_VENV_CONFIG")); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pg-venv", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "pg-venv", "config.yaml")
	}
	return ""
}

// ReadFile parses the yaml configuration and returns it with the directory
// it lives in. A missing file yields a zero File and no error.
func ReadFile() (File, string, error) {
	var cfg File
	path := FilePath()
	if path == "" {
		return cfg, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, filepath.Dir(path), nil
		}
		return cfg, filepath.Dir(path), err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, filepath.Dir(path), err
	}
	return cfg, filepath.Dir(path), nil
}
