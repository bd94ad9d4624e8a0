// Package config resolves pg's settings from the environment, env files and
// the yaml configuration, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Environment variables read by pg.
const (
	EnvHome             = "PG_VIRTUALENV_HOME"
	EnvSourceDir        = "PG_DIR"
	EnvConfigureOptions = "PG_CONFIGURE_OPTIONS"
	EnvMakeOptions      = "PG_MAKE_OPTIONS"
	EnvSourceMode       = "PG_SOURCE_MODE"
	EnvCurrent          = "PG_VENV"
)

// SourceMode selects how a pg_venv gets its copy of the source tree.
type SourceMode string

const (
	// SourceArchive extracts `git archive HEAD` of PG_DIR into src.
	SourceArchive SourceMode = "archive"
	// SourceWorktree adds a git worktree of PG_DIR at src on a branch named
	// after the pg_venv.
	SourceWorktree SourceMode = "worktree"
)

type Config struct {
	Home             string
	SourceDir        string
	ConfigureOptions string
	MakeOptions      string
	SourceMode       SourceMode
	// Current is the active pg_venv (PG_VENV), empty outside of workon.
	Current string
}

// MissingVarError reports a required setting that is not set.
type MissingVarError struct {
	Var string
}

func (e *MissingVarError) Error() string {
	if e.Var == EnvCurrent {
		return "PG_VENV not set. Please run `pg workon <pg_venv>` first"
	}
	return fmt.Sprintf("Please set environment variable %s. See help for detail (pg help).", e.Var)
}

// Load reads the yaml file, loads its env_files into the process environment
// (never overriding what is already set) and resolves the settings.
func Load() (Config, error) {
	file, dir, err := ReadFile()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	loadEnvFiles(dir, file.EnvFiles)

	cfg := Config{
		Home:             pick(EnvHome, file.Home),
		SourceDir:        pick(EnvSourceDir, file.SourceDir),
		ConfigureOptions: pick(EnvConfigureOptions, file.ConfigureOptions),
		MakeOptions:      pick(EnvMakeOptions, file.MakeOptions),
		Current:          os.Getenv(EnvCurrent),
	}
	mode, err := ParseSourceMode(pick(EnvSourceMode, file.SourceMode))
	if err != nil {
		return Config{}, err
	}
	cfg.SourceMode = mode
	log.WithFields(log.Fields{
		"home":   cfg.Home,
		"source": cfg.SourceDir,
		"mode":   cfg.SourceMode,
	}).Debug("config loaded")
	return cfg, nil
}

// ParseSourceMode accepts "archive", "worktree" or "" (archive).
func ParseSourceMode(s string) (SourceMode, error) {
	switch SourceMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceArchive:
		return SourceArchive, nil
	case SourceWorktree:
		return SourceWorktree, nil
	}
	return "", fmt.Errorf("invalid %s %q: want archive or worktree", EnvSourceMode, s)
}

func (c Config) RequireHome() (string, error) {
	if c.Home == "" {
		return "", &MissingVarError{Var: EnvHome}
	}
	return c.Home, nil
}

func (c Config) RequireSourceDir() (string, error) {
	if c.SourceDir == "" {
		return "", &MissingVarError{Var: EnvSourceDir}
	}
	return c.SourceDir, nil
}

func (c Config) RequireCurrent() (string, error) {
	if c.Current == "" {
		return "", &MissingVarError{Var: EnvCurrent}
	}
	return c.Current, nil
}

// OrCurrent returns name, or the active pg_venv when name is empty.
func (c Config) OrCurrent(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	return c.RequireCurrent()
}

func pick(env, fallback string) string {
	if v, ok := os.LookupEnv(env); ok {
		return v
	}
	return strings.TrimSpace(fallback)
}

func loadEnvFiles(dir string, files []string) {
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !filepath.IsAbs(f) && dir != "" {
			f = filepath.Join(dir, f)
		}
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).WithField("file", f).Warn("env file not loaded")
		}
	}
}
