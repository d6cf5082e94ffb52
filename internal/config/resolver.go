// Package config resolves takt settings from, in ascending precedence:
// built-in defaults, the YAML config file, TAKT_* environment variables and
// CLI flags. Each resolved value remembers where it came from so `takt
// config` style debugging stays possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueSource names where a resolved value came from.
type ValueSource string

const (
	SourceDefault ValueSource = "default"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
)

// ResolvedValue is a setting plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
}

// ResolveOptions carries CLI-level overrides into Resolve.
type ResolveOptions struct {
	ConfigPath  string
	CLIDBPath   string
	CLILogLevel string
}

// Resolved is the fully resolved configuration.
type Resolved struct {
	ConfigPath   string        `json:"config_path"`
	DBPath       ResolvedValue `json:"db_path"`
	LogLevel     ResolvedValue `json:"log_level"`
	FallbackHour ResolvedValue `json:"fallback_hour"`
}

// FallbackHourInt returns the fallback hour as an integer, or the built-in
// default when the configured value does not parse.
func (r *Resolved) FallbackHourInt() int {
	v, err := strconv.Atoi(r.FallbackHour.Value)
	if err != nil || v < 0 || v > 23 {
		return defaultFallbackHour
	}
	return v
}

type fileConfig struct {
	DBPath       string `yaml:"db_path"`
	LogLevel     string `yaml:"log_level"`
	FallbackHour *int   `yaml:"fallback_hour"`
}

const (
	defaultDBPath       = "~/.takt/takt.db"
	defaultLogLevel     = "info"
	defaultFallbackHour = 9
)

// DefaultConfigPath is the config file location used when none is given.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "takt.yaml"
	}
	return filepath.Join(home, ".takt", "config.yaml")
}

// Resolve loads the config file (if present) and applies env and CLI
// overrides. A missing config file is not an error; a malformed one is.
func Resolve(opts ResolveOptions) (*Resolved, error) {
	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigPath()
	}

	r := &Resolved{
		ConfigPath:   path,
		DBPath:       ResolvedValue{Value: defaultDBPath, Source: SourceDefault},
		LogLevel:     ResolvedValue{Value: defaultLogLevel, Source: SourceDefault},
		FallbackHour: ResolvedValue{Value: strconv.Itoa(defaultFallbackHour), Source: SourceDefault},
	}

	if raw, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if fc.DBPath != "" {
			r.DBPath = ResolvedValue{Value: fc.DBPath, Source: SourceConfig}
		}
		if fc.LogLevel != "" {
			r.LogLevel = ResolvedValue{Value: fc.LogLevel, Source: SourceConfig}
		}
		if fc.FallbackHour != nil {
			r.FallbackHour = ResolvedValue{Value: strconv.Itoa(*fc.FallbackHour), Source: SourceConfig}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if v := os.Getenv("TAKT_DB"); v != "" {
		r.DBPath = ResolvedValue{Value: v, Source: SourceEnv}
	}
	if v := os.Getenv("TAKT_LOG_LEVEL"); v != "" {
		r.LogLevel = ResolvedValue{Value: v, Source: SourceEnv}
	}
	if v := os.Getenv("TAKT_FALLBACK_HOUR"); v != "" {
		r.FallbackHour = ResolvedValue{Value: v, Source: SourceEnv}
	}

	if opts.CLIDBPath != "" {
		r.DBPath = ResolvedValue{Value: opts.CLIDBPath, Source: SourceCLI}
	}
	if opts.CLILogLevel != "" {
		r.LogLevel = ResolvedValue{Value: opts.CLILogLevel, Source: SourceCLI}
	}

	return r, nil
}
