package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// clearEnv blanks the TAKT_* variables so an ambient shell environment
// cannot leak into precedence tests.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TAKT_DB", "")
	t.Setenv("TAKT_LOG_LEVEL", "")
	t.Setenv("TAKT_FALLBACK_HOUR", "")
}

func TestResolveDefaults(t *testing.T) {
	clearEnv(t)
	r, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.DBPath.Value != defaultDBPath || r.DBPath.Source != SourceDefault {
		t.Errorf("db path = %+v, want built-in default", r.DBPath)
	}
	if r.LogLevel.Value != defaultLogLevel || r.LogLevel.Source != SourceDefault {
		t.Errorf("log level = %+v, want built-in default", r.LogLevel)
	}
	if r.FallbackHourInt() != defaultFallbackHour {
		t.Errorf("fallback hour = %d, want %d", r.FallbackHourInt(), defaultFallbackHour)
	}
}

func TestResolveConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "db_path: /tmp/other.db\nlog_level: debug\nfallback_hour: 7\n")
	r, err := Resolve(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.DBPath.Value != "/tmp/other.db" || r.DBPath.Source != SourceConfig {
		t.Errorf("db path = %+v, want config value", r.DBPath)
	}
	if r.LogLevel.Value != "debug" || r.LogLevel.Source != SourceConfig {
		t.Errorf("log level = %+v, want config value", r.LogLevel)
	}
	if r.FallbackHourInt() != 7 {
		t.Errorf("fallback hour = %d, want 7", r.FallbackHourInt())
	}
}

func TestResolveEnvOverridesConfig(t *testing.T) {
	path := writeConfig(t, "db_path: /tmp/from-config.db\n")
	t.Setenv("TAKT_DB", "/tmp/from-env.db")
	t.Setenv("TAKT_FALLBACK_HOUR", "8")

	r, err := Resolve(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.DBPath.Value != "/tmp/from-env.db" || r.DBPath.Source != SourceEnv {
		t.Errorf("db path = %+v, want env value", r.DBPath)
	}
	if r.FallbackHourInt() != 8 || r.FallbackHour.Source != SourceEnv {
		t.Errorf("fallback hour = %+v, want env value", r.FallbackHour)
	}
}

func TestResolveCLIOverridesAll(t *testing.T) {
	path := writeConfig(t, "db_path: /tmp/from-config.db\nlog_level: debug\n")
	t.Setenv("TAKT_DB", "/tmp/from-env.db")
	t.Setenv("TAKT_LOG_LEVEL", "warn")

	r, err := Resolve(ResolveOptions{
		ConfigPath:  path,
		CLIDBPath:   "/tmp/from-cli.db",
		CLILogLevel: "error",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.DBPath.Value != "/tmp/from-cli.db" || r.DBPath.Source != SourceCLI {
		t.Errorf("db path = %+v, want cli value", r.DBPath)
	}
	if r.LogLevel.Value != "error" || r.LogLevel.Source != SourceCLI {
		t.Errorf("log level = %+v, want cli value", r.LogLevel)
	}
}

func TestResolveMalformedConfig(t *testing.T) {
	path := writeConfig(t, "db_path: [\n")
	if _, err := Resolve(ResolveOptions{ConfigPath: path}); err == nil {
		t.Fatal("malformed config must fail")
	}
}

func TestFallbackHourIntRejectsBadValues(t *testing.T) {
	for _, v := range []string{"", "x", "-1", "24"} {
		r := &Resolved{FallbackHour: ResolvedValue{Value: v}}
		if got := r.FallbackHourInt(); got != defaultFallbackHour {
			t.Errorf("FallbackHourInt(%q) = %d, want %d", v, got, defaultFallbackHour)
		}
	}
}
