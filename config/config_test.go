package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse %v: %v", args, err)
	}
	return fs
}

// isolate points the user config directory at an empty temporary directory
// and clears any SUNCLOCK_* variables inherited from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, EnvPrefix+"_") {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Poll.Interval != time.Second {
		t.Errorf("poll interval: got %v", cfg.Poll.Interval)
	}
	if cfg.Web.Port != 8080 || cfg.GetServerAddr() != ":8080" {
		t.Errorf("web port: got %v", cfg.Web.Port)
	}
	if got := cfg.Coordinates.Latitude.Degrees(); got != DefaultLatitude {
		t.Errorf("latitude: got %v", got)
	}
	if got := cfg.Coordinates.Longitude.Degrees(); got != DefaultLongitude {
		t.Errorf("longitude: got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(parseFlags(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", cfg.Warnings)
	}
	if cfg.Coordinates.Latitude.Degrees() != DefaultLatitude || cfg.Coordinates.Longitude.Degrees() != DefaultLongitude {
		t.Errorf("expected default coordinates, got %v", cfg.Coordinates)
	}
	if !cfg.Date.IsZero() {
		t.Errorf("date should default to today, got %v", cfg.Date)
	}
	if cfg.Zone == nil {
		t.Fatal("zone should default to the local offset")
	}
}

func TestLoadFlags(t *testing.T) {
	isolate(t)
	cfg, err := Load(parseFlags(t, "-l", "-33.9", "-o", "18.4", "-d", "2022-06-21", "-t", "+02:00", "--log-level", "debug"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Coordinates.Latitude.Degrees() != -33.9 || cfg.Coordinates.Longitude.Degrees() != 18.4 {
		t.Errorf("coordinates: got %v", cfg.Coordinates)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
	got := cfg.ReportInstant(time.Now())
	want := time.Date(2022, 6, 21, 12, 0, 0, 0, time.FixedZone("+02:00", 7200))
	if !got.Equal(want) {
		t.Errorf("report instant: got %v, want %v", got, want)
	}
	if _, offset := got.Zone(); offset != 7200 {
		t.Errorf("offset: got %v", offset)
	}
}

func TestLoadRequiresBothCoordinates(t *testing.T) {
	isolate(t)
	if _, err := Load(parseFlags(t, "-l", "10")); err == nil {
		t.Error("expected an error when only the latitude is given")
	}
	if _, err := Load(parseFlags(t, "--longitude", "10")); err == nil {
		t.Error("expected an error when only the longitude is given")
	}
	if _, err := Load(parseFlags(t, "-l", "91", "-o", "181")); err == nil {
		t.Error("expected an error for out of range flags")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
latitude = 56.9496
longitude = 24.1052

[poll]
interval = "5s"

[web]
port = 9090

[plc]
address = "127.0.0.1:502"
slave_id = 3
register = 100
`)
	cfg, err := Load(parseFlags(t, "--config", path))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Coordinates.Latitude.Degrees() != 56.9496 || cfg.Coordinates.Longitude.Degrees() != 24.1052 {
		t.Errorf("coordinates: got %v", cfg.Coordinates)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("poll interval: got %v", cfg.Poll.Interval)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("web port: got %v", cfg.Web.Port)
	}
	if cfg.PLC.Address != "127.0.0.1:502" || cfg.PLC.SlaveID != 3 || cfg.PLC.Register != 100 {
		t.Errorf("plc: got %+v", cfg.PLC)
	}

	// Flags take precedence over the file.
	cfg, err = Load(parseFlags(t, "--config", path, "-l", "0", "-o", "0"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Coordinates.Latitude.Degrees() != 0 || cfg.Coordinates.Longitude.Degrees() != 0 {
		t.Errorf("flags should override the file, got %v", cfg.Coordinates)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(parseFlags(t, "--config", filepath.Join(dir, "nope.toml"))); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestLoadDefaultFileFallback(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		warning  string
	}{
		{"missing longitude", "latitude = 10.0\n", "missing longitude"},
		{"missing latitude", "longitude = 10.0\n", "missing latitude"},
		{"out of range", "latitude = 100.0\nlongitude = 10.0\n", "invalid coordinates"},
		{"unparsable", "latitude = = 1\n", "couldn't parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path, err := DefaultPath()
			if err != nil {
				t.Skipf("no user config dir: %v", err)
			}
			writeFile(t, path, tt.contents)

			cfg, err := Load(parseFlags(t))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Coordinates.Latitude.Degrees() != DefaultLatitude || cfg.Coordinates.Longitude.Degrees() != DefaultLongitude {
				t.Errorf("expected default coordinates, got %v", cfg.Coordinates)
			}
			if len(cfg.Warnings) == 0 || !strings.Contains(strings.Join(cfg.Warnings, "\n"), tt.warning) {
				t.Errorf("expected a warning containing %q, got %v", tt.warning, cfg.Warnings)
			}
		})
	}
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SUNCLOCK_LATITUDE", "40.7128")
	t.Setenv("SUNCLOCK_LONGITUDE", "-74.006")
	t.Setenv("SUNCLOCK_WEB_PORT", "9191")
	cfg, err := Load(parseFlags(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Coordinates.Latitude.Degrees() != 40.7128 || cfg.Coordinates.Longitude.Degrees() != -74.006 {
		t.Errorf("coordinates: got %v", cfg.Coordinates)
	}
	if cfg.Web.Port != 9191 {
		t.Errorf("web port: got %v", cfg.Web.Port)
	}
}

func TestLoadInvalidDateAndZone(t *testing.T) {
	isolate(t)
	if _, err := Load(parseFlags(t, "-d", "21/06/2022")); err == nil {
		t.Error("expected an error for a malformed date")
	}
	if _, err := Load(parseFlags(t, "-t", "+24:00")); err == nil {
		t.Error("expected an error for an out of range offset")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"poll interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"web port", func(c *Config) { c.Web.Port = 70000 }},
		{"store interval", func(c *Config) { c.Store.Postgres = "postgres://x"; c.Store.Interval = -time.Second }},
		{"plc slave id", func(c *Config) { c.PLC.Address = "127.0.0.1:502"; c.PLC.SlaveID = 0 }},
		{"plc register", func(c *Config) { c.PLC.Address = "127.0.0.1:502"; c.PLC.Register = 70000 }},
		{"plc timeout", func(c *Config) { c.PLC.Address = "127.0.0.1:502"; c.PLC.Timeout = 0 }},
		{"zone", func(c *Config) { c.Zone = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("unexpected output: %s", out)
	}
}
