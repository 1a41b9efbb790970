// Package config resolves the runtime configuration of sunclock from
// command-line flags, SUNCLOCK_* environment variables, a TOML file and
// built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devskill-org/sunclock/solar"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the name of the configuration file looked up in the
	// user's configuration directory.
	FileName = "sunclock.toml"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "SUNCLOCK"

	DefaultLatitude  = 51.4769
	DefaultLongitude = -0.0005
)

// Config represents the configuration for sunclock
type Config struct {
	Coordinates solar.Coordinates `mapstructure:"-"` // Observer location
	Date        time.Time         `mapstructure:"-"` // Civil date of a report, zero for today
	Zone        *time.Location    `mapstructure:"-"` // Fixed UTC offset for every instant

	Log   LogConfig   `mapstructure:"log"`
	Poll  PollConfig  `mapstructure:"poll"`
	Web   WebConfig   `mapstructure:"web"`
	Store StoreConfig `mapstructure:"store"`
	PLC   PLCConfig   `mapstructure:"plc"`

	// Warnings collects problems that were recovered from while loading,
	// such as an unusable config file. They are logged once a logger exists.
	Warnings []string `mapstructure:"-"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// PollConfig holds the live display settings
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"` // How often the snapshot is refreshed
}

// WebConfig holds the HTTP server settings
type WebConfig struct {
	Port int `mapstructure:"port"`
}

// StoreConfig holds the sample recorder settings
type StoreConfig struct {
	Postgres string        `mapstructure:"postgres"` // PostgreSQL connection string, empty disables recording
	Interval time.Duration `mapstructure:"interval"` // Minimum time between two recorded samples
	DeviceID int           `mapstructure:"device_id"`
}

// PLCConfig holds the Modbus output settings
type PLCConfig struct {
	Address  string        `mapstructure:"address"`  // Modbus TCP address (IP:PORT), empty disables the output
	SlaveID  int           `mapstructure:"slave_id"` // Modbus unit identifier
	Register int           `mapstructure:"register"` // First holding register written
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RegisterFlags adds the global flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a TOML configuration file (default "+defaultPathHint()+")")
	fs.StringP("latitude", "l", "", "latitude in decimal degrees, positive to the north (requires --longitude)")
	fs.StringP("longitude", "o", "", "longitude in decimal degrees, positive to the east (requires --latitude)")
	fs.StringP("date", "d", "", "date to report on, in the format yyyy-mm-dd (default today)")
	fs.StringP("time-zone", "t", "", "UTC offset in the format [+|-]HH:MM (default the local offset)")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("poll.interval", time.Second)
	v.SetDefault("web.port", 8080)
	v.SetDefault("store.postgres", "")
	v.SetDefault("store.interval", time.Minute)
	v.SetDefault("store.device_id", 0)
	v.SetDefault("plc.address", "")
	v.SetDefault("plc.slave_id", 1)
	v.SetDefault("plc.register", 0)
	v.SetDefault("plc.timeout", 5*time.Second)
}

// DefaultConfig returns a configuration with default values, located at the
// default coordinates in UTC.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{Zone: time.UTC}
	_ = v.Unmarshal(cfg)
	cfg.Coordinates, _ = DefaultCoordinates()
	return cfg
}

// Load builds a Config from the parsed global flags in fs, the environment
// and the configuration file.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("log.level", fs.Lookup("log-level")); err != nil {
		return nil, fmt.Errorf("failed to bind log-level flag: %w", err)
	}
	if err := v.BindPFlag("log.format", fs.Lookup("log-format")); err != nil {
		return nil, fmt.Errorf("failed to bind log-format flag: %w", err)
	}

	cfg := &Config{}

	explicit, _ := fs.GetString("config")
	if err := readConfigFile(v, explicit, cfg); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	coords, err := resolveCoordinates(fs, v, cfg)
	if err != nil {
		return nil, err
	}
	cfg.Coordinates = coords

	if err := resolveDateAndZone(fs, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readConfigFile reads an explicitly named file, failing if it cannot be
// read, or else the default file, warning if it exists but is unusable.
func readConfigFile(v *viper.Viper, explicit string, cfg *Config) error {
	v.SetConfigType("toml")
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", explicit, err)
		}
		return nil
	}

	path, err := DefaultPath()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("couldn't parse configuration file %s: %v; proceeding with defaults", path, err))
	}
	return nil
}

func resolveCoordinates(fs *pflag.FlagSet, v *viper.Viper, cfg *Config) (solar.Coordinates, error) {
	latSet, lonSet := fs.Changed("latitude"), fs.Changed("longitude")
	switch {
	case latSet && lonSet:
		lat, _ := fs.GetString("latitude")
		lon, _ := fs.GetString("longitude")
		return solar.ParseCoordinates(lat, lon)
	case latSet:
		return solar.Coordinates{}, errors.New("--latitude requires --longitude")
	case lonSet:
		return solar.Coordinates{}, errors.New("--longitude requires --latitude")
	}

	fallback, err := DefaultCoordinates()
	if err != nil {
		return solar.Coordinates{}, err
	}

	latSet, lonSet = v.IsSet("latitude"), v.IsSet("longitude")
	switch {
	case latSet && lonSet:
		coords, err := solar.ParseCoordinates(v.GetString("latitude"), v.GetString("longitude"))
		if err != nil {
			cfg.Warnings = append(cfg.Warnings,
				fmt.Sprintf("invalid coordinates in configuration: %v; proceeding with default coordinates", err))
			return fallback, nil
		}
		return coords, nil
	case latSet:
		cfg.Warnings = append(cfg.Warnings, "missing longitude in configuration; proceeding with default coordinates")
	case lonSet:
		cfg.Warnings = append(cfg.Warnings, "missing latitude in configuration; proceeding with default coordinates")
	}
	return fallback, nil
}

func resolveDateAndZone(fs *pflag.FlagSet, cfg *Config) error {
	tz, _ := fs.GetString("time-zone")
	if tz != "" {
		zone, err := ParseTimeZone(tz)
		if err != nil {
			return err
		}
		cfg.Zone = zone
	} else {
		cfg.Zone = LocalZone(time.Now())
	}

	date, _ := fs.GetString("date")
	if date != "" {
		d, err := ParseDate(date)
		if err != nil {
			return err
		}
		cfg.Date = d
	}
	return nil
}

// DefaultCoordinates returns the coordinates used when none are configured,
// the Royal Observatory in Greenwich.
func DefaultCoordinates() (solar.Coordinates, error) {
	lat, err := solar.NewLatitude(DefaultLatitude)
	if err != nil {
		return solar.Coordinates{}, err
	}
	lon, err := solar.NewLongitude(DefaultLongitude)
	if err != nil {
		return solar.Coordinates{}, err
	}
	return solar.NewCoordinates(lat, lon), nil
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

func defaultPathHint() string {
	if p, err := DefaultPath(); err == nil {
		return p
	}
	return FileName
}

// ReportInstant is 12:00:00 on the configured date in the configured zone.
// Without a date, today in that zone is used.
func (c *Config) ReportInstant(now time.Time) time.Time {
	d := c.Date
	if d.IsZero() {
		d = now.In(c.Zone)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.Zone)
}

// Now returns the current time in the configured zone.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Zone)
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Web.Port)
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got: %q", c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got: %q", c.Log.Format)
	}

	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be greater than 0, got: %s", c.Poll.Interval)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 1 and 65535, got: %d", c.Web.Port)
	}

	if c.Store.Postgres != "" && c.Store.Interval <= 0 {
		return fmt.Errorf("store.interval must be greater than 0, got: %s", c.Store.Interval)
	}

	if c.PLC.Address != "" {
		if c.PLC.SlaveID < 1 || c.PLC.SlaveID > 247 {
			return fmt.Errorf("plc.slave_id must be between 1 and 247, got: %d", c.PLC.SlaveID)
		}
		if c.PLC.Register < 0 || c.PLC.Register > 0xFFFF-2 {
			return fmt.Errorf("plc.register must be between 0 and %d, got: %d", 0xFFFF-2, c.PLC.Register)
		}
		if c.PLC.Timeout <= 0 {
			return fmt.Errorf("plc.timeout must be greater than 0, got: %s", c.PLC.Timeout)
		}
	}

	if c.Zone == nil {
		return fmt.Errorf("time zone cannot be empty")
	}
	return nil
}

// NewLogger creates a new slog.Logger based on the configuration
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
