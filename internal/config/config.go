package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds connection parameters for the target temperature controller.
type Config struct {
	// DeviceAddress is the controller's network address (host or host:port).
	DeviceAddress string `yaml:"device_addr"`
	// Timeout is the bounded wait applied to each HTTP call.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum zap level name for diagnostics output.
	LogLevel string `yaml:"log_level"`
	// Influx enables recording of fetched points and run outcomes when set.
	Influx *InfluxConfig `yaml:"influx,omitempty"`
}

// configYAML is the on-disk shape of Config. The timeout is a
// human-readable duration string ("5s"), which yaml.v3 cannot decode
// into time.Duration directly.
type configYAML struct {
	DeviceAddress string        `yaml:"device_addr,omitempty"`
	Timeout       string        `yaml:"timeout,omitempty"`
	LogLevel      string        `yaml:"log_level,omitempty"`
	Influx        *InfluxConfig `yaml:"influx,omitempty"`
}

// UnmarshalYAML decodes settings, parsing the timeout from a duration
// string. Omitted fields keep whatever values the target already holds,
// so defaults survive a partial settings file.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw configYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.DeviceAddress != "" {
		c.DeviceAddress = raw.DeviceAddress
	}

	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}

	if raw.Influx != nil {
		c.Influx = raw.Influx
	}

	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}

		c.Timeout = timeout
	}

	return nil
}

// MarshalYAML encodes settings with the timeout as a duration string.
func (c Config) MarshalYAML() (any, error) {
	raw := configYAML{
		DeviceAddress: c.DeviceAddress,
		LogLevel:      c.LogLevel,
		Influx:        c.Influx,
	}

	if c.Timeout > 0 {
		raw.Timeout = c.Timeout.String()
	}

	return raw, nil
}

// InfluxConfig describes the optional InfluxDB recording target.
// The write token is never stored in YAML; it is taken from the
// INFLUX_TOKEN environment variable (a .env file is honored).
type InfluxConfig struct {
	// URL is the InfluxDB server base URL.
	URL string `yaml:"url"`
	// Org is the InfluxDB organization name.
	Org string `yaml:"org"`
	// Bucket is the destination bucket for recorded points.
	Bucket string `yaml:"bucket"`
	// Measurement names the measurement recorded points are written under.
	Measurement string `yaml:"measurement"`
	// Token is resolved from the environment at load time.
	Token string `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default filename for connection settings.
	DefaultConfigFilename = "thermo-verify-settings.yaml"

	// DefaultDeviceAddress is a placeholder controller address used when
	// neither the settings file nor the command line provides one.
	DefaultDeviceAddress = "192.168.1.100"

	// DefaultTimeout is the default bounded wait for HTTP calls.
	DefaultTimeout = 5 * time.Second

	// DefaultInfluxMeasurement is used when the influx block omits a measurement name.
	DefaultInfluxMeasurement = "alarm_points"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// influxTokenEnv is the environment variable holding the InfluxDB write token.
	influxTokenEnv = "INFLUX_TOKEN"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errDeviceAddressRequired is returned when the device address is missing.
	errDeviceAddressRequired = errors.New("device address must be provided")
	// errInfluxOrgRequired is returned when the influx block lacks an organization.
	errInfluxOrgRequired = errors.New("influx organization must be provided")
	// errInfluxBucketRequired is returned when the influx block lacks a bucket.
	errInfluxBucketRequired = errors.New("influx bucket must be provided")
)

// Default returns settings suitable for running with no settings file at all.
func Default() *Config {
	return &Config{
		DeviceAddress: DefaultDeviceAddress,
		Timeout:       DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing settings file is not an error: the tool must work against a device
// named only on the command line, so defaults apply instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults stand in for the absent file.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnvironment(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DeviceAddress == "" {
		return errDeviceAddressRequired
	}

	if err := validateDeviceAddress(cfg.DeviceAddress); err != nil {
		return fmt.Errorf("invalid device address: %w", err)
	}

	// Set default timeout if not specified.
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Influx == nil {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.Influx.URL); err != nil {
		return fmt.Errorf("invalid influx URL: %w", err)
	}

	if cfg.Influx.Org == "" {
		return errInfluxOrgRequired
	}

	if cfg.Influx.Bucket == "" {
		return errInfluxBucketRequired
	}

	if cfg.Influx.Measurement == "" {
		cfg.Influx.Measurement = DefaultInfluxMeasurement
	}

	return nil
}

// applyEnvironment overlays secrets from the environment onto the loaded settings.
// A .env file in the working directory is loaded first, if present.
func applyEnvironment(cfg *Config) {
	//nolint:errcheck // A missing .env file is the normal case.
	_ = godotenv.Load()

	if cfg.Influx != nil {
		cfg.Influx.Token = os.Getenv(influxTokenEnv)
	}
}

// validateDeviceAddress accepts a bare host, host:port, or full http(s) URL.
func validateDeviceAddress(address string) error {
	if strings.Contains(address, "://") {
		if _, err := url.ParseRequestURI(address); err != nil {
			return err
		}

		return nil
	}

	if strings.Contains(address, ":") {
		if _, err := net.ResolveTCPAddr("tcp", address); err != nil {
			return err
		}
	}

	return nil
}
