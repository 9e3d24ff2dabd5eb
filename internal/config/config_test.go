package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing device address.
	err := Validate(new(Config))
	require.Error(t, err)

	// Bad socket.
	err = Validate(&Config{DeviceAddress: "bad:address"})
	require.Error(t, err)

	// Bare host is fine, default timeout is applied.
	cfg := &Config{DeviceAddress: "192.168.1.42"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	// Influx block requires URL, org and bucket; measurement gets a default.
	cfg = &Config{
		DeviceAddress: "192.168.1.42",
		Influx: &InfluxConfig{
			URL:    "http://influx.local:8086",
			Org:    "lab",
			Bucket: "thermo",
		},
	}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultInfluxMeasurement, cfg.Influx.Measurement)

	cfg.Influx.Org = ""
	require.Error(t, Validate(cfg))
}

// TestLoadMissingFile ensures a missing settings file yields defaults, not an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultDeviceAddress, cfg.DeviceAddress)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Nil(t, cfg.Influx)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		DeviceAddress: "10.0.0.7:8080",
		Timeout:       3 * time.Second,
		LogLevel:      "debug",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.DeviceAddress, loaded.DeviceAddress)
	require.Equal(t, cfg.Timeout, loaded.Timeout)
	require.Equal(t, cfg.LogLevel, loaded.LogLevel)
}

// TestLoadDurationString ensures the timeout is parsed from a
// human-readable duration and partial files keep defaults.
func TestLoadDurationString(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 2500ms\n"), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	require.Equal(t, DefaultDeviceAddress, cfg.DeviceAddress)

	require.NoError(t, os.WriteFile(path, []byte("timeout: quick\n"), DefaultFilePermissions))

	_, err = Load(path)
	require.Error(t, err)
}

// TestInfluxTokenFromEnvironment ensures the write token is overlaid from the
// environment and never read from YAML.
func TestInfluxTokenFromEnvironment(t *testing.T) {
	t.Setenv("INFLUX_TOKEN", "secret-token")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	cfg := &Config{
		DeviceAddress: "192.168.1.42",
		Influx: &InfluxConfig{
			URL:    "http://influx.local:8086",
			Org:    "lab",
			Bucket: "thermo",
			Token:  "should-not-be-saved",
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Influx)
	require.Equal(t, "secret-token", loaded.Influx.Token)
}
